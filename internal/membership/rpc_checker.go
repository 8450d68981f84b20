package membership

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"event-registry/internal/model"
	apperrors "event-registry/pkg/app_errors"
	"event-registry/pkg/logger"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// balanceOfABI covers the one view both ERC-20 and ERC-721 collections expose.
const balanceOfABI = `[{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

var collectionABI = mustParseABI(balanceOfABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// RPCChecker asks an EVM JSON-RPC node for balanceOf(holder) on the collection contract.
type RPCChecker struct {
	client  *ethclient.Client
	timeout time.Duration
}

// NewRPCChecker dials url through httpClient. HTTP endpoints are not contacted
// until the first call.
func NewRPCChecker(ctx context.Context, url string, timeout time.Duration, httpClient *http.Client) (*RPCChecker, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	rpcClient, err := rpc.DialOptions(ctx, url, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("dial membership rpc: %w", err)
	}
	return &RPCChecker{
		client:  ethclient.NewClient(rpcClient),
		timeout: timeout,
	}, nil
}

func (c *RPCChecker) Close() {
	c.client.Close()
}

func (c *RPCChecker) HoldsToken(ctx context.Context, collection, holder model.Address) (bool, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	balance, err := c.balanceOf(ctx, collection, holder)
	if err != nil {
		logger.WithComponent("membership").Warn("balanceOf failed",
			zap.String("collection", collection.String()),
			zap.String("holder", holder.String()),
			zap.Error(err),
		)
		return false, fmt.Errorf("%w: %v", apperrors.ErrCollaboratorUnavailable, err)
	}
	return balance.Sign() > 0, nil
}

func (c *RPCChecker) balanceOf(ctx context.Context, collection, holder model.Address) (*big.Int, error) {
	data, err := collectionABI.Pack("balanceOf", holder.Common())
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}

	to := collection.Common()
	raw, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call: %w", err)
	}

	out, err := collectionABI.Unpack("balanceOf", raw)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}
