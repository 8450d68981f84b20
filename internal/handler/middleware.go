package handler

import (
	"net/http"
	"strings"

	"event-registry/internal/auth"
	"event-registry/internal/model"
	apperrors "event-registry/pkg/app_errors"
	"event-registry/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	callerKey           = "caller"
	CallerAddressHeader = "X-Caller-Address"
)

// CallerIdentity resolves who is calling. With a verifier the caller comes from
// the bearer token's subject; with a nil verifier (dev mode) it is read from the
// X-Caller-Address header. Requests without a resolvable caller get 401.
func CallerIdentity(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			caller model.Address
			err    error
		)

		if verifier == nil {
			caller, err = model.ParseAddress(c.GetHeader(CallerAddressHeader))
		} else {
			caller, err = bearerCaller(c, verifier)
		}

		if err != nil {
			logger.WithComponent("handler").Warn("unresolved caller",
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": apperrors.ErrMissingIdentity.Error(),
			})
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

func bearerCaller(c *gin.Context, verifier auth.TokenVerifier) (model.Address, error) {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return verifier.Verify(token)
}

// callerFrom returns the caller set by CallerIdentity.
func callerFrom(c *gin.Context) (model.Address, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return "", false
	}
	caller, ok := v.(model.Address)
	return caller, ok
}
