// Package membership answers whether an account holds at least one unit of a token collection.
package membership

import (
	"context"
	"sync"

	"event-registry/internal/model"
)

// Checker is the membership-token collaborator. An error means the question
// could not be answered; it must never be read as "does not hold".
type Checker interface {
	HoldsToken(ctx context.Context, collection, holder model.Address) (bool, error)
}

// StaticChecker answers from an in-process balance table. Used in development and tests.
type StaticChecker struct {
	mu       sync.RWMutex
	balances map[model.Address]uint64
	err      error
}

func NewStaticChecker(holders ...model.Address) *StaticChecker {
	c := &StaticChecker{balances: make(map[model.Address]uint64)}
	for _, h := range holders {
		c.balances[h] = 1
	}
	return c
}

// SetBalance sets how many units holder owns. The collection is not consulted.
func (c *StaticChecker) SetBalance(holder model.Address, units uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[holder] = units
}

// FailWith makes every subsequent call return err; nil restores normal answers.
func (c *StaticChecker) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *StaticChecker) HoldsToken(ctx context.Context, collection, holder model.Address) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return false, c.err
	}
	return c.balances[holder] > 0, nil
}
