// Package whitelist drives the sale contract's whitelist and checks the
// participant records it leaves behind.
package whitelist

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// ErrWhitelistState is returned when a participant's whitelisted flag does not
// match the requested mode after the whitelist call went through.
var ErrWhitelistState = errors.New("participant whitelist state mismatch")

// Controller is the part of the sale contract the whitelist controller
// account operates on.
type Controller interface {
	// Whitelist approves or rejects addrs in a single call.
	Whitelist(ctx context.Context, addrs []common.Address, approve bool) error

	// Whitelisted reports the whitelisted flag of the participant record.
	Whitelisted(ctx context.Context, addr common.Address) (bool, error)
}

// Whitelister approves and rejects participants and verifies each change.
type Whitelister struct {
	contract Controller
	log      logrus.FieldLogger
}

// New returns a Whitelister operating on contract. A nil logger falls back to
// the logrus standard logger.
func New(contract Controller, log logrus.FieldLogger) *Whitelister {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Whitelister{contract: contract, log: log}
}

// Approve whitelists addr and checks that the participant is whitelisted.
func (w *Whitelister) Approve(ctx context.Context, addr common.Address) error {
	return w.apply(ctx, []common.Address{addr}, true)
}

// Reject removes addr from the whitelist and checks that the participant is
// no longer whitelisted.
func (w *Whitelister) Reject(ctx context.Context, addr common.Address) error {
	return w.apply(ctx, []common.Address{addr}, false)
}

// ApproveAll whitelists addrs in one call, then checks every participant.
func (w *Whitelister) ApproveAll(ctx context.Context, addrs []common.Address) error {
	return w.apply(ctx, addrs, true)
}

// RejectAll is the batch counterpart of Reject.
func (w *Whitelister) RejectAll(ctx context.Context, addrs []common.Address) error {
	return w.apply(ctx, addrs, false)
}

func (w *Whitelister) apply(ctx context.Context, addrs []common.Address, approve bool) error {
	if len(addrs) == 0 {
		return nil
	}
	if err := w.contract.Whitelist(ctx, addrs, approve); err != nil {
		return fmt.Errorf("whitelist(%d addresses, %t): %w", len(addrs), approve, err)
	}
	for _, addr := range addrs {
		got, err := w.contract.Whitelisted(ctx, addr)
		if err != nil {
			return fmt.Errorf("participants(%s): %w", addr.Hex(), err)
		}
		if got != approve {
			w.log.WithFields(logrus.Fields{"address": addr.Hex(), "want": approve, "got": got}).Warn("Whitelist change not applied")
			return fmt.Errorf("%w: %s whitelisted=%t, want %t", ErrWhitelistState, addr.Hex(), got, approve)
		}
	}
	w.log.WithFields(logrus.Fields{"count": len(addrs), "approve": approve}).Debug("Whitelist updated")
	return nil
}
