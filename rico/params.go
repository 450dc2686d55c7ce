// Package rico models the stage and price timeline of a Reversible ICO sale.
//
// This package provides:
//   - SaleParameters, the immutable settings a sale contract is initialised with
//   - Schedule, the ordered list of stages derived from those settings
//   - Block lookups resolving a block number to a stage index and token price
//
// A sale starts with an allocation phase (stage 0) at a fixed price, followed by
// StageCount distribution stages of equal length whose price grows by a fixed
// increment per stage. The schedule is a reference oracle: tests compare a
// deployed contract's view methods against it.

package rico

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common/math"
)

const (
	// BlocksPerDay is the block rate the reference sale is planned with
	// (roughly one block every 13.4 seconds).
	BlocksPerDay uint64 = 6450

	// MaxStageCount bounds the number of distribution stages a schedule
	// materialises.
	MaxStageCount uint64 = 1 << 20

	// PostSaleStageID is the value the sale contract reports from
	// getCurrentStage() once the last stage has ended.
	PostSaleStageID uint8 = 255
)

// SaleParameters describes the settings passed to the sale contract's
// addSettings call. Values are never modified once a Schedule is built from
// them.
type SaleParameters struct {
	// StartBlock is the first block of the allocation phase
	StartBlock idx.Block

	// AllocationBlockCount is the length of the allocation phase in blocks.
	// The allocation stage ends at StartBlock + AllocationBlockCount.
	AllocationBlockCount uint64

	// AllocationPrice is the token price (in wei) during the allocation phase
	AllocationPrice *big.Int

	// StageCount is the number of distribution stages after allocation
	StageCount uint64

	// StageBlockCount is the length of each distribution stage in blocks
	StageBlockCount uint64

	// StagePriceIncrease is added to AllocationPrice once per stage index
	StagePriceIncrease *big.Int
}

// Validate reports whether the parameters describe a schedule that can be
// built. The returned error wraps ErrInvalidParameters.
func (p SaleParameters) Validate() error {
	if p.AllocationPrice == nil {
		return invalidParam("AllocationPrice", "missing")
	}
	if p.AllocationPrice.Sign() < 0 {
		return invalidParam("AllocationPrice", "negative value %s", p.AllocationPrice)
	}
	if p.StagePriceIncrease == nil {
		return invalidParam("StagePriceIncrease", "missing")
	}
	if p.StagePriceIncrease.Sign() < 0 {
		return invalidParam("StagePriceIncrease", "negative value %s", p.StagePriceIncrease)
	}
	if p.StageCount > MaxStageCount {
		return invalidParam("StageCount", "%d exceeds limit %d", p.StageCount, MaxStageCount)
	}
	if _, err := p.endBlock(); err != nil {
		return err
	}
	return nil
}

// AllocationEndBlock returns the last block of the allocation phase.
func (p SaleParameters) AllocationEndBlock() (idx.Block, error) {
	end, overflow := math.SafeAdd(uint64(p.StartBlock), p.AllocationBlockCount)
	if overflow {
		return 0, invalidParam("AllocationBlockCount", "allocation end overflows")
	}
	return idx.Block(end), nil
}

// endBlock computes AllocationEndBlock + (StageBlockCount + 1) * StageCount,
// the block the contract reports from EndBlock().
func (p SaleParameters) endBlock() (idx.Block, error) {
	allocEnd, err := p.AllocationEndBlock()
	if err != nil {
		return 0, err
	}
	step, overflow := math.SafeAdd(p.StageBlockCount, 1)
	if overflow {
		return 0, invalidParam("StageBlockCount", "stage length overflows")
	}
	span, overflow := math.SafeMul(step, p.StageCount)
	if overflow {
		return 0, invalidParam("StageCount", "distribution span overflows")
	}
	end, overflow := math.SafeAdd(uint64(allocEnd), span)
	if overflow {
		return 0, invalidParam("StageCount", "sale end overflows")
	}
	// The block after EndBlock must exist for the post-sale state.
	if end == math.MaxUint64 {
		return 0, invalidParam("StageCount", "sale ends at the last representable block")
	}
	return idx.Block(end), nil
}

// Copy creates a deep copy of the parameters so the price fields are not
// shared with the caller.
func (p SaleParameters) Copy() SaleParameters {
	cp := p
	if p.AllocationPrice != nil {
		cp.AllocationPrice = new(big.Int).Set(p.AllocationPrice)
	}
	if p.StagePriceIncrease != nil {
		cp.StagePriceIncrease = new(big.Int).Set(p.StagePriceIncrease)
	}
	return cp
}

// String returns a JSON representation of the parameters for logging.
func (p SaleParameters) String() string {
	b, _ := json.Marshal(&p)
	return string(b)
}

func invalidParam(field, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameters, field, fmt.Sprintf(format, args...))
}
