package integration

import (
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/params"

	"github.com/rony4d/go-rico/rico"
)

// Package integration provides named sale presets. A preset bundles the
// allocation and distribution settings of a sale into a profile (reference,
// dev, short) so a test run or the CLI can build a schedule without spelling
// out every parameter.
//
// Usage:
//   p := integration.ReferencePreset(start) // the contract suite fixture
//   p := integration.DevPreset(start)       // 100-block stages for quick runs
//
// Every preset is anchored at a caller supplied start block because the
// contract suite schedules the sale relative to the node's current block.

// Preset names accepted by GetPresetByName.
const (
	ReferencePresetName = "reference"
	DevPresetName       = "dev"
	ShortPresetName     = "short"
)

// ReferencePreset returns the parameters the contract suite initialises the
// sale with: 22 days of allocation at 0.002 ether followed by 12 distribution
// stages of 30 days, each 0.0001 ether more expensive than the previous one.
func ReferencePreset(start idx.Block) rico.SaleParameters {
	return rico.SaleParameters{
		StartBlock:           start,
		AllocationBlockCount: 22 * rico.BlocksPerDay, // 22 days allocation
		AllocationPrice:      big.NewInt(2 * params.Ether / 1000),
		StageCount:           12,                     // 12 x 30 day periods
		StageBlockCount:      30 * rico.BlocksPerDay, // 30 days per stage
		StagePriceIncrease:   big.NewInt(params.Ether / 10000),
	}
}

// DevPreset keeps the reference prices but shrinks allocation and every stage
// to 100 blocks, so a local node can walk the whole sale in minutes.
func DevPreset(start idx.Block) rico.SaleParameters {
	cfg := ReferencePreset(start)
	cfg.AllocationBlockCount = 100
	cfg.StageBlockCount = 100
	return cfg
}

// ShortPreset is a one day allocation followed by three one day stages.
func ShortPreset(start idx.Block) rico.SaleParameters {
	cfg := ReferencePreset(start)
	cfg.AllocationBlockCount = rico.BlocksPerDay
	cfg.StageCount = 3
	cfg.StageBlockCount = rico.BlocksPerDay
	return cfg
}

// GetPresetByName looks up a preset by its identifier and anchors it at start.
//
// Example:
//
//	p, err := integration.GetPresetByName("dev", 100)
//	if err != nil {
//	    log.Fatal(err)
//	}
func GetPresetByName(name string, start idx.Block) (rico.SaleParameters, error) {
	switch name {
	case ReferencePresetName:
		return ReferencePreset(start), nil
	case DevPresetName:
		return DevPreset(start), nil
	case ShortPresetName:
		return ShortPreset(start), nil
	default:
		return rico.SaleParameters{}, fmt.Errorf("unknown preset: %q (valid: %s, %s, %s)",
			name, ReferencePresetName, DevPresetName, ShortPresetName)
	}
}

// Overrides holds explicitly chosen sale values. A nil field keeps the
// value of the parameters it is applied to, so an explicit zero is honoured.
type Overrides struct {
	StartBlock           *idx.Block
	AllocationBlockCount *uint64
	AllocationPrice      *big.Int
	StageCount           *uint64
	StageBlockCount      *uint64
	StagePriceIncrease   *big.Int
}

// Apply writes the set fields of o into target. Prices are copied, never
// shared.
func (o Overrides) Apply(target *rico.SaleParameters) {
	if o.StartBlock != nil {
		target.StartBlock = *o.StartBlock
	}
	if o.AllocationBlockCount != nil {
		target.AllocationBlockCount = *o.AllocationBlockCount
	}
	if o.AllocationPrice != nil {
		target.AllocationPrice = new(big.Int).Set(o.AllocationPrice)
	}
	if o.StageCount != nil {
		target.StageCount = *o.StageCount
	}
	if o.StageBlockCount != nil {
		target.StageBlockCount = *o.StageBlockCount
	}
	if o.StagePriceIncrease != nil {
		target.StagePriceIncrease = new(big.Int).Set(o.StagePriceIncrease)
	}
}
