package integration

import (
	"math/big"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-rico/rico"
)

// TestReferencePreset_matchesContractSuite is a regression guard for the
// fixture values: if they change the conformance runs stop matching the
// deployed contract.
func TestReferencePreset_matchesContractSuite(t *testing.T) {
	p := ReferencePreset(1000)

	assert.Equal(t, idx.Block(1000), p.StartBlock)
	assert.Equal(t, uint64(141900), p.AllocationBlockCount)
	assert.Equal(t, "2000000000000000", p.AllocationPrice.String())
	assert.Equal(t, uint64(12), p.StageCount)
	assert.Equal(t, uint64(193500), p.StageBlockCount)
	assert.Equal(t, "100000000000000", p.StagePriceIncrease.String())

	s, err := rico.BuildSchedule(p)
	require.NoError(t, err)
	assert.Equal(t, idx.Block(1000+141900+193501*12), s.EndBlock())
}

// TestDevPreset_overridesReference verifies the dev preset shortens every
// phase while keeping the reference prices.
func TestDevPreset_overridesReference(t *testing.T) {
	ref := ReferencePreset(100)
	dev := DevPreset(100)

	assert.Equal(t, uint64(100), dev.AllocationBlockCount)
	assert.Equal(t, uint64(100), dev.StageBlockCount)
	assert.Equal(t, ref.StageCount, dev.StageCount)
	assert.Equal(t, 0, ref.AllocationPrice.Cmp(dev.AllocationPrice))
	assert.Equal(t, 0, ref.StagePriceIncrease.Cmp(dev.StagePriceIncrease))
}

func TestShortPreset(t *testing.T) {
	p := ShortPreset(1)

	s, err := rico.BuildSchedule(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), s.Len())
	assert.Equal(t, idx.Block(1+6450+3*6451), s.EndBlock())
}

func TestGetPresetByName(t *testing.T) {
	for _, name := range []string{ReferencePresetName, DevPresetName, ShortPresetName} {
		t.Run(name, func(t *testing.T) {
			p, err := GetPresetByName(name, 42)
			require.NoError(t, err)
			assert.Equal(t, idx.Block(42), p.StartBlock)
			assert.NoError(t, p.Validate())
		})
	}

	_, err := GetPresetByName("mainnet", 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preset")
}

func TestOverridesApply(t *testing.T) {
	zero := uint64(0)
	stageBlocks := uint64(7)
	start := idx.Block(9)
	increase := big.NewInt(5)

	target := DevPreset(100)
	Overrides{
		StartBlock:           &start,
		AllocationBlockCount: &zero,
		StageCount:           &zero,
		StageBlockCount:      &stageBlocks,
		StagePriceIncrease:   increase,
	}.Apply(&target)

	assert.Equal(t, idx.Block(9), target.StartBlock)
	// explicit zeros replace the preset values
	assert.Equal(t, uint64(0), target.AllocationBlockCount)
	assert.Equal(t, uint64(0), target.StageCount)
	assert.Equal(t, uint64(7), target.StageBlockCount)
	// unset fields keep the preset values
	assert.Equal(t, "2000000000000000", target.AllocationPrice.String())

	// prices are copies
	increase.SetInt64(1)
	assert.Equal(t, "5", target.StagePriceIncrease.String())

	s, err := rico.BuildSchedule(target)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.Len())
	assert.Equal(t, idx.Block(9), s.EndBlock())
}

func TestOverridesApply_empty(t *testing.T) {
	target := ShortPreset(3)
	Overrides{}.Apply(&target)

	want := ShortPreset(3)
	assert.Equal(t, want.String(), target.String())
}
