package rico

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strconv"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Stage is one fixed-price period of the sale. Index 0 is the allocation
// phase, indexes 1..StageCount are the distribution stages. Both block bounds
// are inclusive.
type Stage struct {
	Index      uint64    `json:"index"`
	StartBlock idx.Block `json:"start_block"`
	EndBlock   idx.Block `json:"end_block"`
	TokenPrice *big.Int  `json:"token_price"`
}

// Copy returns a deep copy of the stage.
func (s Stage) Copy() Stage {
	cp := s
	cp.TokenPrice = new(big.Int).Set(s.TokenPrice)
	return cp
}

// Contains reports whether block lies within the stage's inclusive range.
func (s Stage) Contains(block idx.Block) bool {
	return s.StartBlock <= block && block <= s.EndBlock
}

// Blocks returns the number of blocks the stage spans.
func (s Stage) Blocks() uint64 {
	return uint64(s.EndBlock-s.StartBlock) + 1
}

// StageRef is the result of a block lookup. When Ended is set the block lies
// after the last stage and Index carries no meaning.
type StageRef struct {
	Index uint64
	Ended bool
}

// ContractID encodes the reference the way the sale contract's
// getCurrentStage() does: the stage index, or PostSaleStageID once the sale
// has ended.
func (r StageRef) ContractID() (uint8, error) {
	if r.Ended {
		return PostSaleStageID, nil
	}
	if r.Index >= uint64(PostSaleStageID) {
		return 0, fmt.Errorf("%w: index %d", ErrStageIDOverflow, r.Index)
	}
	return uint8(r.Index), nil
}

func (r StageRef) String() string {
	if r.Ended {
		return "post-sale"
	}
	return strconv.FormatUint(r.Index, 10)
}

// Schedule is the immutable stage timeline derived from SaleParameters.
// It is safe for concurrent use.
type Schedule struct {
	params SaleParameters
	stages []Stage
}

// BuildSchedule derives the stage timeline from the sale parameters.
//
// Stage 0 spans [StartBlock, StartBlock+AllocationBlockCount]. Every following
// stage starts one block after the previous one ends and ends
// StageBlockCount+1 blocks after the previous end, matching the contract's
// addSettings loop.
func BuildSchedule(params SaleParameters) (*Schedule, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params = params.Copy()

	allocEnd, _ := params.AllocationEndBlock()
	stages := make([]Stage, 0, params.StageCount+1)
	stages = append(stages, Stage{
		Index:      0,
		StartBlock: params.StartBlock,
		EndBlock:   allocEnd,
		TokenPrice: new(big.Int).Set(params.AllocationPrice),
	})

	lastEnd := allocEnd
	for i := uint64(1); i <= params.StageCount; i++ {
		increase := new(big.Int).Mul(params.StagePriceIncrease, new(big.Int).SetUint64(i))
		stage := Stage{
			Index:      i,
			StartBlock: lastEnd + 1,
			EndBlock:   lastEnd + idx.Block(params.StageBlockCount) + 1,
			TokenPrice: increase.Add(increase, params.AllocationPrice),
		}
		stages = append(stages, stage)
		lastEnd = stage.EndBlock
	}
	return &Schedule{params: params, stages: stages}, nil
}

// Params returns a copy of the parameters the schedule was built from.
func (s *Schedule) Params() SaleParameters {
	return s.params.Copy()
}

// Len returns the number of stages including the allocation phase, i.e.
// StageCount+1. This is what the contract reports from ContractStageCount().
func (s *Schedule) Len() uint64 {
	return uint64(len(s.stages))
}

// Stage returns a copy of the stage with the given index.
func (s *Schedule) Stage(i uint64) (Stage, error) {
	if i >= s.Len() {
		return Stage{}, fmt.Errorf("%w: %d (schedule has %d stages)", ErrUnknownStage, i, s.Len())
	}
	return s.stages[i].Copy(), nil
}

// Stages returns copies of all stages in ascending order.
func (s *Schedule) Stages() []Stage {
	out := make([]Stage, len(s.stages))
	for i, stage := range s.stages {
		out[i] = stage.Copy()
	}
	return out
}

// StartBlock returns the first block of the allocation phase.
func (s *Schedule) StartBlock() idx.Block {
	return s.stages[0].StartBlock
}

// AllocationEndBlock returns the last block of the allocation phase.
func (s *Schedule) AllocationEndBlock() idx.Block {
	return s.stages[0].EndBlock
}

// EndBlock returns the last block of the last stage.
func (s *Schedule) EndBlock() idx.Block {
	return s.stages[len(s.stages)-1].EndBlock
}

// BoundaryBlock returns the first block of stage i, or its last block when
// end is set.
func (s *Schedule) BoundaryBlock(i uint64, end bool) (idx.Block, error) {
	if i >= s.Len() {
		return 0, fmt.Errorf("%w: %d (schedule has %d stages)", ErrUnknownStage, i, s.Len())
	}
	if end {
		return s.stages[i].EndBlock, nil
	}
	return s.stages[i].StartBlock, nil
}

// StageAt resolves a block to the stage containing it. Both bounds of a stage
// belong to that stage only. Blocks after EndBlock yield a StageRef with Ended
// set; blocks before StartBlock fail with ErrPreSale.
func (s *Schedule) StageAt(block idx.Block) (StageRef, error) {
	if block < s.StartBlock() {
		return StageRef{}, fmt.Errorf("%w: block %d, sale starts at %d", ErrPreSale, block, s.StartBlock())
	}
	if block > s.EndBlock() {
		return StageRef{Ended: true}, nil
	}
	i := sort.Search(len(s.stages), func(i int) bool {
		return s.stages[i].EndBlock >= block
	})
	return StageRef{Index: s.stages[i].Index}, nil
}

// PriceAt returns the token price in effect at block. Once the sale has ended
// the price is zero.
func (s *Schedule) PriceAt(block idx.Block) (*big.Int, error) {
	ref, err := s.StageAt(block)
	if err != nil {
		return nil, err
	}
	if ref.Ended {
		return new(big.Int), nil
	}
	return new(big.Int).Set(s.stages[ref.Index].TokenPrice), nil
}

// scheduleRLP is the canonical encoding hashed by Fingerprint.
type scheduleRLP struct {
	Params SaleParameters
	Stages []Stage
}

// Bytes returns the RLP encoding of the parameters and stages.
func (s *Schedule) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(&scheduleRLP{Params: s.params, Stages: s.stages})
}

// Fingerprint returns the Keccak-256 hash of the RLP encoded parameters and
// stages. Two schedules built from equal parameters share a fingerprint.
func (s *Schedule) Fingerprint() common.Hash {
	enc, err := s.Bytes()
	if err != nil {
		// All fields are validated non-nil and non-negative before a
		// Schedule exists.
		panic(fmt.Sprintf("rico: schedule encoding failed: %v", err))
	}
	return crypto.Keccak256Hash(enc)
}

// MarshalJSON renders the schedule with its parameters and stages.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Params   SaleParameters `json:"params"`
		EndBlock idx.Block      `json:"end_block"`
		Stages   []Stage        `json:"stages"`
	}{s.params, s.EndBlock(), s.stages})
}
