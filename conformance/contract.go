// Package conformance compares a deployed Reversible ICO sale contract with
// the reference schedule computed by package rico.
//
// The contract is reached through small interfaces (StageContract,
// StateContract, BlockJumper) so tests can plug in an in-memory double, while BoundContract
// adapts a live deployment through go-ethereum's binding layer.
package conformance

import (
	"context"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
)

// ContractStage is a stage as reported by the contract's StageByNumber view.
type ContractStage struct {
	StartBlock idx.Block
	EndBlock   idx.Block
	TokenPrice *big.Int
}

// StageContract is the read surface of the sale contract that carries the
// stage timeline.
type StageContract interface {
	// ContractStageCount returns the number of stages including allocation.
	ContractStageCount(ctx context.Context) (uint64, error)

	// StageByNumber returns the stored settings of stage id.
	StageByNumber(ctx context.Context, id uint8) (ContractStage, error)

	// EndBlock returns the last block of the sale.
	EndBlock(ctx context.Context) (idx.Block, error)

	// CurrentStage returns getCurrentStage(), 255 once the sale is over.
	CurrentStage(ctx context.Context) (uint8, error)

	// CurrentPrice returns getCurrentPrice(), 0 once the sale is over.
	CurrentPrice(ctx context.Context) (*big.Int, error)
}

// BlockJumper moves the block number a mock sale contract sees. Only the
// mock deployment used for testing exposes it.
type BlockJumper interface {
	JumpToBlockNumber(ctx context.Context, block idx.Block) error
}

// ContractState is the lifecycle record of a sale contract.
type ContractState struct {
	Initialized bool
	Running     bool
	Frozen      bool
	Ended       bool

	TokenTracker        common.Address
	WhitelistController common.Address
}

// InitializedState is the state a sale contract is in right after
// addSettings: initialized, not yet running, frozen or ended, and bound to
// the given token and whitelist controller.
func InitializedState(token, controller common.Address) ContractState {
	return ContractState{
		Initialized:         true,
		TokenTracker:        token,
		WhitelistController: controller,
	}
}

// StateContract exposes the lifecycle views of the sale contract.
type StateContract interface {
	ContractState(ctx context.Context) (ContractState, error)
}
