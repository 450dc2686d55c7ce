package conformance

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SaleABI is the subset of the ReversibleICO mock contract ABI the checker and
// the whitelist helper use.
const SaleABI = `[
	{"type":"function","name":"ContractStageCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"StageByNumber","stateMutability":"view","inputs":[{"name":"","type":"uint8"}],"outputs":[{"name":"start_block","type":"uint256"},{"name":"end_block","type":"uint256"},{"name":"token_price","type":"uint256"}]},
	{"type":"function","name":"EndBlock","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getCurrentStage","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"getCurrentPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getCurrentBlockNumber","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"jumpToBlockNumber","stateMutability":"nonpayable","inputs":[{"name":"_blockNumber","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"whitelist","stateMutability":"nonpayable","inputs":[{"name":"_addresses","type":"address[]"},{"name":"_approve","type":"bool"}],"outputs":[]},
	{"type":"function","name":"participants","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"whitelisted","type":"bool"}]},
	{"type":"function","name":"initialized","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"running","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"frozen","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"ended","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"TokenTrackerAddress","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"whitelistControllerAddress","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

var (
	_ StageContract = (*BoundContract)(nil)
	_ StateContract = (*BoundContract)(nil)
	_ BlockJumper   = (*BoundContract)(nil)
)

// ErrReadOnly is returned by transacting methods of a BoundContract created
// without a transactor.
var ErrReadOnly = errors.New("contract binding is read-only")

// BoundContract reaches a deployed sale contract through go-ethereum's
// binding layer. It implements StageContract and StateContract, and
// BlockJumper once a transactor is attached.
type BoundContract struct {
	address  common.Address
	abi      abi.ABI
	caller   bind.ContractCaller
	contract *bind.BoundContract

	opts     *bind.TransactOpts
	receipts bind.DeployBackend
}

// NewBoundContract binds the sale contract at address for read-only calls.
func NewBoundContract(address common.Address, caller bind.ContractCaller) (*BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(SaleABI))
	if err != nil {
		return nil, err
	}
	return &BoundContract{
		address:  address,
		abi:      parsed,
		caller:   caller,
		contract: bind.NewBoundContract(address, parsed, caller, nil, nil),
	}, nil
}

// WithTransactor returns a binding that can also send transactions signed by
// opts. Transactions are awaited through receipts.
func (c *BoundContract) WithTransactor(transactor bind.ContractTransactor, receipts bind.DeployBackend, opts *bind.TransactOpts) *BoundContract {
	return &BoundContract{
		address:  c.address,
		abi:      c.abi,
		caller:   c.caller,
		contract: bind.NewBoundContract(c.address, c.abi, c.caller, transactor, nil),
		opts:     opts,
		receipts: receipts,
	}
}

// Address returns the bound contract address.
func (c *BoundContract) Address() common.Address {
	return c.address
}

func (c *BoundContract) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BoundContract) transact(ctx context.Context, method string, args ...interface{}) error {
	if c.opts == nil {
		return ErrReadOnly
	}
	opts := *c.opts
	opts.Context = ctx
	tx, err := c.contract.Transact(&opts, method, args...)
	if err != nil {
		return err
	}
	receipt, err := bind.WaitMined(ctx, c.receipts, tx)
	if err != nil {
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%s: transaction %s reverted", method, tx.Hash().Hex())
	}
	return nil
}

func toBlock(v interface{}) (idx.Block, error) {
	n := *abi.ConvertType(v, new(*big.Int)).(**big.Int)
	if n == nil || !n.IsUint64() {
		return 0, fmt.Errorf("block number %v out of range", n)
	}
	return idx.Block(n.Uint64()), nil
}

// ContractStageCount implements StageContract.
func (c *BoundContract) ContractStageCount(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, "ContractStageCount")
	if err != nil {
		return 0, err
	}
	return uint64(*abi.ConvertType(out[0], new(uint8)).(*uint8)), nil
}

// StageByNumber implements StageContract.
func (c *BoundContract) StageByNumber(ctx context.Context, id uint8) (ContractStage, error) {
	out, err := c.call(ctx, "StageByNumber", id)
	if err != nil {
		return ContractStage{}, err
	}
	start, err := toBlock(out[0])
	if err != nil {
		return ContractStage{}, err
	}
	end, err := toBlock(out[1])
	if err != nil {
		return ContractStage{}, err
	}
	return ContractStage{
		StartBlock: start,
		EndBlock:   end,
		TokenPrice: *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
	}, nil
}

// EndBlock implements StageContract.
func (c *BoundContract) EndBlock(ctx context.Context) (idx.Block, error) {
	out, err := c.call(ctx, "EndBlock")
	if err != nil {
		return 0, err
	}
	return toBlock(out[0])
}

// CurrentStage implements StageContract.
func (c *BoundContract) CurrentStage(ctx context.Context) (uint8, error) {
	out, err := c.call(ctx, "getCurrentStage")
	if err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// CurrentPrice implements StageContract.
func (c *BoundContract) CurrentPrice(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, "getCurrentPrice")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (c *BoundContract) callBool(ctx context.Context, method string, args ...interface{}) (bool, error) {
	out, err := c.call(ctx, method, args...)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (c *BoundContract) callAddress(ctx context.Context, method string) (common.Address, error) {
	out, err := c.call(ctx, method)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// ContractState implements StateContract.
func (c *BoundContract) ContractState(ctx context.Context) (ContractState, error) {
	var (
		state ContractState
		err   error
	)
	flags := []struct {
		method string
		dst    *bool
	}{
		{"initialized", &state.Initialized},
		{"running", &state.Running},
		{"frozen", &state.Frozen},
		{"ended", &state.Ended},
	}
	for _, f := range flags {
		if *f.dst, err = c.callBool(ctx, f.method); err != nil {
			return state, fmt.Errorf("%s: %w", f.method, err)
		}
	}
	if state.TokenTracker, err = c.callAddress(ctx, "TokenTrackerAddress"); err != nil {
		return state, fmt.Errorf("TokenTrackerAddress: %w", err)
	}
	if state.WhitelistController, err = c.callAddress(ctx, "whitelistControllerAddress"); err != nil {
		return state, fmt.Errorf("whitelistControllerAddress: %w", err)
	}
	return state, nil
}

// CurrentBlock returns the block number the mock contract currently sees.
func (c *BoundContract) CurrentBlock(ctx context.Context) (idx.Block, error) {
	out, err := c.call(ctx, "getCurrentBlockNumber")
	if err != nil {
		return 0, err
	}
	return toBlock(out[0])
}

// JumpToBlockNumber implements BlockJumper.
func (c *BoundContract) JumpToBlockNumber(ctx context.Context, block idx.Block) error {
	return c.transact(ctx, "jumpToBlockNumber", new(big.Int).SetUint64(uint64(block)))
}

// Whitelist approves or rejects addresses in one transaction.
func (c *BoundContract) Whitelist(ctx context.Context, addrs []common.Address, approve bool) error {
	return c.transact(ctx, "whitelist", addrs, approve)
}

// Whitelisted reads the participant record of addr.
func (c *BoundContract) Whitelisted(ctx context.Context, addr common.Address) (bool, error) {
	return c.callBool(ctx, "participants", addr)
}
