package launcher

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-rico/conformance"
	"github.com/rony4d/go-rico/integration"
	"github.com/rony4d/go-rico/rico"
	"github.com/rony4d/go-rico/whitelist"
)

const testContract = "0x5a1e000000000000000000000000000000000001"

var (
	testToken      = common.HexToAddress("0x70ce000000000000000000000000000000000777")
	testController = common.HexToAddress("0x000000000000000000000000000000000000c0de")
)

// scheduledSale serves the contract views straight from a schedule.
type scheduledSale struct {
	schedule *rico.Schedule
	block    idx.Block
	state    conformance.ContractState
	jumps    int
}

func newScheduledSale(t *testing.T, p rico.SaleParameters) *scheduledSale {
	t.Helper()
	s, err := rico.BuildSchedule(p)
	require.NoError(t, err)
	return &scheduledSale{
		schedule: s,
		block:    s.StartBlock(),
		state:    conformance.InitializedState(testToken, testController),
	}
}

func (f *scheduledSale) Address() common.Address {
	return common.HexToAddress(testContract)
}

func (f *scheduledSale) ContractStageCount(ctx context.Context) (uint64, error) {
	return f.schedule.Len(), nil
}

func (f *scheduledSale) StageByNumber(ctx context.Context, id uint8) (conformance.ContractStage, error) {
	s, err := f.schedule.Stage(uint64(id))
	if err != nil {
		return conformance.ContractStage{TokenPrice: new(big.Int)}, nil
	}
	return conformance.ContractStage{StartBlock: s.StartBlock, EndBlock: s.EndBlock, TokenPrice: s.TokenPrice}, nil
}

func (f *scheduledSale) EndBlock(ctx context.Context) (idx.Block, error) {
	return f.schedule.EndBlock(), nil
}

func (f *scheduledSale) CurrentStage(ctx context.Context) (uint8, error) {
	ref, err := f.schedule.StageAt(f.block)
	if err != nil {
		return 0, nil
	}
	return ref.ContractID()
}

func (f *scheduledSale) CurrentPrice(ctx context.Context) (*big.Int, error) {
	price, err := f.schedule.PriceAt(f.block)
	if err != nil {
		return new(big.Int), nil
	}
	return price, nil
}

func (f *scheduledSale) CurrentBlock(ctx context.Context) (idx.Block, error) {
	return f.block, nil
}

func (f *scheduledSale) ContractState(ctx context.Context) (conformance.ContractState, error) {
	return f.state, nil
}

func (f *scheduledSale) JumpToBlockNumber(ctx context.Context, block idx.Block) error {
	f.jumps++
	f.block = block
	return nil
}

func newTestRuntime(t *testing.T, p rico.SaleParameters) (*runtime, *bytes.Buffer) {
	t.Helper()
	s, err := rico.BuildSchedule(p)
	require.NoError(t, err)
	log, err := SetupLogging(LoggingConfig{Verbosity: 3}, &bytes.Buffer{})
	require.NoError(t, err)
	var out bytes.Buffer
	return &runtime{log: log, schedule: s, out: &out}, &out
}

func TestVerifyContract(t *testing.T) {
	p := integration.DevPreset(100)
	ctx := context.Background()

	t.Run("current block", func(t *testing.T) {
		r, out := newTestRuntime(t, p)
		sale := newScheduledSale(t, p)
		sale.block = 250
		require.NoError(t, verifyContract(ctx, r, sale, verifyOptions{}))
		assert.Contains(t, out.String(), "at block 250\n")
		assert.Equal(t, 0, sale.jumps)
	})

	t.Run("pre-sale", func(t *testing.T) {
		r, out := newTestRuntime(t, p)
		sale := newScheduledSale(t, p)
		sale.block = 1
		require.NoError(t, verifyContract(ctx, r, sale, verifyOptions{}))
		assert.Contains(t, out.String(), "at block 1\n")
	})

	t.Run("lifecycle", func(t *testing.T) {
		r, _ := newTestRuntime(t, p)
		sale := newScheduledSale(t, p)
		want := conformance.InitializedState(testToken, testController)
		require.NoError(t, verifyContract(ctx, r, sale, verifyOptions{state: &want}))

		sale.state.Frozen = true
		err := verifyContract(ctx, r, sale, verifyOptions{state: &want})
		var mismatch *conformance.MismatchError
		require.True(t, errors.As(err, &mismatch), "got %v", err)
		assert.True(t, mismatch.Has("frozen"))
	})

	t.Run("timeline", func(t *testing.T) {
		r, out := newTestRuntime(t, p)
		sale := newScheduledSale(t, p)
		require.NoError(t, verifyContract(ctx, r, sale, verifyOptions{timeline: true}))
		assert.Contains(t, out.String(), "at every stage boundary\n")
		assert.Equal(t, int(2*r.schedule.Len()+1), sale.jumps)
		assert.Equal(t, r.schedule.EndBlock()+1, sale.block)
	})
}

func TestVerifyCommand_flags(t *testing.T) {
	_, _, err := run(t, "verify", "--contract", testContract, "--timeline")
	assert.True(t, errors.Is(err, errNoKeyfile))

	_, _, err = run(t, "verify", "--contract", testContract, "--token", testToken.Hex())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --controller address")

	_, _, err = run(t, "verify", "--contract", testContract, "--timeline", "--keyfile", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load key")

	// a readable key gets the command as far as dialing the node
	_, _, err = run(t, "verify", "--contract", testContract, "--timeline", "--keyfile", writeKeyFile(t), "--rpc", "bogus://node")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial bogus://node")
}

func writeKeyFile(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, crypto.SaveECDSA(path, key))
	return path
}

func TestNewTransactOpts(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	ctx := context.Background()

	opts, err := newTransactOpts(ctx, key, big.NewInt(4002))
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), opts.From)
	assert.Equal(t, ctx, opts.Context)

	_, err = newTransactOpts(ctx, key, nil)
	assert.Error(t, err)
}

func TestWhitelistCommand_flags(t *testing.T) {
	_, _, err := run(t, "whitelist", "--contract", testContract)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no participant addresses")

	_, _, err = run(t, "whitelist", "--contract", testContract, testToken.Hex(), "0xnope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid participant address "0xnope"`)

	_, _, err = run(t, "whitelist", "--contract", testContract, testToken.Hex())
	assert.True(t, errors.Is(err, errNoKeyfile))

	_, _, err = run(t, "whitelist", "--contract", "nope", testToken.Hex())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --contract address")
}

// memberList records whitelist calls.
type memberList struct {
	members map[common.Address]bool
	sticky  map[common.Address]bool
	calls   int
}

func (m *memberList) Whitelist(ctx context.Context, addrs []common.Address, approve bool) error {
	m.calls++
	for _, addr := range addrs {
		if !m.sticky[addr] {
			m.members[addr] = approve
		}
	}
	return nil
}

func (m *memberList) Whitelisted(ctx context.Context, addr common.Address) (bool, error) {
	return m.members[addr], nil
}

func TestUpdateWhitelist(t *testing.T) {
	r, out := newTestRuntime(t, integration.DevPreset(100))
	list := &memberList{members: map[common.Address]bool{}, sticky: map[common.Address]bool{}}
	addrs := []common.Address{testToken, testController}
	ctx := context.Background()

	require.NoError(t, updateWhitelist(ctx, r, list, addrs, true))
	assert.Equal(t, "Whitelisted 2 participants\n", out.String())
	assert.True(t, list.members[testController])
	assert.Equal(t, 1, list.calls)

	out.Reset()
	list.sticky[testToken] = true
	err := updateWhitelist(ctx, r, list, addrs, false)
	assert.True(t, errors.Is(err, whitelist.ErrWhitelistState))
	assert.Empty(t, out.String())
	assert.False(t, list.members[testController])
}

var _ saleContract = (*conformance.BoundContract)(nil)
