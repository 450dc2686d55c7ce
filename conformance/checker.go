package conformance

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-rico/rico"
)

// Checker verifies a sale contract against a reference schedule. Calls reach
// the contract sequentially; a Checker holds no state between calls.
type Checker struct {
	schedule *rico.Schedule
	log      logrus.FieldLogger
}

// NewChecker returns a checker for schedule. A nil logger falls back to the
// logrus standard logger.
func NewChecker(schedule *rico.Schedule, log logrus.FieldLogger) *Checker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Checker{
		schedule: schedule,
		log:      log.WithField("schedule", schedule.Fingerprint().TerminalString()),
	}
}

// report accumulates mismatches for one verification run.
type report struct {
	log        logrus.FieldLogger
	mismatches []Mismatch
}

func (r *report) expect(field string, want, got interface{}) {
	w, g := fmt.Sprint(want), fmt.Sprint(got)
	if w == g {
		return
	}
	r.log.WithFields(logrus.Fields{"field": field, "want": w, "got": g}).Warn("Contract value mismatch")
	r.mismatches = append(r.mismatches, Mismatch{Field: field, Want: w, Got: g})
}

func (r *report) err() error {
	if len(r.mismatches) == 0 {
		return nil
	}
	return &MismatchError{Mismatches: r.mismatches}
}

// VerifySettings compares the stored stage settings: the stage count, the
// range and price of every stage, and the sale end block.
func (c *Checker) VerifySettings(ctx context.Context, contract StageContract) error {
	r := &report{log: c.log}
	if err := c.verifySettings(ctx, contract, r); err != nil {
		return err
	}
	if err := r.err(); err != nil {
		return err
	}
	c.log.WithField("stages", c.schedule.Len()).Debug("Contract settings match schedule")
	return nil
}

func (c *Checker) verifySettings(ctx context.Context, contract StageContract, r *report) error {
	count, err := contract.ContractStageCount(ctx)
	if err != nil {
		return fmt.Errorf("ContractStageCount: %w", err)
	}
	r.expect("stage_count", c.schedule.Len(), count)

	for _, want := range c.schedule.Stages() {
		id, err := rico.StageRef{Index: want.Index}.ContractID()
		if err != nil {
			return err
		}
		got, err := contract.StageByNumber(ctx, id)
		if err != nil {
			return fmt.Errorf("StageByNumber(%d): %w", id, err)
		}
		prefix := fmt.Sprintf("stage[%d].", want.Index)
		r.expect(prefix+"start_block", want.StartBlock, got.StartBlock)
		r.expect(prefix+"end_block", want.EndBlock, got.EndBlock)
		r.expect(prefix+"token_price", want.TokenPrice, got.TokenPrice)
	}

	end, err := contract.EndBlock(ctx)
	if err != nil {
		return fmt.Errorf("EndBlock: %w", err)
	}
	r.expect("end_block", c.schedule.EndBlock(), end)
	return nil
}

// VerifyState compares the contract's lifecycle flags and configured
// addresses with want.
func (c *Checker) VerifyState(ctx context.Context, contract StateContract, want ContractState) error {
	got, err := contract.ContractState(ctx)
	if err != nil {
		return fmt.Errorf("contract state: %w", err)
	}
	r := &report{log: c.log}
	r.expect("initialized", want.Initialized, got.Initialized)
	r.expect("running", want.Running, got.Running)
	r.expect("frozen", want.Frozen, got.Frozen)
	r.expect("ended", want.Ended, got.Ended)
	r.expect("token_tracker", want.TokenTracker.Hex(), got.TokenTracker.Hex())
	r.expect("whitelist_controller", want.WhitelistController.Hex(), got.WhitelistController.Hex())
	if err := r.err(); err != nil {
		return err
	}
	c.log.Debug("Contract state matches")
	return nil
}

// VerifyAt compares getCurrentStage() and getCurrentPrice() with the
// schedule's answer for block, which must be the block the contract currently
// sees.
func (c *Checker) VerifyAt(ctx context.Context, contract StageContract, block idx.Block) error {
	r := &report{log: c.log.WithField("block", block)}
	if err := c.verifyAt(ctx, contract, block, r); err != nil {
		return err
	}
	return r.err()
}

func (c *Checker) verifyAt(ctx context.Context, contract StageContract, block idx.Block, r *report) error {
	ref, err := c.schedule.StageAt(block)
	if err != nil {
		return err
	}
	wantID, err := ref.ContractID()
	if err != nil {
		return err
	}
	wantPrice, _ := c.schedule.PriceAt(block)

	gotID, err := contract.CurrentStage(ctx)
	if err != nil {
		return fmt.Errorf("getCurrentStage at block %d: %w", block, err)
	}
	gotPrice, err := contract.CurrentPrice(ctx)
	if err != nil {
		return fmt.Errorf("getCurrentPrice at block %d: %w", block, err)
	}
	if gotPrice == nil {
		gotPrice = new(big.Int)
	}

	r.expect(fmt.Sprintf("current_stage@%d", block), wantID, gotID)
	r.expect(fmt.Sprintf("current_price@%d", block), wantPrice, gotPrice)
	return nil
}

// VerifyTimeline moves the contract to the first and last block of every
// stage and to the first block after the sale, verifying the current stage
// and price at each position. Settings are verified first.
func (c *Checker) VerifyTimeline(ctx context.Context, contract StageContract, jumper BlockJumper) error {
	r := &report{log: c.log}
	if err := c.verifySettings(ctx, contract, r); err != nil {
		return err
	}

	blocks := make([]idx.Block, 0, 2*c.schedule.Len()+1)
	for i := uint64(0); i < c.schedule.Len(); i++ {
		start, _ := c.schedule.BoundaryBlock(i, false)
		end, _ := c.schedule.BoundaryBlock(i, true)
		blocks = append(blocks, start, end)
	}
	blocks = append(blocks, c.schedule.EndBlock()+1)

	for _, block := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := jumper.JumpToBlockNumber(ctx, block); err != nil {
			return fmt.Errorf("jumpToBlockNumber(%d): %w", block, err)
		}
		if err := c.verifyAt(ctx, contract, block, r); err != nil {
			return err
		}
	}

	if err := r.err(); err != nil {
		return err
	}
	c.log.WithField("positions", len(blocks)).Info("Contract timeline matches schedule")
	return nil
}
