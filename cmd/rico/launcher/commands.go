package launcher

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-rico/conformance"
	"github.com/rony4d/go-rico/flags"
	"github.com/rony4d/go-rico/rico"
	"github.com/rony4d/go-rico/whitelist"
)

var (
	scheduleCommand = cli.Command{
		Action:    scheduleAction,
		Name:      "schedule",
		Usage:     "Print every stage of the sale with its block range and price",
		ArgsUsage: " ",
		Flags:     flags.OutputFlags(),
	}
	stageCommand = cli.Command{
		Action:    stageAction,
		Name:      "stage",
		Usage:     "Resolve a block number to its sale stage",
		ArgsUsage: "<block>",
		Flags:     flags.OutputFlags(),
	}
	priceCommand = cli.Command{
		Action:    priceAction,
		Name:      "price",
		Usage:     "Print the token price in wei at a block number",
		ArgsUsage: "<block>",
		Flags:     flags.OutputFlags(),
	}
	verifyCommand = cli.Command{
		Action:    verifyAction,
		Name:      "verify",
		Usage:     "Compare a deployed sale contract against the computed schedule",
		ArgsUsage: " ",
		Flags:     flags.VerifyFlags(),
		Description: `
Reads the stage settings of the contract and compares them, and the stage and
price at the contract's current block, with the computed schedule.

With --token and --controller the lifecycle flags and bound addresses are
checked against a freshly initialized sale. With --timeline the contract is
moved through every stage boundary using jumpToBlockNumber, which only the
mock deployment exposes.`,
	}
	whitelistCommand = cli.Command{
		Action:    whitelistAction,
		Name:      "whitelist",
		Usage:     "Add participants to, or remove them from, the sale whitelist",
		ArgsUsage: "<address> [<address>...]",
		Flags:     flags.WhitelistFlags(),
	}
	dumpConfigCommand = cli.Command{
		Action:    dumpConfigAction,
		Name:      "dumpconfig",
		Usage:     "Show configuration values",
		ArgsUsage: " ",
	}
)

func outputFormat(ctx *cli.Context, r *runtime) (string, error) {
	format := r.cfg.Output.Format
	if ctx.IsSet("output") {
		format = ctx.String("output")
	}
	switch format {
	case "text", "json":
		return format, nil
	}
	return "", fmt.Errorf("unknown output format %q, want text or json", format)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func scheduleAction(ctx *cli.Context) error {
	r, err := runtimeOf(ctx)
	if err != nil {
		return err
	}
	format, err := outputFormat(ctx, r)
	if err != nil {
		return err
	}
	s := r.schedule
	r.log.WithField("stages", s.Len()).Debug("Printing schedule")

	if format == "json" {
		return writeJSON(r.out, s)
	}

	fmt.Fprintf(r.out, "Fingerprint: %s\n", s.Fingerprint().Hex())
	fmt.Fprintf(r.out, "Sale blocks: %d - %d\n\n", s.StartBlock(), s.EndBlock())

	table := tablewriter.NewWriter(r.out)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Stage", "Start", "End", "Blocks", "Price (wei)"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, stage := range s.Stages() {
		table.Append([]string{
			strconv.FormatUint(stage.Index, 10),
			strconv.FormatUint(uint64(stage.StartBlock), 10),
			strconv.FormatUint(uint64(stage.EndBlock), 10),
			strconv.FormatUint(stage.Blocks(), 10),
			stage.TokenPrice.String(),
		})
	}
	table.Render()
	return nil
}

type stageResult struct {
	Block      idx.Block `json:"block"`
	Stage      string    `json:"stage"`
	Ended      bool      `json:"ended"`
	ContractID *uint8    `json:"contract_id,omitempty"`
}

func stageAction(ctx *cli.Context) error {
	r, err := runtimeOf(ctx)
	if err != nil {
		return err
	}
	format, err := outputFormat(ctx, r)
	if err != nil {
		return err
	}
	block, err := parseBlock(ctx.Args().First())
	if err != nil {
		return err
	}
	ref, err := r.schedule.StageAt(block)
	if err != nil {
		return err
	}

	if format == "text" {
		fmt.Fprintln(r.out, ref)
		return nil
	}
	res := stageResult{Block: block, Stage: ref.String(), Ended: ref.Ended}
	if id, err := ref.ContractID(); err == nil {
		res.ContractID = &id
	} else {
		r.log.WithError(err).Debug("Stage has no contract identifier")
	}
	return writeJSON(r.out, res)
}

func priceAction(ctx *cli.Context) error {
	r, err := runtimeOf(ctx)
	if err != nil {
		return err
	}
	format, err := outputFormat(ctx, r)
	if err != nil {
		return err
	}
	block, err := parseBlock(ctx.Args().First())
	if err != nil {
		return err
	}
	price, err := r.schedule.PriceAt(block)
	if err != nil {
		return err
	}

	if format == "text" {
		fmt.Fprintln(r.out, price)
		return nil
	}
	return writeJSON(r.out, struct {
		Block idx.Block `json:"block"`
		Price string    `json:"price"`
	}{block, price.String()})
}

// verifyOptions selects the optional checks of the verify command.
type verifyOptions struct {
	state    *conformance.ContractState
	timeline bool
}

func parseVerifyOptions(ctx *cli.Context) (verifyOptions, error) {
	opts := verifyOptions{timeline: ctx.Bool("timeline")}
	token, controller := ctx.String("token"), ctx.String("controller")
	if token == "" && controller == "" {
		return opts, nil
	}
	tokenAddr, err := parseAddress("--token", token)
	if err != nil {
		return opts, err
	}
	controllerAddr, err := parseAddress("--controller", controller)
	if err != nil {
		return opts, err
	}
	state := conformance.InitializedState(tokenAddr, controllerAddr)
	opts.state = &state
	return opts, nil
}

func verifyAction(ctx *cli.Context) error {
	r, err := runtimeOf(ctx)
	if err != nil {
		return err
	}
	address, err := parseAddress("--contract", ctx.String("contract"))
	if err != nil {
		return err
	}
	opts, err := parseVerifyOptions(ctx)
	if err != nil {
		return err
	}
	var key *ecdsa.PrivateKey
	if opts.timeline {
		if key, err = loadSigningKey(ctx); err != nil {
			return err
		}
	}

	bg := context.Background()
	contract, closer, err := dialContract(bg, ctx, address, key)
	if err != nil {
		return err
	}
	defer closer()
	return verifyContract(bg, r, contract, opts)
}

// saleContract is the surface of a deployed sale the verify command drives.
type saleContract interface {
	conformance.StageContract
	conformance.StateContract
	conformance.BlockJumper
	Address() common.Address
	CurrentBlock(ctx context.Context) (idx.Block, error)
}

// verifyContract checks the static settings and then the state at the
// contract's current block, followed by the optional lifecycle and timeline
// checks.
func verifyContract(ctx context.Context, r *runtime, contract saleContract, opts verifyOptions) error {
	log := r.log.WithField("contract", contract.Address().Hex())
	checker := conformance.NewChecker(r.schedule, log)

	if err := checker.VerifySettings(ctx, contract); err != nil {
		return err
	}
	if opts.state != nil {
		if err := checker.VerifyState(ctx, contract, *opts.state); err != nil {
			return err
		}
	}
	block, err := contract.CurrentBlock(ctx)
	if err != nil {
		return err
	}
	err = checker.VerifyAt(ctx, contract, block)
	if errors.Is(err, rico.ErrPreSale) {
		log.WithField("block", block).Info("Sale has not started, skipping current stage check")
		err = nil
	}
	if err != nil {
		return err
	}
	if opts.timeline {
		if err := checker.VerifyTimeline(ctx, contract, contract); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Contract %s matches schedule %s at every stage boundary\n",
			contract.Address().Hex(), r.schedule.Fingerprint().TerminalString())
		return nil
	}
	fmt.Fprintf(r.out, "Contract %s matches schedule %s at block %d\n",
		contract.Address().Hex(), r.schedule.Fingerprint().TerminalString(), block)
	return nil
}

func parseParticipants(args []string) ([]common.Address, error) {
	if len(args) == 0 {
		return nil, errors.New("no participant addresses given")
	}
	addrs := make([]common.Address, 0, len(args))
	for _, arg := range args {
		addr, err := parseAddress("participant", arg)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func whitelistAction(ctx *cli.Context) error {
	r, err := runtimeOf(ctx)
	if err != nil {
		return err
	}
	address, err := parseAddress("--contract", ctx.String("contract"))
	if err != nil {
		return err
	}
	addrs, err := parseParticipants(ctx.Args())
	if err != nil {
		return err
	}
	key, err := loadSigningKey(ctx)
	if err != nil {
		return err
	}

	bg := context.Background()
	contract, closer, err := dialContract(bg, ctx, address, key)
	if err != nil {
		return err
	}
	defer closer()
	return updateWhitelist(bg, r, contract, addrs, !ctx.Bool("reject"))
}

func updateWhitelist(ctx context.Context, r *runtime, contract whitelist.Controller, addrs []common.Address, approve bool) error {
	w := whitelist.New(contract, r.log.WithField("participants", len(addrs)))
	if approve {
		if err := w.ApproveAll(ctx, addrs); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Whitelisted %d participants\n", len(addrs))
		return nil
	}
	if err := w.RejectAll(ctx, addrs); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Removed %d participants from the whitelist\n", len(addrs))
	return nil
}

func dumpConfigAction(ctx *cli.Context) error {
	r, err := runtimeOf(ctx)
	if err != nil {
		return err
	}
	out, err := encodeConfig(&r.cfg)
	if err != nil {
		return err
	}
	_, err = r.out.Write(out)
	return err
}
