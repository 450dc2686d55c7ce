package launcher

import (
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-rico/flags"
	"github.com/rony4d/go-rico/rico"
)

const runtimeKey = "rico.runtime"

// runtime is the state shared by all commands of one invocation.
type runtime struct {
	cfg      Config
	log      *logrus.Logger
	schedule *rico.Schedule
	out      io.Writer
}

func runtimeOf(ctx *cli.Context) (*runtime, error) {
	r, ok := ctx.App.Metadata[runtimeKey].(*runtime)
	if !ok {
		return nil, errors.New("launcher not initialised")
	}
	return r, nil
}

// NewApp assembles the rico command line application. Command output goes to
// out, log entries to logOut.
func NewApp(out, logOut io.Writer) *cli.App {
	app := flags.NewApp("Reversible ICO stage and price schedule calculator")
	app.Writer = out
	app.ErrWriter = logOut
	app.Metadata = map[string]interface{}{}
	app.Flags = flags.Merge(flags.CommonFlags(), flags.SaleFlags())
	app.Commands = []cli.Command{
		scheduleCommand,
		stageCommand,
		priceCommand,
		verifyCommand,
		whitelistCommand,
		dumpConfigCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		cfg, err := MakeAllConfigs(ctx)
		if err != nil {
			return err
		}
		log, err := SetupLogging(cfg.Logging, logOut)
		if err != nil {
			return err
		}
		params, err := cfg.Sale.SaleParameters()
		if err != nil {
			return err
		}
		schedule, err := rico.BuildSchedule(params)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"preset":      cfg.Sale.Preset,
			"stages":      schedule.Len(),
			"end_block":   schedule.EndBlock(),
			"fingerprint": schedule.Fingerprint().TerminalString(),
		}).Debug("Schedule built")

		ctx.App.Metadata[runtimeKey] = &runtime{cfg: cfg, log: log, schedule: schedule, out: out}
		return nil
	}
	return app
}

// Launch runs the rico tool with the given command line.
func Launch(args []string) error {
	return NewApp(os.Stdout, os.Stderr).Run(args)
}
