// This file maps the CLI context and the optional TOML file to the Config struct.

package launcher

import (
	"bufio"
	"errors"
	"fmt"
	"math/big"
	"os"
	"reflect"
	"unicode"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-rico/integration"
	"github.com/rony4d/go-rico/rico"
)

// Config aggregates everything the launcher needs.
type Config struct {
	Sale    SaleConfig
	Logging LoggingConfig
	Output  OutputConfig
}

// SaleConfig selects a preset and overrides individual sale parameters.
// Unset (nil) fields leave the preset's value in place; a set zero replaces it.
type SaleConfig struct {
	Preset               string
	StartBlock           uint64
	AllocationBlockCount *uint64               `toml:",omitempty"`
	AllocationPrice      *math.HexOrDecimal256 `toml:",omitempty"`
	StageCount           *uint64               `toml:",omitempty"`
	StageBlockCount      *uint64               `toml:",omitempty"`
	StagePriceIncrease   *math.HexOrDecimal256 `toml:",omitempty"`
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	SentryDSN string
}

type OutputConfig struct {
	Format string
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

func defaultConfig() Config {
	defaults := DefaultConfig()
	return Config{
		Sale: SaleConfig{
			Preset:     defaults.Sale.Preset,
			StartBlock: defaults.Sale.StartBlock,
		},
		Logging: LoggingConfig{
			Verbosity: defaults.Logging.Verbosity,
			Format:    defaults.Logging.Format,
			Color:     defaults.Logging.Color,
			SentryDSN: defaults.Logging.SentryDSN,
		},
		Output: OutputConfig{
			Format: defaults.Output.Format,
		},
	}
}

// MakeAllConfigs merges defaults, config-file values, and CLI overrides into
// a single config struct.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.GlobalString("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", file, err)
		}
	}

	if err := applyCLIOverrides(ctx, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaleParameters resolves the preset and layers the explicit values on top.
func (c SaleConfig) SaleParameters() (rico.SaleParameters, error) {
	var params rico.SaleParameters
	if c.Preset != "" {
		preset, err := integration.GetPresetByName(c.Preset, idx.Block(c.StartBlock))
		if err != nil {
			return params, err
		}
		params = preset
	}
	start := idx.Block(c.StartBlock)
	integration.Overrides{
		StartBlock:           &start,
		AllocationBlockCount: c.AllocationBlockCount,
		AllocationPrice:      (*big.Int)(c.AllocationPrice),
		StageCount:           c.StageCount,
		StageBlockCount:      c.StageBlockCount,
		StagePriceIncrease:   (*big.Int)(c.StagePriceIncrease),
	}.Apply(&params)
	return params, params.Validate()
}

// -----------------------------------------------------------------------------
// Config-file / CLI wiring
// -----------------------------------------------------------------------------

func loadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	var lineErr *toml.LineError
	if errors.As(err, &lineErr) {
		err = errors.New(path + ", " + err.Error())
	}
	return err
}

// encodeConfig renders cfg in the format loadConfigFile reads.
func encodeConfig(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) error {
	if ctx.GlobalIsSet("preset") {
		cfg.Sale.Preset = ctx.GlobalString("preset")
	}
	if ctx.GlobalIsSet("sale.start") {
		cfg.Sale.StartBlock = ctx.GlobalUint64("sale.start")
	}
	if ctx.GlobalIsSet("sale.allocblocks") {
		cfg.Sale.AllocationBlockCount = uint64Ptr(ctx.GlobalUint64("sale.allocblocks"))
	}
	if ctx.GlobalIsSet("sale.allocprice") {
		price, err := parseWei("sale.allocprice", ctx.GlobalString("sale.allocprice"))
		if err != nil {
			return err
		}
		cfg.Sale.AllocationPrice = price
	}
	if ctx.GlobalIsSet("sale.stages") {
		cfg.Sale.StageCount = uint64Ptr(ctx.GlobalUint64("sale.stages"))
	}
	if ctx.GlobalIsSet("sale.stageblocks") {
		cfg.Sale.StageBlockCount = uint64Ptr(ctx.GlobalUint64("sale.stageblocks"))
	}
	if ctx.GlobalIsSet("sale.priceincrease") {
		price, err := parseWei("sale.priceincrease", ctx.GlobalString("sale.priceincrease"))
		if err != nil {
			return err
		}
		cfg.Sale.StagePriceIncrease = price
	}

	if ctx.GlobalIsSet("log.format") {
		cfg.Logging.Format = ctx.GlobalString("log.format")
	}
	if ctx.GlobalIsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.GlobalInt("log.verbosity")
	}
	if ctx.GlobalIsSet("log.color") {
		cfg.Logging.Color = ctx.GlobalBool("log.color")
	}
	if ctx.GlobalIsSet("sentry.dsn") {
		cfg.Logging.SentryDSN = ctx.GlobalString("sentry.dsn")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func uint64Ptr(v uint64) *uint64 {
	return &v
}

func parseWei(flag, raw string) (*math.HexOrDecimal256, error) {
	v, ok := math.ParseBig256(raw)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid --%s value %q: want wei as decimal or 0x hex", flag, raw)
	}
	return (*math.HexOrDecimal256)(v), nil
}

func parseBlock(raw string) (idx.Block, error) {
	if raw == "" {
		return 0, errors.New("missing block number argument")
	}
	n, ok := math.ParseUint64(raw)
	if !ok {
		return 0, fmt.Errorf("invalid block number %q", raw)
	}
	return idx.Block(n), nil
}
