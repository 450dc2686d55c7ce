package launcher

// Defaults bundles the baseline configuration values the launcher uses
// before the config file and flags override them.

type Defaults struct {
	Sale    SaleDefaults
	Logging LoggingDefaults
	Output  OutputDefaults
}

// SaleDefaults selects the sale a schedule is built for when nothing else is given.
type SaleDefaults struct {
	Preset     string //	Named parameter set (reference, dev, short) the sale starts from. Empty means every sale field must be given explicitly.
	StartBlock uint64 //	First block of the allocation phase. The contract suite starts the sale one day after deployment; 1000 keeps the reference numbers readable.
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    //	Log level numeric (0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace).
	Format    string //	Log output format (text vs json).
	Color     bool   //	Whether to use ANSI color codes in logs (helpful on terminals, best disabled when piping to files).
	SentryDSN string //	Sentry endpoint receiving error level entries; empty disables reporting.
}

// OutputDefaults controls how command results are printed.
type OutputDefaults struct {
	Format string //	text prints aligned tables, json prints machine readable documents.
}

// DefaultConfig returns a fully populated Defaults instance.

func DefaultConfig() Defaults {
	return Defaults{
		Sale: SaleDefaults{
			Preset:     "reference",
			StartBlock: 1000,
		},
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     false,
		},
		Output: OutputDefaults{
			Format: "text",
		},
	}
}
