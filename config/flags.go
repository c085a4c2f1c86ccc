package config

import "flag"

// ParseFlags applies command-line flags on top of the default
// configuration.
func ParseFlags(args []string) (*Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("emoneyd", flag.ContinueOnError)
	fs.StringVar(&cfg.Network, "network", cfg.Network, "network to join (mainnet, regnet)")
	fs.StringVar(&cfg.DataDir, "datadir", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Log.JSON, "log-json", cfg.Log.JSON, "emit JSON logs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
