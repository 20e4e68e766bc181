package main

import (
	"flag"
	"fmt"
	"os"
)

const appName = "synapse"

// CLIConfig holds the parsed command-line configuration.
type CLIConfig struct {
	ShowVersion bool
	ShowHelp    bool
	CLIFormat   string
	ConfigPath  string
}

// errInvalidCLI is returned by parseArgs when argv does not resolve to one
// of the three disjoint modes the specification allows.
var errInvalidCLI = fmt.Errorf("invalid command line")

// parseArgs parses argv (excluding the program name) into a CLIConfig. The
// first non-option token is taken as the config positional argument.
func parseArgs(argv []string) (*CLIConfig, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	cfg := &CLIConfig{CLIFormat: "human"}
	fs.BoolVar(&cfg.ShowHelp, "help", false, "print usage and exit")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "print usage and exit")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "print version and exit")
	fs.StringVar(&cfg.CLIFormat, "cli-format", "human", "output format: human or json")

	fs.Usage = func() { printHelp() }

	if err := fs.Parse(argv); err != nil {
		return nil, errInvalidCLI
	}

	if cfg.ShowHelp || cfg.ShowVersion {
		return cfg, nil
	}

	args := fs.Args()
	if len(args) != 1 {
		return nil, errInvalidCLI
	}
	cfg.ConfigPath = args[0]

	if cfg.CLIFormat != "human" && cfg.CLIFormat != "json" {
		return nil, errInvalidCLI
	}

	return cfg, nil
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `%s - in-process dataflow engine

Usage:
  %s -h | --help
  %s -v | --version
  %s [--cli-format={human|json}] <config>

Options:
  -h, --help           print this help and exit
  -v, --version        print version and exit
  --cli-format=FORMAT   "human" (default) or "json" startup/shutdown reporting
`, appName, appName, appName, appName)
}

func printVersion() {
	fmt.Printf("%s version %s\n", appName, version)
}
