// Command supportprobe runs probe scripts against the reference shapes and
// prints every support query and check they make.
//
//	supportprobe -script probe.lisp [-config probe.yaml] [-json]
//
// It exits 1 when the script fails to evaluate or a check finds
// violations, and 2 on usage or configuration errors.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chazu/supportmap/pkg/config"
	"github.com/chazu/supportmap/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("supportprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	scriptPath := fs.String("script", "", "probe script to evaluate")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *scriptPath == "" {
		fmt.Fprintln(stderr, "supportprobe: -script is required")
		fs.Usage()
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "supportprobe: %v\n", err)
			return 2
		}
		cfg = c
	}

	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "supportprobe: %v\n", err)
		return 2
	}
	defer log.Sync()

	source, err := os.ReadFile(*scriptPath)
	if err != nil {
		fmt.Fprintf(stderr, "supportprobe: %v\n", err)
		return 2
	}
	log.Info("running probe",
		zap.String("script", *scriptPath),
		zap.Duration("timeout", cfg.Probe.Timeout),
		zap.Int("cells", cfg.Kernel.Cells),
		zap.Int("directions", cfg.Check.Directions))

	result := NewApp(cfg, log).Evaluate(string(source))
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(stderr, "supportprobe: %v\n", err)
			return 2
		}
	} else {
		writeText(stdout, result)
	}

	log.Info("probe finished",
		zap.Int("queries", len(result.Queries)),
		zap.Int("errors", len(result.Errors)),
		zap.Int("failed", result.Failed))
	if !result.OK() {
		return 1
	}
	return 0
}
