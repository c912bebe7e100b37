package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/atikulmunna/tally/internal/logging"
	"github.com/atikulmunna/tally/internal/output"
	"github.com/atikulmunna/tally/internal/scanner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "tally [directory]",
		Short: "Tally — summarize model output files",
		Long: `Tally scans a directory for JSON output files and prints a summary of
each one: model, task, output length, metadata presence and timestamp.

Files that cannot be read or parsed are reported and skipped; the run
always completes.

Examples:
  tally
  tally runs/2026-02-17
  tally runs --pattern "**/*.json" --stats
  tally runs --output json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, v, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.tally.yaml)")
	pf.StringP("output", "o", "text", "output format: text, json")
	pf.StringP("pattern", "p", scanner.DefaultPattern, "file pattern relative to the directory (doublestar syntax)")
	pf.String("log-level", "info", "diagnostic log level: debug, info, warn, error")
	pf.Bool("stats", false, "append per-model and per-task counts to the text report")

	for _, name := range []string{"output", "pattern", "log-level", "stats"} {
		_ = v.BindPFlag(name, pf.Lookup(name))
	}
	v.SetDefault("directory", scanner.DefaultDir)

	rootCmd.AddCommand(newWatchCmd(v), newServeCmd(v))
	return rootCmd
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".tally")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("tally")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// env bundles what every subcommand needs: diagnostics logger, scanner,
// renderer, and the directory to scan.
type env struct {
	log      *slog.Logger
	scanner  *scanner.Scanner
	renderer output.Renderer
	dir      string
	out      io.Writer
	text     bool
}

func newEnv(cmd *cobra.Command, v *viper.Viper, args []string) (*env, error) {
	format := v.GetString("output")
	isJSON := strings.EqualFold(format, "json")
	logger := logging.Init(cmd.ErrOrStderr(), isJSON, logging.ParseLevel(v.GetString("log-level")))

	sc, err := scanner.New(v.GetString("pattern"), logger)
	if err != nil {
		return nil, err
	}
	r, err := output.New(format, cmd.OutOrStdout(), v.GetBool("stats"))
	if err != nil {
		return nil, err
	}

	dir := v.GetString("directory")
	if len(args) > 0 {
		dir = args[0]
	}

	return &env{
		log:      logger,
		scanner:  sc,
		renderer: r,
		dir:      dir,
		out:      cmd.OutOrStdout(),
		text:     !isJSON,
	}, nil
}

// banner announces the scan in text mode only, keeping JSON output clean.
func (e *env) banner() {
	if e.text {
		fmt.Fprintf(e.out, "Analyzing outputs in '%s' directory...\n", e.dir)
	}
}

// render scans the directory and writes the report. Render errors are logged,
// not returned: the run still counts as complete.
func (e *env) render() {
	report := e.scanner.Scan(e.dir)
	if err := e.renderer.Render(report); err != nil {
		e.log.Error("render failed", "err", err)
	}
}

func runAnalyze(cmd *cobra.Command, v *viper.Viper, args []string) error {
	e, err := newEnv(cmd, v, args)
	if err != nil {
		return err
	}

	e.banner()
	e.render()
	return nil
}
