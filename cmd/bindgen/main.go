package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/toyz/bindgen/internal/cli"
	"github.com/toyz/bindgen/internal/utils"
)

// errReported marks a failure whose diagnostics were already printed
var errReported = errors.New("bindgen failed")

type options struct {
	configPath string
	verbose    bool
	quiet      bool
	clean      bool
	dryRun     bool
	namespace  string
	cmdPrefix  string
	hosts      []string
	suffix     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "bindgen [paths...]",
		Short: "Generate typed Go bindings for host bridge commands and events",
		Long: `bindgen reads Go files carrying //bindgen: directives and writes a sibling
<file>_bindgen.go with the generated code.

Directives:
  //bindgen:invoke [cmd_prefix="..."] [on_decode_error="panic|return"]
      on an interface: one stub function per method invoking a host command
  //bindgen:events [on_decode_error="..."]
      on a sealed interface: event names and typed listener bindings per variant
  //bindgen:skeleton <Interface> [host="pkg,..."]
      file-level: a stand-in implementation of the interface for host builds

Paths:
  ./...              scan the current directory and all subdirectories
  ./internal/...     scan internal and its subdirectories
  ./pkg/api          scan only that directory
  ./pkg/api/api.go   process a single file`,
		Example: `  bindgen ./...
  bindgen --dry-run --verbose ./internal/...
  bindgen --cmd-prefix "plugin:fs|" ./pkg/fs
  bindgen --clean ./...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, cmd.Flags().Changed, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to "+cli.ConfigFileName+" (default: searched upward from the first path)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output and detailed error reporting")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only show errors")
	flags.BoolVar(&opts.clean, "clean", false, "delete generated files instead of generating")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "report what would change without touching files")
	flags.StringVar(&opts.namespace, "namespace", "", "host namespace the bridge resolves")
	flags.StringVar(&opts.cmdPrefix, "cmd-prefix", "", "prefix prepended to every command identifier")
	flags.StringSliceVar(&opts.hosts, "host", nil, "packages whose parameters skeletons drop")
	flags.StringVar(&opts.suffix, "suffix", "", "output file suffix")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

func run(ctx context.Context, opts *options, args []string, changed func(string) bool, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		args = []string{"./..."}
	}

	diagnostics := newDiagnostics(opts)
	diagnostics.SetOutput(stdout, stderr)

	cfg, err := loadConfig(opts, args, changed)
	if err != nil {
		return err
	}

	diagnostics.Header("generating bindings")
	diagnostics.Verbose("Target paths: %s", strings.Join(cfg.Directories, ", "))

	if opts.clean {
		removed, err := cli.NewCleaner(cfg.Suffix, diagnostics, cfg.DryRun).CleanGeneratedFiles(cfg.Directories)
		if err != nil {
			return err
		}
		diagnostics.Summary("Clean complete", map[string]interface{}{
			"Files removed": len(removed),
		})
		return nil
	}

	gen := cli.NewGenerator(cfg, diagnostics)
	gen.Reporter().SetOutput(stderr)

	summary, err := gen.Run(ctx)
	if summary != nil {
		diagnostics.Summary("Generation summary", map[string]interface{}{
			"Files scanned":   summary.FilesScanned,
			"Units generated": summary.UnitsGenerated,
			"Files written":   len(summary.Written),
			"Files unchanged": len(summary.Unchanged),
			"Stale removed":   len(summary.Removed),
			"Units failed":    summary.Failed,
			"Invoke stubs":    summary.Stats.Stubs,
			"Event unions":    summary.Stats.Events,
			"Skeletons":       summary.Stats.Skeletons,
			"Duration":        summary.Duration.Round(time.Millisecond).String(),
		})
	}
	if err != nil {
		gen.Reporter().ReportError(err)
		return errReported
	}

	diagnostics.GenerationComplete()
	return nil
}

func newDiagnostics(opts *options) *utils.DiagnosticSystem {
	switch {
	case opts.quiet:
		return utils.NewQuietDiagnostics()
	case opts.verbose:
		return utils.NewVerboseDiagnostics()
	default:
		return utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
}

// loadConfig reads the project file and lets explicitly set flags override it
func loadConfig(opts *options, args []string, changed func(string) bool) (*cli.Config, error) {
	path := opts.configPath
	if path == "" {
		dir, _ := utils.SplitPattern(args[0])
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			dir = filepath.Dir(dir)
		}
		found, err := cli.FindConfig(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := cli.DefaultConfig()
	if path != "" {
		loaded, err := cli.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.Directories = args
	cfg.Verbose = opts.verbose
	cfg.DryRun = opts.dryRun
	if changed("namespace") {
		cfg.Namespace = opts.namespace
	}
	if changed("cmd-prefix") {
		cfg.CmdPrefix = opts.cmdPrefix
	}
	if changed("host") {
		cfg.HostPackages = opts.hosts
	}
	if changed("suffix") {
		cfg.Suffix = opts.suffix
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}
