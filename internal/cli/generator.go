package cli

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	bgerrors "github.com/toyz/bindgen/internal/errors"
	"github.com/toyz/bindgen/internal/generator"
	"github.com/toyz/bindgen/internal/models"
	"github.com/toyz/bindgen/internal/parser"
	"github.com/toyz/bindgen/internal/utils"
)

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	FilesScanned   int
	UnitsGenerated int
	Written        []string // outputs whose content changed
	Unchanged      []string // outputs already up to date
	Removed        []string // stale outputs of inputs that lost their directives
	Failed         int
	Stats          models.GenerationStats
	Duration       time.Duration
}

// Generator coordinates the CLI generation process
type Generator struct {
	config      *Config
	scanner     *DirectoryScanner
	resolver    *ModuleResolver
	parser      parser.UnitParser
	generator   generator.UnitGenerator
	diagnostics *utils.DiagnosticSystem
	reporter    *DiagnosticReporter
}

// NewGenerator creates a new CLI generator
func NewGenerator(config *Config, diagnostics *utils.DiagnosticSystem) *Generator {
	return &Generator{
		config:      config,
		scanner:     NewDirectoryScanner(config.Suffix),
		resolver:    NewModuleResolver(),
		parser:      parser.NewParser(config.GenerationConfig()),
		generator:   generator.NewGenerator(generator.WithSuffix(config.Suffix)),
		diagnostics: diagnostics,
		reporter:    NewDiagnosticReporter(config.Verbose),
	}
}

// Reporter returns the reporter used for failures
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// unitResult is the outcome of one source file
type unitResult struct {
	source string
	file   *models.GeneratedFile
	err    error
}

// Run generates every unit under the configured directories. A failing unit
// writes nothing; the others are still written. The returned error collects
// every unit failure.
func (g *Generator) Run(ctx context.Context) (*GenerationSummary, error) {
	start := time.Now()
	summary := &GenerationSummary{}

	g.diagnostics.PhaseHeader("Scanning")
	sources, err := g.scanner.ScanSources(g.config.Directories)
	if err != nil {
		return summary, bgerrors.WithHint(bgerrors.Wrap(err, "scan directories"),
			"check that the given paths exist and are readable")
	}
	summary.FilesScanned = len(sources)
	g.diagnostics.PhaseItem(pluralize(len(sources), "Go file") + " found")

	if len(sources) > 0 {
		dir, _ := utils.SplitPattern(g.config.Directories[0])
		if warning := g.resolver.CheckRuntime(dir); warning != "" {
			g.diagnostics.Warn("%s", warning)
		}
	}

	results := make([]unitResult, len(sources))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))

	for i, source := range sources {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = g.processUnit(source)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return summary, bgerrors.Wrap(err, "generation cancelled")
	}

	g.diagnostics.PhaseHeader("Writing")
	failures := &bgerrors.MultipleErrors{}
	for _, res := range results {
		if res.err != nil {
			failures.Add(res.err)
			summary.Failed++
			continue
		}
		if err := g.emit(res, summary); err != nil {
			failures.Add(err)
			summary.Failed++
		}
	}

	summary.Duration = time.Since(start)
	if !failures.IsEmpty() {
		return summary, failures
	}
	return summary, nil
}

// processUnit parses and generates one file. It never touches the file system
// beyond reading the source.
func (g *Generator) processUnit(source string) unitResult {
	unit, err := g.parser.ParseFile(source)
	if err != nil {
		return unitResult{source: source, err: err}
	}
	if unit.IsEmpty() {
		return unitResult{source: source}
	}

	g.diagnostics.Verbose("%s: %d interfaces, %d event unions, %d skeletons",
		source, len(unit.Interfaces), len(unit.Events), len(unit.Skeletons))

	file, err := g.generator.Generate(unit)
	if err != nil {
		return unitResult{source: source, err: err}
	}
	return unitResult{source: source, file: file}
}

// emit writes one successful unit, or removes a stale output of a file
// without directives
func (g *Generator) emit(res unitResult, summary *GenerationSummary) error {
	if res.file == nil {
		return g.removeStale(res.source, summary)
	}

	summary.UnitsGenerated++
	summary.Stats.Add(res.file.Stats)

	if g.config.DryRun {
		g.diagnostics.PhaseProgress("Would write " + res.file.Path)
		summary.Written = append(summary.Written, res.file.Path)
		return nil
	}

	changed, err := utils.WriteGoFile(res.file.Path, res.file.Content)
	if err != nil {
		return bgerrors.WrapFileSystemError("write", res.file.Path, err)
	}
	if changed {
		g.diagnostics.PhaseProgress("Writing " + res.file.Path)
		summary.Written = append(summary.Written, res.file.Path)
	} else {
		g.diagnostics.Verbose("%s is up to date", res.file.Path)
		summary.Unchanged = append(summary.Unchanged, res.file.Path)
	}
	return nil
}

func (g *Generator) removeStale(source string, summary *GenerationSummary) error {
	output := generator.OutputPath(source, g.config.Suffix)
	generated, err := IsGeneratedFile(output)
	if err != nil || !generated {
		return err
	}

	g.diagnostics.PhaseProgress("Removing stale " + output)
	if !g.config.DryRun {
		if err := os.Remove(output); err != nil {
			return bgerrors.WrapFileSystemError("remove", output, err)
		}
	}
	summary.Removed = append(summary.Removed, output)
	return nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
