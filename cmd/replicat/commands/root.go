// Package commands implements CLI command handlers for replicat.
package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/replicat/internal/concat"
	"github.com/Sumatoshi-tech/replicat/internal/concat/memplan"
	"github.com/Sumatoshi-tech/replicat/internal/config"
	"github.com/Sumatoshi-tech/replicat/internal/manifest"
	"github.com/Sumatoshi-tech/replicat/internal/progressui"
	"github.com/Sumatoshi-tech/replicat/pkg/safeconv"
)

// ErrNoInputFiles is returned when neither arguments, manifest, nor stdin
// supply any input file.
var ErrNoInputFiles = errors.New(
	"no input files. Pass paths as arguments, via --manifest, or via --stdin-input-list",
)

// RunCommand holds configuration and dependencies for the root command.
type RunCommand struct {
	repeatEach     int
	repeatAll      int
	output         string
	manifestPath   string
	stdinInputList bool
	configPath     string
	chunkCapacity  string
	cacheThreshold string
	maxMemUsage    string
	pipeline       string
	noProgress     bool
	noColor        bool
	verbose        bool
	quiet          bool

	// stderr is swappable for tests.
	stderr io.Writer
}

// NewRootCommand creates the replicat root command. The root itself runs
// the concatenation; version is the only subcommand.
func NewRootCommand() *cobra.Command {
	rc := &RunCommand{stderr: os.Stderr}

	cmd := &cobra.Command{
		Use:   "replicat [flags] <file>...",
		Short: "Concatenate and repeat files at disk speed",
		Long: `Replicat builds an output stream as the concatenation of its input
files, optionally repeating each file and/or the whole sequence. Small
files are cached in memory across repetitions; large files are
re-streamed from disk, so memory stays bounded no matter how often a
file repeats.

Examples:
  replicat -o merged.bin part1.bin part2.bin
  replicat --repeat-all 100 -o stress.bin sample.bin
  replicat --repeat-each 3 a.bin b.bin > out.bin
  find . -name '*.log' | replicat --stdin-input-list -o all.log`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.Run(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&rc.repeatEach, "repeat-each", "r", 1, "number of times to repeat each input file")
	flags.IntVar(&rc.repeatAll, "repeat-all", 1, "number of times to repeat all input files")
	flags.StringVarP(&rc.output, "output", "o", "", "output file (default: stdout, a file can improve performance)")
	flags.StringVar(&rc.manifestPath, "manifest", "", "YAML manifest listing input files and per-file repeats")
	flags.BoolVarP(&rc.stdinInputList, "stdin-input-list", "s", false, "read additional input paths from stdin (positional arguments go first)")
	flags.StringVar(&rc.configPath, "config", "", "config file (default: .replicat.yaml in CWD or $HOME)")
	flags.StringVar(&rc.chunkCapacity, "chunk-capacity", "", "chunk buffer size, e.g. 4MiB")
	flags.StringVar(&rc.cacheThreshold, "cache-threshold", "", "cache files up to this size in memory, e.g. 16MiB")
	flags.StringVarP(&rc.maxMemUsage, "max-mem-usage", "m", "", "total memory ceiling, e.g. 1GiB; lowers the cache threshold")
	flags.StringVar(&rc.pipeline, "pipeline", "", "overlap reads and writes: auto, on or off")
	flags.BoolVar(&rc.noProgress, "no-progress", false, "disable the progress bar")
	flags.BoolVar(&rc.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&rc.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&rc.quiet, "quiet", "q", false, "suppress all non-error output")

	cmd.AddCommand(newVersionCommand())

	return cmd
}

// Run executes the concatenation end to end: gather inputs, resolve
// configuration, open the destination, drive the core.
func (rc *RunCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return err
	}

	rc.applyFlagOverrides(cfg)

	if cfg.NoColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	paths, repeatEach, err := rc.gatherInputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if err := validatePaths(paths); err != nil {
		return err
	}

	// Validate repeat semantics before the output file is created or
	// truncated, so a bad flag never clobbers an existing file.
	if _, err := concat.NewRepeatPlan(len(paths), rc.repeatAll, repeatEach); err != nil {
		return err
	}

	runCfg, err := rc.buildCoreConfig(cfg, len(paths))
	if err != nil {
		return err
	}

	out, outPath, isFile, err := rc.openOutput(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	runCfg.Preallocate = isFile

	mode, err := cfg.PipelineMode()
	if err != nil {
		return err
	}

	runCfg.Pipelined = mode.Resolve(isFile)

	var renderer *progressui.Renderer
	if isFile && cfg.Progress && !rc.noProgress && !rc.quiet {
		renderer = progressui.NewRenderer(rc.stderr)
		runCfg.Progress = renderer
	}

	started := time.Now()

	orch := concat.New(runCfg)
	runErr := orch.Run(concat.Job{
		Paths:      paths,
		RepeatAll:  rc.repeatAll,
		RepeatEach: repeatEach,
		Out:        out,
		OutPath:    outPath,
	})

	if renderer != nil {
		renderer.Stop()
	}

	if closeErr := rc.closeOutput(out, isFile); closeErr != nil && runErr == nil {
		runErr = closeErr
	}

	if runErr != nil {
		return runErr
	}

	rc.printSummary(orch.BytesWritten(), time.Since(started))

	return nil
}

// applyFlagOverrides layers explicitly-set flags over the loaded config.
func (rc *RunCommand) applyFlagOverrides(cfg *config.Config) {
	if rc.chunkCapacity != "" {
		cfg.ChunkCapacity = rc.chunkCapacity
	}

	if rc.cacheThreshold != "" {
		cfg.CacheThreshold = rc.cacheThreshold
	}

	if rc.maxMemUsage != "" {
		cfg.MaxMemUsage = rc.maxMemUsage
	}

	if rc.pipeline != "" {
		cfg.Pipeline = rc.pipeline
	}

	if rc.noColor {
		cfg.NoColor = true
	}
}

// gatherInputs assembles the ordered input list: positional arguments
// first, then stdin lines, then manifest entries. Per-file repeat counts
// default to --repeat-each; manifest entries may override their own.
func (rc *RunCommand) gatherInputs(args []string, stdin io.Reader) ([]string, []int, error) {
	paths := make([]string, 0, 8)
	counts := make([]int, 0, 8)
	overridden := false

	appendDefault := func(path string) {
		paths = append(paths, path)
		counts = append(counts, rc.repeatEach)
	}

	for _, arg := range args {
		appendDefault(arg)
	}

	if rc.stdinInputList {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}

			appendDefault(line)
		}

		if err := scanner.Err(); err != nil {
			return nil, nil, fmt.Errorf("reading stdin input list: %w", err)
		}
	}

	if rc.manifestPath != "" {
		m, err := manifest.Load(rc.manifestPath)
		if err != nil {
			return nil, nil, err
		}

		paths = append(paths, m.Paths()...)

		for _, n := range m.RepeatCounts(rc.repeatEach) {
			counts = append(counts, n)

			if n != rc.repeatEach {
				overridden = true
			}
		}
	}

	if len(paths) == 0 {
		return nil, nil, ErrNoInputFiles
	}

	// The core treats a nil slice as "once each"; keep it nil unless some
	// count differs from 1 so validation stays in one place.
	if !overridden && rc.repeatEach == 1 {
		return paths, nil, nil
	}

	return paths, counts, nil
}

// validatePaths fails fast on missing or unreadable inputs, before the
// output file is created.
func validatePaths(paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("input file: %w", err)
		}

		if info.IsDir() {
			return fmt.Errorf("input file %s is a directory", path)
		}
	}

	return nil
}

// buildCoreConfig resolves sizes and the memory ceiling into the core's
// configuration.
func (rc *RunCommand) buildCoreConfig(cfg *config.Config, fileCount int) (concat.Config, error) {
	chunkCapacity, err := cfg.ChunkCapacityBytes()
	if err != nil {
		return concat.Config{}, err
	}

	threshold, err := cfg.CacheThresholdBytes()
	if err != nil {
		return concat.Config{}, err
	}

	budget, err := cfg.MaxMemUsageBytes()
	if err != nil {
		return concat.Config{}, err
	}

	if budget > 0 {
		planner := memplan.Planner{
			MemoryBudget:     budget,
			FileCount:        fileCount,
			ChunkCapacity:    chunkCapacity,
			DefaultThreshold: threshold,
		}
		threshold = planner.CacheThreshold()
	}

	return concat.Config{
		ChunkCapacity:  int(chunkCapacity),
		CacheThreshold: threshold,
		Logger:         rc.newLogger(),
	}, nil
}

// newLogger builds the slog logger for core diagnostics: debug level when
// verbose, discarded otherwise.
func (rc *RunCommand) newLogger() *slog.Logger {
	if !rc.verbose || rc.quiet {
		return slog.New(slog.DiscardHandler)
	}

	return slog.New(slog.NewTextHandler(rc.stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// openOutput creates/truncates the output file, or hands back stdout.
func (rc *RunCommand) openOutput(stdout io.Writer) (io.Writer, string, bool, error) {
	if rc.output == "" {
		return stdout, "stdout", false, nil
	}

	file, err := os.Create(rc.output)
	if err != nil {
		return nil, "", false, fmt.Errorf("create output: %w", err)
	}

	return file, rc.output, true, nil
}

// closeOutput closes file outputs; stdout is left alone.
func (rc *RunCommand) closeOutput(out io.Writer, isFile bool) error {
	if !isFile {
		return nil
	}

	file, ok := out.(*os.File)
	if !ok {
		return nil
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	return nil
}

// printSummary reports bytes and throughput to stderr for file outputs.
func (rc *RunCommand) printSummary(written int64, elapsed time.Duration) {
	if rc.quiet || rc.output == "" {
		return
	}

	rate := float64(written)
	if seconds := elapsed.Seconds(); seconds > 0 {
		rate = float64(written) / seconds
	}

	fmt.Fprintf(rc.stderr, "%s wrote %s in %s (%s/s)\n",
		color.GreenString("replicat:"),
		humanize.IBytes(safeconv.MustInt64ToUint64(written)),
		elapsed.Round(time.Millisecond),
		humanize.IBytes(uint64(rate)),
	)
}
