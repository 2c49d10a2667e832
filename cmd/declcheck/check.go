package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/diagfmt"
	"github.com/dotnet/roslyn-sub221/internal/driver"
	"github.com/dotnet/roslyn-sub221/internal/project"
	"github.com/dotnet/roslyn-sub221/internal/sema"
	"github.com/dotnet/roslyn-sub221/internal/trace"
	"github.com/dotnet/roslyn-sub221/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [fixture.yaml...]",
	Short: "Validate the declarations of a compilation",
	Long: `Validate declarations bound from module fixtures, a symbol store (--db) or
the modules listed in declcheck.toml. With no fixtures and no --db the manifest
is searched from the current directory upwards.`,
	RunE: runCheck,
}

// init registers CLI flags for the check command used by runCheck.
func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short|msbuild)")
	checkCmd.Flags().String("manifest", "", "path to "+project.ManifestName)
	checkCmd.Flags().String("db", "", "validate a symbol store written by import")
	checkCmd.Flags().String("assembly", "", "override the compilation's assembly name")
	checkCmd.Flags().String("passes", "", "passes to run (conflicts,overrides,constraints,modifiers|all)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("case-insensitive", false, "compare metadata names case-insensitively")
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().StringSlice("nowarn", nil, "suppress warning codes (e.g. CS0108)")
	checkCmd.Flags().StringSlice("warnaserror", nil, "promote individual warning codes to errors")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("disk-cache", false, "reuse results of unchanged inputs from the user cache directory")
}

type checkInput struct {
	db       string
	fixtures []string
	manifest *project.Manifest
}

func (in checkInput) items() []string {
	switch {
	case in.db != "":
		return []string{in.db}
	case in.manifest != nil:
		return in.manifest.Fixtures()
	default:
		return in.fixtures
	}
}

func (in checkInput) run(ctx context.Context, opts driver.Options) (*driver.Result, error) {
	switch {
	case in.db != "":
		return driver.CheckStore(ctx, in.db, opts)
	case in.manifest != nil:
		return driver.CheckManifest(ctx, in.manifest, opts)
	default:
		return driver.CheckFixtures(ctx, in.fixtures, opts)
	}
}

// runCheck executes the "check" command: it builds driver options from
// flags, validates the selected input, prints the diagnostics in the chosen
// format and exits non-zero when any diagnostic is an error.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	opts, err := checkOptions(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "sarif", "short", "msbuild":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	in, err := resolveCheckInput(cmd, args)
	if err != nil {
		return err
	}

	uiFlag, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return err
	}
	withUI, err := progressView(uiFlag, format)
	if err != nil {
		return err
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	var res *driver.Result
	if withUI {
		res, err = runCheckWithUI(cmd.Context(), "declcheck", in, opts)
	} else {
		res, err = in.run(cmd.Context(), opts)
	}
	cleanup()
	if err != nil {
		flushTracer(cmd)
		return fmt.Errorf("check failed: %w", err)
	}

	if err := printResult(cmd, os.Stdout, res, format); err != nil {
		flushTracer(cmd)
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		printSummary(os.Stderr, res)
	}
	if res.TimingSummary != "" {
		fmt.Fprint(os.Stderr, res.TimingSummary)
	}

	if res.Bag.HasErrors() {
		flushTracer(cmd)
		// Suppress cobra usage output on diagnostic errors
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errors.New("") // Silent error - diagnostics already printed
	}
	return nil
}

func checkOptions(cmd *cobra.Command) (driver.Options, error) {
	var opts driver.Options
	flags := cmd.Flags()

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	noWarnings, err := flags.GetBool("no-warnings")
	if err != nil {
		return opts, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := flags.GetBool("warnings-as-errors")
	if err != nil {
		return opts, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return opts, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	noWarn, err := codeFlag(cmd, "nowarn")
	if err != nil {
		return opts, err
	}
	warnAsError, err := codeFlag(cmd, "warnaserror")
	if err != nil {
		return opts, err
	}

	passesStr, err := flags.GetString("passes")
	if err != nil {
		return opts, fmt.Errorf("failed to get passes flag: %w", err)
	}
	var passes sema.Pass
	if passesStr != "" {
		if passes, err = sema.ParsePass(passesStr); err != nil {
			return opts, err
		}
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	assembly, err := flags.GetString("assembly")
	if err != nil {
		return opts, fmt.Errorf("failed to get assembly flag: %w", err)
	}
	caseInsensitive, err := flags.GetBool("case-insensitive")
	if err != nil {
		return opts, fmt.Errorf("failed to get case-insensitive flag: %w", err)
	}

	opts = driver.Options{
		Assembly:             assembly,
		MaxDiagnostics:       maxDiagnostics,
		Jobs:                 jobs,
		Passes:               passes,
		CaseInsensitiveNames: caseInsensitive,
		EnableTimings:        showTimings,
		Policy: diag.Policy{
			WarningsAsErrors: warningsAsErrors,
			NoWarnings:       noWarnings,
			NoWarn:           noWarn,
			WarnAsError:      warnAsError,
		},
	}

	enableDiskCache, err := flags.GetBool("disk-cache")
	if err != nil {
		return opts, fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	if enableDiskCache {
		cache, err := driver.OpenDiskCache("declcheck")
		if err != nil {
			return opts, fmt.Errorf("failed to open disk cache: %w", err)
		}
		opts.Cache = cache
	}
	return opts, nil
}

func codeFlag(cmd *cobra.Command, name string) (map[diag.Code]struct{}, error) {
	list, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	out := make(map[diag.Code]struct{}, len(list))
	for _, s := range list {
		c, err := diag.ParseCode(s)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
		out[c] = struct{}{}
	}
	return out, nil
}

func resolveCheckInput(cmd *cobra.Command, args []string) (checkInput, error) {
	db, err := cmd.Flags().GetString("db")
	if err != nil {
		return checkInput{}, fmt.Errorf("failed to get db flag: %w", err)
	}
	manifestPath, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return checkInput{}, fmt.Errorf("failed to get manifest flag: %w", err)
	}
	switch {
	case db != "" && len(args) > 0:
		return checkInput{}, fmt.Errorf("--db and fixture arguments cannot be used together")
	case db != "":
		return checkInput{db: db}, nil
	case len(args) > 0:
		return checkInput{fixtures: args}, nil
	case manifestPath != "":
		m, err := project.LoadManifestFile(manifestPath)
		if err != nil {
			return checkInput{}, err
		}
		return checkInput{manifest: m}, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return checkInput{}, err
	}
	m, err := project.LoadManifest(wd)
	if err != nil {
		if errors.Is(err, project.ErrNoManifest) {
			return checkInput{}, fmt.Errorf("%w; pass fixture files or run `declcheck init`", err)
		}
		return checkInput{}, err
	}
	return checkInput{manifest: m}, nil
}

func printResult(cmd *cobra.Command, out io.Writer, res *driver.Result, format string) error {
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode := diagfmt.ParsePathMode(pathModeStr)
	fs := res.Comp.Files
	if fs.BaseDir() == "" {
		if wd, err := os.Getwd(); err == nil {
			fs.SetBaseDir(wd)
		}
	}

	switch format {
	case "pretty":
		colored, err := useColor(cmd)
		if err != nil {
			return err
		}
		diagfmt.Pretty(out, res.Bag, fs, diagfmt.PrettyOpts{
			Color:     colored,
			Context:   1,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
	case "short":
		if s := diag.FormatGoldenDiagnostics(res.Bag.Items(), fs, withNotes); s != "" {
			fmt.Fprintln(out, s)
		}
	case "msbuild":
		return diagfmt.MSBuild(out, res.Bag, fs, pathMode)
	case "json":
		return diagfmt.JSON(out, res.Bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		})
	case "sarif":
		return diagfmt.Sarif(out, res.Bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "declcheck",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	}
	return nil
}

func printSummary(out io.Writer, res *driver.Result) {
	errs := res.Bag.Count(diag.SevError)
	warns := res.Bag.Count(diag.SevWarning)
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d types, %d error(s), %d warning(s)", res.Comp.Assembly, res.Types, errs, warns)
	if dropped := res.Bag.Dropped(); dropped > 0 {
		fmt.Fprintf(&b, ", %d not shown", dropped)
	}
	if res.CacheHit {
		fmt.Fprintf(&b, " (cached %s)", res.Key.Short())
	}
	fmt.Fprintln(out, b.String())
}

// flushTracer closes the tracer explicitly because PersistentPostRun is not
// called on error.
func flushTracer(cmd *cobra.Command) {
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
		return
	}
	if tracer := trace.FromContext(cmd.Context()); tracer != nil && tracer != trace.Nop {
		_ = tracer.Flush()
		_ = tracer.Close()
	}
}

func relOrSelf(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
