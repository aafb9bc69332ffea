package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tessel/internal/diag"
	"tessel/internal/diagfmt"
	"tessel/internal/driver"
	"tessel/internal/emit"
	"tessel/internal/observ"
	"tessel/internal/target"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] <files-or-dirs...>",
	Short: "Lower tensor group files into buffer-backed functions",
	Long: `Lower reads *.group.toml files, lowers each tensor group for the selected
target and writes one artifact per file. Without --out, text listings go to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().String("target", "", "target architecture (unknown|x86|arm|nvgpu|hygon-hip|hygon-sycl)")
	lowerCmd.Flags().String("emit", "", "artifact format (text|msgpack)")
	lowerCmd.Flags().StringP("out", "o", "", "output directory (- for stdout)")
	lowerCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

// lowerSettings is the merged view of flags and tessel.toml.
type lowerSettings struct {
	target target.Target
	emit   emit.Format
	out    string
	jobs   int
}

func resolveLowerSettings(cmd *cobra.Command, manifest *projectManifest) (lowerSettings, error) {
	var build buildConfig
	if manifest != nil {
		build = manifest.Config.Build
		build.Out = manifest.resolveOut()
	}

	flags := cmd.Flags()
	pick := func(name, fromManifest string) string {
		if flags.Changed(name) || fromManifest == "" {
			v, _ := flags.GetString(name)
			return v
		}
		return fromManifest
	}

	tgt, err := target.Parse(pick("target", build.Target))
	if err != nil {
		return lowerSettings{}, fmt.Errorf("%s: %w", diag.CfgUnknownTarget.ID(), err)
	}
	format, err := emit.ParseFormat(pick("emit", build.Emit))
	if err != nil {
		return lowerSettings{}, fmt.Errorf("%s: %w", diag.CfgUnknownEmit.ID(), err)
	}
	out := pick("out", build.Out)
	if out == "-" {
		out = ""
	}
	if out == "" && format == emit.FormatMsgpack {
		return lowerSettings{}, errors.New("msgpack artifacts need an output directory (--out)")
	}

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return lowerSettings{}, err
	}
	if !flags.Changed("jobs") && build.Jobs > 0 {
		jobs = build.Jobs
	}
	return lowerSettings{target: tgt, emit: format, out: out, jobs: jobs}, nil
}

func runLower(cmd *cobra.Command, args []string) error {
	root := cmd.Root().PersistentFlags()
	quiet, _ := root.GetBool("quiet")
	showTimings, _ := root.GetBool("timings")
	maxDiagnostics, _ := root.GetInt("max-diagnostics")
	diagFormatStr, _ := root.GetString("diag-format")
	diagFormat, err := diagfmt.ParseFormat(diagFormatStr)
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	timer := observ.NewTimer()
	idx := timer.Begin("config")
	manifest, err := loadProjectManifest(".")
	if err != nil {
		return fmt.Errorf("%s: %w", diag.CfgBadManifest.ID(), err)
	}
	settings, err := resolveLowerSettings(cmd, manifest)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, manifest)
	if err != nil {
		return err
	}
	defer cleanup()
	timer.End(idx, settings.target.String())

	idx = timer.Begin("discover")
	files, err := driver.ListGroupFiles(args)
	timer.End(idx, fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no *.group.toml files found")
	}

	idx = timer.Begin("lower")
	results, err := driver.LowerFiles(cmd.Context(), files, driver.Options{
		Target:         settings.target,
		Emit:           settings.emit,
		OutDir:         settings.out,
		Jobs:           settings.jobs,
		MaxDiagnostics: maxDiagnostics,
	})
	timer.End(idx, "")
	if err != nil {
		return err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	failed := 0
	bag := diag.NewBag(maxDiagnostics)
	for i := range results {
		res := &results[i]
		bag.Merge(res.Bag)
		if res.Failed() {
			failed++
			continue
		}
		if settings.out == "" {
			if err := emit.Write(stdout, emit.FormatText, res.Path, settings.target, res.Funcs); err != nil {
				return err
			}
		} else if !quiet {
			fmt.Fprintf(stderr, "%s %s -> %s (%d funcs)\n", okLabel(), res.Path, res.Output, len(res.Funcs))
		}
	}

	bag.Sort()
	bag.Dedup()
	if err := renderDiagnostics(stderr, bag, diagFormat, quiet, maxDiagnostics); err != nil {
		return err
	}

	if showTimings {
		printFileTimings(stderr, results)
		fmt.Fprint(stderr, timer.Summary())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d group files failed to lower", failed, len(results))
	}
	return nil
}

func printFileTimings(out io.Writer, results []driver.FileResult) {
	for _, res := range results {
		fmt.Fprintf(out, "%s: %.2f ms\n", res.Path, res.Timing.TotalMS)
		for _, p := range res.Timing.Phases {
			fmt.Fprintf(out, "  %-10s %8.2f ms", p.Name, p.DurationMS)
			if p.Note != "" {
				fmt.Fprintf(out, "  // %s", p.Note)
			}
			fmt.Fprintln(out)
		}
	}
}
