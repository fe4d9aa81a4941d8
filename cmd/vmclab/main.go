package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/vmclab/internal/analysis"
	"github.com/san-kum/vmclab/internal/automation"
	"github.com/san-kum/vmclab/internal/config"
	"github.com/san-kum/vmclab/internal/driver"
	"github.com/san-kum/vmclab/internal/estimator"
	"github.com/san-kum/vmclab/internal/experiment"
	"github.com/san-kum/vmclab/internal/export"
	"github.com/san-kum/vmclab/internal/extbuild"
	"github.com/san-kum/vmclab/internal/storage"
	"github.com/san-kum/vmclab/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	sites       int
	hidden      int
	mixing      int
	chains      int
	samples     int
	iterations  int
	chunkSize   int
	seed        int64
	machineName string
	ruleName    string
	optName     string
	rate        float64
	momentum    float64
	shift       float64
	coupling    float64
	field       float64
	decay       float64
	periodic    bool
	configFile  string
	preset      string
	numRuns     int
	jsonOut     bool
	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	// export-svg
	svgOut string
	// build-kernels
	kernelSource string
	kernelOutput string
	buildDebug   bool
	sanitize     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vmclab",
		Short: "variational monte carlo lab for neural quantum states",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".vmclab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "optimize a variational state",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimization,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as json instead of a summary")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy trace of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the energy trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark sampling throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "optimize with a live convergence view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [model] [optimizer1] [optimizer2] ...",
		Short: "compare optimizers on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareOptimizers,
	}
	addRunFlags(compareCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "repeat a run with independent seeds",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of independent runs")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectral and autocorrelation analysis of the energy trace",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [model] [param=v1,v2,...] ...",
		Short: "grid search over hyperparameters",
		Args:  cobra.MinimumNArgs(2),
		RunE:  tuneModel,
	}
	addRunFlags(tuneCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "scan one model parameter and record the converged energy",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepModel,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "field", "parameter to sweep (field, coupling, decay)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.2, "sweep start")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2.0, "sweep end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of sweep points")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of optimizations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the energy trace to an SVG file",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "", "output path (defaults to <run_id>.svg)")

	buildCmd := &cobra.Command{
		Use:   "build-kernels",
		Short: "compile the native sampling kernels",
		RunE:  buildKernels,
	}
	buildCmd.Flags().StringVar(&kernelSource, "source", "kernels", "kernel source directory")
	buildCmd.Flags().StringVar(&kernelOutput, "output", "", "output directory (defaults to <source>/lib)")
	buildCmd.Flags().BoolVar(&buildDebug, "debug", false, "debug build")
	buildCmd.Flags().BoolVar(&sanitize, "sanitize", false, "enable address and undefined sanitizers")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd,
		benchCmd, liveCmd, compareCmd, ensembleCmd, presetsCmd,
		analyzeCmd, tuneCmd, sweepCmd, scenarioCmd, exportSVGCmd, buildCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&sites, "sites", 8, "number of lattice sites")
	cmd.Flags().IntVar(&hidden, "hidden", 8, "hidden units")
	cmd.Flags().IntVar(&mixing, "mixing", 4, "mixing units (ndm)")
	cmd.Flags().IntVar(&chains, "chains", 8, "parallel markov chains")
	cmd.Flags().IntVar(&samples, "samples", 256, "samples per iteration")
	cmd.Flags().IntVar(&iterations, "iters", 200, "optimization iterations")
	cmd.Flags().IntVar(&chunkSize, "chunk", 0, "derivative chunk size (0 = off)")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&machineName, "machine", "rbm", "variational ansatz")
	cmd.Flags().StringVar(&ruleName, "rule", "local", "sampler transition rule")
	cmd.Flags().StringVar(&optName, "optimizer", "sgd", "optimizer")
	cmd.Flags().Float64Var(&rate, "rate", 0.05, "learning rate")
	cmd.Flags().Float64Var(&momentum, "momentum", 0.0, "sgd momentum")
	cmd.Flags().Float64Var(&shift, "shift", 0.0, "sr diagonal shift (0 disables sr)")
	cmd.Flags().Float64Var(&coupling, "coupling", 1.0, "coupling strength J")
	cmd.Flags().Float64Var(&field, "field", 1.0, "transverse field h")
	cmd.Flags().Float64Var(&decay, "decay", 0.0, "dissipation rate (lindblad)")
	cmd.Flags().BoolVar(&periodic, "periodic", true, "periodic boundary conditions")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		loaded.Model = model
		cfg = loaded
	}

	// CLI flags override preset and file values.
	if cmd.Flags().Changed("sites") {
		cfg.Sites = sites
	}
	if cmd.Flags().Changed("hidden") {
		cfg.Hidden = hidden
	}
	if cmd.Flags().Changed("mixing") {
		cfg.Mixing = mixing
	}
	if cmd.Flags().Changed("chains") {
		cfg.Chains = chains
	}
	if cmd.Flags().Changed("samples") {
		cfg.Samples = samples
	}
	if cmd.Flags().Changed("iters") {
		cfg.Iterations = iterations
	}
	if cmd.Flags().Changed("chunk") {
		cfg.ChunkSize = chunkSize
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("machine") {
		cfg.Machine = machineName
	}
	if cmd.Flags().Changed("rule") {
		cfg.Sampler = ruleName
	}
	if cmd.Flags().Changed("optimizer") {
		cfg.Optimizer = optName
	}
	if cmd.Flags().Changed("rate") {
		cfg.OptimParams.Rate = rate
	}
	if cmd.Flags().Changed("momentum") {
		cfg.OptimParams.Momentum = momentum
	}
	if cmd.Flags().Changed("shift") {
		cfg.OptimParams.Shift = shift
	}
	if cmd.Flags().Changed("coupling") {
		cfg.Lattice.Coupling = coupling
	}
	if cmd.Flags().Changed("field") {
		cfg.Lattice.Field = field
	}
	if cmd.Flags().Changed("decay") {
		cfg.Lattice.Decay = decay
	}
	if cmd.Flags().Changed("periodic") {
		cfg.Periodic = periodic
	}

	// Open systems need the density matrix machinery unless overridden.
	if model == "lindblad" && !cmd.Flags().Changed("machine") && preset == "" && configFile == "" {
		cfg.Machine = "ndm"
	}

	return cfg, nil
}

func runOptimization(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}

	if !jsonOut {
		fmt.Printf("optimizing %s (%s, %d sites)...\n", cfg.Model, cfg.Machine, cfg.Sites)
	}
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	if jsonOut {
		return storage.ExportJSONStdout(cfg, result)
	}
	printSummary(result, runID, elapsed)
	return nil
}

func printSummary(result *driver.Result, runID string, elapsed time.Duration) {
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("iterations: %d\n", result.Iterations)
	if n := len(result.Energies); n > 0 {
		final := result.Energies[n-1]
		fmt.Printf("final energy: %.6f ± %.6f\n", real(final.Mean), final.ErrorOfMean)
		fmt.Printf("rhat: %.4f\n", final.Rhat)
	}
	if n := len(result.Acceptance); n > 0 {
		fmt.Printf("acceptance: %.1f%%\n", 100*result.Acceptance[n-1])
	}
	if len(result.Errors) > 0 {
		fmt.Printf("warnings: %d iterations fell back to the raw gradient\n", len(result.Errors))
	}
	if len(result.Estimators) > 0 {
		fmt.Println("\nestimators:")
		for name, val := range result.Estimators {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tMACHINE\tSITES\tITERS\tENERGY\tTIME")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.6f\t%s\n",
			run.ID,
			run.Model,
			run.Machine,
			run.Sites,
			run.Iterations,
			run.FinalEnergy,
			run.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	energies, errors, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}

	if len(energies) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s (%s)\n", meta.Model, meta.Machine)
	fmt.Printf("iterations: %d\n\n", len(energies))

	graph := asciigraph.Plot(energies,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("energy vs iteration"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(errors,
		asciigraph.Height(6),
		asciigraph.Width(80),
		asciigraph.Caption("error of mean"),
	)
	fmt.Println(graph)

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	energies, errors, err := st.LoadEnergies(args[0])
	if err != nil {
		return err
	}

	if len(energies) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"iteration", "energy", "error"}); err != nil {
		return err
	}
	for i := range energies {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(energies[i], 'f', 8, 64),
			strconv.FormatFloat(errors[i], 'f', 8, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	model := args[0]

	siteCounts := []int{4, 8, 12}
	sampleCounts := []int{128, 256, 512}

	fmt.Printf("benchmarking %s\n\n", model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SITES\tSAMPLES\tITERS\tTIME\tITERS/SEC")

	for _, n := range siteCounts {
		for _, s := range sampleCounts {
			cfg := config.DefaultConfig()
			cfg.Model = model
			cfg.Sites = n
			cfg.Hidden = n
			cfg.Samples = s
			cfg.Iterations = 20
			cfg.Seed = 42
			if model == "lindblad" {
				cfg.Machine = "ndm"
				cfg.Lattice.Decay = 0.5
			}

			exp := experiment.New(cfg)
			if err := exp.Setup(); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			perSec := float64(result.Iterations) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.1f\n", n, s, result.Iterations, elapsed.Round(time.Millisecond), perSec)
		}
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The feeder drops out on cancellation, so quitting the view early
	// cannot leave the driver blocked on a full progress channel.
	feed := viz.NewFeeder(ctx, 16)
	exp.Driver().SetProgress(func(it int, stats estimator.Stats, acceptance float64) {
		feed.Send(viz.Progress{
			Iteration:  it,
			Energy:     real(stats.Mean),
			Error:      stats.ErrorOfMean,
			Variance:   stats.Variance,
			Rhat:       stats.Rhat,
			Acceptance: acceptance,
		})
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := exp.Run(ctx)
		feed.Close()
		errCh <- err
	}()

	m := viz.NewModel(cfg.Model, cfg.Iterations, feed.C())
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}

	cancel()
	if err := <-errCh; err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func compareOptimizers(cmd *cobra.Command, args []string) error {
	model := args[0]
	optimizers := args[1:]

	fmt.Printf("comparing optimizers for %s\n\n", model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPTIMIZER\tFINAL ENERGY\tERROR\tACCEPTANCE\tTIME")

	for _, name := range optimizers {
		cfg, err := buildConfig(cmd, model)
		if err != nil {
			return err
		}
		cfg.Optimizer = name
		cfg.Seed = 42

		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(start)

		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		final := result.Energies[len(result.Energies)-1]
		acc := result.Acceptance[len(result.Acceptance)-1]
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.1f%%\t%v\n",
			name, real(final.Mean), final.ErrorOfMean, 100*acc, elapsed.Round(time.Millisecond))
	}

	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	factory := func(runSeed int64) (*driver.VMC, error) {
		c := *cfg
		c.Seed = runSeed
		exp := experiment.New(&c)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		return exp.Driver(), nil
	}

	fmt.Printf("running %d independent optimizations of %s...\n", numRuns, cfg.Model)
	start := time.Now()

	ens := driver.NewEnsemble(factory, numRuns, cfg.Seed)
	results, err := ens.Run(context.Background(), driver.Config{
		Iterations:     cfg.Iterations,
		Thermalization: cfg.Sites,
		ChunkSize:      cfg.ChunkSize,
	})
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSEED\tFINAL ENERGY\tERROR\tRHAT")
	for i, res := range results {
		if len(res.Energies) == 0 {
			continue
		}
		final := res.Energies[len(res.Energies)-1]
		fmt.Fprintf(w, "%d\t%d\t%.6f\t%.6f\t%.4f\n",
			i, cfg.Seed+int64(i), real(final.Mean), final.ErrorOfMean, final.Rhat)
	}
	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	energies, _, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}
	if len(energies) < 4 {
		return fmt.Errorf("not enough data to analyze")
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("model: %s (%s)\n\n", meta.Model, meta.Machine)

	ps := analysis.PowerSpectrum(energies)
	plotData := ps[1 : len(ps)/2+1]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum of the energy trace"),
	)
	fmt.Println(graph)
	fmt.Println()

	maxLag := 30
	if maxLag > len(energies)/2 {
		maxLag = len(energies) / 2
	}
	acf := analysis.Autocorrelation(energies, maxLag)
	graph = asciigraph.Plot(acf,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("autocorrelation"),
	)
	fmt.Println(graph)
	fmt.Println()

	fmt.Printf("integrated autocorrelation time: %.2f iterations\n", analysis.IntegratedTime(energies))
	return nil
}

func tuneModel(cmd *cobra.Command, args []string) error {
	model := args[0]

	names := make([]string, 0, len(args)-1)
	ranges := make([][]float64, 0, len(args)-1)
	for _, arg := range args[1:] {
		name, list, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected param=v1,v2,... got %q", arg)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("bad value %q for %s: %w", s, name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	cfg, err := buildConfig(cmd, model)
	if err != nil {
		return err
	}
	cfg.Seed = 42

	gs, err := experiment.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	fmt.Printf("grid search over %v for %s...\n", names, model)
	start := time.Now()

	best, bestEnergy, err := gs.Search(context.Background(), cfg)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))
	fmt.Printf("best energy: %.6f\n", bestEnergy)
	for name, val := range best {
		fmt.Printf("  %s: %g\n", name, val)
	}
	return nil
}

func sweepModel(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	cfg.Seed = 42

	sweep := &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}

	fmt.Printf("sweeping %s from %g to %g in %d steps...\n\n", sweepParam, sweepMin, sweepMax, sweepSteps)

	results, err := automation.RunSweep(context.Background(), sweep)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tENERGY\tERROR\n", strings.ToUpper(sweepParam))
	energies := make([]float64, len(results))
	for i, r := range results {
		energies[i] = r.Energy
		fmt.Fprintf(w, "%.4f\t%.6f\t%.6f\n", r.ParamValue, r.Energy, r.ErrorOfMean)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	graph := asciigraph.Plot(energies,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("energy vs %s", sweepParam)),
	)
	fmt.Println(graph)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s (%d steps)\n", scenario.Name, len(scenario.Steps))
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}

	results, err := automation.RunScenario(context.Background(), scenario, st)
	if err != nil {
		return err
	}

	for i, res := range results {
		if len(res.Energies) == 0 {
			continue
		}
		final := res.Energies[len(res.Energies)-1]
		fmt.Printf("step %d: energy %.6f ± %.6f\n", i+1, real(final.Mean), final.ErrorOfMean)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	energies, errors, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}

	out := svgOut
	if out == "" {
		out = runID + ".svg"
	}
	title := fmt.Sprintf("%s (%s, %d sites)", meta.Model, meta.Machine, meta.Sites)
	if err := export.WriteTraceSVG(out, energies, errors, title); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func buildKernels(cmd *cobra.Command, args []string) error {
	cfg := extbuild.DefaultConfig(kernelSource)
	if kernelOutput != "" {
		cfg.OutputDir = kernelOutput
	}
	if buildDebug {
		cfg.Debug = true
	}
	if sanitize {
		cfg.Sanitizer = true
	}
	cfg.Stdout = os.Stdout
	cfg.Stderr = os.Stderr

	if err := extbuild.Build(cfg); err != nil {
		return err
	}
	fmt.Println("kernels built")
	return nil
}
