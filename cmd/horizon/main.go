package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/horizon/internal/analysis"
	"github.com/san-kum/horizon/internal/config"
	"github.com/san-kum/horizon/internal/export"
	"github.com/san-kum/horizon/internal/metrics"
	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/sim"
	"github.com/san-kum/horizon/internal/storage"
	"github.com/san-kum/horizon/internal/viz"
)

var (
	dataDir     string
	configFile  string
	presetName  string
	runName     string
	particles   int
	steps       int
	dt          float64
	gravity     float64
	mass        float64
	tilt        float64
	inner       float64
	outer       float64
	seed        int64
	workers     int
	sampleEvery int
	quiet       bool

	theme        string
	fps          int
	stepsPerTick int
	gifPath      string

	seriesName    string
	analyzeSeries string
	outFile       string
	portrait      bool
	jsonOut       bool
	svgSeries     string
	svgSize       int

	ensembleRuns int
	benchSteps   int
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "horizon",
		Short: "particle disk around a central mass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(cmd.Context())
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run storage directory (default from config, then ./runs)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name (default: preset name or \"disk\")")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "record a sample every n steps")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the simulation in the terminal",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	liveCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frames per second")
	liveCmd.Flags().IntVar(&stepsPerTick, "steps-per-tick", config.DefaultStepsPerTick, "simulation steps per frame")
	liveCmd.Flags().StringVar(&gifPath, "gif", "", "gif path for recordings (toggle with g)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}
	listCmd.Flags().BoolVar(&jsonOut, "json", false, "print run metadata as json")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a sampled series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVarP(&seriesName, "series", "s", "", "series to plot ("+strings.Join(storage.SeriesNames, ", ")+"); all when empty")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the samples of a run as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final particles, or a series, as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVarP(&svgSeries, "series", "s", "", "plot this series instead of the particles")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 800, "image size in pixels")
	exportSVGCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectral analysis of a sampled series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVarP(&analyzeSeries, "series", "s", "mean_radius", "series to analyze")
	analyzeCmd.Flags().BoolVar(&portrait, "portrait", true, "show the radius/speed portrait of the final particles")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the built-in presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
			}
			w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput",
		RunE:  benchmark,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 200, "steps per measurement")

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVarP(&presetName, "preset", "p", "", "start from a preset")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run the same disk over consecutive seeds",
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVarP(&ensembleRuns, "runs", "n", 8, "number of seeds")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd,
		exportSVGCmd, analyzeCmd, presetsCmd, benchCmd, initCmd, ensembleCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "yaml config file")
	f.StringVarP(&presetName, "preset", "p", "", "preset ("+strings.Join(config.ListPresets(), ", ")+")")
	f.IntVarP(&particles, "particles", "N", physics.DefaultParticles, "number of particles")
	f.IntVar(&steps, "steps", physics.DefaultSteps, "number of steps")
	f.Float64Var(&dt, "dt", physics.DefaultDt, "time step")
	f.Float64Var(&gravity, "g", physics.DefaultG, "gravitational constant")
	f.Float64Var(&mass, "mass", physics.DefaultM, "central mass")
	f.Float64Var(&tilt, "tilt", physics.DefaultTiltDegrees, "disk tilt in degrees")
	f.Float64Var(&inner, "inner", physics.DefaultInnerRadius, "inner disk edge in absorption radii")
	f.Float64Var(&outer, "outer", physics.DefaultOuterRadius, "outer disk edge in absorption radii")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.IntVarP(&workers, "workers", "w", 0, "worker goroutines per step (0 = all cpus)")
}

// resolveConfig layers the preset, then the config file, then any flag the
// user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if presetName != "" {
		p, err := config.FromPreset(presetName)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("g") {
		cfg.G = gravity
	}
	if flags.Changed("mass") {
		cfg.Mass = mass
	}
	if flags.Changed("tilt") {
		cfg.TiltDeg = tilt
	}
	if flags.Changed("inner") {
		cfg.Disk.Inner = inner
	}
	if flags.Changed("outer") {
		cfg.Disk.Outer = outer
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("sample-every") {
		cfg.Output.SampleEvery = sampleEvery
	}
	if flags.Changed("theme") {
		cfg.View.Theme = theme
	}
	if flags.Changed("fps") {
		cfg.View.FPS = fps
	}
	if flags.Changed("steps-per-tick") {
		cfg.View.StepsPerTick = stepsPerTick
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	dir := dataDir
	if dir == "" && cfg != nil {
		dir = cfg.Output.Dir
	}
	if dir == "" {
		dir = config.DefaultOutputDir
	}
	st := storage.New(dir)
	return st, st.Init()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	pc, err := cfg.Physics()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	loop, err := sim.New(pc)
	if err != nil {
		return err
	}
	for _, m := range metrics.Default(pc) {
		loop.AddMetric(m)
	}
	rec := storage.NewRecorder(pc, cfg.Output.SampleEvery)
	loop.AddObserver(rec)

	name := runName
	if name == "" {
		name = presetName
	}
	if name == "" {
		name = "disk"
	}

	fmt.Println(titleStyle.Render("horizon run"))
	fmt.Printf("particles: %d  steps: %d  dt: %g  r_s: %g  seed: %d\n",
		pc.N, pc.Steps, pc.Dt, pc.AbsorptionRadius(), pc.Seed)

	start := time.Now()
	var progress func(*sim.Frame) error
	if !quiet {
		every := max(pc.Steps/100, 1)
		progress = func(f *sim.Frame) error {
			if f.Step%every == 0 || f.Step == pc.Steps {
				frac := float64(f.Step) / float64(pc.Steps)
				fmt.Fprintf(os.Stderr, "\r%s %3.0f%%  live %d", viz.ProgressBar(frac, 30), frac*100, f.Live)
			}
			return nil
		}
	}
	result, runErr := loop.Run(cmd.Context(), progress)
	if !quiet {
		fmt.Fprintln(os.Stderr)
	}
	elapsed := time.Since(start)

	// an interrupted run is still worth keeping
	id, err := st.Save(name, pc, result, rec.Samples())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%d steps)\n", elapsed.Round(time.Millisecond), result.StepsTaken)
	fmt.Printf("run id: %s\n\n", id)
	printResult(result)
	return runErr
}

func printResult(result *sim.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "live\t%d / %d\n", result.Live, result.Initial)
	fmt.Fprintf(w, "absorbed\t%d\n", result.Absorbed)
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Fprintf(w, "%s\t%.6g\n", name, result.Metrics[name])
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	pc, err := cfg.Physics()
	if err != nil {
		return err
	}
	loop, err := sim.New(pc)
	if err != nil {
		return err
	}

	name := presetName
	if name == "" {
		name = "disk"
	}
	return viz.Run(cmd.Context(), loop, viz.Options{
		Name:         name,
		Theme:        cfg.View.Theme,
		FPS:          cfg.View.FPS,
		StepsPerTick: cfg.View.StepsPerTick,
		GIFPath:      gifPath,
	})
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(nil)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPARTICLES\tSTEPS\tLIVE\tABSORBED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%d\t%d\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.Particles,
			r.StepsTaken, r.Steps, r.Live, r.Absorbed)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(nil)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s has %d samples, need at least 2", args[0], len(samples))
	}

	names := storage.SeriesNames
	if seriesName != "" {
		names = []string{seriesName}
	}
	for _, name := range names {
		data, err := storage.Series(samples, name)
		if err != nil {
			return err
		}
		caption := fmt.Sprintf("%s over t = %.3g..%.3g", name, samples[0].Time, samples[len(samples)-1].Time)
		fmt.Println(asciigraph.Plot(data, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption(caption)))
		fmt.Println()
	}
	return nil
}

// output returns stdout or the --out file; the close func is always safe
// to call.
func output() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(nil)
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := st.Export(w, args[0]); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore(nil)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteSamplesCSV(w, samples); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st, err := openStore(nil)
	if err != nil {
		return err
	}
	t := viz.GetTheme(theme)

	var svg string
	if svgSeries != "" {
		samples, err := st.LoadSamples(args[0])
		if err != nil {
			return err
		}
		values, err := storage.Series(samples, svgSeries)
		if err != nil {
			return err
		}
		times, err := storage.Series(samples, "time")
		if err != nil {
			return err
		}
		svg = export.SeriesToSVG(times, values, svgSize, svgSize/2, string(t.Primary))
	} else {
		meta, err := st.Load(args[0])
		if err != nil {
			return err
		}
		f, err := st.LoadSnapshot(args[0])
		if err != nil {
			return err
		}
		pc := meta.Physics()
		cam := viz.NewCamera(pc.MaxRadius())
		svg = export.FrameToSVG(f, cam, pc.AbsorptionRadius(), svgSize, t.Horizon)
	}
	if svg == "" {
		return fmt.Errorf("run %s has nothing to draw", args[0])
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, svg); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(nil)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	data, err := storage.Series(samples, analyzeSeries)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return fmt.Errorf("run %s has too few samples for spectral analysis", args[0])
	}

	// samples are evenly spaced except possibly the last one
	interval := (samples[len(samples)-2].Time - samples[0].Time) / float64(len(samples)-2)

	fmt.Println(titleStyle.Render("analysis: " + meta.ID))
	s := analysis.Describe(data)
	fmt.Printf("%s: mean %.4g  std %.4g  min %.4g  max %.4g\n", analyzeSeries, s.Mean, s.StdDev, s.Min, s.Max)

	spectrum := analysis.PowerSpectrum(data)
	if len(spectrum) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(spectrum[1:], asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("power spectrum")))
	}

	freq, power := analysis.DominantFrequency(data, interval)
	fmt.Println()
	if freq > 0 {
		fmt.Printf("dominant frequency: %.4g (power %.4g)\n", freq, power)
		fmt.Printf("period: %.4g\n", 1/freq)
	} else {
		fmt.Println("no dominant frequency")
	}

	if portrait {
		f, err := st.LoadSnapshot(args[0])
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(analysis.PhasePortraitToASCII(analysis.FramePortrait(f), 60, 20))
	}
	return nil
}

func benchmark(cmd *cobra.Command, args []string) error {
	counts := []int{1000, physics.DefaultParticles, 10000}
	pools := []int{1, runtime.GOMAXPROCS(0)}
	if pools[1] == 1 {
		pools = pools[:1]
	}

	fmt.Println(titleStyle.Render("step throughput"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tWORKERS\tSTEPS\tTIME\tSTEPS/SEC\tPARTICLE-STEPS/SEC")
	for _, n := range counts {
		for _, nw := range pools {
			pc := physics.DefaultConfig()
			pc.N = n
			pc.Steps = benchSteps
			pc.Workers = nw

			loop, err := sim.New(pc)
			if err != nil {
				return err
			}
			start := time.Now()
			result, err := loop.Run(cmd.Context(), nil)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			rate := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\t%.3g\n",
				n, nw, result.StepsTaken, elapsed.Round(time.Millisecond), rate, rate*float64(n))
		}
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if presetName != "" {
		p, err := config.FromPreset(presetName)
		if err != nil {
			return err
		}
		cfg = p
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	pc, err := cfg.Physics()
	if err != nil {
		return err
	}
	if ensembleRuns < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", ensembleRuns)
	}

	fmt.Println(titleStyle.Render("ensemble"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%d runs of %d particles, seeds %d..%d",
		ensembleRuns, pc.N, pc.Seed, pc.Seed+int64(ensembleRuns)-1)))

	start := time.Now()
	ens := sim.NewEnsemble(pc, ensembleRuns, pc.Seed, func() []sim.Metric {
		return metrics.Default(pc)
	})
	results, err := ens.Run(cmd.Context())
	if err != nil {
		return err
	}

	names := sortedKeys(results[0].Metrics)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SEED\tLIVE\t%s\n", strings.ToUpper(strings.Join(names, "\t")))
	columns := make(map[string][]float64, len(names))
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d", pc.Seed+int64(i), r.Live)
		for _, name := range names {
			v := r.Metrics[name]
			columns[name] = append(columns[name], v)
			fmt.Fprintf(w, "\t%.4g", v)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, "mean ± std\t")
	for _, name := range names {
		s := analysis.Describe(columns[name])
		fmt.Fprintf(w, "\t%.4g ± %.2g", s.Mean, s.StdDev)
	}
	fmt.Fprintln(w)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ncompleted in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
