package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mcsim/internal/automation"
	"github.com/san-kum/mcsim/internal/config"
	"github.com/san-kum/mcsim/internal/experiment"
	"github.com/san-kum/mcsim/internal/logging"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/optim"
	"github.com/san-kum/mcsim/internal/random"
	"github.com/san-kum/mcsim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	seed       int64
	macro      int
	micro      int
	runs       int
	saveConfig string
	param      string
	values     []float64
	metric     string
	target     float64
	env        config.Env
)

func main() {
	var err error
	env, err = config.ParseEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:          "mcsim",
		Short:        "particle monte carlo simulation",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", env.DataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", env.LogLevel, "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [system/preset]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	runCmd.Flags().IntVar(&macro, "macro", 0, "macro steps")
	runCmd.Flags().IntVar(&micro, "micro", 0, "move steps per macro step")
	runCmd.Flags().IntVar(&runs, "runs", 1, "independent runs with consecutive seeds")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved config to this path")

	infoCmd := &cobra.Command{
		Use:   "info [system/preset]",
		Short: "show the system and moves without running",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showInfo,
	}
	infoCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run summary",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and particle count",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	scanCmd := &cobra.Command{
		Use:   "scan [system/preset]",
		Short: "scan a move parameter over a grid of values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  scanParam,
	}
	scanCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	scanCmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	scanCmd.Flags().IntVar(&macro, "macro", 0, "macro steps")
	scanCmd.Flags().IntVar(&micro, "micro", 0, "move steps per macro step")
	scanCmd.Flags().StringVar(&param, "param", "bath.mu", "parameter as <move>.<field>")
	scanCmd.Flags().Float64SliceVar(&values, "values", nil, "parameter values")
	scanCmd.Flags().StringVar(&metric, "metric", "energy", "metric to score")
	scanCmd.Flags().Float64Var(&target, "target", 0, "score by distance from this metric value")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a scenario file and save each run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [system]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, infoCmd, listCmd, showCmd, plotCmd, exportCmd, scanCmd, scenarioCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config from a preset argument or --config file,
// falling back to the default system. Flags override file values, and the
// environment overrides both for the seed unless --seed is given.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case len(args) == 1:
		system, name, ok := strings.Cut(args[0], "/")
		if !ok {
			return nil, fmt.Errorf("preset must be system/name, got %q", args[0])
		}
		cfg = config.GetPreset(system, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets(system))
		}
	case configFile != "":
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	default:
		cfg = config.DefaultConfig()
	}

	cfg.ApplyEnv(env)
	flags := cmd.Flags()
	if flags.Lookup("seed") != nil && flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Lookup("macro") != nil && flags.Changed("macro") {
		cfg.Macro = macro
	}
	if flags.Lookup("micro") != nil && flags.Changed("micro") {
		cfg.Micro = micro
	}
	if cfg.Seed == 0 {
		s, err := random.NewSeed()
		if err != nil {
			return nil, err
		}
		cfg.Seed = s
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	log := logging.New(logLevel)
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := experiment.New(cfg, log)
	fmt.Printf("running %s (%d x %d steps, seed %d)...\n", cfg.Name, cfg.Macro, cfg.Micro, cfg.Seed)
	start := time.Now()

	var results []*mc.Result
	if runs > 1 {
		results, err = exp.RunEnsemble(ctx, runs)
	} else {
		if err = exp.Setup(); err != nil {
			return err
		}
		var result *mc.Result
		result, err = exp.Run(ctx)
		results = []*mc.Result{result}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		log.Warnf("interrupted, saving partial results")
	}

	elapsed := time.Since(start)
	fmt.Printf("completed in %v\n", elapsed)

	for i, result := range results {
		if result == nil {
			continue
		}
		runCfg := *cfg
		runCfg.Seed = cfg.Seed + int64(i)
		runID, err := st.Save(&runCfg, result)
		if err != nil {
			return err
		}
		fmt.Println(renderResult(runID, &runCfg, result))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	log := logging.New(logLevel)
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, runErr := automation.RunScenario(ctx, sc, log)
	for _, r := range results {
		runID, err := st.Save(r.Config, r.Result)
		if err != nil {
			return err
		}
		fmt.Println(renderResult(runID, r.Config, r.Result))
	}
	return runErr
}

func showInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp := experiment.New(cfg, logging.New(logLevel))
	if err := exp.Setup(); err != nil {
		return err
	}
	fmt.Println(renderInfo(cfg, exp.Propagator()))
	return nil
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSEED\tMACRO\tENERGY\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4f\t%.2e\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.MacroSteps,
			run.FinalEnergy,
			run.Drift,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Println(renderMetadata(meta))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rows, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(rows))

	energies := make([]float64, len(rows))
	active := make([]float64, len(rows))
	for i, r := range rows {
		energies[i] = r.Energy
		active[i] = float64(r.Active)
	}

	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{energies, "energy (kT) vs macro step"},
		{active, "active particles vs macro step"},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

var errNoScanValues = errors.New("scan needs at least one value in --values")

func scanParam(cmd *cobra.Command, args []string) error {
	if len(values) == 0 {
		return errNoScanValues
	}
	log := logging.New(logLevel)
	base, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	objective := optim.Minimize(metric)
	if cmd.Flags().Changed("target") {
		objective = optim.Target(metric, target)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch([]string{param}, [][]float64{values})
	best, points, err := g.Search(ctx, func(params map[string]float64) (*experiment.Experiment, error) {
		cfg, err := optim.WithMoveParams(base, params)
		if err != nil {
			return nil, err
		}
		return experiment.New(cfg, log), nil
	}, objective)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tSCORE\n", strings.ToUpper(param), strings.ToUpper(metric))
	for _, p := range points {
		mark := ""
		if p.Params[param] == best.Params[param] {
			mark = " *"
		}
		fmt.Fprintf(w, "%g\t%.6g\t%.6g%s\n", p.Params[param], p.Result.Metrics[metric], p.Score, mark)
	}
	return w.Flush()
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

func listPresets(cmd *cobra.Command, args []string) error {
	systems := config.ListSystems()
	if len(args) == 1 {
		systems = []string{args[0]}
	}
	for _, system := range systems {
		presets := config.ListPresets(system)
		if len(presets) == 0 {
			fmt.Printf("no presets for system: %s\n", system)
			continue
		}
		fmt.Printf("presets for %s:\n", system)
		for _, p := range presets {
			fmt.Printf("  %s/%s\n", system, p)
		}
	}
	return nil
}
