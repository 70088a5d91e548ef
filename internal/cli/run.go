package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/banshee-data/response.report/internal/adapter"
	"github.com/banshee-data/response.report/internal/config"
	"github.com/banshee-data/response.report/internal/export"
	"github.com/banshee-data/response.report/internal/monitoring"
	"github.com/banshee-data/response.report/internal/pipeline"
	"github.com/banshee-data/response.report/internal/render"
	"github.com/banshee-data/response.report/internal/security"
	"github.com/banshee-data/response.report/internal/timeutil"
)

// errNoParameters is returned when neither --params nor the config supplies parameters.
var errNoParameters = errors.New("missing experiment parameters: pass --params unit,v1,v2,... or set parameters in the config")

// plan is a fully resolved run: config file values with flags laid over them.
type plan struct {
	profile pipeline.Profile
	format  string
	lenient bool
	files   []string
	params  render.Parameters
	cycle   render.CycleConfig
	style   render.Style
	backend render.Backend
	output  string
	export  export.Format
	open    bool
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.String("format", "", "Input layout tag (see 'response formats'); defaults to the signal's layout")
	fs.StringP("params", "p", "", "Unit followed by one value per file, e.g. ppm,10,20,30")
	fs.Float64("time-cycle", config.DefaultTimeCycle, "Nominal exposure cycle, minutes")
	fs.Float64("res-time", config.DefaultResTime, "Exposure (response) time per cycle, minutes")
	fs.Float64("rec-time", config.DefaultRecTime, "Recovery time before each exposure, minutes")
	fs.String("title", "", "Chart title")
	fs.String("subtitle", "", "Chart subtitle; defaults to a summary of the exposure cycle")
	fs.String("stimulus-label", "", "Label drawn on each exposure band (default NO₂)")
	fs.String("legend-title", "", "Legend heading (default \"Measurement parameters\")")
	fs.String("backend", config.DefaultBackend, "Output backend: html, png or svg")
	fs.StringP("out", "o", "", "Output file; defaults to <title>_<timestamp>.<backend>")
	fs.Int("width", config.DefaultWidth, "Figure width, pixels")
	fs.Int("height", config.DefaultHeight, "Figure height, pixels")
	fs.String("export", "", "Also write the normalized and time tables: csv or xlsx")
	fs.String("data-dir", "", "Resolve input files relative to this directory and reject paths outside it")
	fs.Bool("lenient", false, "Keep files shorter than the layout header as empty traces instead of failing")
	fs.Bool("open", false, "Open the rendered chart when done")
}

func newSignalCmd(app *App, profile pipeline.Profile) *cobra.Command {
	cmd := &cobra.Command{
		Use:   profile.Name + " [files...]",
		Short: fmt.Sprintf("Plot %s response for files in experiment order", profile.Quantity),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, &profile, args)
		},
	}
	addRunFlags(cmd.Flags())
	return cmd
}

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Plot the experiment described by --config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path, _ := cmd.Flags().GetString("config"); path == "" {
				return errors.New("run needs --config")
			}
			return app.run(cmd, nil, args)
		},
	}
	addRunFlags(cmd.Flags())
	return cmd
}

func (app *App) run(cmd *cobra.Command, profile *pipeline.Profile, args []string) error {
	cfg := &config.ExperimentConfig{}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(app.FS, path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	p, err := app.resolve(cmd.Flags(), cfg, profile, args)
	if err != nil {
		return err
	}
	return app.execute(cmd.Context(), p)
}

// resolve merges cfg with the flags that were explicitly set.
func (app *App) resolve(flags *pflag.FlagSet, cfg *config.ExperimentConfig, profile *pipeline.Profile, args []string) (*plan, error) {
	overlayFlags(flags, cfg)
	if len(args) > 0 {
		cfg.Files = args
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &plan{lenient: cfg.GetLenient()}
	if profile != nil {
		p.profile = *profile
	} else {
		prof, err := pipeline.LookupProfile(cfg.GetSignal())
		if err != nil {
			return nil, err
		}
		p.profile = prof
	}
	p.format = cfg.GetFormat()
	if p.format == "" {
		p.format = p.profile.DefaultFormat
	}

	if len(cfg.Files) == 0 {
		return nil, adapter.ErrNoFiles
	}
	resolved, err := security.ResolveInputs(cfg.Files, cfg.GetDataDir())
	if err != nil {
		return nil, err
	}
	p.files = resolved

	if flags.Changed("params") {
		list, _ := flags.GetString("params")
		p.params, err = render.ParseParameterList(list)
	} else {
		var items []string
		items, err = cfg.ParameterStrings()
		if err == nil && len(items) == 0 {
			err = errNoParameters
		}
		if err == nil {
			p.params, err = render.ParseParameters(items)
		}
	}
	if err != nil {
		return nil, err
	}

	p.cycle = render.CycleConfig{TimeCycle: cfg.GetTimeCycle(), ResTime: cfg.GetResTime(), RecTime: cfg.GetRecTime()}
	p.style = render.Style{
		Title:         cfg.GetTitle(),
		Subtitle:      cfg.GetSubtitle(),
		StimulusLabel: cfg.GetStimulusLabel(),
		LegendTitle:   cfg.GetLegendTitle(),
		Width:         cfg.GetWidth(),
		Height:        cfg.GetHeight(),
	}
	if p.backend, err = render.ParseBackend(cfg.GetBackend()); err != nil {
		return nil, err
	}
	if p.export, err = export.ParseFormat(cfg.GetExport()); err != nil {
		return nil, err
	}
	p.output = app.outputPath(cfg.GetOutput(), p)
	p.open, _ = flags.GetBool("open")
	return p, nil
}

// overlayFlags copies explicitly set flags into cfg.
func overlayFlags(flags *pflag.FlagSet, cfg *config.ExperimentConfig) {
	str := func(name string, dst **string) {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst = config.PtrString(v)
		}
	}
	num := func(name string, dst **float64) {
		if flags.Changed(name) {
			v, _ := flags.GetFloat64(name)
			*dst = config.PtrFloat64(v)
		}
	}
	integer := func(name string, dst **int) {
		if flags.Changed(name) {
			v, _ := flags.GetInt(name)
			*dst = config.PtrInt(v)
		}
	}

	str("format", &cfg.Format)
	str("title", &cfg.Title)
	str("subtitle", &cfg.Subtitle)
	str("stimulus-label", &cfg.StimulusLabel)
	str("legend-title", &cfg.LegendTitle)
	str("backend", &cfg.Backend)
	str("out", &cfg.Output)
	str("export", &cfg.Export)
	str("data-dir", &cfg.DataDir)
	num("time-cycle", &cfg.TimeCycle)
	num("res-time", &cfg.ResTime)
	num("rec-time", &cfg.RecTime)
	integer("width", &cfg.Width)
	integer("height", &cfg.Height)
	if flags.Changed("lenient") {
		v, _ := flags.GetBool("lenient")
		cfg.Lenient = config.PtrBool(v)
	}
	// Parameters given on the command line replace the config's, and the
	// file count is checked later against the resolved list.
	if flags.Changed("params") {
		cfg.Parameters = nil
	}
}

// outputPath returns out with the backend extension, or a timestamped name
// derived from the title when out is empty.
func (app *App) outputPath(out string, p *plan) string {
	ext := p.backend.Ext()
	if out == "" {
		title := p.style.Title
		if title == "" {
			title = p.profile.Name
		}
		return security.SanitizeFilename(title) + "_" + timeutil.Stamp(app.Clock) + ext
	}
	if filepath.Ext(out) == "" {
		return out + ext
	}
	return out
}

func (app *App) execute(ctx context.Context, p *plan) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := adapter.Lookup(p.format, adapter.Options{FS: app.FS, Lenient: p.lenient})
	if err != nil {
		return err
	}
	r, err := render.New(p.backend)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(p.output); dir != "." {
		if err := app.FS.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	// The output file is only written once rendering succeeds.
	var buf bytes.Buffer
	res, err := pipeline.New(p.profile, a, r).Run(ctx, pipeline.Request{
		Files:  p.files,
		Params: p.params,
		Cycle:  p.cycle,
		Style:  p.style,
	}, &buf)
	if err != nil {
		return err
	}
	if err := app.FS.WriteFile(p.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p.output, err)
	}
	monitoring.Logf("run %s: wrote %s", res.RunID, p.output)
	fmt.Fprintln(app.Stdout, p.output)

	if p.export != "" {
		base := strings.TrimSuffix(p.output, filepath.Ext(p.output))
		paths, err := export.Tables(app.FS, p.export, base, res.Normalized, res.Time)
		if err != nil {
			return err
		}
		for _, path := range paths {
			monitoring.Logf("run %s: exported %s", res.RunID, path)
			fmt.Fprintln(app.Stdout, path)
		}
	}

	if p.open && app.Open != nil {
		app.Open(p.output)
	}
	return nil
}
