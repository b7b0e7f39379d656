// Package pipeline runs the race EDA steps in order: load, profile, clean,
// aggregate and render. A run is synchronous and single-threaded; the table
// lives only for the duration of the run and the input file is never modified.
package pipeline

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/KaramelBytes/raceda/internal/analysis"
	"github.com/KaramelBytes/raceda/internal/config"
	"github.com/KaramelBytes/raceda/internal/dataset"
	"github.com/KaramelBytes/raceda/internal/manifest"
	"github.com/KaramelBytes/raceda/internal/render"
)

// Options configures every step of a run.
type Options struct {
	Load    dataset.LoadOptions
	Clean   dataset.CleanOptions
	Profile analysis.Options
	Roles   analysis.Roles
	Bins    int
	Size    render.Size
	// OutputDir receives the artifacts and manifest.json.
	OutputDir string
	// Workbook also writes eda.xlsx.
	Workbook bool
}

// FromConfig maps the global configuration onto run options.
func FromConfig(c *config.Global) Options {
	prof := analysis.DefaultOptions()
	prof.SampleRows = c.SampleRows
	return Options{
		Load: dataset.LoadOptions{Delimiter: c.DelimiterRune(), MaxRows: c.MaxRows},
		Clean: dataset.CleanOptions{
			DropColumns:    c.DropColumns,
			DateColumn:     c.DateColumn,
			DateLayouts:    c.DateLayouts,
			NumericColumns: c.NumericColumns,
		},
		Profile: prof,
		Roles: analysis.Roles{
			Outcome: c.OutcomeColumn,
			Date:    c.DateColumn,
			Horse:   c.HorseColumn,
			Weather: c.WeatherColumn,
			Track:   c.TrackColumn,
			Weight:  c.WeightColumn,
		},
		Bins:      c.HistogramBins,
		Size:      render.Size{Width: c.ChartWidth, Height: c.ChartHeight},
		OutputDir: c.OutputDir,
	}
}

// Result carries everything computed by Analyze.
type Result struct {
	Input   string
	Raw     *dataset.Table
	Profile *analysis.Report
	Cleaned *dataset.Table
	Clean   dataset.CleanReport
	// Corr is computed on the cleaned table so coerced prices take part.
	Corr       *analysis.CorrMatrix
	Aggregates *analysis.Aggregates
}

// Runner executes pipeline steps with a shared logger.
type Runner struct {
	log *zap.Logger
	opt Options
}

// New returns a Runner. A nil logger disables logging.
func New(log *zap.Logger, opt Options) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if opt.Bins <= 0 {
		opt.Bins = 20
	}
	return &Runner{log: log, opt: opt}
}

// Options returns the runner's options.
func (r *Runner) Options() Options { return r.opt }

// Load reads the input table. Missing files and malformed content are fatal.
func (r *Runner) Load(path string) (*dataset.Table, error) {
	r.log.Debug("load", zap.String("path", path))
	t, err := dataset.Load(path, r.opt.Load)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	r.log.Debug("loaded", zap.Int("rows", t.Rows()), zap.Int("cols", t.Cols()))
	return t, nil
}

// Clean runs the cleaner and logs non-fatal data issues.
func (r *Runner) Clean(t *dataset.Table) (*dataset.Table, dataset.CleanReport) {
	out, rep := dataset.Clean(t, r.opt.Clean)
	r.log.Debug("cleaned", zap.Strings("dropped", rep.Dropped), zap.Int("cols", out.Cols()))
	if len(rep.Missing) > 0 {
		r.log.Warn("drop columns not present", zap.Strings("columns", rep.Missing))
	}
	if r.opt.Clean.DateColumn != "" && rep.DateColumn == "" {
		r.log.Warn("date column not present", zap.String("column", r.opt.Clean.DateColumn))
	}
	if rep.DateFailures > 0 {
		r.log.Warn("unparseable dates set to missing", zap.String("column", rep.DateColumn), zap.Int("count", rep.DateFailures))
	}
	for col, n := range rep.NumericFailures {
		r.log.Warn("unparseable numbers set to missing", zap.String("column", col), zap.Int("count", n))
	}
	return out, rep
}

// Aggregate computes the grouped views and logs the empty ones.
func (r *Runner) Aggregate(t *dataset.Table) *analysis.Aggregates {
	agg := analysis.Aggregate(t, r.opt.Roles)
	if empty := agg.Empty(); len(empty) > 0 {
		r.log.Warn("empty aggregates", zap.Strings("aggregates", empty))
	}
	return agg
}

// Analyze runs every step except rendering.
func (r *Runner) Analyze(path string) (*Result, error) {
	raw, err := r.Load(path)
	if err != nil {
		return nil, err
	}
	res := &Result{Input: path, Raw: raw}
	res.Profile = analysis.Profile(raw, r.opt.Profile)
	r.log.Debug("profiled", zap.Int("columns", len(res.Profile.Cols)), zap.Strings("warnings", res.Profile.Warnings))

	res.Cleaned, res.Clean = r.Clean(raw)
	corrOpt := analysis.Options{Correlations: true}
	res.Corr = analysis.Profile(res.Cleaned, corrOpt).Corr
	res.Aggregates = r.Aggregate(res.Cleaned)
	return res, nil
}

type chartSpec struct {
	name string
	file string
	draw func(w io.Writer) error
}

func (r *Runner) charts(res *Result) []chartSpec {
	agg, size, bins := res.Aggregates, r.opt.Size, r.opt.Bins
	horseWins := make([]float64, len(agg.WinsPerHorse))
	for i, c := range agg.WinsPerHorse {
		horseWins[i] = float64(c.Count)
	}
	return []chartSpec{
		{"correlation_heatmap", "correlation_heatmap.png", func(w io.Writer) error {
			return render.Heatmap(w, "Correlation of numeric columns", res.Corr, size)
		}},
		{"win_loss", "win_loss_pie.png", func(w io.Writer) error {
			return render.Pie(w, "Win/Loss ratio", agg.WinLoss, size)
		}},
		{"weight_by_outcome", "weight_by_outcome_box.png", func(w io.Writer) error {
			return render.BoxPlot(w, "Weight by outcome", agg.WeightsByWon, size)
		}},
		{"races_over_time", "races_over_time.png", func(w io.Writer) error {
			return render.Line(w, "Races over time", agg.RacesOverTime, size)
		}},
		{"winner_weights", "winner_weights_hist.png", func(w io.Writer) error {
			return render.Histogram(w, "Weight of winning horses", agg.WinnerWeights, bins, size)
		}},
		{"wins_per_horse", "wins_per_horse_hist.png", func(w io.Writer) error {
			return render.Histogram(w, "Wins per horse", horseWins, bins, size)
		}},
		{"wins_weather_track", "wins_weather_track.png", func(w io.Writer) error {
			return render.StackedBar(w, "Wins by weather and track type", agg.WeatherTrack, size)
		}},
	}
}

// Render writes every chart, the Markdown profile, the cleaned CSV and
// optionally the workbook into the output directory, then saves the manifest.
func (r *Runner) Render(res *Result) (*manifest.Manifest, error) {
	m := manifest.New(res.Input, r.opt.OutputDir)
	if err := m.Fingerprint(); err != nil {
		return nil, err
	}
	m.Rows, m.Cols = res.Raw.Rows(), res.Raw.Cols()
	clean := res.Clean
	m.Clean = &clean
	m.Empty = res.Aggregates.Empty()

	for _, c := range r.charts(res) {
		r.log.Debug("render", zap.String("chart", c.name))
		if err := m.WriteArtifact(c.name, c.file, "png", c.draw); err != nil {
			return nil, err
		}
	}
	if err := m.WriteArtifact("profile", "profile.md", "markdown", func(w io.Writer) error {
		_, err := io.WriteString(w, res.Profile.Markdown())
		return err
	}); err != nil {
		return nil, err
	}
	if err := m.WriteArtifact("cleaned", "cleaned.csv", "csv", res.Cleaned.WriteCSV); err != nil {
		return nil, err
	}
	if r.opt.Workbook {
		if err := m.WriteArtifact("workbook", "eda.xlsx", "xlsx", func(w io.Writer) error {
			return analysis.ExportXLSX(w, res.Profile, res.Aggregates)
		}); err != nil {
			return nil, err
		}
	}
	if err := m.Save(); err != nil {
		return nil, err
	}
	r.log.Debug("manifest saved", zap.String("id", m.ID), zap.Int("artifacts", len(m.Artifacts)))
	return m, nil
}

// Run analyzes path and renders every artifact.
func (r *Runner) Run(path string) (*Result, *manifest.Manifest, error) {
	res, err := r.Analyze(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := r.Render(res)
	if err != nil {
		return res, nil, err
	}
	return res, m, nil
}
