package batch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/banshee-data/eda.report/internal/eda"
	"github.com/banshee-data/eda.report/internal/edaplot"
	"github.com/banshee-data/eda.report/internal/fsutil"
	"github.com/banshee-data/eda.report/internal/recording"
	"github.com/banshee-data/eda.report/internal/security"
	"github.com/banshee-data/eda.report/internal/timeutil"
)

// Output file names.
const (
	FigureSuffix = "_eda_processed1.png"
	ReportSuffix = "_eda_processed1.html"
	ResultsName  = "eda_results_processed1.csv"
	ResultsXLSX  = "eda_results_processed1.xlsx"
)

// Config is the explicit configuration of one batch run.
type Config struct {
	RawFolder     string
	ResultsFolder string

	Participants []string
	Tasks        []string
	Sessions     []string

	// InputName maps a key to its file name inside RawFolder. Nil uses
	// <participant>_<task>_<session>_eda plus the format's extension.
	InputName   func(RunKey) string
	InputFormat recording.Format
	EDFSignal   int

	TrimSamples      int
	DownsampleFactor int
	TargetRateHz     float64

	Params eda.Params
}

// Keys enumerates the configured run keys.
func (c Config) Keys() []RunKey {
	return Enumerate(c.Participants, c.Tasks, c.Sessions)
}

// InputPath is the raw file path for k.
func (c Config) InputPath(k RunKey) string {
	if c.InputName != nil {
		return filepath.Join(c.RawFolder, c.InputName(k))
	}
	return filepath.Join(c.RawFolder, k.Stem()+"_eda"+c.InputFormat.Extension())
}

// FigurePath is the figure path for k.
func (c Config) FigurePath(k RunKey) string {
	return filepath.Join(c.ResultsFolder, k.Stem()+FigureSuffix)
}

// ReportPath is the HTML report path for k.
func (c Config) ReportPath(k RunKey) string {
	return filepath.Join(c.ResultsFolder, k.Stem()+ReportSuffix)
}

// ResultsPath is the results table path.
func (c Config) ResultsPath() string {
	return filepath.Join(c.ResultsFolder, ResultsName)
}

// ResultsXLSXPath is the path of the XLSX copy of the results table.
func (c Config) ResultsXLSXPath() string {
	return filepath.Join(c.ResultsFolder, ResultsXLSX)
}

// Renderer draws a processed signal.
type Renderer interface {
	Render(w io.Writer, sig *eda.Signals, title string) error
}

// Driver processes run keys sequentially.
type Driver struct {
	Config Config
	FS     fsutil.FileSystem
	Figure Renderer
	// Report is optional; when set an HTML report is written per key.
	Report Renderer

	// CheckPath validates generated output paths against the results
	// folder. Defaults to security.ValidatePathLexically.
	CheckPath func(path, dir string) error

	// Clock times each key. Defaults to the wall clock.
	Clock timeutil.Clock

	logf func(format string, v ...interface{})
}

// NewDriver returns a driver writing through fsys.
func NewDriver(cfg Config, fsys fsutil.FileSystem, figure Renderer) *Driver {
	return &Driver{
		Config:    cfg,
		FS:        fsys,
		Figure:    figure,
		CheckPath: security.ValidatePathLexically,
		Clock:     timeutil.RealClock{},
		logf:      log.Printf,
	}
}

// SetLogger replaces the progress logger. Passing nil mutes it.
func (d *Driver) SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		d.logf = func(string, ...interface{}) {}
		return
	}
	d.logf = f
}

func (d *Driver) log(format string, v ...interface{}) {
	if d.logf == nil {
		d.logf = log.Printf
	}
	d.logf(format, v...)
}

// Run processes every run key in enumeration order. A key that fails never
// stops the batch.
func (d *Driver) Run() []Outcome {
	if err := d.FS.MkdirAll(d.Config.ResultsFolder, 0o755); err != nil {
		d.log("Could not create results folder %s: %v", d.Config.ResultsFolder, err)
	}
	keys := d.Config.Keys()
	outcomes := make([]Outcome, 0, len(keys))
	for _, k := range keys {
		outcomes = append(outcomes, d.ProcessKey(k))
	}
	return outcomes
}

// ProcessKey runs the pipeline for one key: load, crop and downsample,
// process, render the figure, and compute interval metrics.
func (d *Driver) ProcessKey(k RunKey) (out Outcome) {
	cfg := d.Config
	out = Outcome{Key: k, InputPath: cfg.InputPath(k)}

	clock := d.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()
	defer func() {
		if r := recover(); r != nil {
			out = d.failed(out, fmt.Errorf("panic: %v", r))
		}
		out.Elapsed = clock.Since(start)
	}()

	d.log("Reading in %s", out.InputPath)
	raw, err := d.load(out.InputPath)
	if errors.Is(err, fs.ErrNotExist) {
		d.log("File not found: %s", out.InputPath)
		out.Status = StatusMissing
		out.Err = err
		return out
	}
	if err != nil {
		return d.failed(out, err)
	}

	samples, err := recording.Prepare(raw, cfg.TrimSamples, cfg.DownsampleFactor)
	if err != nil {
		return d.failed(out, err)
	}
	out.Samples = len(samples)

	sig, info, err := eda.Process(samples, cfg.TargetRateHz, cfg.Params)
	if err != nil {
		return d.failed(out, err)
	}
	out.SCRCount = info.N()
	d.log("Number of detected SCR Peaks: %d", out.SCRCount)

	title := edaplot.Title(k.Participant, k.Task, k.Session)
	figurePath := cfg.FigurePath(k)
	if err := d.render(d.Figure, figurePath, sig, title); err != nil {
		return d.failed(out, fmt.Errorf("figure: %w", err))
	}
	out.FigurePath = figurePath
	d.log("Saved processed EDA figure to %s", figurePath)

	if d.Report != nil {
		reportPath := cfg.ReportPath(k)
		if err := d.render(d.Report, reportPath, sig, title); err != nil {
			return d.failed(out, fmt.Errorf("report: %w", err))
		}
		out.ReportPath = reportPath
		d.log("Saved processed EDA report to %s", reportPath)
	}

	metrics, err := eda.IntervalRelated(sig, cfg.TargetRateHz, cfg.Params)
	if err != nil {
		return d.failed(out, fmt.Errorf("interval metrics: %w", err))
	}
	out.Record = NewRecord(k, metrics)
	out.Status = StatusSucceeded
	return out
}

func (d *Driver) failed(out Outcome, err error) Outcome {
	d.log("An error occurred while processing %s: %v", out.InputPath, err)
	out.Status = StatusFailed
	out.Err = err
	out.Record = nil
	return out
}

func (d *Driver) load(path string) ([]float64, error) {
	data, err := d.FS.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch d.Config.InputFormat {
	case recording.FormatEDF:
		return recording.LoadEDF(bytes.NewReader(data), d.Config.EDFSignal)
	default:
		return recording.LoadCSV(bytes.NewReader(data))
	}
}

func (d *Driver) checkPath(path string) error {
	check := d.CheckPath
	if check == nil {
		check = security.ValidatePathLexically
	}
	return check(path, d.Config.ResultsFolder)
}

// render writes r's output for sig to path inside the results folder.
func (d *Driver) render(r Renderer, path string, sig *eda.Signals, title string) error {
	if r == nil {
		return errors.New("no renderer configured")
	}
	if err := d.checkPath(path); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, sig, title); err != nil {
		return err
	}
	return d.FS.WriteFile(path, buf.Bytes(), 0o644)
}
