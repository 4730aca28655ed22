// Command eda-batch processes a folder of EDA recordings: one figure per
// participant, task and session, plus an aggregate table of interval
// metrics.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/eda.report/internal/batch"
	"github.com/banshee-data/eda.report/internal/config"
	"github.com/banshee-data/eda.report/internal/eda"
	"github.com/banshee-data/eda.report/internal/edaplot"
	"github.com/banshee-data/eda.report/internal/fsutil"
	"github.com/banshee-data/eda.report/internal/recording"
	"github.com/banshee-data/eda.report/internal/security"
	"github.com/banshee-data/eda.report/internal/store"
	"github.com/banshee-data/eda.report/internal/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("eda-batch: %v", err)
	}
}

// options are the command line flags. Empty values leave the config file
// setting in place.
type options struct {
	configPath   string
	raw          string
	results      string
	participants string
	tasks        string
	sessions     string
	db           string
	html         bool
	xlsx         bool
	showVersion  bool
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("eda-batch", flag.ContinueOnError)
	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "Batch config file (.json, .yaml or .yml); built-in defaults when empty")
	fs.StringVar(&o.raw, "raw", "", "Folder holding the raw recordings")
	fs.StringVar(&o.results, "results", "", "Folder for figures and the results table")
	fs.StringVar(&o.participants, "participants", "", "Comma-separated participant ids")
	fs.StringVar(&o.tasks, "tasks", "", "Comma-separated task names")
	fs.StringVar(&o.sessions, "sessions", "", "Comma-separated session names")
	fs.StringVar(&o.db, "db", "", "SQLite database recording the batch run")
	fs.BoolVar(&o.html, "html", false, "Also write an interactive HTML report per recording")
	fs.BoolVar(&o.xlsx, "xlsx", false, "Also write the results table as XLSX")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, nil
}

// loadConfig reads the config file, applies flag overrides and validates
// the result.
func loadConfig(o *options) (*config.BatchConfig, error) {
	cfg := config.EmptyBatchConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadBatchConfig(o.configPath); err != nil {
			return nil, err
		}
	}

	setString := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}
	setString(&cfg.RawFolder, o.raw)
	setString(&cfg.ResultsFolder, o.results)
	setString(&cfg.DatabasePath, o.db)
	if ids := splitList(o.participants); ids != nil {
		cfg.Participants = ids
	}
	if ids := splitList(o.tasks); ids != nil {
		cfg.Tasks = ids
	}
	if ids := splitList(o.sessions); ids != nil {
		cfg.Sessions = ids
	}
	if o.html {
		cfg.HTMLReport = &o.html
	}
	if o.xlsx {
		cfg.WriteXLSX = &o.xlsx
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// batchConfig translates the file configuration into the driver's.
func batchConfig(cfg *config.BatchConfig) (batch.Config, error) {
	format, err := recording.ParseFormat(cfg.GetInputFormat())
	if err != nil {
		return batch.Config{}, err
	}
	params := eda.DefaultParams()
	params.AmplitudeMin = cfg.GetAmplitudeMin()

	return batch.Config{
		RawFolder:     cfg.GetRawFolder(),
		ResultsFolder: cfg.GetResultsFolder(),
		Participants:  cfg.GetParticipants(),
		Tasks:         cfg.GetTasks(),
		Sessions:      cfg.GetSessions(),
		InputName: func(k batch.RunKey) string {
			return cfg.InputName(k.Participant, k.Task, k.Session)
		},
		InputFormat:      format,
		EDFSignal:        cfg.GetEDFSignal(),
		TrimSamples:      cfg.TrimSamples(),
		DownsampleFactor: cfg.GetDownsampleFactor(),
		TargetRateHz:     cfg.TargetRateHz(),
		Params:           params,
	}, nil
}

func newDriver(cfg *config.BatchConfig, bc batch.Config) *batch.Driver {
	fig := edaplot.DefaultFigure(bc.TargetRateHz)
	fig.Width = vg.Length(cfg.GetFigureWidthIn()) * vg.Inch
	fig.Height = vg.Length(cfg.GetFigureHeightIn()) * vg.Inch

	d := batch.NewDriver(bc, fsutil.OSFileSystem{}, fig)
	// The results folder exists by the time any output path is checked.
	d.CheckPath = security.ValidatePathWithinDirectory
	if cfg.GetHTMLReport() {
		d.Report = edaplot.NewReport(fig)
	}
	return d
}

func run(args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintf(stdout, "eda-batch %s\n", version.String())
		return nil
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	bc, err := batchConfig(cfg)
	if err != nil {
		return err
	}

	d := newDriver(cfg, bc)
	started := d.Clock.Now()
	outcomes := d.Run()
	summary := batch.Summarize(outcomes)

	// The results table does not depend on the optional database.
	err = saveResults(d, cfg, outcomes)

	if path := cfg.GetDatabasePath(); path != "" {
		record := store.BatchRun{StartedAt: started, FinishedAt: d.Clock.Now()}
		if perr := persist(path, cfg, record, outcomes); perr != nil {
			log.Printf("Failed to record batch run in %s: %v", path, perr)
			if err == nil {
				err = perr
			}
		}
	}

	log.Printf("Batch finished: %s", summary)
	return err
}

// saveResults writes the aggregate table as CSV and, when enabled, XLSX.
func saveResults(d *batch.Driver, cfg *config.BatchConfig, outcomes []batch.Outcome) error {
	table, err := batch.Concat(outcomes)
	if err != nil {
		return err
	}
	resultsPath := d.Config.ResultsPath()
	if err := batch.SaveCSV(d.FS, resultsPath, table); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	log.Printf("Saved processed EDA results to %s", resultsPath)

	if cfg.GetWriteXLSX() {
		xlsxPath := d.Config.ResultsXLSXPath()
		if err := batch.SaveXLSX(d.FS, xlsxPath, table); err != nil {
			return fmt.Errorf("save xlsx results: %w", err)
		}
		log.Printf("Saved processed EDA results to %s", xlsxPath)
	}
	return nil
}

func persist(path string, cfg *config.BatchConfig, run store.BatchRun, outcomes []batch.Outcome) error {
	s, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	run.ConfigJSON = string(cfgJSON)
	id, err := s.RecordBatch(run, outcomes)
	if err != nil {
		return fmt.Errorf("record batch: %w", err)
	}
	log.Printf("Recorded batch run %s in %s", id, path)
	return nil
}
