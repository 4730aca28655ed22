package batch

import (
	"errors"
	"math"
	"strconv"

	"github.com/banshee-data/eda.report/internal/eda"
)

// ErrNoResults is returned by Concat when no run key succeeded.
var ErrNoResults = errors.New("no objects to concatenate: no run key produced a result")

// Record is one row of the results table.
type Record struct {
	Participant string
	Condition   string
	Metrics     eda.IntervalMetrics
}

// NewRecord builds the record for a processed key.
func NewRecord(k RunKey, m eda.IntervalMetrics) *Record {
	return &Record{Participant: k.Participant, Condition: k.Condition(), Metrics: m}
}

// Columns is the results table header.
func Columns() []string {
	cols := append([]string(nil), eda.IntervalMetricColumns...)
	return append(cols, "Participant", "Condition")
}

// Fields formats the record as table cells. NaN metrics are empty cells.
func (r *Record) Fields() []string {
	vals := r.Metrics.Values()
	out := make([]string, 0, len(vals)+2)
	out = append(out, strconv.Itoa(r.Metrics.PeaksN))
	for _, v := range vals[1:] {
		out = append(out, formatFloat(v))
	}
	return append(out, r.Participant, r.Condition)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ResultTable is the ordered concatenation of all records.
type ResultTable struct {
	Records []Record
}

// Len returns the number of rows.
func (t *ResultTable) Len() int {
	return len(t.Records)
}

// Rows returns the formatted rows without the header.
func (t *ResultTable) Rows() [][]string {
	rows := make([][]string, len(t.Records))
	for i := range t.Records {
		rows[i] = t.Records[i].Fields()
	}
	return rows
}

// Concat collects the records of the succeeded outcomes in order. It fails
// with ErrNoResults when there are none.
func Concat(outcomes []Outcome) (*ResultTable, error) {
	t := &ResultTable{}
	for _, o := range outcomes {
		if o.Status == StatusSucceeded && o.Record != nil {
			t.Records = append(t.Records, *o.Record)
		}
	}
	if len(t.Records) == 0 {
		return nil, ErrNoResults
	}
	return t, nil
}
