package batch

import (
	"fmt"
	"time"
)

// Status is the result of processing one run key.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusMissing   Status = "missing"
	StatusFailed    Status = "failed"
)

// Outcome is the result of processing one run key. Record is set only when
// Status is StatusSucceeded; Err only when it is not.
type Outcome struct {
	Key    RunKey
	Status Status
	Record *Record
	Err    error

	InputPath  string
	FigurePath string
	ReportPath string

	// Samples is the number of samples that entered processing.
	Samples  int
	SCRCount int
	Elapsed  time.Duration
}

// Reason returns the failure reason, or "" for a successful key.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Summary counts outcomes by status.
type Summary struct {
	Total     int
	Succeeded int
	Missing   int
	Failed    int
}

// Summarize counts outcomes by status.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Status {
		case StatusSucceeded:
			s.Succeeded++
		case StatusMissing:
			s.Missing++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d run keys: %d succeeded, %d missing, %d failed", s.Total, s.Succeeded, s.Missing, s.Failed)
}
