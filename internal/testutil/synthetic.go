package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// SyntheticEDA describes a deterministic skin conductance recording: a
// tonic level with a slow linear drift plus bi-exponential responses.
type SyntheticEDA struct {
	SamplingRate float64   // Hz
	Duration     float64   // seconds
	Baseline     float64   // microsiemens
	Drift        float64   // microsiemens per second
	SCRTimes     []float64 // response onsets, seconds
	SCRAmplitude float64   // microsiemens
}

// Response time constants in seconds.
const (
	scrRise  = 0.75
	scrDecay = 2.0
)

// DefaultSyntheticEDA is a 120 s recording at 10 Hz with a response every
// 10 s.
func DefaultSyntheticEDA() SyntheticEDA {
	times := make([]float64, 0, 11)
	for s := 5.0; s < 115; s += 10 {
		times = append(times, s)
	}
	return SyntheticEDA{
		SamplingRate: 10,
		Duration:     120,
		Baseline:     5,
		Drift:        0.01,
		SCRTimes:     times,
		SCRAmplitude: 0.5,
	}
}

// Samples generates the recording.
func (s SyntheticEDA) Samples() []float64 {
	n := int(s.Duration * s.SamplingRate)
	out := make([]float64, n)

	// Peak of exp(-t/decay) - exp(-t/rise), used to normalise amplitude.
	tPeak := math.Log(scrDecay/scrRise) * scrRise * scrDecay / (scrDecay - scrRise)
	norm := math.Exp(-tPeak/scrDecay) - math.Exp(-tPeak/scrRise)

	for i := range out {
		t := float64(i) / s.SamplingRate
		v := s.Baseline + s.Drift*t
		for _, onset := range s.SCRTimes {
			if dt := t - onset; dt >= 0 {
				v += s.SCRAmplitude * (math.Exp(-dt/scrDecay) - math.Exp(-dt/scrRise)) / norm
			}
		}
		out[i] = v
	}
	return out
}

// Constant returns n samples of value v.
func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// EDACSV renders samples as a single-column CSV with a header row.
func EDACSV(samples []float64) string {
	var b strings.Builder
	b.WriteString("EDA\n")
	for _, v := range samples {
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		b.WriteString("\n")
	}
	return b.String()
}

// WriteEDACSV writes samples as a single-column CSV into dir and returns the
// file path.
func WriteEDACSV(t *testing.T, dir, name string, samples []float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(EDACSV(samples)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// RecordingName is the raw file name for a participant, task and session.
func RecordingName(participant, task, session string) string {
	return fmt.Sprintf("%s_%s_%s_eda.csv", participant, task, session)
}
