// Package recording loads raw EDA recordings and prepares them for
// processing.
package recording

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/OpenPSG/edf"
)

// ErrEmpty is returned when a recording holds no samples.
var ErrEmpty = errors.New("recording has no samples")

// Format selects the raw file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatEDF Format = "edf"
)

// ParseFormat converts a config value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatEDF:
		return FormatEDF, nil
	}
	return "", fmt.Errorf("unknown recording format %q", s)
}

// Extension returns the file extension for the format, with the dot.
func (f Format) Extension() string {
	if f == FormatEDF {
		return ".edf"
	}
	return ".csv"
}

// LoadCSV reads the first column of a CSV recording, skipping one header
// row. Blank lines are ignored; empty cells in multi-column rows load as NaN.
func LoadCSV(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var samples []float64
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		cell := strings.TrimSpace(row[0])
		if cell == "" {
			samples = append(samples, math.NaN())
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid sample %q", line, cell)
		}
		samples = append(samples, v)
	}

	if len(samples) == 0 {
		return nil, ErrEmpty
	}
	return samples, nil
}

// readChunk is the number of samples requested per EDF read.
const readChunk = 4096

// LoadEDF reads every sample of one signal from an EDF/EDF+ recording.
func LoadEDF(r io.ReadSeeker, signal int) ([]float64, error) {
	er, err := edf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("open edf: %w", err)
	}
	sr, err := er.Signal(signal)
	if err != nil {
		return nil, fmt.Errorf("edf signal %d: %w", signal, err)
	}

	var samples []float64
	buf := make([]float64, readChunk)
	for {
		n, err := sr.Read(buf)
		samples = append(samples, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read edf signal %d: %w", signal, err)
		}
	}

	if len(samples) == 0 {
		return nil, ErrEmpty
	}
	return samples, nil
}
