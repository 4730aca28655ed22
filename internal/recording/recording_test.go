package recording

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/OpenPSG/edf"
	"github.com/banshee-data/eda.report/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []float64
		wantErr error
	}{
		{name: "single_column", input: "0\n1.5\n2.25\n3\n", want: []float64{1.5, 2.25, 3}},
		{name: "named_header", input: "EDA\n4\n5\n", want: []float64{4, 5}},
		{name: "extra_columns", input: "a,b\n1,9\n2,8\n", want: []float64{1, 2}},
		{name: "blank_lines_skipped", input: "EDA\n1\n\n2\n", want: []float64{1, 2}},
		{name: "crlf", input: "EDA\r\n1\r\n2\r\n", want: []float64{1, 2}},
		{name: "header_only", input: "EDA\n", wantErr: ErrEmpty},
		{name: "empty_file", input: "", wantErr: ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadCSV(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadCSV_MissingCellIsNaN(t *testing.T) {
	t.Parallel()

	got, err := LoadCSV(strings.NewReader("a,b\n1,0\n,0\nNaN,0\n"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1.0, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.True(t, math.IsNaN(got[2]))
}

func TestLoadCSV_InvalidSample(t *testing.T) {
	t.Parallel()

	_, err := LoadCSV(strings.NewReader("EDA\n1\nabc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestLoadCSV_SyntheticRoundTrip(t *testing.T) {
	t.Parallel()

	samples := testutil.DefaultSyntheticEDA().Samples()
	path := testutil.WriteEDACSV(t, t.TempDir(), "rec.csv", samples)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := LoadCSV(f)
	require.NoError(t, err)
	assert.Equal(t, samples, got)
}

func writeEDF(t *testing.T, records [][]float64) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rec.edf")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer f.Close()

	hdr := edf.Header{
		Version:            edf.Version0,
		PatientID:          "sub01",
		RecordingID:        "sound first_converted",
		StartTime:          time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		DataRecordDuration: time.Second,
		SignalCount:        2,
		Signals: []edf.SignalHeader{
			{
				Label:             "EDA",
				PhysicalDimension: "uS",
				PhysicalMin:       0,
				PhysicalMax:       20,
				DigitalMin:        -32768,
				DigitalMax:        32767,
				SamplesPerRecord:  len(records[0]),
			},
			{
				Label:             "Marker",
				PhysicalMin:       0,
				PhysicalMax:       1,
				DigitalMin:        0,
				DigitalMax:        1,
				SamplesPerRecord:  1,
			},
		},
	}
	w, err := edf.Create(f, hdr)
	require.NoError(t, err)
	for _, rec := range records {
		require.NoError(t, w.WriteRecord([][]float64{rec, {0}}))
	}
	require.NoError(t, w.Close())
	return path
}

func TestLoadEDF(t *testing.T) {
	t.Parallel()

	first := []float64{1, 2, 3, 4, 5}
	second := []float64{6, 7, 8, 9, 10}
	path := writeEDF(t, [][]float64{first, second})

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	got, err := LoadEDF(bytes.NewReader(data), 0)
	require.NoError(t, err)
	require.Len(t, got, 10)
	for i, v := range append(first, second...) {
		assert.InDelta(t, v, got[i], 1e-3)
	}

	_, err = LoadEDF(bytes.NewReader(data), 5)
	assert.Error(t, err)

	_, err = LoadEDF(bytes.NewReader([]byte("not an edf")), 0)
	assert.Error(t, err)
}

func TestLoadEDF_Empty(t *testing.T) {
	t.Parallel()

	path := writeEDF(t, [][]float64{{1}})
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Signal 1 has one sample per record.
	got, err := LoadEDF(bytes.NewReader(data), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = LoadEDF(bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, io.EOF)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"": FormatCSV, "csv": FormatCSV, " EDF ": FormatEDF} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("parquet")
	assert.Error(t, err)

	assert.Equal(t, ".csv", FormatCSV.Extension())
	assert.Equal(t, ".edf", FormatEDF.Extension())
}
