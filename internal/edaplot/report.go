package edaplot

import (
	"fmt"
	"io"
	"math"

	"github.com/banshee-data/eda.report/internal/eda"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Report renders the processed signal as an interactive HTML page with one
// zoomable chart per panel.
type Report struct {
	SamplingRate float64
	// AssetsHost overrides where the echarts javascript is loaded from.
	AssetsHost   string
	SignalLimits Limits
	PhasicLimits Limits
	TonicLimits  Limits
}

// NewReport returns a report using the figure's sampling rate and limits.
func NewReport(f *Figure) *Report {
	return &Report{
		SamplingRate: f.SamplingRate,
		SignalLimits: f.SignalLimits,
		PhasicLimits: f.PhasicLimits,
		TonicLimits:  f.TonicLimits,
	}
}

// Render writes the HTML report for sig to w.
func (r *Report) Render(w io.Writer, sig *eda.Signals, title string) error {
	if sig.Len() == 0 {
		return eda.ErrEmptySignal
	}
	if r.SamplingRate <= 0 {
		return fmt.Errorf("report sampling rate must be positive, got %g", r.SamplingRate)
	}

	signal := r.newChart("Raw and Cleaned Signal", title, LabelSignal, r.SignalLimits)
	signal.AddSeries("Raw", r.lineData(sig.Raw), seriesStyle(ColorRawHex, 1))
	signal.AddSeries("Cleaned", r.lineData(sig.Clean), seriesStyle(ColorCleanHex, 1.5))

	phasic := r.newChart("Skin Conductance Response (SCR)", "", LabelPhasic, r.PhasicLimits)
	phasic.AddSeries("Phasic Component", r.lineData(sig.Phasic), seriesStyle(ColorPhasicHex, 1.5))
	phasic.Overlap(
		r.markers("SCR Onsets", sig.Phasic, sig.Onsets, ColorOnsetHex, "circle"),
		r.markers("SCR Peaks", sig.Phasic, sig.Peaks, ColorPeakHex, "triangle"),
	)

	tonic := r.newChart("Skin Conductance Level (SCL)", "", LabelTonic, r.TonicLimits)
	tonic.AddSeries("Tonic Component", r.lineData(sig.Tonic), seriesStyle(ColorTonicHex, 1.5))

	page := components.NewPage()
	page.SetPageTitle(title)
	if r.AssetsHost != "" {
		page.SetAssetsHost(r.AssetsHost)
	}
	page.AddCharts(signal, phasic, tonic)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func (r *Report) newChart(name, subtitle, ylabel string, lim Limits) *charts.Line {
	line := charts.NewLine()
	yaxis := opts.YAxis{Name: ylabel, NameLocation: "middle", NameGap: 40}
	if lim.set() {
		yaxis.Min, yaxis.Max = lim.Min, lim.Max
	}
	init := opts.Initialization{PageTitle: name, Width: "1200px", Height: "360px"}
	if r.AssetsHost != "" {
		init.AssetsHost = r.AssetsHost
	}
	line.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Time (seconds)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(yaxis),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	return line
}

func seriesStyle(hex string, width float32) charts.SeriesOpts {
	return func(s *charts.SingleSeries) {
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})(s)
		charts.WithLineStyleOpts(opts.LineStyle{Color: hex, Width: width})(s)
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hex})(s)
	}
}

// lineData converts y to [seconds, value] pairs. Non-finite values become
// gaps.
func (r *Report) lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, len(y))
	for i, v := range y {
		t := float64(i) / r.SamplingRate
		if math.IsNaN(v) || math.IsInf(v, 0) {
			data[i] = opts.LineData{Value: []interface{}{t, "-"}}
			continue
		}
		data[i] = opts.LineData{Value: []interface{}{t, v}}
	}
	return data
}

func (r *Report) markers(name string, y, mask []float64, hex, symbol string) *charts.Scatter {
	var data []opts.ScatterData
	for i, v := range y {
		if i >= len(mask) || mask[i] != 1 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		data = append(data, opts.ScatterData{Value: []interface{}{float64(i) / r.SamplingRate, v}, Symbol: symbol, SymbolSize: 10})
	}
	sc := charts.NewScatter()
	sc.AddSeries(name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: hex}))
	return sc
}
