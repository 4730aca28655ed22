// Package edaplot renders processed EDA signals as a static three-panel
// figure and as an interactive HTML report.
package edaplot

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"github.com/banshee-data/eda.report/internal/eda"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Series colours.
const (
	ColorRawHex    = "#B0BEC5"
	ColorCleanHex  = "#9C27B0"
	ColorPhasicHex = "#145DA0"
	ColorTonicHex  = "#145DA0"
	ColorOnsetHex  = "#628810"
	ColorPeakHex   = "#3C6007"
)

var (
	ColorRaw    = mustHex(ColorRawHex)
	ColorClean  = mustHex(ColorCleanHex)
	ColorPhasic = mustHex(ColorPhasicHex)
	ColorTonic  = mustHex(ColorTonicHex)
	ColorOnset  = mustHex(ColorOnsetHex)
	ColorPeak   = mustHex(ColorPeakHex)
)

// Y axis labels per panel.
const (
	LabelSignal = "EDA Amplitude (µS)"
	LabelPhasic = "Phasic EDA Amplitude (µS)"
	LabelTonic  = "Tonic EDA Amplitude (µS)"
)

// Limits is a fixed y range. A zero Limits lets the axis autoscale.
type Limits struct {
	Min, Max float64
}

func (l Limits) set() bool { return l.Min != 0 || l.Max != 0 }

// Figure draws the three stacked panels: raw and cleaned signal, phasic
// component with SCR markers, and tonic component.
type Figure struct {
	Width, Height vg.Length
	SignalLimits  Limits
	PhasicLimits  Limits
	TonicLimits   Limits
	SamplingRate  float64
}

// DefaultFigure returns a 20x12 inch figure for signals sampled at rate Hz.
func DefaultFigure(rate float64) *Figure {
	return &Figure{
		Width:        20 * vg.Inch,
		Height:       12 * vg.Inch,
		SignalLimits: Limits{Min: 0, Max: 17},
		PhasicLimits: Limits{Min: -0.8, Max: 1},
		TonicLimits:  Limits{Min: 0, Max: 17},
		SamplingRate: rate,
	}
}

// Title builds the figure title for a recording.
func Title(participant, task, session string) string {
	return fmt.Sprintf("Electrodermal Activity (EDA) - %s, %s, %s", participant, task, session)
}

// titleHeight is the space reserved above the panels for the title.
const titleHeight = 0.6 * vg.Inch

// Render draws sig as a PNG to w.
func (f *Figure) Render(w io.Writer, sig *eda.Signals, title string) error {
	if sig.Len() == 0 {
		return eda.ErrEmptySignal
	}
	if f.SamplingRate <= 0 {
		return fmt.Errorf("figure sampling rate must be positive, got %g", f.SamplingRate)
	}

	panels, err := f.panels(sig)
	if err != nil {
		return err
	}

	img := vgimg.New(f.Width, f.Height)
	dc := draw.New(img)

	sty := panels[0].Title.TextStyle
	sty.Font.Size = vg.Points(20)
	sty.Font.Weight = xfont.WeightBold
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YTop
	dc.FillText(sty, vg.Point{X: dc.Center().X, Y: dc.Max.Y - vg.Points(8)}, title)

	body := draw.Crop(dc, 0, 0, 0, -titleHeight)
	tiles := draw.Tiles{
		Rows:      len(panels),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      4 * vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(8),
		PadLeft:   vg.Points(8),
		PadRight:  vg.Points(12),
	}
	grid := make([][]*plot.Plot, len(panels))
	for i, p := range panels {
		grid[i] = []*plot.Plot{p}
	}
	canvases := plot.Align(grid, tiles, body)
	for i, p := range panels {
		p.Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func (f *Figure) panels(sig *eda.Signals) ([]*plot.Plot, error) {
	pSignal := newPanel("Raw and Cleaned Signal", LabelSignal)
	if err := addLine(pSignal, "Raw", f.points(sig.Raw, nil), ColorRaw, 1); err != nil {
		return nil, err
	}
	if err := addLine(pSignal, "Cleaned", f.points(sig.Clean, nil), ColorClean, 1.5); err != nil {
		return nil, err
	}

	pPhasic := newPanel("Skin Conductance Response (SCR)", LabelPhasic)
	if err := addLine(pPhasic, "Phasic Component", f.points(sig.Phasic, nil), ColorPhasic, 1.5); err != nil {
		return nil, err
	}
	if err := addMarkers(pPhasic, "SCR Onsets", f.points(sig.Phasic, sig.Onsets), ColorOnset, draw.CircleGlyph{}); err != nil {
		return nil, err
	}
	if err := addMarkers(pPhasic, "SCR Peaks", f.points(sig.Phasic, sig.Peaks), ColorPeak, draw.TriangleGlyph{}); err != nil {
		return nil, err
	}

	pTonic := newPanel("Skin Conductance Level (SCL)", LabelTonic)
	if err := addLine(pTonic, "Tonic Component", f.points(sig.Tonic, nil), ColorTonic, 1.5); err != nil {
		return nil, err
	}
	pTonic.X.Label.Text = "Time (seconds)"

	applyLimits(pSignal, f.SignalLimits)
	applyLimits(pPhasic, f.PhasicLimits)
	applyLimits(pTonic, f.TonicLimits)

	return []*plot.Plot{pSignal, pPhasic, pTonic}, nil
}

func newPanel(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	p.Add(plotter.NewGrid())
	return p
}

// points converts y to plot points in seconds, skipping non-finite values.
// When mask is non-nil only samples with mask == 1 are kept.
func (f *Figure) points(y, mask []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(y))
	for i, v := range y {
		if mask != nil && (i >= len(mask) || mask[i] != 1) {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i) / f.SamplingRate, Y: v})
	}
	return pts
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, c color.Color, width float64) error {
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("%s line: %w", name, err)
	}
	line.Color = c
	line.Width = vg.Points(width)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func addMarkers(p *plot.Plot, name string, pts plotter.XYs, c color.Color, shape draw.GlyphDrawer) error {
	if len(pts) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("%s markers: %w", name, err)
	}
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Radius = vg.Points(4)
	sc.GlyphStyle.Shape = shape
	p.Add(sc)
	p.Legend.Add(name, sc)
	return nil
}

func applyLimits(p *plot.Plot, l Limits) {
	if !l.set() {
		return
	}
	p.Y.Min = l.Min
	p.Y.Max = l.Max
}

// mustHex parses a #RRGGBB colour.
func mustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseHex parses a #RRGGBB colour string.
func ParseHex(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
