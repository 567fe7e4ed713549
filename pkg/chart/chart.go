package chart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"f1lapcompare/pkg/model"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/llgcode/draw2d/draw2dsvg"
	"github.com/pkg/errors"
)

const (
	DefaultWidth  = 1000
	DefaultHeight = 500

	marginLeft   = 64.0
	marginRight  = 24.0
	marginTop    = 56.0
	marginBottom = 48.0

	gridDistanceKm = 1.0
	gridSpeed      = 50.0
	traceWidth     = 2.5
)

var (
	// the draw2d font folder is global
	mu = sync.Mutex{}

	fontData = draw2d.FontData{Name: "luxi", Family: draw2d.FontFamilySans, Style: draw2d.FontStyleNormal}
)

type Options struct {
	Width  int
	Height int
	// FontFolder holds the luxi TTF files. Without it the chart has no text.
	FontFolder string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// RenderPNG draws the comparison chart as a PNG image.
func RenderPNG(w io.Writer, cmp model.Comparison, opts Options) error {
	mu.Lock()
	defer mu.Unlock()
	opts = opts.withDefaults()

	dest := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	gc := draw2dimg.NewGraphicContext(dest)
	drawComparison(gc, cmp, opts)

	return errors.Wrap(png.Encode(w, dest), "encoding png chart")
}

// RenderSVG draws the comparison chart as a standalone SVG document.
func RenderSVG(w io.Writer, cmp model.Comparison, opts Options) error {
	svg, err := SVG(cmp, opts)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "writing svg chart")
	}
	_, err = w.Write(svg)
	return errors.Wrap(err, "writing svg chart")
}

// SVG returns the svg element of the chart, without xml header, ready to be embedded in HTML.
func SVG(cmp model.Comparison, opts Options) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()
	opts = opts.withDefaults()

	dest := draw2dsvg.NewSvg()
	gc := draw2dsvg.NewGraphicContext(dest)
	drawComparison(gc, cmp, opts)

	out, err := xml.Marshal(dest)
	if err != nil {
		return nil, errors.Wrap(err, "encoding svg chart")
	}
	// draw2dsvg does not size the canvas
	size := fmt.Sprintf(`<svg width="%d" height="%d" viewBox="0 0 %d %d" `, opts.Width, opts.Height, opts.Width, opts.Height)
	return bytes.Replace(out, []byte("<svg "), []byte(size), 1), nil
}

// plot maps distance and speed onto canvas coordinates.
type plot struct {
	left, top, width, height float64
	maxDistanceKm            float64
	maxSpeed                 float64
}

func newPlot(cmp model.Comparison, opts Options) plot {
	maxDistance := math.Max(cmp.Traces[0].MaxDistanceKm(), cmp.Traces[1].MaxDistanceKm())
	if maxDistance <= 0 {
		maxDistance = gridDistanceKm
	}
	maxSpeed := math.Max(cmp.Traces[0].MaxSpeed(), cmp.Traces[1].MaxSpeed())
	maxSpeed = math.Max(gridSpeed, math.Ceil((maxSpeed+1)/gridSpeed)*gridSpeed)

	return plot{
		left:          marginLeft,
		top:           marginTop,
		width:         float64(opts.Width) - marginLeft - marginRight,
		height:        float64(opts.Height) - marginTop - marginBottom,
		maxDistanceKm: maxDistance,
		maxSpeed:      maxSpeed,
	}
}

func (p plot) X(distanceKm float64) float64 {
	return p.left + distanceKm/p.maxDistanceKm*p.width
}

func (p plot) Y(speed float64) float64 {
	return p.top + p.height - speed/p.maxSpeed*p.height
}

func (p plot) bottom() float64 {
	return p.top + p.height
}

func (p plot) right() float64 {
	return p.left + p.width
}

func drawComparison(gc draw2d.GraphicContext, cmp model.Comparison, opts Options) {
	withText := opts.FontFolder != ""
	if withText {
		draw2d.SetFontFolder(opts.FontFolder)
		gc.SetFontData(fontData)
	}
	p := newPlot(cmp, opts)

	gc.SetFillColor(Background)
	gc.BeginPath()
	draw2dkit.Rectangle(gc, 0, 0, float64(opts.Width), float64(opts.Height))
	gc.Fill()

	drawGrid(gc, p, withText)

	colors := [2]color.RGBA{}
	for i, trace := range cmp.Traces {
		colors[i] = TeamColor(trace.Driver.Team, trace.Driver.TeamColor)
	}
	for i, trace := range cmp.Traces {
		// same team, tell them apart
		dashed := i == 1 && colors[0] == colors[1]
		drawTrace(gc, p, trace, colors[i], dashed)
	}

	drawSectors(gc, p, cmp.Sectors, withText)
	drawLegend(gc, cmp, colors, withText)

	if withText {
		gc.SetFillColor(color.White)
		gc.SetFontSize(14)
		gc.FillStringAt(cmp.Request.Title(), marginLeft, 22)
		gc.SetFontSize(10)
		gc.SetFillColor(Axis)
		gc.FillStringAt("Distance (km)", p.right()-80, float64(opts.Height)-10)
		gc.FillStringAt("Speed (km/h)", 6, p.top-8)
	}
}

func drawGrid(gc draw2d.GraphicContext, p plot, withText bool) {
	gc.Save()
	defer gc.Restore()
	gc.SetStrokeColor(Grid)
	gc.SetLineWidth(1)
	if withText {
		gc.SetFontSize(9)
		gc.SetFillColor(Axis)
	}

	for d := 0.0; d <= p.maxDistanceKm+1e-9; d += gridDistanceKm {
		x := p.X(d)
		gc.BeginPath()
		gc.MoveTo(x, p.top)
		gc.LineTo(x, p.bottom())
		gc.Stroke()
		if withText {
			gc.FillStringAt(fmt.Sprintf("%.0f", d), x-3, p.bottom()+14)
		}
	}
	for s := 0.0; s <= p.maxSpeed+1e-9; s += gridSpeed {
		y := p.Y(s)
		gc.BeginPath()
		gc.MoveTo(p.left, y)
		gc.LineTo(p.right(), y)
		gc.Stroke()
		if withText {
			gc.FillStringAt(fmt.Sprintf("%.0f", s), p.left-30, y+3)
		}
	}

	gc.SetStrokeColor(Axis)
	gc.BeginPath()
	gc.MoveTo(p.left, p.top)
	gc.LineTo(p.left, p.bottom())
	gc.LineTo(p.right(), p.bottom())
	gc.Stroke()
}

func drawTrace(gc draw2d.GraphicContext, p plot, trace model.Trace, c color.RGBA, dashed bool) {
	if len(trace.Points) < 2 {
		return
	}
	gc.Save()
	defer gc.Restore()
	gc.SetStrokeColor(c)
	gc.SetLineWidth(traceWidth)
	if dashed {
		gc.SetLineDash([]float64{8, 5}, 0)
	}

	gc.BeginPath()
	for i, point := range trace.Points {
		x, y := p.X(point.DistanceKm), p.Y(point.Speed)
		if i == 0 {
			gc.MoveTo(x, y)
		} else {
			gc.LineTo(x, y)
		}
	}
	gc.Stroke()
}

func drawSectors(gc draw2d.GraphicContext, p plot, sectors []model.SectorBoundary, withText bool) {
	gc.Save()
	defer gc.Restore()
	gc.SetStrokeColor(Marker)
	gc.SetLineWidth(1)
	gc.SetLineDash([]float64{2, 4}, 0)
	if withText {
		gc.SetFontSize(10)
		gc.SetFillColor(Marker)
	}

	for _, s := range sectors {
		x := p.X(s.DistanceKm)
		gc.BeginPath()
		gc.MoveTo(x, p.top)
		gc.LineTo(x, p.bottom())
		gc.Stroke()
		if withText {
			gc.FillStringAt(fmt.Sprintf("S%d", s.Sector), x-18, p.top+12)
		}
	}
}

func drawLegend(gc draw2d.GraphicContext, cmp model.Comparison, colors [2]color.RGBA, withText bool) {
	gc.Save()
	defer gc.Restore()
	if withText {
		gc.SetFontSize(10)
	}

	x := marginLeft
	y := marginTop - 18
	for i, trace := range cmp.Traces {
		gc.SetFillColor(colors[i])
		gc.BeginPath()
		draw2dkit.Rectangle(gc, x, y-3, x+18, y+1)
		gc.Fill()
		if withText {
			gc.SetFillColor(color.White)
			label := fmt.Sprintf("%s (%s) %s", trace.Driver.Code, trace.Driver.Team, cmp.LapTimes[i])
			width := gc.FillStringAt(label, x+24, y+3)
			x += 24 + width + 24
		} else {
			x += 40
		}
	}
}
