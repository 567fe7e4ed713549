package chart

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"f1lapcompare/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trace(code, team, hex string, speeds ...float64) model.Trace {
	points := make([]model.TracePoint, len(speeds))
	for i, s := range speeds {
		points[i] = model.TracePoint{DistanceKm: float64(i) * 0.5, ElapsedSeconds: float64(i) * 6, Speed: s}
	}
	return model.Trace{Driver: model.Driver{Code: code, Team: team, TeamColor: hex}, Points: points}
}

func comparison() model.Comparison {
	return model.Comparison{
		Request: model.Request{Year: 2024, GrandPrix: "Monza", Session: model.Race, Driver1: "VER", Driver2: "HAM"},
		Traces: [2]model.Trace{
			trace("VER", "Red Bull Racing", "3671C6", 280, 310, 120, 250, 330),
			trace("HAM", "Mercedes", "", 275, 305, 118, 255, 328),
		},
		LapTimes: [2]string{"1:20.000", "1:22.500"},
		Sectors: []model.SectorBoundary{
			{Sector: 1, DistanceKm: 0.5},
			{Sector: 2, DistanceKm: 1.5},
		},
	}
}

func TestTeamColor(t *testing.T) {
	assert.Equal(t, color.RGBA{0x36, 0x71, 0xc6, 0xff}, TeamColor("Whatever", "#3671C6"))
	assert.Equal(t, color.RGBA{0x27, 0xf4, 0xd2, 0xff}, TeamColor("Mercedes-AMG Petronas", ""))
	assert.Equal(t, color.RGBA{0xe8, 0x00, 0x2d, 0xff}, TeamColor("Scuderia Ferrari", "zzzzzz"))
	assert.Equal(t, Neutral, TeamColor("Brabham", ""))
	assert.Equal(t, Neutral, TeamColor("", ""))
}

func TestPaletteIsValidPremultiplied(t *testing.T) {
	for _, c := range []color.Color{Background, Grid, Axis, Marker, Neutral} {
		r, g, b, a := c.RGBA()
		assert.LessOrEqual(t, r, a)
		assert.LessOrEqual(t, g, a)
		assert.LessOrEqual(t, b, a)
	}
}

func TestParseHex(t *testing.T) {
	c, ok := ParseHex("0093cc")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{0x00, 0x93, 0xcc, 0xff}, c)

	_, ok = ParseHex("fff")
	assert.False(t, ok)
}

func TestPlotScale(t *testing.T) {
	p := newPlot(comparison(), Options{}.withDefaults())

	assert.Equal(t, 2.0, p.maxDistanceKm)
	assert.Equal(t, 350.0, p.maxSpeed)
	assert.Equal(t, marginLeft, p.X(0))
	assert.InDelta(t, DefaultWidth-marginRight, p.X(2), 1e-9)
	assert.InDelta(t, DefaultHeight-marginBottom, p.Y(0), 1e-9)
	assert.InDelta(t, marginTop, p.Y(350), 1e-9)
}

func TestPlotScaleWithoutPoints(t *testing.T) {
	p := newPlot(model.Comparison{}, Options{}.withDefaults())

	assert.Equal(t, gridDistanceKm, p.maxDistanceKm)
	assert.Equal(t, gridSpeed, p.maxSpeed)
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, comparison(), Options{Width: 400, Height: 200}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(Background.R), r>>8)
	assert.Equal(t, uint32(Background.G), g>>8)
	assert.Equal(t, uint32(Background.B), b>>8)
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, comparison(), Options{Width: 640, Height: 320}))

	out := buf.String()
	assert.Contains(t, out, "<?xml")
	assert.Contains(t, out, `<svg width="640" height="320" viewBox="0 0 640 320"`)
	assert.Contains(t, out, "<path")
}

func TestSVGIsEmbeddable(t *testing.T) {
	svg, err := SVG(comparison(), Options{})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(svg, []byte("<svg ")))
	assert.Contains(t, string(svg), `width="1000"`)
}
