// Package chart renders trend series as SVG line charts and XLSX workbooks.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"resalelens/server/internal/models"
)

const (
	width        = 800
	height       = 400
	padLeft      = 90
	padRight     = 30
	padTop       = 50
	padBottom    = 50
	yTicks       = 5
	lineColor    = "#FF6B6B"
	bandColor    = "#FFE66D"
	currentColor = "#C0392B"
)

var ErrEmptySeries = errors.New("series has no points")

// Title returns the chart heading for a category
func Title(category models.Category) string {
	return fmt.Sprintf("'%s' 카테고리 시세 추이 (예상)", category.Label())
}

// SVG renders the series as an SVG document without the XML prolog, so it can be inlined in HTML
func SVG(series models.TrendSeries) (string, error) {
	if len(series.Points) == 0 {
		return "", ErrEmptySeries
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range series.Points {
		for _, v := range []float64{p.Price, p.Low, p.High} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return "", fmt.Errorf("month %d has a non-finite value", p.Month)
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	span := hi - lo
	if span == 0 {
		span = math.Max(hi, 1)
	}
	lo -= span * 0.05
	hi += span * 0.05

	plotW := float64(width - padLeft - padRight)
	plotH := float64(height - padTop - padBottom)
	x := func(i int) int {
		if len(series.Points) == 1 {
			return padLeft + int(plotW/2)
		}
		return padLeft + int(math.Round(plotW*float64(i)/float64(len(series.Points)-1)))
	}
	y := func(v float64) int {
		return padTop + int(math.Round(plotH*(1-(v-lo)/(hi-lo))))
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height), `font-family="sans-serif"`)
	canvas.Rect(0, 0, width, height, "fill:#ffffff")
	canvas.Text(width/2, 30, Title(series.Category), "text-anchor:middle;font-size:18px;font-weight:bold")

	// grid and y axis labels
	for i := 0; i <= yTicks; i++ {
		v := lo + (hi-lo)*float64(i)/yTicks
		yy := y(v)
		canvas.Line(padLeft, yy, width-padRight, yy, "stroke:#dddddd;stroke-dasharray:4 4")
		canvas.Text(padLeft-8, yy+4, models.FormatAmount(int64(math.Round(v))), "text-anchor:end;font-size:11px")
	}
	canvas.Text(20, height/2, "가격 (원)", fmt.Sprintf(`transform="rotate(-90 20 %d)"`, height/2), "text-anchor:middle;font-size:12px")

	n := len(series.Points)
	bandX := make([]int, 0, 2*n)
	bandY := make([]int, 0, 2*n)
	lineX := make([]int, n)
	lineY := make([]int, n)
	for i, p := range series.Points {
		bandX = append(bandX, x(i))
		bandY = append(bandY, y(p.High))
		lineX[i], lineY[i] = x(i), y(p.Price)
	}
	for i := n - 1; i >= 0; i-- {
		bandX = append(bandX, x(i))
		bandY = append(bandY, y(series.Points[i].Low))
	}
	canvas.Polygon(bandX, bandY, "fill:"+bandColor+";fill-opacity:0.35;stroke:none")
	canvas.Polyline(lineX, lineY, "fill:none;stroke:"+lineColor+";stroke-width:2")

	for i, p := range series.Points {
		r, fill := 4, lineColor
		if p.Current {
			r, fill = 7, currentColor
		}
		canvas.Group(`class="point"`)
		canvas.Title(fmt.Sprintf("%s: %s원", p.Label, models.FormatAmount(int64(p.Price))))
		canvas.Circle(x(i), y(p.Price), r, "fill:"+fill)
		canvas.Gend()
		canvas.Text(x(i), height-padBottom+20, p.Label, "text-anchor:middle;font-size:11px")
	}
	canvas.Text(padLeft+int(plotW)/2, height-8, "월", "text-anchor:middle;font-size:12px")
	canvas.End()

	out := buf.String()
	if i := strings.Index(out, "<svg"); i > 0 {
		out = out[i:]
	}
	return out, nil
}

// Placeholder is shown instead of a chart that could not be generated
func Placeholder() string {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height/2, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height/2), `font-family="sans-serif"`)
	canvas.Rect(0, 0, width, height/2, "fill:#f7f7f7")
	canvas.Text(width/2, height/4, "차트 생성 중 오류가 발생했습니다", "text-anchor:middle;font-size:16px")
	canvas.End()

	out := buf.String()
	if i := strings.Index(out, "<svg"); i > 0 {
		out = out[i:]
	}
	return out
}
