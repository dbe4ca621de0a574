package chart

import (
	"encoding/xml"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"resalelens/server/internal/models"
	"resalelens/server/internal/trend"
)

func sampleSeries(t *testing.T) models.TrendSeries {
	t.Helper()
	sim := trend.NewSimulator().WithClock(func() time.Time {
		return time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	})
	price := int64(350000)
	return sim.Simulate(models.CategoryElectronics, &price, rand.New(rand.NewSource(42)))
}

func TestSVG(t *testing.T) {
	svg, err := SVG(sampleSeries(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.NotContains(t, svg, "<?xml")
	assert.Contains(t, svg, "전자기기")
	assert.Contains(t, svg, "카테고리 시세 추이 (예상)")
	assert.Contains(t, svg, "<polygon")
	assert.Contains(t, svg, "<polyline")
	assert.Equal(t, 12, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, "1월")
	assert.Contains(t, svg, "12월")
	assert.Contains(t, svg, "fill:"+currentColor, "current month is emphasised")
	assert.Equal(t, 12, strings.Count(svg, "원</title>"))

	// Must be well-formed XML
	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err != nil {
			assert.Equal(t, "EOF", err.Error())
			break
		}
	}
}

func TestSVG_Failures(t *testing.T) {
	_, err := SVG(models.TrendSeries{})
	assert.ErrorIs(t, err, ErrEmptySeries)

	series := sampleSeries(t)
	series.Points[3].Price = math.NaN()
	_, err = SVG(series)
	assert.Error(t, err)
}

func TestSVG_FlatSeries(t *testing.T) {
	points := make([]models.TrendPoint, 12)
	for i := range points {
		points[i] = models.TrendPoint{Month: i + 1, Label: "m", Price: 1000, Low: 1000, High: 1000}
	}
	svg, err := SVG(models.TrendSeries{Category: models.CategoryBooks, Points: points})
	require.NoError(t, err)
	assert.NotContains(t, svg, "NaN")
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder()
	assert.True(t, strings.HasPrefix(p, "<svg"))
	assert.Contains(t, p, "차트 생성 중 오류가 발생했습니다")
	assert.NotContains(t, p, "<?xml")
}

func TestWorkbook(t *testing.T) {
	series := sampleSeries(t)
	buf, err := Workbook(series)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	header, err := f.GetCellValue(sheetName, "B1")
	require.NoError(t, err)
	assert.Equal(t, "예상 시세", header)

	month, err := f.GetCellValue(sheetName, "A13")
	require.NoError(t, err)
	assert.Equal(t, "12월", month)

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 13)

	_, err = Workbook(models.TrendSeries{})
	assert.ErrorIs(t, err, ErrEmptySeries)
}
