// Package chart draws price history as PNG images.
package chart

import (
	"bytes"
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/price"
	"github.com/pkg/errors"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"time"
)

const (
	width  = 1200
	height = 600
)

var ErrNotEnoughData = errors.New("not enough price points to draw a chart")

var (
	seriesColor     = drawing.Color{R: 0, G: 122, B: 255, A: 255}
	fillColor       = drawing.Color{R: 0, G: 122, B: 255, A: 25}
	backgroundColor = drawing.Color{R: 55, G: 55, B: 55, A: 255}
	textColor       = drawing.Color{R: 200, G: 200, B: 200, A: 255}
)

// RenderPNG draws points as a filled line chart.
func RenderPNG(title string, points []market.PricePoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, ErrNotEnoughData
	}

	times := make([]time.Time, 0, len(points))
	prices := make([]float64, 0, len(points))
	for _, p := range points {
		times = append(times, p.Time)
		prices = append(prices, p.Price)
	}

	minPrice, maxPrice := minMax(prices)
	padding := (maxPrice - minPrice) * 0.1
	if padding == 0 {
		padding = maxPrice * 0.01
	}
	if padding == 0 {
		padding = 1
	}

	axisStyle := gochart.Style{
		FontColor:   textColor,
		StrokeColor: textColor,
		FontSize:    12,
	}

	graph := gochart.Chart{
		Title:      title,
		TitleStyle: gochart.Style{FontColor: textColor, FontSize: 16},
		Width:      width,
		Height:     height,
		Background: gochart.Style{
			FillColor: backgroundColor,
			Padding:   gochart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: gochart.Style{FillColor: backgroundColor},
		XAxis: gochart.XAxis{
			Style:          axisStyle,
			ValueFormatter: gochart.TimeValueFormatterWithFormat("02-Jan"),
		},
		YAxis: gochart.YAxis{
			Style: axisStyle,
			Range: &gochart.ContinuousRange{Min: minPrice - padding, Max: maxPrice + padding},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return price.FormatSignificant(f, 4)
				}
				return ""
			},
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				XValues: times,
				YValues: prices,
				Style: gochart.Style{
					StrokeColor: seriesColor,
					StrokeWidth: 2,
					FillColor:   fillColor,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, errors.Wrap(err, "render chart")
	}
	return buf.Bytes(), nil
}

func minMax(values []float64) (min, max float64) {
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
