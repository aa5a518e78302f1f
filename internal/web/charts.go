package web

import (
	"log"
	"net/http"
	"time"

	"poro/internal/util"

	"github.com/go-chi/chi"
	"github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"
)

func (s *Server) getStabilizationChart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { log.Printf("info: computed stabilization chart in %s", time.Since(start)) }()

	report, err := s.back.GetCalibrationReport(chi.URLParam(r, "guildID"))
	if err != nil {
		s.backError(w, err)
		return
	}
	if len(report.Stabilization) < 2 {
		s.error(w, util.ErrPublic("not enough matches to draw a chart"), http.StatusNotFound)
		return
	}

	xs := make([]float64, 0, len(report.Stabilization))
	ys := make([]float64, 0, len(report.Stabilization))
	for _, v := range report.Stabilization {
		xs = append(xs, float64(v.MatchNumber))
		ys = append(ys, float64(v.ChangeMagnitude))
	}

	graph := chart.Chart{
		Height: 300,
		Width:  600,
		Canvas: chart.Style{FillColor: chart.ColorTransparent},
		Background: chart.Style{
			FillColor: chart.ColorTransparent,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					Show:        true,
					StrokeColor: drawing.ColorFromHex("4c7899"),
					StrokeWidth: 2,
				},
			},
		},
	}

	s.cache(w, "public", 5*time.Minute)
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := graph.Render(chart.SVG, w); err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}
}

func (s *Server) getCalibrationChart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { log.Printf("info: computed calibration chart in %s", time.Since(start)) }()

	report, err := s.back.GetCalibrationReport(chi.URLParam(r, "guildID"))
	if err != nil {
		s.backError(w, err)
		return
	}

	barStyle := chart.Style{
		FontColor:   drawing.ColorBlack,
		FillColor:   drawing.ColorFromHex("285577"),
		StrokeColor: drawing.ColorFromHex("4c7899"),
		StrokeWidth: 1,
	}

	// One bar per rating-gap band, showing the gap between the observed and
	// the predicted win rate of the favored side.
	bars := make([]chart.Value, 0, len(report.Buckets))
	for _, bucket := range report.Buckets {
		bars = append(bars, chart.Value{
			Value: bucket.Gap,
			Label: bucket.Range,
			Style: barStyle,
		})
	}
	if len(bars) == 0 {
		s.error(w, util.ErrPublic("not enough matches to draw a chart"), http.StatusNotFound)
		return
	}

	graph := chart.BarChart{
		Height: 300,
		Width:  600,
		Canvas: chart.Style{FillColor: chart.ColorTransparent},
		Background: chart.Style{
			FillColor: chart.ColorTransparent,
		},
		YAxis: chart.YAxis{
			Ticks: []chart.Tick{
				{Value: -25},
				{Value: 0},
				{Value: 25},
			},
		},
		Bars: bars,
	}
	graph.BarWidth = (graph.Width - (len(bars) * graph.BarSpacing)) / len(bars)

	s.cache(w, "public", 5*time.Minute)
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := graph.Render(chart.SVG, w); err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}
}
