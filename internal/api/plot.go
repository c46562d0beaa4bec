package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// pathPlotHandler renders a quick HTML scatter of the planned path using
// go-echarts. Debugging-only endpoint to eyeball the traversal order
// without any UI: points are colored by their position in the path, so a
// sane plan shades smoothly sector by sector.
func (s *Server) pathPlotHandler(w http.ResponseWriter, r *http.Request) {
	p := s.engine.Path()
	if len(p) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "no plan available; start a run first")
		return
	}

	data := make([]opts.ScatterData, 0, p.HoleCount())
	order := 0
	for _, u := range p {
		for _, h := range u.Holes {
			data = append(data, opts.ScatterData{Value: []interface{}{h.X, h.Y, order}})
		}
		order++
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Detection Path", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Planned detection path",
			Subtitle: fmt.Sprintf("units=%d holes=%d", len(p), p.HoleCount()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(len(p)),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("path", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
