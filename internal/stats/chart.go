package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"murphy/internal/model"
)

// CurveSeries is one labeled curve on a comparison chart. Series order is
// the render order, so callers pass a slice rather than a map.
type CurveSeries struct {
	Label string
	Curve []model.StepStat
}

// WriteCurveChart renders mean-reward and fraction-optimal line charts for
// the given series onto one self-contained HTML page.
func WriteCurveChart(path, title string, series []CurveSeries) error {
	if len(series) == 0 {
		return fmt.Errorf("at least one curve series is required")
	}
	steps := 0
	for _, s := range series {
		if len(s.Curve) == 0 {
			return fmt.Errorf("curve series %s is empty", s.Label)
		}
		if len(s.Curve) > steps {
			steps = len(s.Curve)
		}
	}

	xAxis := make([]string, 0, steps)
	for i := 1; i <= steps; i++ {
		xAxis = append(xAxis, strconv.Itoa(i))
	}

	rewardLine := newCurveLine(title+" mean reward", xAxis)
	optimalLine := newCurveLine(title+" fraction optimal", xAxis)
	for _, s := range series {
		rewardItems := make([]opts.LineData, 0, len(s.Curve))
		optimalItems := make([]opts.LineData, 0, len(s.Curve))
		for _, row := range s.Curve {
			rewardItems = append(rewardItems, opts.LineData{Value: row.MeanReward})
			optimalItems = append(optimalItems, opts.LineData{Value: row.FractionOptimal})
		}
		rewardLine.AddSeries(s.Label, rewardItems)
		optimalLine.AddSeries(s.Label, optimalItems)
	}

	page := components.NewPage()
	page.AddCharts(rewardLine, optimalLine)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := page.Render(file); err != nil {
		return err
	}
	return file.Sync()
}

func newCurveLine(title string, xAxis []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
	)
	line.SetXAxis(xAxis)
	return line
}
