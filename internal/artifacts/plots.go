package artifacts

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"newslens/internal/correlate"
	"newslens/internal/eda"
	"newslens/internal/indicators"
	"newslens/internal/models"
)

var (
	greyDash  = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	steelBlue = color.RGBA{R: 0x46, G: 0x82, B: 0xb4, A: 0xff}
	darkRed   = color.RGBA{R: 0x8b, G: 0x00, B: 0x00, A: 0xff}
)

// PlotSentimentVsReturn writes {TICKER}_sentiment_vs_return.png: a scatter
// of mean daily sentiment against the chosen return, with zero axes and the
// coefficient in the title. Only called when observations exist.
func (w *Writer) PlotSentimentVsReturn(ticker string, merged []models.MergedRow, lag int, coeff float64) error {
	pts := make(plotter.XYs, 0, len(merged))
	for _, m := range merged {
		ret := correlate.ReturnColumn(m, lag)
		if m.SentimentMean == nil || ret == nil {
			continue
		}
		pts = append(pts, plotter.XY{X: *m.SentimentMean, Y: *ret})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no observations to plot for %s", ticker)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: sentiment vs daily return (r = %.2f)", ticker, coeff)
	p.X.Label.Text = "Average daily sentiment (polarity)"
	p.Y.Label.Text = "Daily return"

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Radius = vg.Points(2.5)
	sc.GlyphStyle.Color = steelBlue
	p.Add(sc, zeroHLine(pts), zeroVLine(pts))

	return p.Save(8*vg.Inch, 6*vg.Inch, w.path(ticker+"_sentiment_vs_return.png"))
}

// PlotLengthHistogram writes length_hist.png for the EDA task.
func (w *Writer) PlotLengthHistogram(lengths []float64) error {
	if len(lengths) == 0 {
		return fmt.Errorf("no headlines to plot")
	}
	p := plot.New()
	p.Title.Text = "Headline Length Distribution"
	p.X.Label.Text = "Characters"

	h, err := plotter.NewHist(plotter.Values(lengths), 50)
	if err != nil {
		return err
	}
	h.FillColor = steelBlue
	p.Add(h)
	return p.Save(8*vg.Inch, 4*vg.Inch, w.path("length_hist.png"))
}

// PlotCountsLine writes a chronological line chart of per-day counts.
func (w *Writer) PlotCountsLine(name, title string, counts []eda.CountRow) error {
	pts := make(plotter.XYs, len(counts))
	for i, c := range counts {
		pts[i] = plotter.XY{X: float64(i), Y: float64(c.Count)}
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Count"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = steelBlue
	p.Add(line)
	return p.Save(10*vg.Inch, 4*vg.Inch, w.path(name))
}

// PlotCountsBar writes a labelled bar chart of counts.
func (w *Writer) PlotCountsBar(name, title string, counts []eda.CountRow) error {
	values := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		values[i] = float64(c.Count)
		labels[i] = c.Key
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Count"

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return err
	}
	bars.Color = steelBlue
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)
	return p.Save(8*vg.Inch, 4*vg.Inch, w.path(name))
}

// PlotIndicators writes {TICKER}_indicators.png: close and SMA-20 lines.
func (w *Writer) PlotIndicators(ticker string, rep indicators.Report) error {
	closePts := make(plotter.XYs, 0, len(rep.Rows))
	smaPts := make(plotter.XYs, 0, len(rep.Rows))
	for i, r := range rep.Rows {
		closePts = append(closePts, plotter.XY{X: float64(i), Y: r.Close})
		if r.SMA20 != nil {
			smaPts = append(smaPts, plotter.XY{X: float64(i), Y: *r.SMA20})
		}
	}
	if len(closePts) == 0 {
		return fmt.Errorf("no bars to plot for %s", ticker)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Close & SMA20", ticker)
	p.Y.Label.Text = "Price"

	closeLine, err := plotter.NewLine(closePts)
	if err != nil {
		return err
	}
	closeLine.Color = color.Black
	p.Add(closeLine)
	p.Legend.Add("Close", closeLine)

	if len(smaPts) > 0 {
		smaLine, err := plotter.NewLine(smaPts)
		if err != nil {
			return err
		}
		smaLine.Color = darkRed
		p.Add(smaLine)
		p.Legend.Add("SMA 20", smaLine)
	}
	p.Legend.Top = true
	return p.Save(12*vg.Inch, 6*vg.Inch, w.path(ticker+"_indicators.png"))
}

func zeroHLine(pts plotter.XYs) *plotter.Line {
	minX, maxX := pts[0].X, pts[0].X
	for _, pt := range pts {
		if pt.X < minX {
			minX = pt.X
		}
		if pt.X > maxX {
			maxX = pt.X
		}
	}
	l, _ := plotter.NewLine(plotter.XYs{{X: minX, Y: 0}, {X: maxX, Y: 0}})
	styleAxisLine(l)
	return l
}

func zeroVLine(pts plotter.XYs) *plotter.Line {
	minY, maxY := pts[0].Y, pts[0].Y
	for _, pt := range pts {
		if pt.Y < minY {
			minY = pt.Y
		}
		if pt.Y > maxY {
			maxY = pt.Y
		}
	}
	l, _ := plotter.NewLine(plotter.XYs{{X: 0, Y: minY}, {X: 0, Y: maxY}})
	styleAxisLine(l)
	return l
}

func styleAxisLine(l *plotter.Line) {
	if l == nil {
		return
	}
	l.Color = greyDash
	l.Width = vg.Points(0.8)
	l.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
}
