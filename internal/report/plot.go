// Package report renders analysis results as terminal text.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/verte-zerg/primespiral/internal/spiral"
)

// Point is a plot coordinate.
type Point struct {
	X float64
	Y float64
}

// Layer is a named group of points drawn with one color. Trails are
// polylines drawn with the layer's line style.
type Layer struct {
	Name   string
	Points []Point
	Trails [][]Point
}

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight   = 20
	minPlotWidth        = 10
	axisLabelWidth      = 8
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "solid", period: 1, on: 1},
}

var colorPalette = []ansiColor{
	{name: "yellow", code: "\x1b[33m"},
	{name: "cyan", code: "\x1b[36m"},
	{name: "blue", code: "\x1b[34m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "green", code: "\x1b[32m"},
}

// SpiralLayers splits a result into predictions, arm members and the
// remaining positions.
func SpiralLayers(res spiral.Result) []Layer {
	inArm := map[int]struct{}{}
	predictions := Layer{Name: "Predictions"}
	members := Layer{Name: "Arm points"}
	for _, arm := range res.Arms {
		for _, p := range arm.Points {
			inArm[p.Index] = struct{}{}
			members.Points = append(members.Points, Point{X: p.X, Y: p.Y})
		}
		if len(arm.Predictions) == 0 || len(arm.Points) == 0 {
			continue
		}
		last := arm.Points[len(arm.Points)-1]
		trail := []Point{{X: last.X, Y: last.Y}}
		for _, p := range arm.Predictions {
			pt := Point{X: p.X, Y: p.Y}
			predictions.Points = append(predictions.Points, pt)
			trail = append(trail, pt)
		}
		predictions.Trails = append(predictions.Trails, trail)
	}
	others := Layer{Name: "Unassigned"}
	for _, p := range res.Positions {
		if _, ok := inArm[p.Index]; ok {
			continue
		}
		others.Points = append(others.Points, Point{X: p.X, Y: p.Y})
	}
	return []Layer{predictions, members, others}
}

// PlotSpiral renders the result as a braille scatter plot.
func PlotSpiral(w io.Writer, res spiral.Result, width, height int, forceColor bool) error {
	title := fmt.Sprintf("Prime spiral (%.2f°, %s)", res.Params.AngleDelta, res.Policy)
	return PlotScatter(w, title, SpiralLayers(res), width, height, forceColor)
}

// PlotScatter renders layers on an origin-centred canvas with equal scale on
// both axes. Each braille cell holds 2x4 dots.
func PlotScatter(w io.Writer, title string, layers []Layer, width, height int, forceColor bool) error {
	layers = filterLayers(layers)
	if len(layers) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	width = max(width, minPlotWidth)

	extent := layerExtent(layers)
	dotsW, dotsH := width*2, height*4
	scale := math.Min(float64(dotsW-1), float64(dotsH-1)) / (2 * extent)
	cx, cy := float64(dotsW-1)/2, float64(dotsH-1)/2
	project := func(p Point) (int, int) {
		return int(math.Round(cx + p.X*scale)), int(math.Round(cy - p.Y*scale))
	}

	layerCells := make([][][]uint8, len(layers))
	for li, layer := range layers {
		cells := makeCells(height, width)
		style := lineStyles[li%len(lineStyles)]
		for _, trail := range layer.Trails {
			for i := 1; i < len(trail); i++ {
				x0, y0 := project(trail[i-1])
				x1, y1 := project(trail[i])
				drawLine(x0, y0, x1, y1, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(cells, dx, dy)
					}
				})
			}
		}
		for _, p := range layer.Points {
			x, y := project(p)
			setBrailleDot(cells, x, y)
		}
		layerCells[li] = cells
	}

	useColor := shouldUseColor(w, forceColor)
	axisLabels := makeAxisLabels(height, extent)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Extent: ±%.2f\n", extent); err != nil {
		return err
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", axisLabelWidth, axisLabels[y], axisSeparator))
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(layerCells, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				row.WriteString(colorPalette[colorIdx%len(colorPalette)].code)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(row.String(), " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, renderLegend(layers, useColor)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

func filterLayers(layers []Layer) []Layer {
	out := make([]Layer, 0, len(layers))
	for _, l := range layers {
		if len(l.Points) == 0 && len(l.Trails) == 0 {
			continue
		}
		out = append(out, l)
	}
	return out
}

func layerExtent(layers []Layer) float64 {
	extent := 0.0
	grow := func(p Point) {
		extent = math.Max(extent, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	for _, l := range layers {
		for _, p := range l.Points {
			grow(p)
		}
		for _, trail := range l.Trails {
			for _, p := range trail {
				grow(p)
			}
		}
	}
	if extent < 1e-9 {
		extent = 1
	}
	return extent
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := axisLabelWidth + utf8.RuneCountInString(axisSeparator)
	return max(totalWidth-axisWidth, minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeAxisLabels(height int, extent float64) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = fmt.Sprintf("%.2f", extent)
	if height > 2 {
		labels[height/2] = "0"
	}
	if height > 1 {
		labels[height-1] = fmt.Sprintf("%.2f", -extent)
	}
	return labels
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// composeCell merges layer masks; the first layer with a dot picks the color.
func composeCell(layerCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range layerCells {
		if y < 0 || y >= len(cells) || x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = i
		}
		mask |= cellMask
	}
	return mask, colorIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

func renderLegend(layers []Layer, useColor bool) string {
	parts := make([]string, 0, len(layers))
	marker := brailleFromMask(0x01)
	for i, l := range layers {
		label := fmt.Sprintf("%c %s (%d)", marker, l.Name, len(l.Points))
		if len(l.Trails) > 0 {
			label = fmt.Sprintf("%c %s (%d, %s)", marker, l.Name, len(l.Points), lineStyles[i%len(lineStyles)].name)
		}
		if useColor {
			color := colorPalette[i%len(colorPalette)].code
			label = color + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

// brailleDotMask maps a dot within a 2x4 cell to its Unicode braille bit.
func brailleDotMask(x, y int) uint8 {
	if x == 0 {
		return [4]uint8{0x01, 0x02, 0x04, 0x40}[y]
	}
	return [4]uint8{0x08, 0x10, 0x20, 0x80}[y]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
