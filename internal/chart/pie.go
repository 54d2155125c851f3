// Package chart lays out the expense pie chart as SVG geometry so templates
// only have to print paths and labels.
package chart

import (
	"fmt"
	"math"
	"strconv"

	"bizdash/internal/core"
)

// ActiveFill replaces the colour of the highlighted slice.
const ActiveFill = "rgb(29,78,216)"

// Default geometry: a 150px radius pie centred in a 400x350 viewport.
const (
	Width  = 400
	Height = 350
	Radius = 150
)

type Slice struct {
	Name    string
	Amount  float64
	Color   string // category colour, kept for the legend
	Fill    string // colour actually painted
	Path    string // SVG path data; empty when the slice has no sweep
	Percent float64
	Active  bool
	Label   string
	LabelX  float64
	LabelY  float64
}

type PieChart struct {
	Width, Height  float64
	CX, CY, Radius float64
	Total          float64
	Slices         []Slice
}

// Empty reports whether there is nothing to draw.
func (p PieChart) Empty() bool {
	return p.Total <= 0
}

// Pie sizes one slice per total by amount, starting at three o'clock and
// running counter-clockwise. NaN and non-positive amounts get no sweep but
// keep their legend entry. active is the index of the highlighted slice; an
// out-of-range index highlights nothing.
func Pie(totals []core.CategoryTotal, active int) PieChart {
	p := PieChart{
		Width:  Width,
		Height: Height,
		CX:     Width / 2,
		CY:     Height / 2,
		Radius: Radius,
		Slices: make([]Slice, len(totals)),
	}
	for _, t := range totals {
		p.Total += sweepWeight(t.Amount)
	}

	angle := 0.0
	for i, t := range totals {
		s := Slice{
			Name:   t.Name,
			Amount: t.Amount,
			Color:  t.Color,
			Fill:   t.Color,
			Active: i == active,
			Label:  label(t),
		}
		if s.Active {
			s.Fill = ActiveFill
		}

		if w := sweepWeight(t.Amount); w > 0 && p.Total > 0 {
			frac := w / p.Total
			sweep := frac * 2 * math.Pi
			s.Percent = math.Round(frac*1000) / 10
			s.Path = arcPath(p.CX, p.CY, p.Radius, angle, sweep)
			mid := angle + sweep/2
			s.LabelX, s.LabelY = point(p.CX, p.CY, p.Radius*1.12, mid)
			angle += sweep
		}
		p.Slices[i] = s
	}
	return p
}

func sweepWeight(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0
	}
	return amount
}

func label(t core.CategoryTotal) string {
	if !t.Valid() {
		return "n/a"
	}
	return strconv.FormatFloat(t.Amount, 'f', -1, 64)
}

// point returns the SVG coordinates at angle (radians, counter-clockwise
// from three o'clock) on a circle. SVG's y axis points down.
func point(cx, cy, r, angle float64) (float64, float64) {
	return round2(cx + r*math.Cos(angle)), round2(cy - r*math.Sin(angle))
}

func arcPath(cx, cy, r, start, sweep float64) string {
	// A single arc cannot describe a full circle; draw two halves.
	if sweep >= 2*math.Pi-1e-9 {
		return fmt.Sprintf("M %s %s A %s %s 0 1 0 %s %s A %s %s 0 1 0 %s %s Z",
			f(cx-r), f(cy), f(r), f(r), f(cx+r), f(cy), f(r), f(r), f(cx-r), f(cy))
	}
	x0, y0 := point(cx, cy, r, start)
	x1, y1 := point(cx, cy, r, start+sweep)
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	// Sweep flag 0 draws counter-clockwise on screen.
	return fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 0 %s %s Z",
		f(cx), f(cy), f(x0), f(y0), f(r), f(r), large, f(x1), f(y1))
}

func f(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
