package ui

import (
	"fmt"
	"html/template"
	"strings"

	"liftcast/domain/typicality"
)

// Step chart geometry, in SVG user units.
const (
	chartWidth   = 960
	chartHeight  = 280
	chartPadLeft = 48
	chartPadTop  = 16
	chartPadBot  = 32
	chartPadRite = 16
	minutesInDay = typicality.HoursPerDay * 60
)

// StepChart draws the typical floor over the day as an SVG step line. Each
// record is a point at its slot's end minute; a horizontal then vertical
// segment joins consecutive points. The highlighted key gets a marker.
func StepChart(records []typicality.SummaryRecord, highlight typicality.Key) template.HTML {
	var b strings.Builder

	minFloor, maxFloor := 0, 1
	for i, r := range records {
		if i == 0 || r.TypicalFloor < minFloor {
			minFloor = r.TypicalFloor
		}
		if i == 0 || r.TypicalFloor > maxFloor {
			maxFloor = r.TypicalFloor
		}
	}
	if maxFloor == minFloor {
		maxFloor = minFloor + 1
	}

	plotW := float64(chartWidth - chartPadLeft - chartPadRite)
	plotH := float64(chartHeight - chartPadTop - chartPadBot)
	x := func(hour, minute int) float64 {
		return chartPadLeft + plotW*float64(hour*60+minute)/minutesInDay
	}
	y := func(floor int) float64 {
		return chartPadTop + plotH*float64(maxFloor-floor)/float64(maxFloor-minFloor)
	}

	fmt.Fprintf(&b, `<svg class="step-chart" viewBox="0 0 %d %d" role="img" aria-label="Most typical floor throughout the day">`, chartWidth, chartHeight)

	// floor gridlines, one per floor
	for f := minFloor; f <= maxFloor; f++ {
		fmt.Fprintf(&b, `<line class="grid" x1="%d" y1="%.1f" x2="%d" y2="%.1f"/>`, chartPadLeft, y(f), chartWidth-chartPadRite, y(f))
		fmt.Fprintf(&b, `<text class="axis" x="%d" y="%.1f" text-anchor="end">%d</text>`, chartPadLeft-6, y(f)+4, f)
	}
	for h := 0; h <= typicality.HoursPerDay; h += 3 {
		fmt.Fprintf(&b, `<text class="axis" x="%.1f" y="%d" text-anchor="middle">%02d:00</text>`, x(h, 0), chartHeight-10, h%24)
	}

	if len(records) > 0 {
		b.WriteString(`<path class="path" d="`)
		for i, r := range records {
			if i == 0 {
				fmt.Fprintf(&b, "M%.1f %.1f", x(r.Hour, r.Minute), y(r.TypicalFloor))
				continue
			}
			fmt.Fprintf(&b, " H%.1f V%.1f", x(r.Hour, r.Minute), y(r.TypicalFloor))
		}
		b.WriteString(`"/>`)
	}

	for _, r := range records {
		class, radius := "point", 2.5
		if r.Key() == highlight {
			class, radius = "point current", 6
		}
		fmt.Fprintf(&b, `<circle class="%s" cx="%.1f" cy="%.1f" r="%.1f"><title>%s floor %d, %.1f%% confidence, %.2f bits</title></circle>`,
			class, x(r.Hour, r.Minute), y(r.TypicalFloor), radius, r.Key(), r.TypicalFloor, r.Confidence*100, r.Entropy)
	}

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}
