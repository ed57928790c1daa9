package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
}

const barRune = "█"

// BarChart renders bars scaled to the largest value, with labels padded to
// the same width and the value printed after each bar using format.
func BarChart(bars []Bar, width int, format string) string {
	if len(bars) == 0 {
		return DimStyle.Render("(sem dados)")
	}
	if format == "" {
		format = "%.1f"
	}

	labelWidth := 0
	maxVal := 0.0
	for _, b := range bars {
		if w := lipgloss.Width(b.Label); w > labelWidth {
			labelWidth = w
		}
		if b.Value > maxVal {
			maxVal = b.Value
		}
	}

	barWidth := width - labelWidth - 12
	if barWidth < 10 {
		barWidth = 10
	}

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		n := 0
		if maxVal > 0 && b.Value > 0 {
			n = int(math.Round(b.Value / maxVal * float64(barWidth)))
			if n == 0 {
				n = 1
			}
		}
		lines = append(lines, fmt.Sprintf("%s  %s %s",
			PadRight(b.Label, labelWidth),
			BarStyle.Render(strings.Repeat(barRune, n)),
			fmt.Sprintf(format, b.Value),
		))
	}
	return strings.Join(lines, "\n")
}

// PadRight pads s with spaces to width display cells.
func PadRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// Truncate cuts s to width display cells, ending with "…" when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// Wrap breaks text into lines of at most width cells on word boundaries.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if lipgloss.Width(line)+1+lipgloss.Width(w) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		lines = append(lines, line)
	}
	return lines
}

// Table renders rows as aligned columns separated by two spaces.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i := range header {
			if i < len(r) {
				if w := lipgloss.Width(r[i]); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		parts := make([]string, len(header))
		for i := range header {
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			if i < len(header)-1 {
				c = PadRight(c, widths[i])
			}
			if style != nil {
				c = style.Render(c)
			}
			parts[i] = c
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		b.WriteString("\n")
	}
	writeRow(header, &SectionStyle)
	for _, r := range rows {
		writeRow(r, nil)
	}
	return b.String()
}
