// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/digitrace/internal/model"
)

const (
	sparkChars          = " .:-=+*#%@"
	curveLabel          = "Coverage "
	terminalWidthBackup = 80
	minCurveWidth       = 10
	digitCount          = 10
)

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints stars, completed digits, achievements and attempt totals.
func RenderSummary(w io.Writer, report Report) error {
	lines := []string{
		"Summary",
		fmt.Sprintf("Stars: %d", report.Progress.TotalStars),
		fmt.Sprintf("Completed: %s (%d/%d)", completionRow(report.Progress.WritingCompleted), len(report.Progress.WritingCompleted), digitCount),
	}
	if len(report.Achievements) == 0 {
		lines = append(lines, "Achievements: none")
	} else {
		lines = append(lines, "Achievements:")
		for _, a := range report.Achievements {
			lines = append(lines, fmt.Sprintf("  %s %s (%s)", a.Icon, a.Name, a.UnlockedAt.Format("2006-01-02")))
		}
	}

	lines = append(lines, fmt.Sprintf("Attempts: %d", len(report.Attempts)))
	if len(report.Attempts) > 0 {
		passes := 0
		var coverage float64
		for _, a := range report.Attempts {
			if a.Passed {
				passes++
			}
			coverage += a.Coverage
		}
		count := float64(len(report.Attempts))
		lines = append(lines,
			fmt.Sprintf("Pass rate: %.2f%%", float64(passes)/count*100),
			fmt.Sprintf("Avg coverage: %.2f%%", coverage/count*100),
		)
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderDigitTable prints per-digit aggregates, weakest first.
func RenderDigitTable(w io.Writer, aggs []model.DigitAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	rows := make([]model.DigitAggregate, len(aggs))
	copy(rows, aggs)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PassRate() == rows[j].PassRate() {
			return rows[i].Digit < rows[j].Digit
		}
		return rows[i].PassRate() < rows[j].PassRate()
	})

	if _, err := fmt.Fprintln(w, "Per-Digit"); err != nil {
		return err
	}
	headers := []string{"Digit", "Attempts", "Passes", "Pass Rate", "Avg Coverage", "Best"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			strconv.Itoa(r.Digit),
			strconv.Itoa(r.Attempts),
			strconv.Itoa(r.Passes),
			fmt.Sprintf("%.2f%%", r.PassRate()*100),
			fmt.Sprintf("%.2f%%", r.AvgCoverage()*100),
			fmt.Sprintf("%.2f%%", r.BestCoverage*100),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCoverageCurve prints a sparkline of the moving-average coverage. A
// non-positive totalWidth uses the terminal width.
func RenderCoverageCurve(w io.Writer, attempts []model.AttemptRecord, window, totalWidth int) error {
	if len(attempts) == 0 {
		return nil
	}
	values := make([]float64, len(attempts))
	for i, a := range attempts {
		values[i] = a.Coverage * 100
	}
	values = MovingAverage(values, window)
	width := CurveWidthFor(totalWidth)
	if len(values) > width {
		values = values[len(values)-width:]
	}
	last := values[len(values)-1]
	_, err := fmt.Fprintf(w, "%s%s %.1f%%\n", curveLabel, Sparkline(values), last)
	return err
}

// CurveWidthFor computes a sparkline width that fits within the total width.
func CurveWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	// Label plus a trailing " 100.0%".
	width := totalWidth - len(curveLabel) - 7
	if width < minCurveWidth {
		width = minCurveWidth
	}
	return width
}

func completionRow(completed []int) string {
	if len(completed) == 0 {
		return "-"
	}
	parts := make([]string, len(completed))
	for i, d := range completed {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, " ")
}

func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
