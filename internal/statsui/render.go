package statsui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/digitrace/internal/model"
	"github.com/verte-zerg/digitrace/internal/stats"
)

const digitCount = 10

var (
	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	passStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	failStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

func renderOverview(report stats.Report, window, width int) string {
	cards := []string{
		metricCard("Stars", strconv.Itoa(report.Progress.TotalStars)),
		metricCard("Digits", fmt.Sprintf("%d/%d", len(report.Progress.WritingCompleted), digitCount)),
		metricCard("Attempts", strconv.Itoa(len(report.Attempts))),
	}
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
		cards = append(cards,
			metricCard("Pass rate", fmt.Sprintf("%.1f%%", float64(passes)/count*100)),
			metricCard("Avg coverage", fmt.Sprintf("%.1f%%", coverage/count*100)),
		)
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	sections := []string{summary, renderAchievements(report.Achievements)}
	if len(report.Attempts) > 0 {
		var buf bytes.Buffer
		if err := stats.RenderCoverageCurve(&buf, report.Attempts, window, width); err != nil {
			sections = append(sections, fmt.Sprintf("Failed to render coverage: %v", err))
		} else {
			sections = append(sections, strings.TrimRight(buf.String(), "\n"))
		}
	} else {
		sections = append(sections, "No attempts found.")
	}
	return strings.Join(sections, "\n\n")
}

func renderAchievements(achievements []model.Achievement) string {
	if len(achievements) == 0 {
		return cardTitleStyle.Render("No achievements yet.")
	}
	lines := []string{cardTitleStyle.Render("Achievements")}
	for _, a := range achievements {
		lines = append(lines, fmt.Sprintf("%s %s  %s", a.Icon, cardValueStyle.Render(a.Name), cardTitleStyle.Render(a.UnlockedAt.Format("2006-01-02"))))
	}
	return strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderHistory(attempts []model.AttemptRecord) string {
	if len(attempts) == 0 {
		return "No attempts found."
	}
	lines := make([]string, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		verdict := failStyle.Render("miss")
		if a.Passed {
			verdict = passStyle.Render("pass")
		}
		lines = append(lines, fmt.Sprintf("%s  digit %d  %d/%d  %5.1f%%  %s",
			a.EndedAt.Local().Format("2006-01-02 15:04"), a.Digit, a.Matched, a.Total, a.Coverage*100, verdict))
	}
	return strings.Join(lines, "\n")
}

func buildDigitTable(aggs []model.DigitAggregate, width, height int) table.Model {
	cols, rows := buildDigitTableData(aggs)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(digitTableStyles())
	return t
}

func buildDigitTableData(aggs []model.DigitAggregate) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Digit", Width: 5},
		{Title: "Attempts", Width: 8},
		{Title: "Passes", Width: 6},
		{Title: "Pass Rate", Width: 9},
		{Title: "Avg Coverage", Width: 12},
		{Title: "Best", Width: 7},
	}
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, table.Row{
			strconv.Itoa(agg.Digit),
			strconv.Itoa(agg.Attempts),
			strconv.Itoa(agg.Passes),
			fmt.Sprintf("%.1f%%", agg.PassRate()*100),
			fmt.Sprintf("%.1f%%", agg.AvgCoverage()*100),
			fmt.Sprintf("%.1f%%", agg.BestCoverage*100),
		})
	}
	return columns, rows
}

func digitTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
