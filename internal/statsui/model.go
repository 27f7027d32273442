// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/digitrace/internal/model"
	"github.com/verte-zerg/digitrace/internal/stats"
	"github.com/verte-zerg/digitrace/internal/store"
)

const (
	tabOverview = iota
	tabDigits
	tabHistory
)

const (
	filterSince = iota
	filterLast
	filterWindow
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	keys       browseKeys
	filterKeys filterKeys
	help       help.Model

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	digitTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store:      st,
		cfg:        cfg,
		keys:       newBrowseKeys(),
		filterKeys: newFilterKeys(),
		help:       help.New(),
		tabs:       []string{"Overview", "Digits", "History"},
	}
	m.initInputs()
	m.digitTable = buildDigitTable(nil, 0, 1)
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if m.filterMode {
			return m, m.updateFilter(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Prev):
		m.moveTab(-1)
		return tea.ClearScreen
	case key.Matches(msg, m.keys.Next):
		m.moveTab(1)
		return tea.ClearScreen
	case key.Matches(msg, m.keys.WindowUp):
		m.setWindow(nextWindow(m.cfg.Window))
		return nil
	case key.Matches(msg, m.keys.WindowDown):
		m.setWindow(prevWindow(m.cfg.Window))
		return nil
	case key.Matches(msg, m.keys.Filter):
		return m.startFilter()
	case key.Matches(msg, m.keys.Top):
		m.scroll(true)
		return nil
	case key.Matches(msg, m.keys.Bottom):
		m.scroll(false)
		return nil
	}
	var cmd tea.Cmd
	if m.activeTab == tabDigits {
		m.digitTable, cmd = m.digitTable.Update(msg)
		return cmd
	}
	m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
	return cmd
}

func (m *Model) setWindow(window int) {
	if window == m.cfg.Window {
		return
	}
	m.cfg.Window = window
	m.renderTabContents()
}

func (m *Model) scroll(top bool) {
	switch {
	case m.activeTab == tabDigits && top:
		m.digitTable.GotoTop()
	case m.activeTab == tabDigits:
		m.digitTable.GotoBottom()
	case top:
		m.viewports[m.activeTab].GotoTop()
	default:
		m.viewports[m.activeTab].GotoBottom()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Window: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	since := ""
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := ""
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	m.filterInputs[filterSince].SetValue(since)
	m.filterInputs[filterLast].SetValue(last)
	m.filterInputs[filterWindow].SetValue(strconv.Itoa(m.cfg.Window))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(1, lipgloss.Height(activeNavStyle.Render("X"))) + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.digitTable.SetWidth(m.width)
	m.digitTable.SetHeight(max(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabDigits {
		m.digitTable.Focus()
	} else {
		m.digitTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + headerStyle.Render(truncateLine(filterSummary(m.cfg), m.width))
}

func filterSummary(cfg model.StatsConfig) string {
	since := "any"
	if cfg.Since != nil {
		since = cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if cfg.Last > 0 {
		last = strconv.Itoa(cfg.Last)
	}
	return fmt.Sprintf("Filters: since=%s  last=%s  window=%d", since, last, cfg.Window)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.help.View(m.filterKeys)
	}
	footer := m.help.View(m.keys)
	if m.errMsg != "" {
		return footer + "\n" + errorStyle.Render(m.errMsg)
	}
	return footer
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Filters"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.activeTab == tabDigits {
		if len(m.report.Digits) == 0 {
			return "No attempts found."
		}
		return m.digitTable.View()
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	cols, rows := buildDigitTableData(report.Digits)
	m.digitTable.SetColumns(cols)
	m.digitTable.SetRows(rows)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.cfg.Window, width))
	m.viewports[tabHistory].SetContent(renderHistory(m.report.Attempts))
}

func (m *Model) startFilter() tea.Cmd {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return tea.Quit
	case key.Matches(msg, m.filterKeys.Cancel):
		m.filterMode = false
		m.filterError = ""
		return nil
	case key.Matches(msg, m.filterKeys.Apply):
		cfg, err := parseFilter(m.filterInputs[filterSince].Value(), m.filterInputs[filterLast].Value(), m.filterInputs[filterWindow].Value())
		if err != nil {
			m.filterError = err.Error()
			return nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return nil
	case key.Matches(msg, m.filterKeys.NextField):
		return m.setFilterIndex(m.filterIndex + 1)
	case key.Matches(msg, m.filterKeys.PrevField):
		return m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func parseFilter(sinceInput, lastInput, windowInput string) (model.StatsConfig, error) {
	var cfg model.StatsConfig
	if s := strings.TrimSpace(sinceInput); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}
	if s := strings.TrimSpace(lastInput); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 0 {
			return cfg, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = parsed
	}
	cfg.Window = 1
	if s := strings.TrimSpace(windowInput); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			return cfg, fmt.Errorf("invalid window (use integer >= 1)")
		}
		cfg.Window = parsed
	}
	return cfg, nil
}

func nextWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}
