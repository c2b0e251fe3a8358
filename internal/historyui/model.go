// Package historyui provides the Bubble Tea browser for recorded runs.
package historyui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/readability/internal/model"
	"github.com/verte-zerg/readability/internal/report"
)

const (
	tabRuns = iota
	tabMetrics
	tabTrends
)

const trendWindow = 3

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
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Source is the part of the run store the browser reads from.
type Source interface {
	ListRuns(ctx context.Context, filter model.HistoryFilter) ([]model.RunSummary, error)
	RunMetrics(ctx context.Context, runID string) ([]model.RunMetric, error)
	MetricValues(ctx context.Context, runIDs, names []string) (map[string]map[string]float64, error)
}

// Model implements the Bubble Tea history UI.
type Model struct {
	source    Source
	filter    model.HistoryFilter
	precision int

	runs   []model.RunSummary
	errMsg string

	tabs      []string
	activeTab int
	runTable  table.Model
	viewports []viewport.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a history UI model.
func NewModel(src Source, filter model.HistoryFilter, precision int) *Model {
	m := &Model{
		source:    src,
		filter:    filter,
		precision: precision,
		tabs:      []string{"Runs", "Metrics", "Trends"},
	}
	m.initInputs()
	m.runTable = buildRunTable(nil, 0, 1)
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refresh()
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
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabRuns {
				m.activeTab = tabMetrics
				m.runTable.Blur()
				m.renderMetrics()
			}
			return m, nil
		default:
			if m.activeTab == tabRuns {
				var cmd tea.Cmd
				m.runTable, cmd = m.runTable.Update(msg)
				m.renderMetrics()
				return m, cmd
			}
			var cmd tea.Cmd
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// SelectedRun returns the run under the table cursor.
func (m *Model) SelectedRun() (model.RunSummary, bool) {
	idx := m.runTable.Cursor()
	if idx < 0 || idx >= len(m.runs) {
		return model.RunSummary{}, false
	}
	// The table lists the newest run first.
	return m.runs[len(m.runs)-1-idx], true
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Lang: "),
		newFilterInput("Last: "),
	}
	m.setInputsFromFilter()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromFilter() {
	m.filterInputs[0].SetValue(strings.TrimSpace(m.filter.Lang))
	if m.filter.Last > 0 {
		m.filterInputs[1].SetValue(strconv.Itoa(m.filter.Last))
	} else {
		m.filterInputs[1].SetValue("")
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
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
	m.runTable.SetWidth(m.width)
	m.runTable.SetHeight(max(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabRuns {
		m.runTable.Focus()
	} else {
		m.runTable.Blur()
	}
}

func (m *Model) refresh() {
	runs, err := m.source.ListRuns(context.Background(), m.filter)
	if err != nil {
		m.errMsg = err.Error()
		m.runs = nil
	} else {
		m.errMsg = ""
		m.runs = runs
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.runTable = buildRunTable(m.runs, m.width, bodyHeight)
	if m.activeTab == tabRuns {
		m.runTable.Focus()
	}
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	m.renderMetrics()
	m.renderTrends()
}

func (m *Model) renderMetrics() {
	if len(m.viewports) == 0 {
		return
	}
	run, ok := m.SelectedRun()
	if !ok {
		m.viewports[tabMetrics].SetContent("No run selected.")
		return
	}
	metrics, err := m.source.RunMetrics(context.Background(), run.ID)
	if err != nil {
		m.viewports[tabMetrics].SetContent(fmt.Sprintf("Failed to load metrics: %v", err))
		return
	}
	var buf bytes.Buffer
	title := headerStyle.Render(fmt.Sprintf("%s  %s  %s  %s", run.StartedAt.Local().Format("2006-01-02 15:04"), run.Lang, run.Variant, run.Source))
	buf.WriteString(title + "\n\n")
	if err := report.RenderMetrics(&buf, metrics, m.precision); err != nil {
		m.viewports[tabMetrics].SetContent(fmt.Sprintf("Failed to render metrics: %v", err))
		return
	}
	m.viewports[tabMetrics].SetContent(strings.TrimRight(buf.String(), "\n"))
}

func (m *Model) renderTrends() {
	if len(m.viewports) == 0 {
		return
	}
	ids := make([]string, len(m.runs))
	for i, r := range m.runs {
		ids[i] = r.ID
	}
	values, err := m.source.MetricValues(context.Background(), ids, report.TrendMetrics)
	if err != nil {
		m.viewports[tabTrends].SetContent(fmt.Sprintf("Failed to load trends: %v", err))
		return
	}
	var buf bytes.Buffer
	if err := report.RenderTrends(&buf, m.runs, values, report.TrendMetrics, trendWindow); err != nil {
		m.viewports[tabTrends].SetContent(fmt.Sprintf("Failed to render trends: %v", err))
		return
	}
	m.viewports[tabTrends].SetContent(strings.TrimRight(buf.String(), "\n"))
}

func buildRunTable(runs []model.RunSummary, width, height int) table.Model {
	headers, cells := report.RunRows(runs)
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	rows := make([]table.Row, 0, len(cells))
	for i := len(cells) - 1; i >= 0; i-- {
		for j, c := range cells[i] {
			widths[j] = max(widths[j], lipgloss.Width(c))
		}
		rows = append(rows, table.Row(cells[i]))
	}
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: widths[i]}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(runTableStyles())
	return t
}

func runTableStyles() table.Styles {
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

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + headerStyle.Render(truncateLine(m.filterSummary(), m.width))
}

func (m *Model) filterSummary() string {
	lang := m.filter.Lang
	if lang == "" {
		lang = "any"
	}
	last := "all"
	if m.filter.Last > 0 {
		last = strconv.Itoa(m.filter.Last)
	}
	return fmt.Sprintf("Filter: lang=%s  last=%s  runs=%d", lang, last, len(m.runs))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Select: up/down  Details: enter  Filter: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		lines := []string{"Filter (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return fitLines(strings.Join(lines, "\n"), m.width, height)
	}
	if m.activeTab == tabRuns {
		if len(m.runs) == 0 {
			return fitLines("No runs recorded. Measure with --record to add some.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.runTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromFilter()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		filter, err := m.parseFilter()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filter = filter
		m.filterMode = false
		m.filterError = ""
		m.refresh()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
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

func (m *Model) parseFilter() (model.HistoryFilter, error) {
	filter := model.HistoryFilter{Lang: strings.TrimSpace(m.filterInputs[0].Value())}
	lastInput := strings.TrimSpace(m.filterInputs[1].Value())
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return model.HistoryFilter{}, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		filter.Last = parsed
	}
	return filter, nil
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
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
