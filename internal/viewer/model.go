// Package viewer provides the interactive Bubble Tea spiral explorer.
package viewer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/primespiral/internal/model"
	"github.com/verte-zerg/primespiral/internal/report"
	"github.com/verte-zerg/primespiral/internal/spiral"
)

const (
	tabSpiral = iota
	tabArms
	tabAccuracy
)

// DefaultDebounce is the delay between the last parameter change and the
// recomputation it triggers.
const DefaultDebounce = 150 * time.Millisecond

const (
	angleStep    = 1.0
	maxUIAngle   = 360.0
	plotReserved = 4 // title, extent and legend lines
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3A9AC8"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// recomputeMsg is delivered by the debounce timer. Only the message carrying
// the latest generation triggers an analysis.
type recomputeMsg struct {
	generation int
}

// Model implements the Bubble Tea spiral viewer.
type Model struct {
	analyzer *spiral.Analyzer
	primes   []int
	params   model.Params
	debounce time.Duration

	result     spiral.Result
	hasResult  bool
	errMsg     string
	generation int

	tabs      []string
	activeTab int
	viewports []viewport.Model
	armTable  table.Model

	width  int
	height int

	formMode   bool
	formInputs []textinput.Model
	formIndex  int
	formError  string
}

// NewModel constructs a viewer over primes and runs the first analysis.
// A non-positive debounce uses DefaultDebounce.
func NewModel(analyzer *spiral.Analyzer, primes []int, params model.Params, debounce time.Duration) *Model {
	if analyzer == nil {
		analyzer = spiral.NewAnalyzer(nil)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	m := &Model{
		analyzer: analyzer,
		primes:   primes,
		params:   params,
		debounce: debounce,
		tabs:     []string{"Spiral", "Arms", "Accuracy"},
	}
	m.initInputs()
	m.armTable = newArmTable()
	m.initViewports()
	m.recompute()
	return m
}

// Params returns the parameters of the most recent edit.
func (m *Model) Params() model.Params {
	return m.params
}

// Result returns the last successful analysis and whether one exists.
func (m *Model) Result() (spiral.Result, bool) {
	return m.result, m.hasResult
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
	case recomputeMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.recompute()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.formMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.formMode {
			return m.updateForm(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "+", "=":
			return m, m.adjustAngle(angleStep)
		case "-":
			return m, m.adjustAngle(-angleStep)
		case "]":
			return m, m.adjustPredictions(1)
		case "[":
			return m, m.adjustPredictions(-1)
		case "p":
			return m, m.togglePolicy()
		case "/":
			return m.startForm()
		case "g", "home":
			if m.activeTab == tabArms {
				m.armTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabArms {
				m.armTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabArms {
				var cmd tea.Cmd
				m.armTable, cmd = m.armTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
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

func (m *Model) adjustAngle(delta float64) tea.Cmd {
	next := m.params.AngleDelta + delta
	if next <= 0 || next >= maxUIAngle {
		m.errMsg = fmt.Sprintf("angle must be in (0, %g)", maxUIAngle)
		return nil
	}
	m.params.AngleDelta = next
	return m.schedule()
}

func (m *Model) adjustPredictions(delta int) tea.Cmd {
	next := clampInt(m.params.PredictionCount+delta, spiral.MinPredictionCount, spiral.MaxPredictionCount)
	if next == m.params.PredictionCount {
		return nil
	}
	m.params.PredictionCount = next
	return m.schedule()
}

func (m *Model) togglePolicy() tea.Cmd {
	if m.params.Policy == model.PolicyAngular {
		m.params.Policy = model.PolicyResidue
	} else {
		m.params.Policy = model.PolicyAngular
	}
	return m.schedule()
}

// schedule bumps the generation and arms a debounce timer for it.
func (m *Model) schedule() tea.Cmd {
	m.generation++
	gen := m.generation
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return recomputeMsg{generation: gen}
	})
}

func (m *Model) recompute() {
	res, err := m.analyzer.Analyze(m.primes, m.params)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.result = res
	m.hasResult = true
	m.armTable.SetRows(armTableRows(res.Arms))
	m.renderTabContents()
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.formInputs = []textinput.Model{
		newFormInput("Angle (deg): "),
		newFormInput("Predictions: "),
	}
	m.setInputsFromParams()
}

func newFormInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromParams() {
	m.formInputs[0].SetValue(strconv.FormatFloat(m.params.AngleDelta, 'f', -1, 64))
	m.formInputs[1].SetValue(strconv.Itoa(m.params.PredictionCount))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.formMode && m.errMsg != "" {
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
	m.armTable.SetWidth(m.width)
	m.armTable.SetHeight(max(bodyHeight-1, 1))
	for i := range m.formInputs {
		promptWidth := lipgloss.Width(m.formInputs[i].Prompt)
		m.formInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabArms {
		m.armTable.Focus()
	} else {
		m.armTable.Blur()
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
	tabs := padLines(m.renderTabs(), m.width)
	settings := padLines(headerStyle.Render(truncateLine(m.settingsSummary(), m.width)), m.width)
	return tabs + "\n" + settings
}

func (m *Model) settingsSummary() string {
	mode := m.params.AngleMode
	if mode == "" {
		mode = model.AngleModeRaw
	}
	return fmt.Sprintf("Settings: angle=%.2f°  predictions=%d  policy=%s  mode=%s  primes=%s",
		m.params.AngleDelta, m.params.PredictionCount, policyLabel(m.params.Policy), mode,
		humanize.Comma(int64(len(m.primes))))
}

func policyLabel(p model.Policy) string {
	if p == "" {
		return string(model.PolicyResidue)
	}
	return string(p)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Angle: -/+  Predictions: [/]  Policy: p  Settings: /  Quit: q")
}

func (m *Model) renderFooter() string {
	if m.formMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.formInputs {
		lines = append(lines, input.View())
	}
	if m.formError != "" {
		lines = append(lines, errorStyle.Render(m.formError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.formMode {
		return fitLines(m.renderForm(), m.width, height)
	}
	if !m.hasResult {
		return fitLines("No analysis yet.", m.width, height)
	}
	if m.activeTab == tabArms {
		if len(m.result.Arms) == 0 {
			return fitLines("No arms found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.armTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 || !m.hasResult {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.viewports[tabSpiral].SetContent(renderSpiral(m.result, width, bodyHeight))
	m.viewports[tabAccuracy].SetContent(renderAccuracy(m.result, width))
}

func renderSpiral(res spiral.Result, width, height int) string {
	if len(res.Positions) == 0 {
		return "No primes to plot."
	}
	var buf bytes.Buffer
	plotHeight := max(height-plotReserved, 4)
	if err := report.PlotSpiral(&buf, res, report.PlotWidthFor(width), plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render spiral: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderAccuracy(res spiral.Result, width int) string {
	cards := []string{
		metricCard("Arms", humanize.Comma(int64(len(res.Arms)))),
		metricCard("Predictions", humanize.Comma(int64(res.Report.TotalPredictions))),
		metricCard("Correct", humanize.Comma(int64(res.Report.CorrectPredictions))),
		metricCard("Accuracy", report.FormatPercent(res.Report.AccuracyPercent)),
		metricCard("Avg distance", fmt.Sprintf("%.4f", res.Report.AverageDistance)),
	}
	var row string
	if width < 80 {
		row = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
		row = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	var buf bytes.Buffer
	if err := report.RenderSummary(&buf, res); err != nil {
		return row
	}
	return strings.TrimRight(row+"\n\n"+buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func newArmTable() table.Model {
	columns := make([]table.Column, len(report.ArmHeaders))
	for i, title := range report.ArmHeaders {
		columns[i] = table.Column{Title: title, Width: max(len(title), 6)}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(1),
	)
	t.SetStyles(armTableStyles())
	return t
}

func armTableRows(arms []model.SpiralArm) []table.Row {
	rows := report.ArmRows(arms)
	out := make([]table.Row, len(rows))
	for i, row := range rows {
		out[i] = table.Row(row)
	}
	return out
}

func armTableStyles() table.Styles {
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

func (m *Model) startForm() (tea.Model, tea.Cmd) {
	m.formMode = true
	m.formError = ""
	m.setInputsFromParams()
	return m, m.setFormIndex(0)
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.formMode = false
		m.formError = ""
		return m, nil
	case tea.KeyEnter:
		params, err := m.parseForm()
		if err != nil {
			m.formError = err.Error()
			return m, nil
		}
		m.formMode = false
		m.formError = ""
		m.params = params
		m.generation++
		m.recompute()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFormIndex(m.formIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFormIndex(m.formIndex - 1)
	}
	var cmd tea.Cmd
	m.formInputs[m.formIndex], cmd = m.formInputs[m.formIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFormIndex(idx int) tea.Cmd {
	count := len(m.formInputs)
	m.formIndex = (idx%count + count) % count
	var cmd tea.Cmd
	for i := range m.formInputs {
		if i == m.formIndex {
			cmd = m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) parseForm() (model.Params, error) {
	params := m.params
	angle, err := strconv.ParseFloat(strings.TrimSpace(m.formInputs[0].Value()), 64)
	if err != nil || angle <= 0 || angle >= maxUIAngle {
		return params, fmt.Errorf("invalid angle (use a number in (0, %g))", maxUIAngle)
	}
	count, err := strconv.Atoi(strings.TrimSpace(m.formInputs[1].Value()))
	if err != nil || count < spiral.MinPredictionCount || count > spiral.MaxPredictionCount {
		return params, fmt.Errorf("invalid predictions (use %d-%d)", spiral.MinPredictionCount, spiral.MaxPredictionCount)
	}
	params.AngleDelta = angle
	params.PredictionCount = count
	return params, nil
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
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
