package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/serialbot/pkg/frame"
	"github.com/gwillem/serialbot/pkg/robot"
	"github.com/gwillem/serialbot/pkg/teleop"
)

const (
	headerHeight = 4  // title, status, gauges, blank line
	legendHeight = 2  // legend row + blank
	helpHeight   = 10 // key bindings
	footerHeight = 7  // log box height
	maxLogs      = 5  // number of log messages to show
	borderSize   = 2  // chart border
	gaugeWidth   = 20
)

// Axis colors
var axisColors = map[frame.Axis]string{
	frame.AxisX:   "196", // red
	frame.AxisY:   "46",  // green
	frame.AxisYaw: "51",  // cyan
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	armedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Padding(0, 1)
	disarmedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("240")).Padding(0, 1)
	gaugeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

type teleopModel struct {
	sess     *teleop.Session
	profile  teleop.Profile
	inputs   chan<- teleop.Input
	cancel   context.CancelFunc // stops the session when a quit cannot be queued
	chart    *streamlinechart.Model
	width    int // terminal width
	height   int // terminal height
	logs     []string
	state    teleop.State
	velocity map[frame.Axis]float64 // last commanded value per axis
	quitting bool
}

// Messages from the session
type stateMsg teleop.State
type logMsg string
type sessionDoneMsg struct{ err error }

func waitForState(sess *teleop.Session) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-sess.States())
	}
}

func waitForLog(sess *teleop.Session) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-sess.Logs())
	}
}

func newTeleopModel(sess *teleop.Session, inputs chan<- teleop.Input, cancel context.CancelFunc) teleopModel {
	p := sess.Profile()

	limit := p.SpeedRange.Max
	if p.HasAxis(frame.AxisYaw) {
		limit = max(limit, p.YawRateRange.Max)
	}
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-limit, limit),
	)
	for _, a := range p.Axes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[a]))
		chart.SetDataSetStyles(a.String(), runes.ThinLineStyle, style)
	}

	return teleopModel{
		sess:     sess,
		profile:  p,
		inputs:   inputs,
		cancel:   cancel,
		chart:    &chart,
		state:    teleop.State{Snapshot: sess.Initial()},
		velocity: make(map[frame.Axis]float64),
	}
}

func (m *teleopModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *teleopModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 12 // default size before we know terminal size
	}
	width = max(m.width-borderSize-2, 40)
	height = max(m.height-headerHeight-legendHeight-helpHeight-footerHeight-borderSize, 6)
	return width, height
}

func (m *teleopModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

// send forwards an input to the session without blocking the UI. A quit
// that does not fit in the queue cancels the session instead, which runs
// the same shutdown.
func (m *teleopModel) send(in teleop.Input) {
	select {
	case m.inputs <- in:
	default:
		if in.Symbol == teleop.Quit {
			m.addLog("Controller busy, interrupting")
			m.cancel()
			return
		}
		m.addLog("Input dropped, controller busy")
	}
}

// keyInput maps a key press to an Input. Keys that are not text, space,
// enter or ctrl+c are ignored.
func (m *teleopModel) keyInput(msg tea.KeyMsg) (teleop.Input, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return teleop.Input{Symbol: teleop.Quit, Key: "ctrl+c"}, true
	case tea.KeyEnter, tea.KeySpace:
		return teleop.Input{Symbol: teleop.Stop, Key: ""}, true
	case tea.KeyRunes:
		if msg.Alt {
			return teleop.Input{}, false
		}
		key := string(msg.Runes)
		return teleop.Input{Symbol: m.profile.Keys.Lookup(key), Key: key}, true
	}
	return teleop.Input{}, false
}

// observe records the commanded value of every axis written in frames.
func (m *teleopModel) observe(frames []frame.Frame) {
	for _, f := range frames {
		if f.Axis() == frame.AxisEnable {
			continue
		}
		m.velocity[f.Axis()] = float64(f.Value())
	}
	for _, a := range m.profile.Axes {
		m.chart.PushDataSet(a.String(), m.velocity[a])
	}
	m.chart.DrawAll()
}

func (m teleopModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.sess),
		waitForLog(m.sess),
	)
}

func (m teleopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		if in, ok := m.keyInput(msg); ok {
			m.send(in)
		}
		return m, nil

	case stateMsg:
		m.state = teleop.State(msg)
		if len(m.state.Frames) > 0 {
			m.observe(m.state.Frames)
		}
		return m, waitForState(m.sess)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.sess)

	case sessionDoneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m teleopModel) View() string {
	if m.quitting {
		return "Teleoperation stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("serialbot teleoperate"))
	sb.WriteString(fmt.Sprintf(" - %s profile", m.profile.Name))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
	sb.WriteString("\n")
	sb.WriteString(m.renderGauges())
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(m.renderLegend())
	sb.WriteString("\n\n")

	sb.WriteString(renderHelp(m.profile))
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press ctrl+c to stop and quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (m teleopModel) renderStatus() string {
	var parts []string
	if m.state.Armed {
		parts = append(parts, armedStyle.Render("ARMED"))
	} else {
		parts = append(parts, disarmedStyle.Render("DISARMED"))
	}

	dir := "none"
	if m.state.HasDirection() {
		dir = m.state.LastDirection.String()
	}
	parts = append(parts, statusStyle.Render("last: "+dir))

	if len(m.state.Frames) > 0 {
		hex := make([]string, len(m.state.Frames))
		for i, f := range m.state.Frames {
			hex[i] = f.Hex()
		}
		parts = append(parts, statusStyle.Render("tx: "+strings.Join(hex, " ")))
	}
	if m.state.Error != nil {
		parts = append(parts, errorStyle.Render(m.state.Error.Error()))
	}
	return strings.Join(parts, "  ")
}

func (m teleopModel) renderGauges() string {
	s := renderGauge("speed", m.state.Speed, m.profile.SpeedRange, "")
	if m.profile.HasAxis(frame.AxisYaw) {
		s += "   " + renderGauge("yaw", m.state.YawRate, m.profile.YawRateRange, " rad/s")
	}
	return s
}

func renderGauge(label string, v float64, r robot.Range, unit string) string {
	filled := int(r.Percent(v) / 100 * gaugeWidth)
	bar := gaugeStyle.Render(strings.Repeat("█", filled)) + statusStyle.Render(strings.Repeat("░", gaugeWidth-filled))
	return fmt.Sprintf("%-5s %s %.2f%s", label, bar, v, unit)
}

func (m teleopModel) renderLegend() string {
	var items []string
	for _, a := range m.profile.Axes {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[a])).Bold(true)
		item := colorStyle.Render("━━") + " " + a.String()
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}
