package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/mello/pkg/robot"
	"github.com/gwillem/mello/pkg/teleop"
)

type MonitorCommand struct {
	SourceOptions
	Plain  bool          `long:"plain" description:"Print text lines instead of the chart"`
	Settle time.Duration `long:"settle" default:"2s" description:"Time to let the device initialize"`
}

const (
	headerHeight   = 2 // title + blank line
	legendHeight   = 2 // legend row + blank
	statusHeight   = 2 // gripper/stats row + blank
	footerHeight   = 7 // log box height
	maxLogs        = 5 // number of log messages to show
	borderSize     = 2 // chart border
	updateInterval = 100 * time.Millisecond
)

// Joint colors - distinct colors for each joint
var jointColors = map[robot.MotorName]string{
	robot.Base:     "196", // red
	robot.Shoulder: "208", // orange
	robot.Elbow:    "226", // yellow
	robot.Wrist1:   "46",  // green
	robot.Wrist2:   "51",  // cyan
	robot.Wrist3:   "201", // magenta
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	openStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	closedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

type statsSource interface {
	Stats() teleop.Stats
}

type monitorModel struct {
	src        teleop.Source
	logs       <-chan string
	chart      *streamlinechart.Model
	width      int      // terminal width
	height     int      // terminal height
	logLines   []string // last N log messages
	quitting   bool
	pose       robot.Pose
	lastValues [robot.NumChannels]float64
	seen       bool
}

type monitorTickMsg time.Time

func monitorTick() tea.Cmd {
	return tea.Tick(updateInterval, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m *monitorModel) addLog(msg string) {
	m.logLines = append(m.logLines, msg)
	if len(m.logLines) > maxLogs {
		m.logLines = m.logLines[len(m.logLines)-maxLogs:]
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *monitorModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - statusHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func newMonitorModel(src teleop.Source) monitorModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-180, 180),
	)

	for _, name := range robot.AllJoints() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[name]))
		chart.SetDataSetStyles(string(name), runes.ThinLineStyle, style)
	}

	m := monitorModel{
		src:   src,
		chart: &chart,
		pose:  src.Pose(),
	}
	if ls, ok := src.(logSource); ok {
		m.logs = ls.Logs()
	}
	return m
}

func (m monitorModel) Init() tea.Cmd {
	return monitorTick()
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case monitorTickMsg:
		m.drainLogs()
		values := m.src.Values()
		// Only push to the chart when something moved (freeze when idle)
		if !m.seen || values != m.lastValues {
			m.pose = m.src.Pose()
			deg := m.pose.Degrees()
			for i, name := range robot.AllJoints() {
				m.chart.PushDataSet(string(name), deg[i])
			}
			m.chart.DrawAll()
			m.lastValues = values
			m.seen = true
		}
		return m, monitorTick()
	}

	return m, nil
}

func (m *monitorModel) drainLogs() {
	if m.logs == nil {
		return
	}
	for {
		select {
		case msg := <-m.logs:
			m.addLog(msg)
		default:
			return
		}
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Stopping Mello interface...\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Mello Monitor"))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend(m.pose))
	sb.WriteString("\n")

	// Gripper and reader stats
	sb.WriteString(renderGripper(m.pose.Gripper))
	if ss, ok := m.src.(statsSource); ok {
		s := ss.Stats()
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  lines %d  applied %d  rejected %d  zero frames %d",
			s.Lines, s.Applied, s.Rejected, s.ZeroFrames)))
	} else {
		sb.WriteString(statusStyle.Render("  dummy source"))
	}
	sb.WriteString("\n\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logLines) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logLines, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend(pose robot.Pose) string {
	deg := pose.Degrees()
	var items []string
	for i, name := range robot.AllJoints() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[name])).Bold(true)
		item := colorStyle.Render("━━") + fmt.Sprintf(" %s %7.2f°", name, deg[i])
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func renderGripper(g robot.Gripper) string {
	if g == robot.GripperClosed {
		return "Gripper: " + closedStyle.Render(g.String())
	}
	return "Gripper: " + openStyle.Render(g.String())
}

func (c *MonitorCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !c.Dummy && c.Settle > 0 {
		fmt.Println("Initializing Mello device...")
		if !sleepCtx(ctx, c.Settle) {
			return nil
		}
	}

	src, err := c.open(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	if c.Plain {
		return printValues(ctx, src)
	}

	p := tea.NewProgram(newMonitorModel(src), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run monitor: %w", err)
	}
	return nil
}

// printValues prints the latest values every updateInterval until ctx is done.
func printValues(ctx context.Context, src teleop.Source) error {
	forwardLogs(ctx, src)
	fmt.Println("Starting to read Mello data. Press Ctrl+C to stop.")

	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopping Mello interface...")
			return nil
		case <-ticker.C:
			fmt.Print(formatValues(src.Values()))
		}
	}
}

func formatValues(values [robot.NumChannels]float64) string {
	rad := make([]string, robot.NumJoints)
	deg := make([]string, robot.NumJoints)
	for i := 0; i < robot.NumJoints; i++ {
		rad[i] = fmt.Sprintf("%.4f", values[i])
		deg[i] = fmt.Sprintf("%.2f", robot.RadiansToDegrees(values[i]))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Joints (rad): [%s]\n", strings.Join(rad, ", "))
	fmt.Fprintf(&sb, "Joints (deg): [%s]\n", strings.Join(deg, ", "))
	fmt.Fprintf(&sb, "Gripper: %s\n", robot.GripperFromRaw(values[robot.JogChannel]))
	sb.WriteString(strings.Repeat("-", 50) + "\n")
	return sb.String()
}
