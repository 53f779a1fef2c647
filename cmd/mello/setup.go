package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/mello/pkg/robot"
	"github.com/gwillem/mello/pkg/teleop"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const probeTimeout = 2 * time.Second

type SetupCommand struct {
	Baud int `long:"baud" description:"Baud rate of the Mello link (default from config)"`
}

func (c *SetupCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if c.Baud != 0 {
		cfg.Host.Baud = c.Baud
	}

	fmt.Println(headerStyle.Render("Mello Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━"))
	fmt.Println()
	fmt.Println("Double-press the Mello key so the device is streaming.")
	fmt.Println()

	// Step 1: Scan for the Mello stream and servo buses
	streams, buses := scanPorts(cfg.Host.Baud, cfg.Device.Baud)
	if len(streams) == 0 && len(buses) == 0 {
		fmt.Println("No Mello device or servo bus found.")
		fmt.Println("Make sure the Mello is connected, powered on and streaming.")
		return fmt.Errorf("nothing found")
	}

	// Step 2: Pick the host link
	if len(streams) > 0 {
		port, err := choosePort("Which port is the Mello stream on?", streams)
		if err != nil {
			return err
		}
		if port != "" {
			cfg.Host.Port = port
		}
	}

	// Step 3: Pick and calibrate the servo bus
	if len(buses) > 0 {
		port, err := choosePort("Which servo bus is inside the Mello?", buses)
		if err != nil {
			return err
		}
		if port != "" {
			cfg.Device.Port = port
			fmt.Println()
			fmt.Println(subHeaderStyle.Render("━━━ Calibrating Mello Joints ━━━"))
			fmt.Println()
			cal, err := calibrateJoints(port, cfg.Device.Baud)
			if err != nil {
				return err
			}
			cfg.Device.Calibration = cal
		}
	}

	if err := cfg.SaveTo(configPath()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	if cfg.Host.Port != "" {
		fmt.Printf("  Mello stream: %s\n", cfg.Host.Port)
	}
	if cfg.Device.Port != "" {
		fmt.Printf("  Servo bus:    %s\n", cfg.Device.Port)
	}
	fmt.Printf("Configuration saved to %s\n", configPath())
	fmt.Println()
	fmt.Println("Check the stream with: " + headerStyle.Render("mello monitor"))

	return nil
}

// scanPorts listens on every serial port for Mello records, then probes the
// remaining ports for a feetech bus with six joint servos.
func scanPorts(hostBaud, busBaud int) (streams, buses []string) {
	fmt.Println("Scanning serial ports...")
	fmt.Println()

	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil, nil
	}

	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		if probeStream(port, hostBaud) {
			fmt.Printf("  Found Mello stream on %s\n", port)
			streams = append(streams, port)
			continue
		}
		if probeBus(port, busBaud) {
			fmt.Printf("  Found servo bus on %s\n", port)
			buses = append(buses, port)
		}
	}
	return streams, buses
}

// probeStream reports whether port delivers a valid record within probeTimeout.
func probeStream(port string, baud int) bool {
	r, err := teleop.NewReader(teleop.Config{Port: port, Baud: baud})
	if err != nil {
		return false
	}
	defer r.Close()

	deadline := time.Now().Add(probeTimeout)
	for time.Now().Before(deadline) {
		if r.Stats().Applied > 0 {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}

func probeBus(port string, baud int) bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: baud,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return false
	}
	defer bus.Close()

	// Scan for servos with IDs 1-6 (one per joint)
	servos, err := bus.Scan(ctx, 1, robot.NumJoints)
	if err != nil {
		return false
	}
	return hasAllJoints(servos)
}

func hasAllJoints(servos []feetech.FoundServo) bool {
	ids := make(map[int]bool)
	for _, s := range servos {
		ids[s.ID] = true
	}
	for i := 1; i <= robot.NumJoints; i++ {
		if !ids[i] {
			return false
		}
	}
	return true
}

// choosePort returns the only candidate, or asks the user to pick one.
func choosePort(title string, ports []string) (string, error) {
	if len(ports) == 1 {
		return ports[0], nil
	}

	options := make([]huh.Option[string], 0, len(ports)+1)
	for _, p := range ports {
		options = append(options, huh.NewOption(p, p))
	}
	options = append(options, huh.NewOption("Skip", ""))

	var port string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return port, nil
}

// calibrateJoints shows live servo positions and records the homing offsets
// when the user confirms the Mello is in its zero pose.
func calibrateJoints(port string, baud int) (robot.Calibration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: baud,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}
	defer bus.Close()

	found, err := bus.Scan(ctx, 1, robot.NumJoints)
	if err != nil {
		return nil, fmt.Errorf("scan bus: %w", err)
	}
	if !hasAllJoints(found) {
		return nil, fmt.Errorf("expected %d servos with IDs 1-%d on %s", robot.NumJoints, robot.NumJoints, port)
	}

	servoMap := make(map[int]*feetech.Servo)
	for _, s := range found {
		servoMap[s.ID] = feetech.NewServo(bus, s.ID, s.Model)
	}

	torques := make(map[int]torque, len(servoMap))
	for id, servo := range servoMap {
		torques[id] = servo
	}
	if err := disableTorque(context.Background(), torques); err != nil {
		return nil, err
	}

	fmt.Println("Move every joint to its zero position, then press Enter.")
	fmt.Println()

	p := tea.NewProgram(newCalibrationModel(servoMap))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run calibration: %w", err)
	}
	cm := final.(calibrationModel)
	if cm.aborted {
		return nil, fmt.Errorf("calibration aborted")
	}

	if !cm.complete() {
		return nil, fmt.Errorf("calibration incomplete: not every joint was read")
	}

	cal := make(robot.Calibration)
	for i, name := range robot.AllJoints() {
		cal[name] = robot.MotorCalibration{ID: i + 1, HomingOffset: cm.positions[name]}
	}
	fmt.Println("Joints calibrated.")
	return cal, nil
}

type torque interface {
	Disable(ctx context.Context) error
}

// disableTorque releases every servo so the joints move freely.
func disableTorque(ctx context.Context, servos map[int]torque) error {
	for id, s := range servos {
		if err := s.Disable(ctx); err != nil {
			return fmt.Errorf("disable servo %d: %w", id, err)
		}
	}
	return nil
}

// Calibration TUI model
type calibrationModel struct {
	servoMap  map[int]*feetech.Servo
	positions map[robot.MotorName]int
	aborted   bool
	quitting  bool
}

type tickMsg time.Time

func calibrationTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func newCalibrationModel(servoMap map[int]*feetech.Servo) calibrationModel {
	return calibrationModel{
		servoMap:  servoMap,
		positions: make(map[robot.MotorName]int),
	}
}

// complete reports whether every joint has a recorded position.
func (m calibrationModel) complete() bool {
	return len(m.positions) == robot.NumJoints
}

func (m calibrationModel) Init() tea.Cmd {
	return calibrationTick()
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			// Wait until every joint has been read at least once
			if !m.complete() {
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "q", "ctrl+c":
			m.aborted = true
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		ctx := context.Background()
		for i, name := range robot.AllJoints() {
			pos, err := m.servoMap[i+1].Position(ctx)
			if err != nil {
				continue
			}
			m.positions[name] = pos
		}
		return m, calibrationTick()
	}

	return m, nil
}

func (m calibrationModel) View() string {
	if m.quitting {
		return ""
	}

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableMotorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableCurrentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)

	rows := make([][]string, 0, robot.NumJoints)
	for i, name := range robot.AllJoints() {
		raw, ok := m.positions[name]
		cur, deg := "-", "-"
		if ok {
			cur = fmt.Sprintf("%d", raw)
			def := robot.MotorCalibration{ID: i + 1, HomingOffset: robot.DefaultHomingOffset}
			deg = fmt.Sprintf("%.1f", def.Degrees(raw))
		}
		rows = append(rows, []string{string(name), fmt.Sprintf("%d", i+1), cur, deg})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Joint", "ID", "Raw", "Degrees").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableMotorStyle
			case 2:
				return tableCurrentStyle
			default:
				return tableCellStyle
			}
		})

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
	if m.complete() {
		sb.WriteString(dimStyle.Render("Press Enter to record the zero pose, q to abort"))
	} else {
		sb.WriteString(dimStyle.Render("Waiting for all joints to respond, q to abort"))
	}
	return sb.String()
}
