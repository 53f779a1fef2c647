package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.bug.st/serial"

	"github.com/gwillem/mello/pkg/button"
	"github.com/gwillem/mello/pkg/device"
	"github.com/gwillem/mello/pkg/robot"
)

type DeviceCommand struct {
	Port     string `long:"port" description:"Servo bus port (default from config)"`
	Output   string `long:"output" description:"Serial port to stream records to (default from config, '-' for stdout)"`
	Hz       int    `long:"hz" description:"Tracker rate (default from config)"`
	Headless bool   `long:"headless" description:"Log state changes instead of showing the display"`
}

var (
	streamingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	pausedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	zeroedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Width(10)
)

func (c *DeviceCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	port := cfg.Device.Port
	if c.Port != "" {
		port = c.Port
	}
	if port == "" {
		return fmt.Errorf("no servo bus configured; run 'mello setup' or pass --port")
	}
	outPath := cfg.Device.Output
	if c.Output != "" {
		outPath = c.Output
	}
	hz := cfg.Device.Hz
	if c.Hz != 0 {
		hz = c.Hz
	}
	cal := cfg.Device.Calibration
	if !cfg.Device.IsCalibrated() {
		cal = robot.DefaultCalibration()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	arm, err := robot.NewArm(ctx, robot.ArmConfig{
		Port:        port,
		BaudRate:    cfg.Device.Baud,
		Calibration: cal,
	})
	if err != nil {
		return fmt.Errorf("connect arm: %w", err)
	}
	defer func() {
		// Leave the joints limp for the operator
		if err := arm.Disable(context.Background()); err != nil {
			log.Printf("Disable arm: %v", err)
		}
		arm.Close()
	}()
	if err := arm.Disable(ctx); err != nil {
		return fmt.Errorf("disable arm: %w", err)
	}

	var out io.Writer
	switch outPath {
	case "", "-":
		if !c.Headless {
			return fmt.Errorf("records on stdout need --headless; configure device.output or pass --output")
		}
		out = os.Stdout
	default:
		sp, err := serial.Open(outPath, &serial.Mode{
			BaudRate: cfg.Device.OutputBaud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err != nil {
			return fmt.Errorf("open output %s: %w", outPath, err)
		}
		defer sp.Close()
		out = sp
	}

	inputs := make(chan device.Input, 4)

	if cfg.Device.Button.Enabled() {
		clicker := button.NewClicker(button.DefaultWindow)
		defer clicker.Stop()
		w, err := button.WatchGPIO(cfg.Device.Button.Chip, cfg.Device.Button.Line, clicker)
		if err != nil {
			return fmt.Errorf("watch button: %w", err)
		}
		defer w.Close()
		go forwardClicks(ctx, clicker.Clicks(), inputs)
	}

	if c.Headless {
		return runTracker(ctx, arm, out, hz, cfg.Device.SignTable(), logDisplay{}, inputs)
	}
	return runDeviceTUI(ctx, stop, arm, out, hz, cfg.Device.SignTable(), inputs)
}

func runTracker(ctx context.Context, joints device.Joints, out io.Writer, hz int, signs [robot.NumChannels]float64, disp device.Display, inputs <-chan device.Input) error {
	t, err := device.NewTracker(device.Config{
		Joints:  joints,
		Display: disp,
		Output:  out,
		Signs:   signs,
	})
	if err != nil {
		return err
	}
	if err := device.Run(ctx, t, hz, inputs); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("tracker: %w", err)
	}
	return nil
}

// forwardClicks maps button clicks onto tracker inputs.
func forwardClicks(ctx context.Context, clicks <-chan button.Click, inputs chan<- device.Input) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-clicks:
			in := device.Pressed
			if c == button.Double {
				in = device.DoubleClicked
			}
			select {
			case inputs <- in:
			case <-ctx.Done():
				return
			}
		}
	}
}

// logDisplay reports state changes on the standard logger.
type logDisplay struct{}

func (logDisplay) ShowPositions([robot.NumChannels]float64) {}

func (logDisplay) ShowZeroed() { log.Println("ZERO'D") }

func (logDisplay) ShowStreaming(streaming bool) {
	if streaming {
		log.Println("STREAMING")
	} else {
		log.Println("PAUSED")
	}
}

// Messages sent from the tracker goroutine to the display model
type (
	positionsMsg [robot.NumChannels]float64
	zeroedMsg    struct{}
	streamingMsg bool
	trackerDone  struct{}
	clearZeroMsg struct{}
)

// programDisplay forwards tracker state to a running tea.Program.
type programDisplay struct {
	p *tea.Program
}

func (d programDisplay) ShowPositions(v [robot.NumChannels]float64) { d.p.Send(positionsMsg(v)) }
func (d programDisplay) ShowZeroed()                                { d.p.Send(zeroedMsg{}) }
func (d programDisplay) ShowStreaming(streaming bool)               { d.p.Send(streamingMsg(streaming)) }

type deviceModel struct {
	inputs    chan<- device.Input
	positions [robot.NumChannels]float64
	streaming bool
	zeroed    bool
	quitting  bool
}

func (m deviceModel) Init() tea.Cmd { return nil }

func (m deviceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "z", "enter":
			m.send(device.Pressed)
		case " ":
			m.send(device.DoubleClicked)
		}

	case positionsMsg:
		m.positions = msg
	case streamingMsg:
		m.streaming = bool(msg)
	case zeroedMsg:
		m.zeroed = true
		return m, tea.Tick(time.Second, func(time.Time) tea.Msg { return clearZeroMsg{} })
	case clearZeroMsg:
		m.zeroed = false
	case trackerDone:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m deviceModel) send(in device.Input) {
	select {
	case m.inputs <- in:
	default:
	}
}

func (m deviceModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Mello Device"))
	sb.WriteString("  ")
	if m.streaming {
		sb.WriteString(streamingStyle.Render("STREAMING"))
	} else {
		sb.WriteString(pausedStyle.Render("PAUSED"))
	}
	if m.zeroed {
		sb.WriteString("  " + zeroedStyle.Render(" ZERO'D "))
	}
	sb.WriteString("\n\n")

	for i, name := range robot.AllChannels() {
		sb.WriteString(labelStyle.Render(string(name)))
		sb.WriteString(fmt.Sprintf("%9.2f\n", m.positions[i]))
	}

	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("z/enter: zero  space: stream/pause  q: quit"))
	sb.WriteString("\n")
	return sb.String()
}

func runDeviceTUI(ctx context.Context, stop context.CancelFunc, joints device.Joints, out io.Writer, hz int, signs [robot.NumChannels]float64, inputs chan device.Input) error {
	p := tea.NewProgram(deviceModel{inputs: inputs}, tea.WithAltScreen(), tea.WithContext(ctx))

	done := make(chan error, 1)
	go func() {
		err := runTracker(ctx, joints, out, hz, signs, programDisplay{p: p}, inputs)
		done <- err
		p.Send(trackerDone{})
	}()

	_, runErr := p.Run()
	// Quitting the display stops the tracker
	stop()
	err := <-done
	if err != nil {
		return err
	}
	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("run display: %w", runErr)
	}
	return nil
}
