package teleop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gwillem/mello/pkg/record"
	"github.com/gwillem/mello/pkg/robot"
)

// ErrConnect is returned by NewReader when the serial port cannot be opened.
var ErrConnect = errors.New("connect to mello")

// Defaults for Config.
const (
	DefaultBaud         = robot.DefaultHostBaud
	DefaultPollInterval = 10 * time.Millisecond
	DefaultMaxLineBytes = 4096
)

// Config holds configuration for the reader.
type Config struct {
	Port string
	Baud int

	// PollInterval bounds how long the reader waits for bytes before
	// checking for shutdown again.
	PollInterval time.Duration

	// MaxLineBytes drops lines longer than this.
	MaxLineBytes int
}

// Stats counts what the reader has seen since it started.
type Stats struct {
	Lines       uint64 // non-blank lines received
	Applied     uint64 // records folded into the pose
	Rejected    uint64 // lines that failed to decode or were too long
	ZeroFrames  uint64 // applied records whose joints were all zero
	ReadErrors  uint64
	LastApplied time.Time
}

// Reader decodes the Mello record stream in the background and keeps the
// latest pose. Values and Pose may be called from any goroutine.
type Reader struct {
	cfg  Config
	port Port

	pose       atomic.Pointer[robot.Pose]
	gripperRaw float64 // owned by the read loop

	closed atomic.Bool
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	stats Stats

	logCh chan string
}

// NewReader opens the serial port and starts the read loop. The pose starts
// at robot.ZeroPose. Open failures wrap ErrConnect and are not retried.
func NewReader(cfg Config) (*Reader, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("%w: port is required", ErrConnect)
	}
	if cfg.Baud < 0 {
		return nil, fmt.Errorf("%w: baud must be > 0", ErrConnect)
	}
	cfg = cfg.withDefaults()

	port, err := openPort(cfg.Port, cfg.Baud, cfg.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, cfg.Port, err)
	}

	r := newReader(port, cfg)
	r.log("Connected to %s at %d baud", cfg.Port, cfg.Baud)
	return r, nil
}

func (c Config) withDefaults() Config {
	if c.Baud == 0 {
		c.Baud = DefaultBaud
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = DefaultMaxLineBytes
	}
	return c
}

// newReader starts the read loop on an already open port.
func newReader(port Port, cfg Config) *Reader {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	r := &Reader{
		cfg:    cfg,
		port:   port,
		cancel: cancel,
		done:   make(chan struct{}),
		logCh:  make(chan string, 10),
	}
	pose := robot.ZeroPose()
	r.pose.Store(&pose)

	go func() {
		defer close(r.done)
		r.run(ctx)
	}()
	return r
}

// Values returns the latest joint radians and gripper flag.
func (r *Reader) Values() [robot.NumChannels]float64 {
	return r.pose.Load().Values()
}

// Pose returns the latest pose.
func (r *Reader) Pose() robot.Pose {
	return *r.pose.Load()
}

// Stats returns a copy of the reader counters.
func (r *Reader) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Logs returns a channel that receives log messages.
func (r *Reader) Logs() <-chan string {
	return r.logCh
}

// Close stops the read loop and closes the port. It is safe to call more
// than once; later calls return nil.
func (r *Reader) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	r.cancel()
	err := r.port.Close()
	<-r.done
	if err != nil {
		return fmt.Errorf("close %s: %w", r.cfg.Port, err)
	}
	r.log("Serial port closed")
	return nil
}

func (r *Reader) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case r.logCh <- msg:
	default:
		// Drop if channel full
	}
}

func (r *Reader) run(ctx context.Context) {
	buf := make([]byte, 512)
	line := make([]byte, 0, 256)
	overflow := false
	lastErr := ""

	for ctx.Err() == nil {
		n, err := r.port.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.mu.Lock()
			r.stats.ReadErrors++
			r.mu.Unlock()
			if msg := err.Error(); msg != lastErr {
				r.log("Read error: %v", err)
				lastErr = msg
			}
			if !sleepCtx(ctx, r.cfg.PollInterval) {
				return
			}
			continue
		}
		lastErr = ""
		if n == 0 {
			if !sleepCtx(ctx, r.cfg.PollInterval) {
				return
			}
			continue
		}

		for _, b := range buf[:n] {
			if b == '\n' {
				if !overflow {
					r.handleLine(line)
				}
				overflow = false
				line = line[:0]
				continue
			}
			if overflow {
				continue
			}
			if len(line) >= r.cfg.MaxLineBytes {
				overflow = true
				line = line[:0]
				r.reject(fmt.Errorf("line exceeds %d bytes", r.cfg.MaxLineBytes))
				continue
			}
			line = append(line, b)
		}
	}
}

func (r *Reader) handleLine(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}

	rec, err := record.Decode(line)
	if err != nil {
		r.reject(err)
		return
	}

	pose, gripperRaw, moved := Apply(*r.pose.Load(), r.gripperRaw, rec)
	r.gripperRaw = gripperRaw
	r.pose.Store(&pose)

	r.mu.Lock()
	r.stats.Lines++
	r.stats.Applied++
	if !moved {
		r.stats.ZeroFrames++
	}
	r.stats.LastApplied = time.Now()
	r.mu.Unlock()
}

func (r *Reader) reject(err error) {
	r.mu.Lock()
	r.stats.Lines++
	r.stats.Rejected++
	r.mu.Unlock()
	r.log("Discarding line: %v", err)
}

// Apply folds one record into prev and returns the next pose, the gripper
// raw value to carry forward and whether the joints were updated.
//
// Joint 3 (index 2) is negated before the degree to radian conversion. A
// record whose six joints are all exactly zero leaves the joints unchanged;
// the gripper is updated either way. Records without a jog value reuse
// prevGripperRaw.
func Apply(prev robot.Pose, prevGripperRaw float64, rec record.Record) (robot.Pose, float64, bool) {
	var joints [robot.NumJoints]float64
	allZero := true
	for i := range joints {
		deg := rec.Joints[i]
		if i == 2 {
			deg = -deg
		}
		joints[i] = robot.DegreesToRadians(deg)
		if joints[i] != 0 {
			allZero = false
		}
	}

	gripperRaw := prevGripperRaw
	if jog, ok := rec.Jog(); ok {
		gripperRaw = jog
	}

	next := prev
	if !allZero {
		next.Joints = joints
	}
	next.Gripper = robot.GripperFromRaw(gripperRaw)
	return next, gripperRaw, !allZero
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
