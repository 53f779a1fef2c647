package button

import (
	"testing"
	"time"
)

func expectClick(t *testing.T, c *Clicker, want Click) {
	t.Helper()
	select {
	case got := <-c.Clicks():
		if got != want {
			t.Fatalf("click = %v, want %v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatalf("no click, want %v", want)
	}
}

func expectNone(t *testing.T, c *Clicker, wait time.Duration) {
	t.Helper()
	select {
	case got := <-c.Clicks():
		t.Fatalf("unexpected click %v", got)
	case <-time.After(wait):
	}
}

func TestClicker_Single(t *testing.T) {
	c := NewClicker(30 * time.Millisecond)
	c.Press()
	expectClick(t, c, Single)
	expectNone(t, c, 60*time.Millisecond)
}

func TestClicker_Double(t *testing.T) {
	c := NewClicker(200 * time.Millisecond)
	c.Press()
	time.Sleep(20 * time.Millisecond)
	c.Press()
	expectClick(t, c, Double)
	// The first press must not also produce a single click.
	expectNone(t, c, 300*time.Millisecond)
}

func TestClicker_SlowPressesAreSingles(t *testing.T) {
	c := NewClicker(20 * time.Millisecond)
	c.Press()
	expectClick(t, c, Single)
	c.Press()
	expectClick(t, c, Single)
}

func TestClicker_Stop(t *testing.T) {
	c := NewClicker(30 * time.Millisecond)
	c.Press()
	c.Stop()
	expectNone(t, c, 80*time.Millisecond)
}

func TestNewClicker_DefaultWindow(t *testing.T) {
	if c := NewClicker(0); c.window != DefaultWindow {
		t.Errorf("window = %s, want %s", c.window, DefaultWindow)
	}
	if Double.String() != "double" || Single.String() != "single" {
		t.Error("unexpected Click strings")
	}
}
