package device

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRun_StreamsAfterDoubleClick(t *testing.T) {
	joints := &fakeJoints{}
	out := &syncBuffer{}
	tr, err := NewTracker(Config{Joints: joints, Output: out, Settle: -1})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	inputs := make(chan Input, 1)
	done := make(chan error, 1)
	go func() { done <- Run(ctx, tr, 500, inputs) }()

	time.Sleep(20 * time.Millisecond)
	if out.Len() != 0 {
		t.Fatal("tracker streamed before being resumed")
	}

	inputs <- DoubleClicked
	waitFor(t, func() bool { return out.Len() > 0 })

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestRun_StopsOnFault(t *testing.T) {
	joints := &fakeJoints{}
	tr, err := NewTracker(Config{Joints: joints, Output: &syncBuffer{}, Settle: -1})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), tr, 500, nil) }()

	time.Sleep(10 * time.Millisecond)
	joints.mu.Lock()
	joints.err = errors.New("motor unplugged")
	joints.mu.Unlock()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Run returned nil on fault")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on fault")
	}
}

func TestRun_InvalidRate(t *testing.T) {
	tr, err := NewTracker(Config{Joints: &fakeJoints{}, Output: &syncBuffer{}})
	if err != nil {
		t.Fatal(err)
	}
	if err := Run(context.Background(), tr, 0, nil); err == nil {
		t.Error("expected error for hz=0")
	}
}
