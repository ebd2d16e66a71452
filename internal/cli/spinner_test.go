package cli

import (
	"context"
	"io"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	uiOut = io.Discard
	s := newSpinner(context.Background(), "extracting")
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	s.Stop()
	if s.Cancelled() {
		t.Error("Cancelled() = true after Stop, want false")
	}
}

func TestSpinnerParentCancel(t *testing.T) {
	uiOut = io.Discard
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, "extracting")
	s.Start()
	cancel()
	time.Sleep(20 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("Cancelled() = false after parent cancel, want true")
	}
	s.StopWithError("cancelled")
}

func TestSpinnerTimeout(t *testing.T) {
	uiOut = io.Discard
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	s := newSpinner(ctx, "extracting")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("Cancelled() = false after timeout, want true")
	}
	s.StopWithSuccess("done")
}
