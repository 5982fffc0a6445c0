package scanner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// frameDecoder replays a fixed sequence of frames and records whether it was
// released.
type frameDecoder struct {
	frames []string
	pos    int
	closed atomic.Bool
}

func (d *frameDecoder) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d.pos >= len(d.frames) {
		// Simulate a camera that keeps producing undecodable frames.
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Millisecond):
			return "", nil
		}
	}
	frame := d.frames[d.pos]
	d.pos++
	return frame, nil
}

func (d *frameDecoder) Close() error {
	d.closed.Store(true)
	return nil
}

func TestScanForwardsFirstTokenAndReleases(t *testing.T) {
	decoder := &frameDecoder{frames: []string{"", "", "abc123", "later-token"}}
	s := New(func(ctx context.Context) (Decoder, error) {
		return decoder, nil
	})

	token, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if token != "abc123" {
		t.Fatalf("expected first decoded token, got %q", token)
	}
	if !decoder.closed.Load() {
		t.Fatal("decoder must be released after a successful decode")
	}
	if s.Active() {
		t.Fatal("scanner should be idle after success")
	}
}

func TestCancelStopsScanAndReleases(t *testing.T) {
	decoder := &frameDecoder{} // never decodes
	s := New(func(ctx context.Context) (Decoder, error) {
		return decoder, nil
	})

	result := make(chan error, 1)
	go func() {
		_, err := s.Scan(context.Background())
		result <- err
	}()

	// Wait for the loop to be armed, then cancel it.
	deadline := time.After(time.Second)
	for !s.Active() {
		select {
		case <-deadline:
			t.Fatal("scan never started")
		case <-time.After(time.Millisecond):
		}
	}
	s.Cancel()

	select {
	case err := <-result:
		if !errors.Is(err, ErrCanceled) {
			t.Fatalf("expected ErrCanceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("scan did not stop after cancel")
	}
	if !decoder.closed.Load() {
		t.Fatal("decoder must be released after cancel")
	}
}

func TestCancelWhenIdleIsNoOp(t *testing.T) {
	s := New(func(ctx context.Context) (Decoder, error) {
		t.Fatal("idle cancel must not open the decoder")
		return nil, nil
	})
	s.Cancel()
	s.Cancel()
	if s.Active() {
		t.Fatal("scanner should stay idle")
	}
}

func TestScanReleasesOnContextTeardown(t *testing.T) {
	decoder := &frameDecoder{}
	s := New(func(ctx context.Context) (Decoder, error) {
		return decoder, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := s.Scan(ctx)
		result <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		if !errors.Is(err, ErrCanceled) {
			t.Fatalf("expected ErrCanceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("scan did not stop on context teardown")
	}
	if !decoder.closed.Load() {
		t.Fatal("decoder must be released on teardown")
	}
}

func TestScanCanBeRearmed(t *testing.T) {
	first := &frameDecoder{frames: []string{"token-1"}}
	second := &frameDecoder{frames: []string{"token-2"}}
	decoders := []*frameDecoder{first, second}
	var calls int

	s := New(func(ctx context.Context) (Decoder, error) {
		d := decoders[calls]
		calls++
		return d, nil
	})

	ctx := context.Background()
	token, err := s.Scan(ctx)
	if err != nil || token != "token-1" {
		t.Fatalf("first scan: %q %v", token, err)
	}
	token, err = s.Scan(ctx)
	if err != nil || token != "token-2" {
		t.Fatalf("re-armed scan: %q %v", token, err)
	}
	if !first.closed.Load() || !second.closed.Load() {
		t.Fatal("both decoders must be released")
	}
}

func TestConcurrentScanRejected(t *testing.T) {
	blocker := &frameDecoder{}
	s := New(func(ctx context.Context) (Decoder, error) {
		return blocker, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_, _ = s.Scan(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for !s.Active() {
		select {
		case <-deadline:
			t.Fatal("scan never started")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := s.Scan(context.Background()); err == nil {
		t.Fatal("second concurrent scan must be rejected")
	}

	cancel()
	<-done
}
