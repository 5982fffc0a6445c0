// Package scanner manages the QR decode loop as a scoped resource: the
// decoder (camera, file, or test stub) is acquired when a scan starts and is
// guaranteed released on success, cancel, or teardown — every exit path runs
// the same release.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrCanceled reports that the scan was stopped before a token was decoded.
var ErrCanceled = errors.New("scan canceled")

// Decoder yields candidate tokens from successive frames. Next blocks until
// a frame decodes, returns an empty string for frames with no QR code, and
// honors ctx cancellation. Close releases the underlying capture device.
type Decoder interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// OpenFunc acquires a decoder. It is called once per scan.
type OpenFunc func(ctx context.Context) (Decoder, error)

type Scanner struct {
	open OpenFunc

	mu     sync.Mutex
	cancel context.CancelFunc
}

func New(open OpenFunc) *Scanner {
	return &Scanner{open: open}
}

// Scan acquires the decoder and loops until the first non-empty token, then
// releases it and returns exactly that token. Calling Scan again re-arms a
// fresh loop. The decoder is also released when ctx ends or Cancel is called.
func (s *Scanner) Scan(ctx context.Context) (string, error) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		cancel()
		return "", fmt.Errorf("scan already in progress")
	}
	s.cancel = cancel
	s.mu.Unlock()

	// Single convergent teardown for every exit below.
	defer func() {
		cancel()
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
	}()

	decoder, err := s.open(ctx)
	if err != nil {
		return "", fmt.Errorf("open decoder: %w", err)
	}
	defer decoder.Close()

	for {
		token, err := decoder.Next(ctx)
		if errors.Is(err, context.Canceled) {
			return "", ErrCanceled
		}
		if err != nil {
			return "", fmt.Errorf("decode frame: %w", err)
		}
		if token != "" {
			return token, nil
		}

		select {
		case <-ctx.Done():
			return "", ErrCanceled
		default:
		}
	}
}

// Cancel stops an in-flight scan and discards any pending token. It is a
// safe no-op when no scan is running.
func (s *Scanner) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Active reports whether a scan loop currently holds the decoder.
func (s *Scanner) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}
