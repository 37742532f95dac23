package sse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"accomplish/internal/api"
)

// frameMarker prefixes every data frame on the push channel.
const frameMarker = "data: "

// Event is one decoded status event from the push channel.
type Event struct {
	JobID          string `json:"job_id"`
	Status         string `json:"status"`
	Content        string `json:"content,omitempty"`
	PartialContent string `json:"partial_content,omitempty"`
	Progress       uint   `json:"progress,omitempty"`
}

// Result is one element of the event sequence: either a decoded event or a
// frame-level error. Frame errors are never fatal; the sequence continues
// until the server closes the connection or the transport fails.
type Result struct {
	Event Event
	Err   error
}

// Stream turns a long-lived byte connection into a lazy sequence of Results.
// Frames are newline-delimited; a frame split across delivered chunks is
// buffered and completed before decoding, so chunk boundaries never drop
// events.
type Stream struct {
	body    io.ReadCloser
	results chan Result
	done    chan struct{}

	closeOnce sync.Once
}

// New wraps an open push-channel body. The caller must Close the stream to
// release the connection; Close is safe to call at any time and from any
// state.
func New(body io.ReadCloser) *Stream {
	s := &Stream{
		body:    body,
		results: make(chan Result),
		done:    make(chan struct{}),
	}
	go s.consume()
	return s
}

// Events returns the result sequence. The channel is closed when the server
// ends the connection, the transport fails, or the stream is closed.
func (s *Stream) Events() <-chan Result {
	return s.results
}

// Close releases the underlying connection and unblocks the reader.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.body.Close()
	})
	return err
}

func (s *Stream) consume() {
	defer close(s.results)

	reader := bufio.NewReader(s.body)
	for {
		// ReadString buffers partial lines internally, so a frame that
		// arrives split across two chunks is completed before decoding.
		line, err := reader.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			if result, ok := decodeFrame(trimmed); ok {
				if !s.emit(result) {
					return
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				s.emit(Result{Err: fmt.Errorf("%w: read stream: %v", api.ErrTransport, err)})
			}
			return
		}
	}
}

func (s *Stream) emit(result Result) bool {
	select {
	case s.results <- result:
		return true
	case <-s.done:
		return false
	}
}

// decodeFrame parses one complete line. Non-data lines (SSE comments, event
// names, keep-alives) are skipped. A payload shaped as {"error": "..."} is a
// not-found-style signal, not a decode failure.
func decodeFrame(line string) (Result, bool) {
	payload, ok := strings.CutPrefix(line, frameMarker)
	if !ok {
		return Result{}, false
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Result{}, false
	}

	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err == nil && event.Status != "" {
		return Result{Event: event}, true
	}

	var serverErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(payload), &serverErr); err == nil && serverErr.Error != "" {
		return Result{Err: fmt.Errorf("%w: %s", api.ErrNotFound, serverErr.Error)}, true
	}

	return Result{Err: fmt.Errorf("%w: malformed frame %q", api.ErrDecode, payload)}, true
}
