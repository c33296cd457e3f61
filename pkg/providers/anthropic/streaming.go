package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// streamReader reads Server-Sent Events from Anthropic's streaming API.
type streamReader struct {
	provider *providers.HTTPProvider
	resp     io.ReadCloser
	scanner  *bufio.Scanner
	state    *streamState
	closed   bool
}

// newStreamReader opens the upstream SSE stream.
func newStreamReader(ctx context.Context, provider *providers.HTTPProvider, url string, req *anthropicRequest, headers map[string]string) (*streamReader, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := provider.DoRequest(ctx, "POST", url, bodyBytes, headers)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(resp.Body)
	// SSE data lines can exceed the default 64KB scanner limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &streamReader{
		provider: provider,
		resp:     resp.Body,
		scanner:  scanner,
		state:    &streamState{},
	}, nil
}

// Read returns the next unified chunk, or io.EOF at message_stop or end of
// body. Events without client-visible content are skipped.
func (s *streamReader) Read(ctx context.Context) (*providers.StreamChunk, error) {
	if s.closed {
		return nil, io.EOF
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		event, err := s.readEvent()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, &providers.StreamError{
				Provider: s.provider.Name(),
				Message:  "failed to read stream",
				Cause:    err,
			}
		}

		if event.Type == "message_stop" {
			return nil, io.EOF
		}

		chunk, err := transformStreamEvent(event, s.state)
		if err != nil {
			return nil, &providers.ParseError{
				Provider: s.provider.Name(),
				Cause:    err,
			}
		}
		if chunk == nil {
			continue
		}
		return chunk, nil
	}
}

// readEvent reads one complete SSE event (event: and data: lines up to the
// blank separator line).
func (s *streamReader) readEvent() (*anthropicStreamEvent, error) {
	var eventType string
	var dataLines []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if eventType != "" || len(dataLines) > 0 {
				break
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		}
		// id and retry fields are ignored.
	}

	if err := s.scanner.Err(); err != nil {
		return nil, err
	}

	if eventType == "" && len(dataLines) == 0 {
		return nil, io.EOF
	}

	var event anthropicStreamEvent
	if len(dataLines) > 0 {
		data := strings.Join(dataLines, "\n")
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return nil, fmt.Errorf("failed to parse stream event: %w", err)
		}
	}
	if eventType != "" && event.Type == "" {
		event.Type = eventType
	}

	return &event, nil
}

// Close closes the upstream response body.
func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Close()
}
