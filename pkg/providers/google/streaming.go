package google

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// streamReader reads the SSE form of streamGenerateContent (alt=sse).
// Each data line carries one complete googleResponse frame.
type streamReader struct {
	provider *providers.HTTPProvider
	resp     io.ReadCloser
	scanner  *bufio.Scanner
	id       string
	model    string
	closed   bool
}

// newStreamReader opens the upstream SSE stream. Google assigns no response
// ID, so the caller supplies one that stays stable across chunks.
func newStreamReader(ctx context.Context, provider *providers.HTTPProvider, url string, req *googleRequest, id, model string) (*streamReader, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "text/event-stream",
	}

	resp, err := provider.DoRequest(ctx, "POST", url, bodyBytes, headers)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(resp.Body)
	// Gemini frames can exceed the default scanner buffer.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &streamReader{
		provider: provider,
		resp:     resp.Body,
		scanner:  scanner,
		id:       id,
		model:    model,
	}, nil
}

// Read returns the next unified chunk, or io.EOF at end of body.
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

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, &providers.StreamError{
					Provider: s.provider.Name(),
					Message:  "failed to read stream",
					Cause:    err,
				}
			}
			return nil, io.EOF
		}

		line := s.scanner.Text()
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		var frame googleResponse
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			return nil, &providers.ParseError{
				Provider:    s.provider.Name(),
				RawResponse: data,
				Cause:       fmt.Errorf("failed to parse stream chunk: %w", err),
			}
		}

		chunk := transformStreamChunk(&frame, s.id, s.model)
		if chunk == nil {
			continue
		}
		return chunk, nil
	}
}

// Close closes the upstream response body.
func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Close()
}
