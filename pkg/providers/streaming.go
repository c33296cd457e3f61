package providers

import (
	"context"
	"io"
	"time"
)

// PumpStream drains a provider-native StreamReader into a buffered unified
// chunk channel. All four adapters share this loop; only the StreamReader
// implementations differ.
//
// The returned channel preserves read order and is closed exactly once:
// on io.EOF from the reader, after delivering an error chunk, on an
// inter-chunk gap exceeding the provider timeout, or on ctx cancellation.
// The reader is always closed before the channel, so the upstream
// connection is released even when the consumer abandons the channel.
func PumpStream(ctx context.Context, p *HTTPProvider, stream StreamReader) <-chan *StreamChunk {
	chunks := make(chan *StreamChunk, 100)

	go func() {
		defer close(chunks)
		defer stream.Close()

		for {
			chunk, err := readWithGapTimeout(ctx, p, stream)
			if err != nil {
				if err == io.EOF {
					return
				}
				// Error chunk is always the last one sent.
				select {
				case chunks <- &StreamChunk{Error: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return
			}

			if chunk.FinishReason != "" {
				return
			}
		}
	}()

	return chunks
}

// readWithGapTimeout bounds a single stream read by the provider timeout.
// A stalled upstream stream surfaces as a TimeoutError rather than hanging
// the consumer indefinitely.
func readWithGapTimeout(ctx context.Context, p *HTTPProvider, stream StreamReader) (*StreamChunk, error) {
	timeout := p.Config().Timeout
	if timeout <= 0 {
		return stream.Read(ctx)
	}

	type result struct {
		chunk *StreamChunk
		err   error
	}
	done := make(chan result, 1)

	go func() {
		chunk, err := stream.Read(ctx)
		done <- result{chunk, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.chunk, r.err
	case <-ctx.Done():
		stream.Close()
		return nil, ctx.Err()
	case <-timer.C:
		// Closing the body unblocks the pending Read.
		stream.Close()
		return nil, &TimeoutError{
			Provider: p.Name(),
			Timeout:  timeout,
		}
	}
}
