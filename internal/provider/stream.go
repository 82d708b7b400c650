package provider

import (
	"context"
	"strings"
)

// Stream is a running streamed completion. Chunks delivers content deltas in
// arrival order and is closed when the stream ends. Done is closed once the
// final text or error is available through Wait.
type Stream struct {
	chunks chan string
	done   chan struct{}
	text   string
	err    error
}

func newStream() *Stream {
	return &Stream{
		chunks: make(chan string, 16),
		done:   make(chan struct{}),
	}
}

// Chunks returns the delta channel
func (s *Stream) Chunks() <-chan string {
	return s.chunks
}

// Done is closed when the stream has finished
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Wait drains any unread chunks and returns the concatenated text or the
// stream's error
func (s *Stream) Wait() (string, error) {
	for range s.chunks {
	}
	<-s.done
	return s.text, s.err
}

// streamWriter is the producer side of a Stream
type streamWriter struct {
	ctx    context.Context
	stream *Stream
	text   strings.Builder
}

// emit forwards a delta. It returns false once ctx is done.
func (w *streamWriter) emit(delta string) bool {
	if delta == "" {
		return true
	}
	select {
	case w.stream.chunks <- delta:
		w.text.WriteString(delta)
		return true
	case <-w.ctx.Done():
		return false
	}
}

// finish publishes the outcome. A nil err yields the concatenated text.
func (w *streamWriter) finish(err error) {
	if err == nil {
		w.stream.text = w.text.String()
	}
	w.stream.err = err
	close(w.stream.chunks)
	close(w.stream.done)
}

// runStream starts produce in a goroutine and returns the Stream it feeds
func runStream(ctx context.Context, produce func(w *streamWriter) error) *Stream {
	s := newStream()
	w := &streamWriter{ctx: ctx, stream: s}
	go func() {
		err := produce(w)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		w.finish(err)
	}()
	return s
}

// failedStream returns a Stream that has already failed with err
func failedStream(err error) *Stream {
	s := newStream()
	close(s.chunks)
	s.err = err
	close(s.done)
	return s
}

// StreamCompletion runs a streamed completion in the background. onChunk is
// called for each delta in order, then exactly one of onDone or onError.
// Nil callbacks are skipped.
func StreamCompletion(ctx context.Context, p TextProvider, req CompletionRequest, onChunk func(string), onDone func(string), onError func(error)) {
	go func() {
		s := p.Stream(ctx, req)
		for chunk := range s.Chunks() {
			if onChunk != nil {
				onChunk(chunk)
			}
		}
		text, err := s.Wait()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onDone != nil {
			onDone(text)
		}
	}()
}

// StreamFunc runs produce as a Stream. produce calls emit for each delta and
// stops when emit returns false.
func StreamFunc(ctx context.Context, produce func(emit func(string) bool) error) *Stream {
	return runStream(ctx, func(w *streamWriter) error {
		return produce(w.emit)
	})
}
