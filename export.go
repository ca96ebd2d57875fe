package anim

import (
	"context"
	"runtime"
	"time"
)

// ExportOption configures Export.
type ExportOption func(*exportOptions)

type exportOptions struct {
	progress func(done, total int)
}

// WithProgress registers fn to be called after each frame is handed to the
// encoder.
func WithProgress(fn func(done, total int)) ExportOption {
	return func(o *exportOptions) { o.progress = fn }
}

// ExportResult is delivered by ExportAsync.
type ExportResult struct {
	Data []byte
	Err  error
}

// Export re-encodes every frame of s through transform into enc.
//
// Frames are processed strictly in order on a private scratch surface, so
// export never shares a buffer with live rendering. Each frame keeps its
// original delay. Between frames Export checks ctx and yields the
// processor. The store is never modified.
//
// Errors are *EncodeError: an empty store, a failing encoder, or a
// cancelled context (errors.Is(err, context.Canceled) holds).
func Export(ctx context.Context, s *Store, enc Encoder, transform Transform, opts ...ExportOption) ([]byte, error) {
	var o exportOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	n := s.Len()
	if n == 0 {
		return nil, &EncodeError{Op: "export", Frame: -1, Err: ErrEmptyStore}
	}
	if enc == nil {
		return nil, &EncodeError{Op: "export", Frame: -1, Err: errNilEncoder}
	}

	start := time.Now()
	scratch := NewPixmap(s.width, s.height)
	for i := range n {
		if err := ctx.Err(); err != nil {
			return nil, &EncodeError{Op: "export", Frame: i, Err: err}
		}
		if err := renderFrame(s, scratch, i, nil); err != nil {
			return nil, &EncodeError{Op: "render", Frame: i, Err: err}
		}
		if transform != nil {
			transform(scratch)
		}
		if err := enc.AddFrame(imageOf(scratch), s.frames[i].delay); err != nil {
			return nil, &EncodeError{Op: "add frame", Frame: i, Err: err}
		}
		if o.progress != nil {
			o.progress(i+1, n)
		}
		runtime.Gosched()
	}

	if err := ctx.Err(); err != nil {
		return nil, &EncodeError{Op: "export", Frame: -1, Err: err}
	}
	data, err := enc.Finish()
	if err != nil {
		return nil, &EncodeError{Op: "finish", Frame: -1, Err: err}
	}

	Logger().Info("anim: export finished",
		"store", s.id, "frames", n, "bytes", len(data), "took", time.Since(start))
	return data, nil
}

// ExportAsync runs Export on a new goroutine. The channel receives exactly
// one result and is then closed. Abandoning the channel is safe; cancel
// ctx to stop the work early.
func ExportAsync(ctx context.Context, s *Store, enc Encoder, transform Transform, opts ...ExportOption) <-chan ExportResult {
	out := make(chan ExportResult, 1)
	go func() {
		defer close(out)
		data, err := Export(ctx, s, enc, transform, opts...)
		out <- ExportResult{Data: data, Err: err}
	}()
	return out
}
