package model

import (
	"context"

	"github.com/YuminosukeSato/ftrl/core/frame"
)

// Batch represents a data batch for streaming learning
type Batch struct {
	X *frame.Frame // Feature frame
	Y *frame.Frame // Target frame
}

// Batches splits X and y into consecutive row batches of at most size rows and
// sends them on the returned channel. The channel is closed after the last
// batch or when ctx is done.
func Batches(ctx context.Context, X, y *frame.Frame, size int) <-chan *Batch {
	out := make(chan *Batch)
	if size <= 0 {
		size = 1
	}
	go func() {
		defer close(out)
		for start := 0; start < X.NRows(); start += size {
			end := start + size
			b := &Batch{X: X.Slice(start, end), Y: y.Slice(start, end)}
			select {
			case out <- b:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
