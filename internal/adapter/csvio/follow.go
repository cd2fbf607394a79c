package csvio

import (
	"context"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// FollowReader wraps a reader whose source may still be growing, such as a
// file another process appends to. On EOF it polls for new bytes with
// exponential backoff and only reports io.EOF once no data has arrived for
// the idle window. Reads of partially written trailing lines are possible,
// so writers are expected to append whole rows.
type FollowReader struct {
	ctx     context.Context
	r       io.Reader
	maxIdle time.Duration
	b       *backoff.ExponentialBackOff
}

// NewFollowReader creates a FollowReader that gives up after maxIdle
// without new data. ctx cancellation stops waiting immediately.
func NewFollowReader(ctx context.Context, r io.Reader, maxIdle time.Duration) *FollowReader {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = maxIdle
	b.Reset()

	return &FollowReader{
		ctx:     ctx,
		r:       r,
		maxIdle: maxIdle,
		b:       b,
	}
}

// Read implements io.Reader.
func (f *FollowReader) Read(p []byte) (int, error) {
	for {
		n, err := f.r.Read(p)
		if n > 0 {
			f.b.Reset()
			// Swallow EOF when data was returned; the next call polls again.
			if err == io.EOF {
				err = nil
			}
			return n, err
		}
		if err != nil && err != io.EOF {
			return 0, err
		}

		wait := f.b.NextBackOff()
		if wait == backoff.Stop {
			return 0, io.EOF
		}

		select {
		case <-f.ctx.Done():
			return 0, f.ctx.Err()
		case <-time.After(wait):
		}
	}
}
