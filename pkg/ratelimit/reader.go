package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// minBucket keeps small limits from stalling on every read
const minBucket = 64 * 1024

// Limiter is a token bucket shared by every upload of a store. Tokens are
// bytes; the bucket holds one second of data (at least minBucket).
type Limiter struct {
	bytesPerSecond int64
	bucketSize     int64

	mu         sync.Mutex
	tokens     int64
	lastUpdate time.Time
}

// NewLimiter returns a limiter for bytesPerSecond, or nil (no limiting)
// when bytesPerSecond <= 0
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}
	bucketSize := max(bytesPerSecond, minBucket)
	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		bucketSize:     bucketSize,
		tokens:         bucketSize,
		lastUpdate:     time.Now(),
	}
}

// Rate returns the configured limit in bytes per second
func (l *Limiter) Rate() int64 {
	if l == nil {
		return 0
	}
	return l.bytesPerSecond
}

// Wait blocks until n tokens are available or ctx is done
func (l *Limiter) Wait(ctx context.Context, n int64) error {
	n = min(n, l.bucketSize)
	for {
		l.mu.Lock()
		l.refill(time.Now())
		if l.tokens >= n {
			l.mu.Unlock()
			return nil
		}
		deficit := n - l.tokens
		l.mu.Unlock()

		wait := max(time.Duration(float64(deficit)/float64(l.bytesPerSecond)*float64(time.Second)), time.Millisecond)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refill adds the tokens earned since the last update; caller holds mu
func (l *Limiter) refill(now time.Time) {
	earned := int64(float64(now.Sub(l.lastUpdate)) / float64(time.Second) * float64(l.bytesPerSecond))
	if earned > 0 {
		l.tokens = min(l.tokens+earned, l.bucketSize)
		l.lastUpdate = now
	}
}

func (l *Limiter) consume(n int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = max(l.tokens-n, 0)
}

// Reader throttles reads through a Limiter
type Reader struct {
	ctx     context.Context
	reader  io.Reader
	limiter *Limiter
}

// NewReader wraps reader; a nil limiter returns reader unchanged
func NewReader(ctx context.Context, reader io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return reader
	}
	return &Reader{ctx: ctx, reader: reader, limiter: limiter}
}

func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	if int64(len(p)) > r.limiter.bucketSize {
		p = p[:r.limiter.bucketSize]
	}
	if err := r.limiter.Wait(r.ctx, int64(len(p))); err != nil {
		return 0, err
	}

	n, err := r.reader.Read(p)
	if n > 0 {
		r.limiter.consume(int64(n))
	}
	return n, err
}
