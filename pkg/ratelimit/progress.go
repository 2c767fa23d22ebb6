package ratelimit

import "io"

// ProgressFunc receives the bytes read so far and the completion
// percentage (0-100, or -1 when the total is unknown)
type ProgressFunc func(read int64, percent int)

// ProgressReader reports read progress. The callback fires only when the
// percentage changes, and always once at EOF.
type ProgressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	last     int
	done     bool
	progress ProgressFunc
}

// NewProgressReader wraps reader; total < 0 means unknown size
func NewProgressReader(reader io.Reader, total int64, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{reader: reader, total: total, last: -2, progress: fn}
}

// BytesRead returns the number of bytes read so far
func (r *ProgressReader) BytesRead() int64 {
	return r.read
}

func (r *ProgressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += int64(n)

	if r.progress != nil && !r.done {
		pct := r.percent()
		if err == io.EOF {
			r.done = true
			if r.total >= 0 {
				pct = 100
			}
			r.progress(r.read, pct)
		} else if n > 0 && pct != r.last {
			r.progress(r.read, pct)
		}
		r.last = pct
	}
	return n, err
}

func (r *ProgressReader) percent() int {
	switch {
	case r.total < 0:
		return -1
	case r.total == 0:
		return 100
	}
	return int(min(r.read*100/r.total, 100))
}
