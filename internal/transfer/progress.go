package transfer

import (
	"math"
	"strconv"
	"time"
)

var sizeSuffixes = [...]string{"B", "KB", "MB", "GB", "TB"}

// Progress tracks one transfer.
type Progress struct {
	// Expected is the size announced by the remote, or 0 when unknown.
	Expected int64
	// Transferred is the number of bytes written to the destination so far.
	Transferred int64
}

// Percent returns the completed fraction in [0, 100], or -1 when the
// expected size is unknown.
func (p Progress) Percent() float64 {
	if p.Expected <= 0 {
		return -1
	}
	pct := float64(p.Transferred) / float64(p.Expected) * 100
	return math.Min(pct, 100)
}

// Observer receives progress updates. It is called synchronously from the
// copy loop and must not block.
type Observer func(p Progress, done bool)

// HumanSize formats a byte count with binary prefixes, e.g. "238.42 MB".
func HumanSize(size int64) string {
	if size < 1 {
		return "0 B"
	}
	exp := 0
	value := float64(size)
	for value >= 1024 && exp < len(sizeSuffixes)-1 {
		value /= 1024
		exp++
	}
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeSuffixes[exp]
}

// progressWriter counts bytes passing through it and reports them to an
// observer at most once per interval.
type progressWriter struct {
	progress Progress
	observer Observer
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

func newProgressWriter(expected int64, observer Observer, interval time.Duration, now func() time.Time) *progressWriter {
	return &progressWriter{
		progress: Progress{Expected: expected},
		observer: observer,
		interval: interval,
		now:      now,
	}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	w.progress.Transferred += int64(n)

	if w.observer != nil {
		if t := w.now(); t.Sub(w.last) >= w.interval {
			w.last = t
			w.observer(w.progress, false)
		}
	}
	return n, nil
}

func (w *progressWriter) finish() {
	if w.observer != nil {
		w.observer(w.progress, true)
	}
}
