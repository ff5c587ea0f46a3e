// Package progress implements the chunked copy loop that moves bytes
// between a codec and its input/output while keeping a terminal progress
// indicator responsive. The refresh cadence adapts to throughput so the
// display never becomes the bottleneck.
package progress

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Mode controls whether a progress indicator is shown during a copy.
type Mode int

const (
	// ModeAuto shows progress unless the destination is a pipe.
	ModeAuto Mode = iota
	// ModeOn always shows progress.
	ModeOn
	// ModeOff never shows progress.
	ModeOff
)

// ParseMode parses the --progress flag value. Values are exact-match, no
// case folding.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "auto":
		return ModeAuto, nil
	case "on":
		return ModeOn, nil
	case "off":
		return ModeOff, nil
	}
	return ModeAuto, fmt.Errorf("invalid progress mode %q (expected auto, on or off)", s)
}

func (m Mode) String() string {
	switch m {
	case ModeOn:
		return "on"
	case ModeOff:
		return "off"
	}
	return "auto"
}

// DefaultChunkSize is the copy buffer size used when --chunk-size is not given.
const DefaultChunkSize = 8 * 1024

var errInvalidChunkSize = errors.New("chunk size must be a positive number of bytes")

// ParseChunkSize parses the --chunk-size flag value: either a plain byte
// count or a number with a kb/mb/gb suffix. Units are always binary
// multiples, whether spelled "kb" or "kib". Zero is rejected.
func ParseChunkSize(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, errInvalidChunkSize
		}
		return n, nil
	}

	// Normalize "kib"/"mib"/"gib" to "kb"/"mb"/"gb"; both mean base 2.
	t := strings.ToLower(s)
	if strings.HasSuffix(t, "ib") {
		t = t[:len(t)-2] + "b"
	}
	if len(t) < 3 {
		return 0, fmt.Errorf("invalid chunk size %q", s)
	}

	num, err := strconv.Atoi(t[:len(t)-2])
	if err != nil {
		return 0, fmt.Errorf("invalid chunk size %q", s)
	}

	var size int
	switch t[len(t)-2:] {
	case "kb":
		size = num * 1024
	case "mb":
		size = num * 1024 * 1024
	case "gb":
		size = num * 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("invalid chunk size unit in %q", s)
	}
	if size <= 0 {
		return 0, errInvalidChunkSize
	}

	return size, nil
}

// Config describes a single copy operation.
type Config struct {
	// ChunkSize is the copy buffer size; DefaultChunkSize when zero.
	ChunkSize int

	// Total is the number of bytes expected from the reader, or a negative
	// value when unknown. A known total renders a bounded bar, an unknown
	// one renders a spinner.
	Total int64

	// Mode selects the display behavior.
	Mode Mode

	// ToPipe reports whether the destination is a pipe. ModeAuto suppresses
	// the indicator in that case so the display never mixes with data
	// consumed by another program.
	ToPipe bool
}

// Copy streams src to dst in ChunkSize chunks, optionally rendering a
// progress indicator. Any I/O error aborts immediately and propagates; the
// indicator is only finalized on success.
func Copy(dst io.Writer, src io.Reader, cfg Config) error {
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	if cfg.Mode == ModeOff || (cfg.Mode == ModeAuto && cfg.ToPipe) {
		// Pass-through: no progress state at all.
		return copyChunks(dst, src, chunk)
	}

	ind := newIndicator(cfg.Total)
	r := &progressReader{r: src, meter: newMeter(ind.setCurrent)}
	w := &progressWriter{w: dst, meter: newMeter(ind.setWritten)}

	if err := copyChunks(w, r, chunk); err != nil {
		ind.abort()
		return err
	}
	ind.finish()

	return nil
}

// copyChunks is the bare copy loop: read into a reusable buffer, write
// exactly the bytes read, stop at EOF.
func copyChunks(dst io.Writer, src io.Reader, chunk int) error {
	buf := make([]byte, chunk)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

const (
	initialBytesPerUpdate = 8 * 1024
	minBytesPerUpdate     = 1 * 1024

	// Refresh cadence converges toward ~100ms between indicator updates.
	speedUpBelow = 50 * time.Millisecond
	slowDownOver = 150 * time.Millisecond
)

// meter decides when enough bytes have passed to justify an indicator
// refresh. It is owned by exactly one reader or writer of one copy call.
type meter struct {
	total          int64
	sinceUpdate    int64
	bytesPerUpdate int64
	lastUpdate     time.Time
	now            func() time.Time
	publish        func(total int64)
}

func newMeter(publish func(int64)) *meter {
	return &meter{
		bytesPerUpdate: initialBytesPerUpdate,
		lastUpdate:     time.Now(),
		now:            time.Now,
		publish:        publish,
	}
}

// count records n transferred bytes and refreshes the indicator once
// bytesPerUpdate bytes have accumulated. The threshold doubles when
// refreshes come too fast and halves (floor 1KiB) when they come too slow.
func (m *meter) count(n int) {
	m.total += int64(n)
	m.sinceUpdate += int64(n)
	if m.sinceUpdate < m.bytesPerUpdate {
		return
	}

	t := m.now()
	elapsed := t.Sub(m.lastUpdate)
	m.publish(m.total)

	if elapsed < speedUpBelow {
		m.bytesPerUpdate *= 2
	} else if elapsed > slowDownOver {
		m.bytesPerUpdate /= 2
		if m.bytesPerUpdate < minBytesPerUpdate {
			m.bytesPerUpdate = minBytesPerUpdate
		}
	}

	m.lastUpdate = t
	m.sinceUpdate = 0
}

// progressReader counts bytes read through it.
type progressReader struct {
	r     io.Reader
	meter *meter
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.meter.count(n)
	}
	return n, err
}

// progressWriter counts bytes written through it.
type progressWriter struct {
	w     io.Writer
	meter *meter
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	if n > 0 {
		pw.meter.count(n)
	}
	return n, err
}
