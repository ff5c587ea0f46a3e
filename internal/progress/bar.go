package progress

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// indicator owns the terminal rendering for one copy call: a bounded bar
// when the input size is known, a spinner otherwise. It renders to stderr
// so piped stdout stays clean.
type indicator struct {
	container *mpb.Progress
	bar       *mpb.Bar
	written   atomic.Int64
}

func newIndicator(total int64) *indicator {
	ind := &indicator{
		container: mpb.New(
			mpb.WithWidth(60),
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(100*time.Millisecond),
		),
	}

	writtenDecor := decor.Any(func(decor.Statistics) string {
		return "=> " + FormatSize(ind.written.Load())
	})

	if total >= 0 {
		ind.bar = ind.container.New(total, mpb.BarStyle(),
			mpb.PrependDecorators(
				decor.Elapsed(decor.ET_STYLE_GO, decor.WC{C: decor.DindentRight | decor.DextraSpace}),
				decor.CountersKibiByte("% .1f / % .1f", decor.WC{W: 18}),
			),
			mpb.AppendDecorators(
				decor.Percentage(decor.WC{W: 5}),
				writtenDecor,
			),
		)
	} else {
		ind.bar = ind.container.New(0, mpb.SpinnerStyle(),
			mpb.PrependDecorators(
				decor.Elapsed(decor.ET_STYLE_GO, decor.WC{C: decor.DindentRight | decor.DextraSpace}),
				decor.CurrentKibiByte("% .1f", decor.WC{W: 10}),
			),
			mpb.AppendDecorators(writtenDecor),
		)
	}

	return ind
}

// setCurrent advances the bar position to the total bytes read so far.
func (ind *indicator) setCurrent(total int64) {
	ind.bar.SetCurrent(total)
}

// setWritten records the bytes written so far, shown by the trailing decorator.
func (ind *indicator) setWritten(total int64) {
	ind.written.Store(total)
}

// finish completes the bar at its current position and waits for the final render.
func (ind *indicator) finish() {
	ind.bar.SetTotal(-1, true)
	ind.container.Wait()
}

// abort drops the bar without a completion render. Used on the error path so
// a failed copy never looks finished.
func (ind *indicator) abort() {
	ind.bar.Abort(true)
	ind.container.Wait()
}

// FormatSize formats a byte count into a human-readable string.
func FormatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
		tb = 1024 * gb
	)

	switch {
	case bytes >= tb:
		return fmt.Sprintf("%.2f TiB", float64(bytes)/float64(tb))
	case bytes >= gb:
		return fmt.Sprintf("%.2f GiB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.2f MiB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.2f KiB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
