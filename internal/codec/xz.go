package codec

import (
	"io"

	"github.com/ulikunitz/xz"
)

// Xz handles the xz format.
type Xz struct {
	level int
	opts  Options
}

func NewXz(opts Options) (*Xz, error) {
	level, err := xzLevels.parse(opts.Level)
	if err != nil {
		return nil, err
	}
	return &Xz{level: level, opts: opts}, nil
}

func (x *Xz) Name() string { return "xz" }

func (x *Xz) Extension() string { return "xz" }

func (x *Xz) ExtractTarget() Target { return TargetFile }

func (x *Xz) Compress(in Input, out Output) error {
	return compressStream(x, in, out, x.opts, func(w io.Writer) (io.WriteCloser, error) {
		cfg := xz.WriterConfig{DictCap: xzDictCap(x.level)}
		return cfg.NewWriter(w)
	})
}

func (x *Xz) Extract(in Input, out Output) error {
	return extractStream(x, in, out, x.opts, func(r io.Reader) (io.ReadCloser, error) {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return nopReadCloser(xr), nil
	})
}

// xzDictCap scales the LZMA dictionary with the level, capped at 64MiB for
// the high levels.
func xzDictCap(level int) int {
	if level >= 7 {
		return 1 << 26
	}
	return 1 << (20 + uint(level))
}
