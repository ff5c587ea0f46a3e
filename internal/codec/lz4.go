package codec

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// Lz4 handles the lz4 frame format. lz4 favors speed over ratio and takes
// no compression level.
type Lz4 struct {
	opts Options
}

func NewLz4(opts Options) *Lz4 {
	return &Lz4{opts: opts}
}

func (l *Lz4) Name() string { return "lz4" }

func (l *Lz4) Extension() string { return "lz4" }

func (l *Lz4) ExtractTarget() Target { return TargetFile }

func (l *Lz4) Compress(in Input, out Output) error {
	return compressStream(l, in, out, l.opts, func(w io.Writer) (io.WriteCloser, error) {
		return lz4.NewWriter(w), nil
	})
}

func (l *Lz4) Extract(in Input, out Output) error {
	return extractStream(l, in, out, l.opts, func(r io.Reader) (io.ReadCloser, error) {
		return nopReadCloser(lz4.NewReader(r)), nil
	})
}
