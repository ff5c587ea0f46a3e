package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip handles the gzip format.
type Gzip struct {
	level int
	opts  Options
}

func NewGzip(opts Options) (*Gzip, error) {
	level, err := gzipLevels.parse(opts.Level)
	if err != nil {
		return nil, err
	}
	return &Gzip{level: level, opts: opts}, nil
}

func (g *Gzip) Name() string { return "gzip" }

func (g *Gzip) Extension() string { return "gz" }

func (g *Gzip) ExtractTarget() Target { return TargetFile }

func (g *Gzip) Compress(in Input, out Output) error {
	return compressStream(g, in, out, g.opts, func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, g.level)
	})
}

func (g *Gzip) Extract(in Input, out Output) error {
	return extractStream(g, in, out, g.opts, func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	})
}
