package codec

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// Bzip2 handles the bzip2 format.
type Bzip2 struct {
	level int
	opts  Options
}

func NewBzip2(opts Options) (*Bzip2, error) {
	level, err := bzip2Levels.parse(opts.Level)
	if err != nil {
		return nil, err
	}
	return &Bzip2{level: level, opts: opts}, nil
}

func (b *Bzip2) Name() string { return "bzip2" }

func (b *Bzip2) Extension() string { return "bz2" }

func (b *Bzip2) ExtractTarget() Target { return TargetFile }

func (b *Bzip2) Compress(in Input, out Output) error {
	return compressStream(b, in, out, b.opts, func(w io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: b.level})
	})
}

func (b *Bzip2) Extract(in Input, out Output) error {
	return extractStream(b, in, out, b.opts, func(r io.Reader) (io.ReadCloser, error) {
		return bzip2.NewReader(r, nil)
	})
}
