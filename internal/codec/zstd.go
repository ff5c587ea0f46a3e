package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// Zstd handles the Zstandard format.
type Zstd struct {
	level int
	opts  Options
}

func NewZstd(opts Options) (*Zstd, error) {
	level, err := zstdLevels.parse(opts.Level)
	if err != nil {
		return nil, err
	}
	return &Zstd{level: level, opts: opts}, nil
}

func (z *Zstd) Name() string { return "zstd" }

func (z *Zstd) Extension() string { return "zst" }

func (z *Zstd) ExtractTarget() Target { return TargetFile }

func (z *Zstd) Compress(in Input, out Output) error {
	return compressStream(z, in, out, z.opts, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(z.level)),
			// Empty input must still produce a decodable frame.
			zstd.WithZeroFrames(true),
		)
	})
}

func (z *Zstd) Extract(in Input, out Output) error {
	return extractStream(z, in, out, z.opts, func(r io.Reader) (io.ReadCloser, error) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	})
}
