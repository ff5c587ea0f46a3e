package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"cmprss/internal/progress"
)

// ErrMultipleInputs is returned when a single-stream format is given more
// than one input file.
var ErrMultipleInputs = errors.New("multiple input files are not supported")

// compressStream is the shared plumbing for single-stream codecs (gzip, xz,
// bzip2, zstd, lz4): open the input, stat it for the progress total, wrap
// the output in the format encoder and drive the progress copier.
func compressStream(c Compressor, in Input, out Output, opts Options,
	encode func(io.Writer) (io.WriteCloser, error)) error {

	if !out.IsPipe() {
		if st, err := os.Stat(out.Path); err == nil && st.IsDir() {
			return fmt.Errorf("%s cannot compress to a directory, specify an output file", c.Name())
		}
	}
	if !in.IsPipe() {
		for _, p := range in.Paths {
			st, err := os.Stat(p)
			if err != nil {
				return err
			}
			if st.IsDir() {
				return fmt.Errorf("%s cannot compress a directory, specify only files", c.Name())
			}
		}
	}

	src, total, closeIn, err := openStreamInput(c, in)
	if err != nil {
		return err
	}
	defer closeIn()

	dst, closeOut, err := openStreamOutput(out)
	if err != nil {
		return err
	}

	enc, err := encode(dst)
	if err != nil {
		closeOut()
		return err
	}

	if err := progress.Copy(enc, src, opts.copyConfig(total, out.IsPipe())); err != nil {
		closeOut()
		return err
	}
	if err := enc.Close(); err != nil {
		closeOut()
		return err
	}
	if err := dst.Flush(); err != nil {
		closeOut()
		return err
	}

	return closeOut()
}

// extractStream mirrors compressStream with the decoder on the input side.
// The decompressed size is unknown up front, so extraction always renders
// the indeterminate indicator.
func extractStream(c Compressor, in Input, out Output, opts Options,
	decode func(io.Reader) (io.ReadCloser, error)) error {

	if !out.IsPipe() {
		if st, err := os.Stat(out.Path); err == nil && st.IsDir() {
			return fmt.Errorf("%s cannot extract to a directory, specify an output file", c.Name())
		}
	}

	src, _, closeIn, err := openStreamInput(c, in)
	if err != nil {
		return err
	}
	defer closeIn()

	dec, err := decode(src)
	if err != nil {
		return err
	}

	dst, closeOut, err := openStreamOutput(out)
	if err != nil {
		dec.Close()
		return err
	}

	if err := progress.Copy(dst, dec, opts.copyConfig(-1, out.IsPipe())); err != nil {
		dec.Close()
		closeOut()
		return err
	}
	if err := dec.Close(); err != nil {
		closeOut()
		return err
	}
	if err := dst.Flush(); err != nil {
		closeOut()
		return err
	}

	return closeOut()
}

// openStreamInput opens the single input of a stream codec, returning the
// reader, the input size (-1 when unknown) and a close func.
func openStreamInput(c Compressor, in Input) (io.Reader, int64, func() error, error) {
	if in.IsPipe() {
		return bufio.NewReader(in.Pipe), -1, func() error { return nil }, nil
	}
	if len(in.Paths) > 1 {
		return nil, 0, nil, fmt.Errorf("%s: %w", c.Name(), ErrMultipleInputs)
	}

	f, err := os.Open(in.Paths[0])
	if err != nil {
		return nil, 0, nil, err
	}
	total := int64(-1)
	if st, err := f.Stat(); err == nil {
		total = st.Size()
	}

	return bufio.NewReader(f), total, f.Close, nil
}

// openStreamOutput opens the output of a stream codec behind a buffered
// writer, returning the writer and a close func.
func openStreamOutput(out Output) (*bufio.Writer, func() error, error) {
	if out.IsPipe() {
		return bufio.NewWriter(out.Pipe), func() error { return nil }, nil
	}

	f, err := os.Create(out.Path)
	if err != nil {
		return nil, nil, err
	}

	return bufio.NewWriter(f), f.Close, nil
}

// nopReadCloser adapts decoders that have no Close of their own.
func nopReadCloser(r io.Reader) io.ReadCloser {
	return io.NopCloser(r)
}
