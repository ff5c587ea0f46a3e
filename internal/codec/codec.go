// Package codec defines the flat Compressor interface and one implementer
// per supported format: tar, gzip, xz, bzip2, zip, zstd and lz4. The actual
// encode/decode work is delegated to the format libraries; this package owns
// extension detection, default filenames and the file/pipe plumbing around
// each codec.
package codec

import (
	"io"
	"path/filepath"
	"strings"

	"cmprss/internal/progress"
)

// Target is the kind of filesystem object a codec extracts to by default.
type Target int

const (
	// TargetFile codecs (gzip, xz, bzip2, zstd, lz4) extract a single file.
	TargetFile Target = iota
	// TargetDirectory codecs (tar, zip) extract into a directory.
	TargetDirectory
)

// Compressor is the capability set shared by every format. One implementer
// per format, no shared state between them.
type Compressor interface {
	// Name is the full format name, e.g. "gzip".
	Name() string

	// Extension is the canonical file extension without the dot, e.g. "gz".
	Extension() string

	// ExtractTarget reports whether extraction produces a file or a directory.
	ExtractTarget() Target

	Compress(in Input, out Output) error
	Extract(in Input, out Output) error
}

// Input is the resolved input of a job: either one or more filesystem paths
// or a pipe. Paths is never empty once constructed.
type Input struct {
	Paths []string
	Pipe  io.Reader
}

// PathInput builds an Input from filesystem paths.
func PathInput(paths ...string) Input {
	return Input{Paths: paths}
}

// PipeInput builds an Input reading from a pipe, normally stdin.
func PipeInput(r io.Reader) Input {
	return Input{Pipe: r}
}

// IsPipe reports whether the input reads from a pipe.
func (in Input) IsPipe() bool {
	return in.Pipe != nil
}

// Output is the resolved output of a job: a single filesystem path or a pipe.
type Output struct {
	Path string
	Pipe io.Writer
}

// PathOutput builds an Output writing to a filesystem path.
func PathOutput(path string) Output {
	return Output{Path: path}
}

// PipeOutput builds an Output writing to a pipe, normally stdout.
func PipeOutput(w io.Writer) Output {
	return Output{Pipe: w}
}

// IsPipe reports whether the output writes to a pipe.
func (out Output) IsPipe() bool {
	return out.Pipe != nil
}

// Options carries the per-invocation codec configuration, parsed once from
// the CLI and passed by value.
type Options struct {
	// Level is the raw --level flag text; each format interprets it against
	// its own range and name mapping. Empty means the format default.
	Level string

	// Progress selects the progress display behavior.
	Progress progress.Mode

	// ChunkSize is the copy buffer size in bytes; the default when zero.
	ChunkSize int
}

func (o Options) copyConfig(total int64, toPipe bool) progress.Config {
	return progress.Config{
		ChunkSize: o.ChunkSize,
		Total:     total,
		Mode:      o.Progress,
		ToPipe:    toPipe,
	}
}

// IsArchive reports whether path names an archive of c's format: the
// extension must equal the canonical extension exactly, case-sensitively.
// A path without an extension never matches.
func IsArchive(c Compressor, path string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	return ext == "."+c.Extension()
}

// DefaultCompressedName generates the default output filename when
// compressing path: "<file-name>.<ext>". Paths without a usable file name
// component fall back to "archive".
func DefaultCompressedName(c Compressor, path string) string {
	return fileName(path) + "." + c.Extension()
}

// DefaultExtractedName generates the default output name when extracting
// path. Directory-target codecs always extract into the current directory.
// File-target codecs strip the codec extension when it matches, and fall
// back to "archive" otherwise.
func DefaultExtractedName(c Compressor, path string) string {
	if c.ExtractTarget() == TargetDirectory {
		return "."
	}
	base := fileName(path)
	if IsArchive(c, path) {
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "archive"
}

// fileName returns the final path component, or "archive" when the path has
// no usable file name (empty, ".", ".." or a bare separator).
func fileName(path string) string {
	switch base := filepath.Base(path); base {
	case "", ".", "..", string(filepath.Separator):
		return "archive"
	default:
		return base
	}
}

// builders lists every format in guess order, keyed by canonical extension.
var builders = []struct {
	ext   string
	build func(Options) (Compressor, error)
}{
	{"tar", func(o Options) (Compressor, error) { return NewTar(o), nil }},
	{"gz", func(o Options) (Compressor, error) { return NewGzip(o) }},
	{"xz", func(o Options) (Compressor, error) { return NewXz(o) }},
	{"bz2", func(o Options) (Compressor, error) { return NewBzip2(o) }},
	{"zip", func(o Options) (Compressor, error) { return NewZip(o), nil }},
	{"zst", func(o Options) (Compressor, error) { return NewZstd(o) }},
	{"lz4", func(o Options) (Compressor, error) { return NewLz4(o), nil }},
}

// FromFilename guesses the codec from a filename extension and constructs it
// with opts. It returns (nil, nil) when no format matches. Multi-segment
// names like "name.tar.gz" resolve to the outermost hop only; extension
// chains are handled by chained invocations.
func FromFilename(path string, opts Options) (Compressor, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, nil
	}
	for _, b := range builders {
		if ext == "."+b.ext {
			return b.build(opts)
		}
	}
	return nil, nil
}
