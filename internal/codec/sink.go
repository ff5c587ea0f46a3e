package codec

import (
	"io"
	"os"
)

// archiveSink is the output target for formats whose writer wants a
// seekable file (tar, zip). Path outputs write straight to the created
// file; pipe outputs first materialize the complete archive into an
// anonymous scratch file, which commit then streams to the pipe.
type archiveSink struct {
	file *os.File
	pipe io.Writer
}

func openArchiveSink(out Output) (*archiveSink, error) {
	if !out.IsPipe() {
		f, err := os.Create(out.Path)
		if err != nil {
			return nil, err
		}
		return &archiveSink{file: f}, nil
	}

	f, err := scratchFile()
	if err != nil {
		return nil, err
	}

	return &archiveSink{file: f, pipe: out.Pipe}, nil
}

// commit delivers the finished archive: a plain close for path outputs, a
// rewind-and-stream for pipe outputs.
func (s *archiveSink) commit() error {
	if s.pipe == nil {
		return s.file.Close()
	}
	defer s.file.Close()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.Copy(s.pipe, s.file); err != nil {
		return err
	}

	return nil
}

// abort closes the target without delivering anything to a pipe.
func (s *archiveSink) abort() {
	s.file.Close()
}

// scratchFile creates an anonymous temporary file: already unlinked, gone
// when the file handle closes.
func scratchFile() (*os.File, error) {
	f, err := os.CreateTemp("", "cmprss-*")
	if err != nil {
		return nil, err
	}
	if err := os.Remove(f.Name()); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// materialize drains r into a scratch file and rewinds it, giving formats
// that need seekable or sized input a usable source.
func materialize(r io.Reader) (*os.File, int64, error) {
	f, err := scratchFile()
	if err != nil {
		return nil, 0, err
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, 0, err
	}

	return f, n, nil
}
