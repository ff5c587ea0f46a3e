package codec

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Zip handles the zip archive format with Deflate members. Like tar it
// accepts multiple inputs and directories, and extracts into a directory.
type Zip struct {
	opts Options
}

func NewZip(opts Options) *Zip {
	return &Zip{opts: opts}
}

func (z *Zip) Name() string { return "zip" }

func (z *Zip) Extension() string { return "zip" }

func (z *Zip) ExtractTarget() Target { return TargetDirectory }

func (z *Zip) Compress(in Input, out Output) error {
	sink, err := openArchiveSink(out)
	if err != nil {
		return err
	}
	if err := z.writeArchive(in, sink.file); err != nil {
		sink.abort()
		return err
	}
	return sink.commit()
}

func (z *Zip) writeArchive(in Input, w io.Writer) error {
	zw := zip.NewWriter(w)

	if in.IsPipe() {
		entry, err := zw.Create("archive")
		if err != nil {
			return err
		}
		if _, err := io.Copy(entry, in.Pipe); err != nil {
			return err
		}
		return zw.Close()
	}

	for _, path := range in.Paths {
		if err := appendZipPath(zw, path); err != nil {
			return err
		}
	}

	return zw.Close()
}

// appendZipPath adds a file or directory tree to the archive, storing
// directories under their base name like the tar codec does.
func appendZipPath(zw *zip.Writer, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}

	if st.Mode().IsRegular() {
		return appendZipEntry(zw, path, filepath.Base(path), st)
	}
	if !st.IsDir() {
		return fmt.Errorf("unsupported file type for zip compression: %s", path)
	}

	root := filepath.Dir(path)
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		return appendZipEntry(zw, p, filepath.ToSlash(rel), info)
	})
}

func appendZipEntry(zw *zip.Writer, path, name string, info fs.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	if info.IsDir() {
		hdr.Name += "/"
	}

	entry, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(entry, f)
	return err
}

func (z *Zip) Extract(in Input, out Output) error {
	if out.IsPipe() {
		return errors.New("zip extraction to a pipe is not supported")
	}
	if err := ensureDir(out.Path); err != nil {
		return err
	}

	// Zip directories live at the end of the file, so the reader needs a
	// seekable source of known size; pipe input is drained to a scratch file.
	var (
		f    *os.File
		size int64
	)
	if in.IsPipe() {
		var err error
		f, size, err = materialize(in.Pipe)
		if err != nil {
			return err
		}
	} else {
		if len(in.Paths) != 1 {
			return errors.New("zip extraction expects a single archive file")
		}
		var err error
		f, err = os.Open(in.Paths[0])
		if err != nil {
			return err
		}
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return err
		}
		size = st.Size()
	}
	defer f.Close()

	zr, err := zip.NewReader(f, size)
	if err != nil {
		return err
	}

	for _, member := range zr.File {
		if err := extractZipMember(out.Path, member); err != nil {
			return err
		}
	}

	return nil
}

func extractZipMember(dir string, member *zip.File) error {
	target, err := entryPath(dir, member.Name)
	if err != nil {
		return err
	}

	if member.FileInfo().IsDir() {
		return os.MkdirAll(target, entryMode(member.Mode(), 0755))
	}

	rc, err := member.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	return writeEntryFile(target, rc, entryMode(member.Mode(), 0644))
}
