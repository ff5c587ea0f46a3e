package codec

import (
	"archive/tar"
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Tar handles the tar archive format. Unlike the stream codecs it accepts
// multiple inputs and directories, and extracts into a directory.
type Tar struct {
	opts Options
}

func NewTar(opts Options) *Tar {
	return &Tar{opts: opts}
}

func (t *Tar) Name() string { return "tar" }

func (t *Tar) Extension() string { return "tar" }

func (t *Tar) ExtractTarget() Target { return TargetDirectory }

func (t *Tar) Compress(in Input, out Output) error {
	sink, err := openArchiveSink(out)
	if err != nil {
		return err
	}
	if err := t.writeArchive(in, sink.file); err != nil {
		sink.abort()
		return err
	}
	return sink.commit()
}

func (t *Tar) writeArchive(in Input, w io.Writer) error {
	tw := tar.NewWriter(w)

	if in.IsPipe() {
		// Tar headers carry the member size up front, so pipe input is
		// drained to a scratch file and stored as a single "archive" member.
		f, size, err := materialize(in.Pipe)
		if err != nil {
			return err
		}
		defer f.Close()

		hdr := &tar.Header{Name: "archive", Mode: 0644, Size: size}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if _, err := io.Copy(tw, f); err != nil {
			return err
		}
		return tw.Close()
	}

	for _, path := range in.Paths {
		if err := appendTarPath(tw, path); err != nil {
			return err
		}
	}

	return tw.Close()
}

// appendTarPath adds a file or directory tree to the archive. Directories
// are stored under their base name, so "some/where/dir" produces members
// named "dir/...".
func appendTarPath(tw *tar.Writer, path string) error {
	st, err := os.Lstat(path)
	if err != nil {
		return err
	}

	if st.Mode().IsRegular() {
		return appendTarEntry(tw, path, filepath.Base(path), st)
	}
	if !st.IsDir() {
		return fmt.Errorf("unsupported file type for tar compression: %s", path)
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
		return appendTarEntry(tw, p, filepath.ToSlash(rel), info)
	})
}

func appendTarEntry(tw *tar.Writer, path, name string, info fs.FileInfo) error {
	link := ""
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return err
		}
		link = target
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}

func (t *Tar) Extract(in Input, out Output) error {
	if out.IsPipe() {
		return errors.New("tar extraction to a pipe is not supported")
	}
	if err := ensureDir(out.Path); err != nil {
		return err
	}

	var src io.Reader
	if in.IsPipe() {
		src = in.Pipe
	} else {
		if len(in.Paths) != 1 {
			return errors.New("tar extraction expects a single archive file")
		}
		f, err := os.Open(in.Paths[0])
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	return untar(tar.NewReader(bufio.NewReader(src)), out.Path)
}

func untar(tr *tar.Reader, dir string) error {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := entryPath(dir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, entryMode(hdr.FileInfo().Mode(), 0755)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntryFile(target, tr, entryMode(hdr.FileInfo().Mode(), 0644)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		default:
			// Character devices, fifos and the like are skipped.
		}
	}
}

// entryPath joins an archive member name under dir, rejecting absolute
// names and traversal outside the output directory.
func entryPath(dir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." ||
		strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive member escapes the output directory: %s", name)
	}
	return filepath.Join(dir, cleaned), nil
}

func entryMode(mode fs.FileMode, fallback fs.FileMode) fs.FileMode {
	if perm := mode.Perm(); perm != 0 {
		return perm
	}
	return fallback
}

func writeEntryFile(target string, src io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// ensureDir makes sure path is a directory, creating it when missing.
func ensureDir(path string) error {
	st, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("extraction output must be a directory: %s", path)
	}
	return nil
}
