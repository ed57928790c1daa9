package corpus

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ArchiveName is the download name of the output-directory archive.
const ArchiveName = "entregaveis_sara_carolayne.zip"

// WriteArchive writes a deflate zip of every regular file under dir, with
// entry names relative to dir. It returns the number of files written.
func WriteArchive(dir string, w io.Writer) (int, error) {
	return writeArchive(dir, w, nil)
}

func writeArchive(dir string, w io.Writer, skip map[string]bool) (int, error) {
	zw := zip.NewWriter(w)
	count := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if len(skip) > 0 {
			if abs, _ := filepath.Abs(path); skip[abs] {
				return nil
			}
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		dst, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		if err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		zw.Close()
		return count, fmt.Errorf("archiving %s: %w", dir, err)
	}

	if err := zw.Close(); err != nil {
		return count, fmt.Errorf("finalizing archive: %w", err)
	}
	return count, nil
}

// ArchiveFile writes the archive of dir to path, creating or truncating it.
// The target may live inside dir; it is excluded from its own archive.
func ArchiveFile(dir, path string) (int, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entregaveis-*.zip")
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	skip := make(map[string]bool, 2)
	for _, p := range []string{tmpName, path} {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}
	n, err := writeArchive(dir, tmp, skip)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return n, fmt.Errorf("moving archive into place: %w", err)
	}
	return n, nil
}
