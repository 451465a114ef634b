// Package romfile loads ROM and boot images from disk, unpacking the archive
// formats ROMs are commonly distributed in.
package romfile

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/ulikunitz/xz"
)

// ErrEmptyArchive indicates an archive without any regular file in it.
var ErrEmptyArchive = errors.New("archive contains no files")

// romExtensions are preferred when picking a member out of an archive.
var romExtensions = []string{".gb", ".gbc", ".bin"}

// Load reads the named file and decompresses it based on its extension.
// Unknown extensions are returned as-is.
func Load(path string) ([]byte, error) {
	// #nosec G304 - path is provided by the user via CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	out, err := Decode(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", path, err)
	}
	return out, nil
}

// Decode decompresses data according to the extension of name.
func Decode(name string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)

	case ".xz":
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return io.ReadAll(r)

	case ".zip":
		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		files := make([]member, 0, len(r.File))
		for _, f := range r.File {
			files = append(files, member{name: f.Name, info: f.FileInfo(), open: f.Open})
		}
		return readMember(files)

	case ".7z":
		r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		files := make([]member, 0, len(r.File))
		for _, f := range r.File {
			files = append(files, member{name: f.Name, info: f.FileInfo(), open: f.Open})
		}
		return readMember(files)
	}
	return data, nil
}

// member is an archive entry, common to zip and 7z.
type member struct {
	name string
	info fs.FileInfo
	open func() (io.ReadCloser, error)
}

// readMember reads the first ROM-like entry, or the first regular file when
// none has a ROM extension.
func readMember(files []member) ([]byte, error) {
	var pick *member
	for i := range files {
		f := &files[i]
		if !f.info.Mode().IsRegular() {
			continue
		}
		if pick == nil {
			pick = f
		}
		if hasROMExtension(f.name) {
			pick = f
			break
		}
	}
	if pick == nil {
		return nil, ErrEmptyArchive
	}

	rc, err := pick.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", pick.name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func hasROMExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range romExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
