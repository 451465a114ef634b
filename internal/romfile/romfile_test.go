package romfile

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"
)

var payload = []byte{0x00, 0xC3, 0x50, 0x01, 'D', 'M', 'G'}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func zipped(t *testing.T, files map[string][]byte, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write(files[name]); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeRaw(t *testing.T) {
	for _, name := range []string{"game.gb", "game.GBC", "dmg_boot.bin", "noext"} {
		got, err := Decode(name, payload)
		if err != nil || !bytes.Equal(got, payload) {
			t.Errorf("Decode(%q) = %v, %v; want payload unchanged", name, got, err)
		}
	}
}

func TestDecodeGzip(t *testing.T) {
	got, err := Decode("game.gb.gz", gzipped(t, payload))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Decode() = % X, want % X", got, payload)
	}

	if _, err := Decode("bad.gz", payload); err == nil {
		t.Error("Decode() of corrupt gzip returned no error")
	}
}

func TestDecodeXZ(t *testing.T) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := Decode("game.gb.xz", buf.Bytes())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Decode() = % X, want % X", got, payload)
	}
}

func TestDecodeZipPrefersROM(t *testing.T) {
	data := zipped(t, map[string][]byte{
		"readme.txt": []byte("hello"),
		"game.gb":    payload,
	}, "readme.txt", "game.gb")

	got, err := Decode("game.zip", data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Decode() = %q, want the .gb member", got)
	}
}

func TestDecodeZipFallsBackToFirstFile(t *testing.T) {
	data := zipped(t, map[string][]byte{"image": payload, "other": nil}, "image", "other")

	got, err := Decode("game.zip", data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Decode() = %q, want the first member", got)
	}
}

func TestDecodeEmptyZip(t *testing.T) {
	_, err := Decode("empty.zip", zipped(t, nil))
	if !errors.Is(err, ErrEmptyArchive) {
		t.Errorf("Decode() error = %v, want %v", err, ErrEmptyArchive)
	}
}

func TestDecodeCorrupt7z(t *testing.T) {
	if _, err := Decode("game.7z", payload); err == nil {
		t.Error("Decode() of corrupt 7z returned no error")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.gb.gz")
	if err := os.WriteFile(path, gzipped(t, payload), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Load() = % X, want % X", got, payload)
	}

	if _, err := Load(filepath.Join(dir, "missing.gb")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want %v", err, os.ErrNotExist)
	}
}
