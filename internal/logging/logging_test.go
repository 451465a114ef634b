package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "debug", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.WithField("addr", "0xFF50").Debug("boot rom disabled")

	out := buf.String()
	if !strings.Contains(out, "msg=boot rom disabled") {
		t.Errorf("output = %q, want unquoted message", out)
	}
	if strings.Contains(out, "time=") {
		t.Errorf("output = %q, want no timestamp", out)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Debug("hidden")
	l.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level: %q", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("output = %q, want JSON message", out)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("New() with bad level returned nil error")
	}

	_, err := New(Options{Level: "info", Format: "xml"})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("New() error = %v, want ErrInvalidFormat", err)
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}

	l := logrus.New()
	if OrDiscard(l) != l {
		t.Error("OrDiscard() replaced a non-nil logger")
	}
}
