package serial

import (
	"bytes"
	"testing"

	"github.com/richardwooding/dmgcore/internal/interrupts"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func send(p *Port, s string) {
	for i := 0; i < len(s); i++ {
		p.Write(SB, s[i])
		p.Write(SC, 0x81)
	}
}

func TestTransferCompletesImmediately(t *testing.T) {
	ic := interrupts.New()
	var out bytes.Buffer
	p := New(ic, &out, nil)

	p.Write(SB, 'P')
	p.Write(SC, 0x81)

	if got := out.String(); got != "P" {
		t.Errorf("output = %q, want %q", got, "P")
	}
	if got := p.Read(SC); got != 0x7F {
		t.Errorf("SC = 0x%02X, want 0x7F", got)
	}
	if got := p.Read(SB); got != 0xFF {
		t.Errorf("SB = 0x%02X, want 0xFF", got)
	}
	if !ic.Pending.Has(interrupts.Serial) {
		t.Error("serial interrupt not requested")
	}
}

func TestExternalClockNeverCompletes(t *testing.T) {
	ic := interrupts.New()
	p := New(ic, nil, nil)

	p.Write(SB, 'X')
	p.Write(SC, 0x80)

	if len(p.Output()) != 0 {
		t.Errorf("Output() = %q, want empty", p.Output())
	}
	if got := p.Read(SC); got != 0xFE {
		t.Errorf("SC = 0x%02X, want 0xFE", got)
	}
	if ic.Pending.Has(interrupts.Serial) {
		t.Error("serial interrupt requested without a transfer")
	}
}

func TestOutputAndContains(t *testing.T) {
	p := New(nil, nil, nil)
	send(p, "cpu_instrs\n\nPassed all tests\n")

	if !p.Contains("Passed") {
		t.Error("Contains(Passed) = false")
	}
	if p.Contains("Failed") {
		t.Error("Contains(Failed) = true")
	}

	p.Reset()
	if len(p.Output()) != 0 || p.Read(SB) != 0 {
		t.Error("Reset() did not clear the port")
	}
}

func TestLinesAreLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)
	p := New(nil, nil, logger)

	send(p, "01:ok\n02:")

	if len(hook.Entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(hook.Entries))
	}
	if got := hook.LastEntry().Data["line"]; got != "01:ok" {
		t.Errorf("line = %v, want 01:ok", got)
	}
}
