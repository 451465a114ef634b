// Package serial implements the SB/SC link port registers as a print-only
// device.
//
// No cable is attached. A transfer started with the internal clock completes
// at once: the outgoing byte is captured and written to the output, SB reads
// back 0xFF as if the line floated high, and the serial interrupt is raised.
// Transfers on the external clock never complete.
package serial

import (
	"bytes"
	"io"

	"github.com/richardwooding/dmgcore/internal/interrupts"
	"github.com/richardwooding/dmgcore/internal/logging"
	"github.com/sirupsen/logrus"
)

// Register addresses.
const (
	SB = 0xFF01
	SC = 0xFF02
)

const (
	scTransfer = 0x80
	scInternal = 0x01
	scUnused   = 0x7E
)

// Port is the serial port.
type Port struct {
	data    uint8
	control uint8

	out    io.Writer
	output []byte
	line   []byte

	interrupts *interrupts.Controller
	log        logrus.FieldLogger
}

// New creates a port. out receives every transferred byte and may be nil.
// ic may be nil, in which case no interrupt is raised.
func New(ic *interrupts.Controller, out io.Writer, log logrus.FieldLogger) *Port {
	return &Port{
		out:        out,
		interrupts: ic,
		log:        logging.OrDiscard(log),
	}
}

// Read reads SB or SC.
func (p *Port) Read(addr uint16) uint8 {
	switch addr {
	case SB:
		return p.data
	case SC:
		return p.control | scUnused
	}
	return 0xFF
}

// Write writes SB or SC. Setting bit 7 of SC with the internal clock selected
// runs the transfer.
func (p *Port) Write(addr uint16, value uint8) {
	switch addr {
	case SB:
		p.data = value
	case SC:
		p.control = value & (scTransfer | scInternal)
		if p.control == scTransfer|scInternal {
			p.transfer()
		}
	}
}

func (p *Port) transfer() {
	b := p.data
	p.output = append(p.output, b)

	if p.out != nil {
		if _, err := p.out.Write([]byte{b}); err != nil {
			p.log.WithError(err).Warn("serial output write failed")
		}
	}

	if b == '\n' {
		p.log.WithField("line", string(p.line)).Info("serial")
		p.line = p.line[:0]
	} else {
		p.line = append(p.line, b)
	}

	p.data = 0xFF
	p.control &^= scTransfer
	if p.interrupts != nil {
		p.interrupts.Request(interrupts.Serial)
	}
}

// Output returns every byte transferred so far.
func (p *Port) Output() []byte {
	return p.output
}

// Contains reports whether the output contains sub.
func (p *Port) Contains(sub string) bool {
	return bytes.Contains(p.output, []byte(sub))
}

// Reset clears the registers and the captured output.
func (p *Port) Reset() {
	p.data = 0
	p.control = 0
	p.output = p.output[:0]
	p.line = p.line[:0]
}
