// Package vectors runs single-instruction golden vectors against the CPU.
//
// A vector file is a JSON array of cases, or an object mapping a group name
// to such an array. Each case gives the machine state before and after one
// step and the bus activity of every M-cycle in between:
//
//	{
//	  "name": "80 ADD A,B",
//	  "initial": {"a": 58, "b": 198, "pc": 256, "ram": [[256, 128]], ...},
//	  "final":   {"a": 0, "f": 176, "pc": 257, "ram": [[256, 128]], ...},
//	  "cycles":  [[256, 128, "read"]]
//	}
//
// A null entry in cycles is an M-cycle without bus access.
package vectors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrInvalidFile indicates a vector file that is neither an array nor an
// object of arrays.
var ErrInvalidFile = errors.New("invalid vector file")

// Event is the kind of bus access in one M-cycle.
type Event string

// Bus events. Internal marks a cycle with no access.
const (
	Read     Event = "read"
	Write    Event = "write"
	Internal Event = ""
)

// RAMEntry is an [address, value] pair.
type RAMEntry struct {
	Address uint16
	Value   uint8
}

// UnmarshalJSON decodes an [address, value] pair.
func (r *RAMEntry) UnmarshalJSON(data []byte) error {
	var raw [2]uint64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw[0] > 0xFFFF || raw[1] > 0xFF {
		return fmt.Errorf("ram entry out of range: %v", raw)
	}
	r.Address = uint16(raw[0])
	r.Value = uint8(raw[1])
	return nil
}

// BusCycle is one M-cycle of bus activity.
type BusCycle struct {
	Address uint16
	Data    uint8
	Event   Event
}

func (b BusCycle) String() string {
	if b.Event == Internal {
		return "internal"
	}
	return fmt.Sprintf("%s 0x%04X=0x%02X", b.Event, b.Address, b.Data)
}

// UnmarshalJSON decodes [address, value, "read"|"write"] or null.
func (b *BusCycle) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = BusCycle{Event: Internal}
		return nil
	}

	var raw [3]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	addr, ok1 := raw[0].(float64)
	value, ok2 := raw[1].(float64)
	ev, ok3 := raw[2].(string)
	if !ok1 || !ok2 || !ok3 {
		return fmt.Errorf("malformed bus cycle: %s", data)
	}

	b.Address = uint16(addr)
	b.Data = uint8(value)
	b.Event = Event(ev)

	switch b.Event {
	case Read, Write:
	default:
		return fmt.Errorf("unexpected bus event: %q", ev)
	}
	return nil
}

// State is the machine state on one side of a step. IE is optional; when
// absent it is neither set nor checked.
type State struct {
	A   uint8      `json:"a"`
	B   uint8      `json:"b"`
	C   uint8      `json:"c"`
	D   uint8      `json:"d"`
	E   uint8      `json:"e"`
	F   uint8      `json:"f"`
	H   uint8      `json:"h"`
	L   uint8      `json:"l"`
	PC  uint16     `json:"pc"`
	SP  uint16     `json:"sp"`
	IME uint8      `json:"ime"`
	IE  *uint8     `json:"ie,omitempty"`
	RAM []RAMEntry `json:"ram"`
}

// Case is one vector.
type Case struct {
	Name    string     `json:"name"`
	Initial State      `json:"initial"`
	Final   State      `json:"final"`
	Cycles  []BusCycle `json:"cycles"`
}

// UnmarshalJSON adds the case name to decoding errors.
func (c *Case) UnmarshalJSON(data []byte) error {
	type norecurse Case

	var tmp norecurse
	if err := json.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("case %q: %w", tmp.Name, err)
	}
	*c = Case(tmp)
	return nil
}

// Parse decodes a vector file. Cases from an object are prefixed with their
// group name and returned in key order.
func Parse(data []byte) ([]Case, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidFile)
	}

	switch data[0] {
	case '[':
		var cases []Case
		if err := json.Unmarshal(data, &cases); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
		return cases, nil

	case '{':
		var groups map[string][]Case
		if err := json.Unmarshal(data, &groups); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
		var cases []Case
		for _, name := range slices.Sorted(maps.Keys(groups)) {
			for _, c := range groups[name] {
				c.Name = name + "/" + c.Name
				cases = append(cases, c)
			}
		}
		return cases, nil
	}

	return nil, fmt.Errorf("%w: expected an array or object", ErrInvalidFile)
}
