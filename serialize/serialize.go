// Package serialize implements the versioned, length-prefixed binary
// snapshot frame engine state is saved to and loaded from: a fixed header
// (magic, format version, registry fingerprint) followed by a sequence of
// named, length-prefixed sections carrying each subsystem's own encoding,
// in the same documented order the state hash walks (sim state, nodes,
// edges). Deserialization is total: ParseFrame and every Reader accessor
// return a typed *Error instead of panicking on truncated or corrupt
// input, so arbitrary bytes can always be handed to it safely.
package serialize

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Magic identifies a byte stream as a factorial-sim snapshot frame.
const Magic uint32 = 0x46435331 // "FCS1"

// CurrentVersion is the format version this build writes and reads
// without migration.
const CurrentVersion uint32 = 1

// ErrorKind names one of the closed set of ways loading a snapshot can
// fail (spec.md §7's typed serialization/migration error list).
type ErrorKind int

const (
	MagicMismatch ErrorKind = iota
	VersionUnsupported
	Corruption
	NoMigrationPath
	FingerprintMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case MagicMismatch:
		return "MagicMismatch"
	case VersionUnsupported:
		return "VersionUnsupported"
	case Corruption:
		return "Corruption"
	case NoMigrationPath:
		return "NoMigrationPath"
	case FingerprintMismatch:
		return "FingerprintMismatch"
	default:
		return "Unknown"
	}
}

// Error is the typed error returned by every failure mode in this package
// and by engine.Deserialize.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("serialize: %s: %s", e.Kind, e.Msg) }

func errf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// SectionTag names one subsystem section within a frame, in the fixed
// order every writer emits and every reader expects them.
type SectionTag uint32

const (
	SectionSim SectionTag = iota
	SectionNodes
	SectionEdges
)

// Header is the fixed preamble of every snapshot frame.
type Header struct {
	Version     uint32
	Fingerprint uint64
}

type rawSection struct {
	tag     SectionTag
	payload []byte
}

// Writer accumulates primitive values into a byte buffer, little-endian,
// used both to build one section's payload and to assemble the final
// frame.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Uint8(v uint8)   { w.buf.WriteByte(v) }
func (w *Writer) Uint32(v uint32) { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *Writer) Uint64(v uint64) { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *Writer) Int64(v int64)   { _ = binary.Write(&w.buf, binary.LittleEndian, v) }

func (w *Writer) Bool(v bool) {
	if v {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
}

// Bytes writes a length-prefixed raw byte string.
func (w *Writer) Bytes(raw []byte) {
	w.Uint32(uint32(len(raw)))
	w.buf.Write(raw)
}

// Bake returns the accumulated bytes.
func (w *Writer) Bake() []byte { return w.buf.Bytes() }

// Reader consumes primitive values from a byte slice, little-endian,
// bounds-checked: every accessor returns a *Error wrapping Corruption
// instead of panicking on truncated input.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader { return &Reader{data: data} }

func (r *Reader) need(n int) error {
	if r.pos+n > len(r.data) {
		return errf(Corruption, "need %d bytes at offset %d, have %d", n, r.pos, len(r.data)-r.pos)
	}
	return nil
}

func (r *Reader) Uint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) Uint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

func (r *Reader) Bool() (bool, error) {
	v, err := r.Uint8()
	return v != 0, err
}

// Bytes reads a length-prefixed raw byte string.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := append([]byte(nil), r.data[r.pos:r.pos+int(n)]...)
	r.pos += int(n)
	return out, nil
}

// Frame is a parsed snapshot: the header plus every section's raw
// (still-encoded) payload, keyed by tag.
type Frame struct {
	Header   Header
	Sections map[SectionTag][]byte
}

// Encoder assembles a frame from sections added in any order; Finish
// writes them out in the order they were added.
type Encoder struct {
	sections []rawSection
}

func NewEncoder() *Encoder { return &Encoder{} }

// Section appends one subsystem's already-encoded payload under tag.
func (e *Encoder) Section(tag SectionTag, payload []byte) {
	e.sections = append(e.sections, rawSection{tag: tag, payload: payload})
}

// Finish assembles the header (current format version, given fingerprint)
// and every added section into the final frame bytes.
func (e *Encoder) Finish(fingerprint uint64) []byte {
	w := NewWriter()
	w.Uint32(Magic)
	w.Uint32(CurrentVersion)
	w.Uint64(fingerprint)
	w.Uint32(uint32(len(e.sections)))
	for _, s := range e.sections {
		w.Uint32(uint32(s.tag))
		w.Bytes(s.payload)
	}
	return w.Bake()
}

// PeekHeader reads just the header (magic, version, fingerprint) without
// requiring the version to match CurrentVersion and without parsing any
// section. Callers use this to learn a frame's version before deciding
// whether it needs migration, prior to calling ParseFrame.
func PeekHeader(data []byte) (Header, error) {
	r := NewReader(data)

	magic, err := r.Uint32()
	if err != nil {
		return Header{}, errf(Corruption, "truncated magic: %v", err)
	}
	if magic != Magic {
		return Header{}, errf(MagicMismatch, "got %#x, want %#x", magic, Magic)
	}

	version, err := r.Uint32()
	if err != nil {
		return Header{}, errf(Corruption, "truncated version: %v", err)
	}

	fingerprint, err := r.Uint64()
	if err != nil {
		return Header{}, errf(Corruption, "truncated fingerprint: %v", err)
	}

	return Header{Version: version, Fingerprint: fingerprint}, nil
}

// ParseFrame parses a snapshot frame's header and section table. Total:
// truncated or corrupt input always returns a *Error, never a panic. The
// frame's version must already equal CurrentVersion — a caller holding an
// older frame migrates it first (see the migration package) and parses
// the migrated bytes; a frame newer than CurrentVersion is rejected as
// VersionUnsupported, since there is no migration path backward.
func ParseFrame(data []byte) (Frame, error) {
	r := NewReader(data)

	magic, err := r.Uint32()
	if err != nil {
		return Frame{}, errf(Corruption, "truncated magic: %v", err)
	}
	if magic != Magic {
		return Frame{}, errf(MagicMismatch, "got %#x, want %#x", magic, Magic)
	}

	version, err := r.Uint32()
	if err != nil {
		return Frame{}, errf(Corruption, "truncated version: %v", err)
	}
	if version != CurrentVersion {
		return Frame{}, errf(VersionUnsupported, "frame version %d, want %d (migrate first)", version, CurrentVersion)
	}

	fingerprint, err := r.Uint64()
	if err != nil {
		return Frame{}, errf(Corruption, "truncated fingerprint: %v", err)
	}

	count, err := r.Uint32()
	if err != nil {
		return Frame{}, errf(Corruption, "truncated section count: %v", err)
	}

	sections := make(map[SectionTag][]byte, count)
	for i := uint32(0); i < count; i++ {
		tag, err := r.Uint32()
		if err != nil {
			return Frame{}, errf(Corruption, "truncated section %d tag: %v", i, err)
		}
		payload, err := r.Bytes()
		if err != nil {
			return Frame{}, errf(Corruption, "truncated section %d payload: %v", i, err)
		}
		sections[SectionTag(tag)] = payload
	}

	return Frame{Header: Header{Version: version, Fingerprint: fingerprint}, Sections: sections}, nil
}
