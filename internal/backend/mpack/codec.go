package mpack

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"irforge/internal/ir"
)

// Encode verifies m and writes its snapshot to w. Nothing is written for an
// invalid module.
func Encode(w io.Writer, m *ir.Module) error {
	if m == nil {
		return fmt.Errorf("mpack: nil module")
	}
	if err := ir.Validate(m); err != nil {
		return fmt.Errorf("mpack: %w", err)
	}
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(Capture(m)); err != nil {
		return fmt.Errorf("mpack: encode %s: %w", m.Name, err)
	}
	return nil
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("mpack: decode: %w", err)
	}
	if s.Schema != SchemaVersion {
		return nil, fmt.Errorf("mpack: snapshot schema %d, want %d", s.Schema, SchemaVersion)
	}
	return &s, nil
}
