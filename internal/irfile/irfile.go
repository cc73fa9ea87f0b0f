// Package irfile stores lowered IR on disk as a msgpack container.
package irfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"stackc/internal/ir"
)

// Current schema version - increment when the container layout or the
// instruction encoding changes.
const schemaVersion uint16 = 1

const magic = "stackc-ir"

// ErrSchema reports a container written by an incompatible version.
var ErrSchema = errors.New("irfile: incompatible container")

// File is one serialized build output.
type File struct {
	Magic  string `msgpack:"magic"`
	Schema uint16 `msgpack:"schema"`
	Units  []Unit `msgpack:"units"`
}

// Unit is the lowered code of one compilation unit. Count is the total
// number of instructions including nested bodies and is checked on read.
type Unit struct {
	Name  string     `msgpack:"name"`
	Count uint32     `msgpack:"count"`
	Code  []ir.Instr `msgpack:"code"`
}

// NewUnit wraps code and records its instruction count.
func NewUnit(name string, code []ir.Instr) (Unit, error) {
	n, err := safecast.Conv[uint32](Count(code))
	if err != nil {
		return Unit{}, fmt.Errorf("irfile: unit %s: %w", name, err)
	}
	return Unit{Name: name, Count: n, Code: code}, nil
}

// Count returns the number of instructions in code, nested bodies included.
func Count(code []ir.Instr) int {
	total := 0
	for i := range code {
		ins := &code[i]
		total++
		switch {
		case ins.Def != nil:
			total += Count(ins.Def.Body)
		case ins.If != nil:
			total += Count(ins.If.Then) + Count(ins.If.Else)
		case ins.Loop != nil:
			total += Count(ins.Loop.Body)
		case ins.List != nil:
			for _, item := range ins.List.Items {
				total += Count(item)
			}
		}
	}
	return total
}

// Marshal encodes units into a container.
func Marshal(units []Unit) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(&File{Magic: magic, Schema: schemaVersion, Units: units}); err != nil {
		return nil, fmt.Errorf("irfile: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a container and verifies its header and counts.
func Unmarshal(data []byte) (*File, error) {
	var f File
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("irfile: decode: %w", err)
	}
	if f.Magic != magic || f.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: magic %q schema %d", ErrSchema, f.Magic, f.Schema)
	}
	for _, u := range f.Units {
		if got := Count(u.Code); int64(got) != int64(u.Count) {
			return nil, fmt.Errorf("irfile: unit %s: %d instructions, header says %d", u.Name, got, u.Count)
		}
	}
	return &f, nil
}

// Write stores units at path, replacing any previous file atomically.
func Write(path string, units []Unit) error {
	data, err := Marshal(units)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Read loads a container written by Write.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
