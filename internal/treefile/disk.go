// Package treefile reads and writes typed syntax trees as YAML or msgpack
// documents. The checker that produces the trees runs out of process; these
// documents are its hand-off format.
package treefile

// schemaVersion is bumped whenever the document layout changes.
const schemaVersion uint16 = 1

// programDisk is the on-disk form of one compilation unit.
type programDisk struct {
	Schema uint16      `yaml:"schema" msgpack:"schema"`
	File   string      `yaml:"file,omitempty" msgpack:"file,omitempty"`
	Nodes  []*nodeDisk `yaml:"nodes" msgpack:"nodes"`
}

type paramDisk struct {
	Name string `yaml:"name" msgpack:"name"`
	Type string `yaml:"type" msgpack:"type"`
}

// nodeDisk is a flat union of every node shape; Kind selects which fields
// are meaningful.
type nodeDisk struct {
	Kind string `yaml:"kind" msgpack:"kind"`
	Type string `yaml:"type,omitempty" msgpack:"type,omitempty"`
	Line uint32 `yaml:"line,omitempty" msgpack:"line,omitempty"`
	Col  uint32 `yaml:"col,omitempty" msgpack:"col,omitempty"`

	// Literal, exactly one set.
	Int   *int64   `yaml:"int,omitempty" msgpack:"int,omitempty"`
	Float *float64 `yaml:"float,omitempty" msgpack:"float,omitempty"`
	Str   *string  `yaml:"str,omitempty" msgpack:"str,omitempty"`
	Bool  *bool    `yaml:"bool,omitempty" msgpack:"bool,omitempty"`

	Name   string      `yaml:"name,omitempty" msgpack:"name,omitempty"`
	Module string      `yaml:"module,omitempty" msgpack:"module,omitempty"`
	Op     string      `yaml:"op,omitempty" msgpack:"op,omitempty"`
	File   string      `yaml:"file,omitempty" msgpack:"file,omitempty"`
	Params []paramDisk `yaml:"params,omitempty" msgpack:"params,omitempty"`
	Result string      `yaml:"result,omitempty" msgpack:"result,omitempty"`

	Left   *nodeDisk `yaml:"left,omitempty" msgpack:"left,omitempty"`
	Right  *nodeDisk `yaml:"right,omitempty" msgpack:"right,omitempty"`
	Value  *nodeDisk `yaml:"value,omitempty" msgpack:"value,omitempty"`
	Target *nodeDisk `yaml:"target,omitempty" msgpack:"target,omitempty"`
	Parent *nodeDisk `yaml:"parent,omitempty" msgpack:"parent,omitempty"`
	Index  *nodeDisk `yaml:"index,omitempty" msgpack:"index,omitempty"`
	Callee *nodeDisk `yaml:"callee,omitempty" msgpack:"callee,omitempty"`
	Cond   *nodeDisk `yaml:"cond,omitempty" msgpack:"cond,omitempty"`

	Items   []*nodeDisk `yaml:"items,omitempty" msgpack:"items,omitempty"`
	Args    []*nodeDisk `yaml:"args,omitempty" msgpack:"args,omitempty"`
	Body    []*nodeDisk `yaml:"body,omitempty" msgpack:"body,omitempty"`
	Then    []*nodeDisk `yaml:"then,omitempty" msgpack:"then,omitempty"`
	Else    []*nodeDisk `yaml:"else,omitempty" msgpack:"else,omitempty"`
	HasElse bool        `yaml:"has_else,omitempty" msgpack:"has_else,omitempty"`
}
