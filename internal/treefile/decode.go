package treefile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"stackc/internal/ast"
	"stackc/internal/source"
	"stackc/internal/types"
)

// Format selects the document encoding.
type Format uint8

const (
	FormatYAML Format = iota + 1
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".mp", ".msgpack":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("treefile: %s: unknown extension (want .yaml, .yml, .mp or .msgpack)", path)
	}
}

// ErrSchema reports a document written with an unsupported layout.
var ErrSchema = errors.New("treefile: unsupported schema")

// Program is one decoded compilation unit.
type Program struct {
	File  string
	Nodes []*ast.Node
}

// Load reads and decodes the document at path. Spans of decoded nodes carry
// fileID.
func Load(path string, fileID source.FileID) (*Program, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("treefile: read %s: %w", path, err)
	}
	prog, err := Decode(data, format, fileID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if prog.File == "" {
		prog.File = path
	}
	return prog, nil
}

// Decode parses a document held in memory.
func Decode(data []byte, format Format, fileID source.FileID) (*Program, error) {
	var raw programDisk
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("treefile: parse yaml: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("treefile: parse msgpack: %w", err)
		}
	default:
		return nil, fmt.Errorf("treefile: unknown format %d", format)
	}
	if raw.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrSchema, raw.Schema, schemaVersion)
	}

	d := decoder{file: fileID}
	prog := &Program{File: raw.File, Nodes: make([]*ast.Node, 0, len(raw.Nodes))}
	for i, nd := range raw.Nodes {
		n, err := d.node(nd, "nodes["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		prog.Nodes = append(prog.Nodes, n)
	}
	return prog, nil
}

type decoder struct {
	file source.FileID
}

func (d *decoder) errorf(path, format string, args ...any) error {
	return fmt.Errorf("treefile: %s: %s", path, fmt.Sprintf(format, args...))
}

// typ parses a type string; def is used when s is empty and def is valid.
func (d *decoder) typ(s, path string, def types.Type) (types.Type, error) {
	if s == "" {
		if def.Kind != types.KindInvalid {
			return def, nil
		}
		return types.Type{}, d.errorf(path, "missing type")
	}
	t, err := types.Parse(s)
	if err != nil {
		return types.Type{}, fmt.Errorf("treefile: %s: %w", path, err)
	}
	return t, nil
}

func (d *decoder) params(in []paramDisk, path string) ([]ast.Ident, error) {
	out := make([]ast.Ident, 0, len(in))
	for i, p := range in {
		t, err := d.typ(p.Type, path+".params["+strconv.Itoa(i)+"]", types.Type{})
		if err != nil {
			return nil, err
		}
		out = append(out, ast.Ident{Name: p.Name, Type: t})
	}
	return out, nil
}

// child decodes an optional child; a missing child stays nil and is left
// for the lowering engine to reject.
func (d *decoder) child(nd *nodeDisk, path string) (*ast.Node, error) {
	if nd == nil {
		return nil, nil
	}
	return d.node(nd, path)
}

func (d *decoder) list(in []*nodeDisk, path string) ([]*ast.Node, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]*ast.Node, 0, len(in))
	for i, nd := range in {
		n, err := d.child(nd, path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (d *decoder) node(nd *nodeDisk, path string) (*ast.Node, error) {
	if nd == nil {
		return nil, d.errorf(path, "null node")
	}
	kind, ok := ast.KindByName(nd.Kind)
	if !ok {
		return nil, d.errorf(path, "unknown node kind %q", nd.Kind)
	}
	path += "." + nd.Kind
	n := &ast.Node{
		Kind: kind,
		Type: types.Void,
		Span: source.Span{File: d.file, Line: nd.Line, Col: nd.Col},
	}
	var err error
	switch kind {
	case ast.NodeLiteral:
		err = d.literal(n, nd, path)

	case ast.NodeIdent:
		if n.Type, err = d.typ(nd.Type, path, types.Type{}); err == nil {
			n.Data = ast.IdentData{Name: nd.Name}
		}

	case ast.NodeImport:
		var ps []ast.Ident
		if n.Type, err = d.typ(nd.Type, path, types.Type{}); err == nil {
			if ps, err = d.params(nd.Params, path); err == nil {
				n.Data = ast.ImportData{Module: nd.Module, Name: nd.Name, Params: ps}
			}
		}

	case ast.NodeExtern:
		var ps []ast.Ident
		var ret types.Type
		if ret, err = d.typ(nd.Result, path+".result", types.Void); err == nil {
			if ps, err = d.params(nd.Params, path); err == nil {
				n.Type = ret
				n.Data = ast.ExternData{Name: ast.Ident{Name: nd.Name, Type: ret}, Params: ps}
			}
		}

	case ast.NodeFunc:
		err = d.function(n, nd, path)

	case ast.NodeBinary:
		err = d.binary(n, nd, path)

	case ast.NodeVarDecl:
		var value *ast.Node
		if value, err = d.child(nd.Value, path+".value"); err == nil {
			def := types.Type{}
			if value != nil {
				def = value.Type
			}
			var declared types.Type
			if declared, err = d.typ(nd.Type, path, def); err == nil {
				n.Data = ast.VarDeclData{Name: ast.Ident{Name: nd.Name, Type: declared}, Value: value}
			}
		}

	case ast.NodeVarAssign:
		var target, value *ast.Node
		if target, err = d.child(nd.Target, path+".target"); err == nil {
			if value, err = d.child(nd.Value, path+".value"); err == nil {
				n.Data = ast.VarAssignData{Target: target, Value: value}
			}
		}

	case ast.NodeList:
		var items []*ast.Node
		if n.Type, err = d.typ(nd.Type, path, types.Type{}); err == nil {
			if items, err = d.list(nd.Items, path+".items"); err == nil {
				n.Data = ast.ListData{Items: items}
			}
		}

	case ast.NodeMember:
		var parent *ast.Node
		if n.Type, err = d.typ(nd.Type, path, types.Type{}); err == nil {
			if parent, err = d.child(nd.Parent, path+".parent"); err == nil {
				n.Data = ast.MemberData{Parent: parent, Name: nd.Name}
			}
		}

	case ast.NodeIndex:
		var parent, index *ast.Node
		if n.Type, err = d.typ(nd.Type, path, types.Type{}); err == nil {
			if parent, err = d.child(nd.Parent, path+".parent"); err == nil {
				if index, err = d.child(nd.Index, path+".index"); err == nil {
					n.Data = ast.IndexData{Parent: parent, Index: index}
				}
			}
		}

	case ast.NodeCall:
		var callee *ast.Node
		var args []*ast.Node
		if n.Type, err = d.typ(nd.Type, path, types.Void); err == nil {
			if callee, err = d.child(nd.Callee, path+".callee"); err == nil {
				if args, err = d.list(nd.Args, path+".args"); err == nil {
					n.Data = ast.CallData{Callee: callee, Args: args}
				}
			}
		}

	case ast.NodeReturn:
		var value *ast.Node
		if value, err = d.child(nd.Value, path+".value"); err == nil {
			if value != nil {
				n.Type = value.Type
			}
			n.Data = ast.ReturnData{Value: value}
		}

	case ast.NodeAs:
		var value *ast.Node
		if n.Type, err = d.typ(nd.Type, path, types.Type{}); err == nil {
			if value, err = d.child(nd.Value, path+".value"); err == nil {
				n.Data = ast.AsData{Value: value}
			}
		}

	case ast.NodeDiscard:
		var value *ast.Node
		if value, err = d.child(nd.Value, path+".value"); err == nil {
			n.Data = ast.DiscardData{Value: value}
		}

	case ast.NodeIf:
		err = d.conditional(n, nd, path)

	case ast.NodeBlock:
		var body []*ast.Node
		if body, err = d.list(nd.Body, path+".body"); err == nil {
			n.Data = ast.BlockData{Body: body}
		}

	case ast.NodeWhile:
		var cond *ast.Node
		var body []*ast.Node
		if cond, err = d.child(nd.Cond, path+".cond"); err == nil {
			if body, err = d.list(nd.Body, path+".body"); err == nil {
				n.Data = ast.WhileData{Cond: cond, Body: body}
			}
		}

	case ast.NodePosInfo:
		n.Data = ast.PosInfoData{File: nd.File, Line: nd.Line, Col: nd.Col}
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (d *decoder) literal(n *ast.Node, nd *nodeDisk, path string) error {
	var lit ast.Literal
	var def types.Type
	set := 0
	if nd.Int != nil {
		lit, def = ast.Literal{Kind: ast.LiteralInt, IntValue: *nd.Int}, types.Int
		set++
	}
	if nd.Float != nil {
		lit, def = ast.Literal{Kind: ast.LiteralFloat, FloatValue: *nd.Float}, types.Float
		set++
	}
	if nd.Str != nil {
		lit, def = ast.Literal{Kind: ast.LiteralString, StringValue: *nd.Str}, types.String
		set++
	}
	if nd.Bool != nil {
		lit, def = ast.Literal{Kind: ast.LiteralBool, BoolValue: *nd.Bool}, types.Bool
		set++
	}
	if set != 1 {
		return d.errorf(path, "literal needs exactly one of int, float, str, bool (have %d)", set)
	}
	t, err := d.typ(nd.Type, path, def)
	if err != nil {
		return err
	}
	n.Type = t
	n.Data = ast.LiteralData{Value: lit}
	return nil
}

func (d *decoder) function(n *ast.Node, nd *nodeDisk, path string) error {
	ps, err := d.params(nd.Params, path)
	if err != nil {
		return err
	}
	result, err := d.typ(nd.Result, path+".result", types.Void)
	if err != nil {
		return err
	}
	body, err := d.list(nd.Body, path+".body")
	if err != nil {
		return err
	}
	pts := make([]types.Type, 0, len(ps))
	for _, p := range ps {
		pts = append(pts, p.Type)
	}
	n.Type = types.MakeFunc(pts, result)
	n.Data = ast.FuncData{Name: nd.Name, Params: ps, Result: result, Body: body}
	return nil
}

func (d *decoder) binary(n *ast.Node, nd *nodeDisk, path string) error {
	op, ok := ast.ParseBinaryOp(nd.Op)
	if !ok {
		return d.errorf(path, "unknown operator %q", nd.Op)
	}
	t, err := d.typ(nd.Type, path, types.Type{})
	if err != nil {
		return err
	}
	left, err := d.child(nd.Left, path+".left")
	if err != nil {
		return err
	}
	right, err := d.child(nd.Right, path+".right")
	if err != nil {
		return err
	}
	n.Type = t
	n.Data = ast.BinaryData{Op: op, Left: left, Right: right}
	return nil
}

func (d *decoder) conditional(n *ast.Node, nd *nodeDisk, path string) error {
	cond, err := d.child(nd.Cond, path+".cond")
	if err != nil {
		return err
	}
	then, err := d.list(nd.Then, path+".then")
	if err != nil {
		return err
	}
	els, err := d.list(nd.Else, path+".else")
	if err != nil {
		return err
	}
	t, err := d.typ(nd.Type, path, types.Void)
	if err != nil {
		return err
	}
	n.Type = t
	n.Data = ast.IfData{Cond: cond, Then: then, Else: els, HasElse: nd.HasElse || len(els) > 0}
	return nil
}
