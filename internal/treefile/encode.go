package treefile

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"stackc/internal/ast"
	"stackc/internal/types"
)

// Encode serialises prog. Node kinds the document format cannot express
// are rejected.
func Encode(prog *Program, format Format) ([]byte, error) {
	if prog == nil {
		return nil, fmt.Errorf("treefile: nil program")
	}
	raw := programDisk{Schema: schemaVersion, File: prog.File, Nodes: make([]*nodeDisk, 0, len(prog.Nodes))}
	for _, n := range prog.Nodes {
		nd, err := toDisk(n)
		if err != nil {
			return nil, err
		}
		raw.Nodes = append(raw.Nodes, nd)
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&raw); err != nil {
			return nil, fmt.Errorf("treefile: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("treefile: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatMsgpack:
		data, err := msgpack.Marshal(&raw)
		if err != nil {
			return nil, fmt.Errorf("treefile: encode msgpack: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("treefile: unknown format %d", format)
	}
}

func typeString(t types.Type) string {
	if t.Kind == types.KindInvalid {
		return ""
	}
	return t.String()
}

func paramsToDisk(ps []ast.Ident) []paramDisk {
	if len(ps) == 0 {
		return nil
	}
	out := make([]paramDisk, 0, len(ps))
	for _, p := range ps {
		out = append(out, paramDisk{Name: p.Name, Type: typeString(p.Type)})
	}
	return out
}

func childToDisk(n *ast.Node) (*nodeDisk, error) {
	if n == nil {
		return nil, nil
	}
	return toDisk(n)
}

func listToDisk(ns []*ast.Node) ([]*nodeDisk, error) {
	if len(ns) == 0 {
		return nil, nil
	}
	out := make([]*nodeDisk, 0, len(ns))
	for _, n := range ns {
		nd, err := childToDisk(n)
		if err != nil {
			return nil, err
		}
		out = append(out, nd)
	}
	return out, nil
}

func toDisk(n *ast.Node) (*nodeDisk, error) {
	if n == nil {
		return nil, fmt.Errorf("treefile: nil node")
	}
	nd := &nodeDisk{Kind: n.Kind.String(), Type: typeString(n.Type), Line: n.Span.Line, Col: n.Span.Col}
	var err error
	switch data := n.Data.(type) {
	case ast.LiteralData:
		switch v := data.Value; v.Kind {
		case ast.LiteralInt:
			nd.Int = &v.IntValue
		case ast.LiteralFloat:
			nd.Float = &v.FloatValue
		case ast.LiteralString:
			nd.Str = &v.StringValue
		case ast.LiteralBool:
			nd.Bool = &v.BoolValue
		default:
			return nil, fmt.Errorf("treefile: literal kind %d", v.Kind)
		}
	case ast.IdentData:
		nd.Name = data.Name
	case ast.ImportData:
		nd.Module, nd.Name, nd.Params = data.Module, data.Name, paramsToDisk(data.Params)
	case ast.ExternData:
		nd.Type = ""
		nd.Name, nd.Result, nd.Params = data.Name.Name, typeString(data.Name.Type), paramsToDisk(data.Params)
	case ast.FuncData:
		nd.Type = ""
		nd.Name, nd.Result, nd.Params = data.Name, typeString(data.Result), paramsToDisk(data.Params)
		nd.Body, err = listToDisk(data.Body)
	case ast.BinaryData:
		nd.Op = data.Op.String()
		if nd.Left, err = childToDisk(data.Left); err == nil {
			nd.Right, err = childToDisk(data.Right)
		}
	case ast.VarDeclData:
		nd.Name, nd.Type = data.Name.Name, typeString(data.Name.Type)
		nd.Value, err = childToDisk(data.Value)
	case ast.VarAssignData:
		nd.Type = ""
		if nd.Target, err = childToDisk(data.Target); err == nil {
			nd.Value, err = childToDisk(data.Value)
		}
	case ast.ListData:
		nd.Items, err = listToDisk(data.Items)
	case ast.MemberData:
		nd.Name = data.Name
		nd.Parent, err = childToDisk(data.Parent)
	case ast.IndexData:
		if nd.Parent, err = childToDisk(data.Parent); err == nil {
			nd.Index, err = childToDisk(data.Index)
		}
	case ast.CallData:
		if nd.Callee, err = childToDisk(data.Callee); err == nil {
			nd.Args, err = listToDisk(data.Args)
		}
	case ast.ReturnData:
		nd.Type = ""
		nd.Value, err = childToDisk(data.Value)
	case ast.AsData:
		nd.Value, err = childToDisk(data.Value)
	case ast.DiscardData:
		nd.Type = ""
		nd.Value, err = childToDisk(data.Value)
	case ast.IfData:
		nd.HasElse = data.HasElse
		if nd.Cond, err = childToDisk(data.Cond); err == nil {
			if nd.Then, err = listToDisk(data.Then); err == nil {
				nd.Else, err = listToDisk(data.Else)
			}
		}
	case ast.BlockData:
		nd.Type = ""
		nd.Body, err = listToDisk(data.Body)
	case ast.WhileData:
		nd.Type = ""
		if nd.Cond, err = childToDisk(data.Cond); err == nil {
			nd.Body, err = listToDisk(data.Body)
		}
	case ast.PosInfoData:
		nd.Type = ""
		nd.File, nd.Line, nd.Col = data.File, data.Line, data.Col
	default:
		return nil, fmt.Errorf("treefile: cannot encode %s node with payload %T", n.Kind, n.Data)
	}
	if err != nil {
		return nil, err
	}
	return nd, nil
}
