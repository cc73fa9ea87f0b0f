package vm

import (
	"fmt"
	"io"
	"math"
	"strings"

	"stackc/internal/types"
)

// DefaultNatives returns the host functions available to every program:
// print and println write to w, math.abs and math.sqrt are importable.
func DefaultNatives(w io.Writer) map[string]Native {
	write := func(sep string) Native {
		return func(args []Value) (Value, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				parts = append(parts, a.String())
			}
			if _, err := io.WriteString(w, strings.Join(parts, " ")+sep); err != nil {
				return Value{}, err
			}
			return Void(), nil
		}
	}
	return map[string]Native{
		"print":   write(""),
		"println": write("\n"),
		"math.abs": func(args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, fmt.Errorf("want 1 argument, got %d", len(args))
			}
			switch a := args[0]; a.Tag {
			case types.ConstInt:
				if a.Int < 0 {
					return MakeInt(-a.Int), nil
				}
				return a, nil
			case types.ConstFloat:
				return MakeFloat(math.Abs(a.Float)), nil
			default:
				return Value{}, fmt.Errorf("abs of %s", a.Tag)
			}
		},
		"math.sqrt": func(args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, fmt.Errorf("want 1 argument, got %d", len(args))
			}
			f, ok := asFloat(args[0])
			if !ok {
				return Value{}, fmt.Errorf("sqrt of %s", args[0].Tag)
			}
			return MakeFloat(math.Sqrt(f)), nil
		},
	}
}
