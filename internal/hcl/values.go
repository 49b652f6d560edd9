package hcl

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/brannow/typo3-dev-springboard/internal/config"
)

// newEvalContext exposes the process environment as the `env` object.
func newEvalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)}}
}

// decodeRecord evaluates every attribute of body into a row of scalars.
// Nested blocks, objects and lists are rejected.
func decodeRecord(body hcl.Body, evalCtx *hcl.EvalContext) (config.Row, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	row := make(config.Row, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}
		goVal, err := toGo(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		switch goVal.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("attribute %q: must be a string, number, bool or null, got %s", name, val.Type().FriendlyName())
		}
		row[name] = goVal
	}
	return row, nil
}

// toGo converts a known cty value into nil, bool, int64, float64, string,
// []any or map[string]any.
func toGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			goVal, err := toGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = goVal
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			goVal, err := toGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, goVal)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
