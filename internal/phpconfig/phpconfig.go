// Package phpconfig renders nested settings as a PHP file returning an
// array, the format the downstream application loads its system settings
// from.
package phpconfig

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

const indent = "    "

// Render returns `<?php` followed by `return <value>;`. Map keys are sorted
// so the output is stable across builds.
func Render(settings map[string]any) (string, error) {
	var b strings.Builder
	b.WriteString("<?php\nreturn ")
	if err := writeValue(&b, settings, 0); err != nil {
		return "", err
	}
	b.WriteString(";")
	return b.String(), nil
}

// Merge deep-merges src over dst and returns dst. Nested maps are merged
// key by key; any other value in src replaces the one in dst.
func Merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = Merge(dstMap, srcMap)
			continue
		}
		if srcIsMap {
			dst[k] = Merge(nil, srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}

// UnsupportedValueError is returned for values that have no PHP literal.
type UnsupportedValueError struct {
	Type string
}

// Error implements the error interface.
func (e UnsupportedValueError) Error() string {
	return "phpconfig: unsupported value of type " + e.Type
}

func writeValue(b *strings.Builder, v any, depth int) error {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		b.WriteString(quote(val))
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case int:
		b.WriteString(strconv.Itoa(val))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'f', -1, 64))
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return writeArray(b, len(keys), depth, func(i int) (string, any) {
			return quote(keys[i]), val[keys[i]]
		})
	case []any:
		return writeArray(b, len(val), depth, func(i int) (string, any) {
			return strconv.Itoa(i), val[i]
		})
	case []string:
		return writeArray(b, len(val), depth, func(i int) (string, any) {
			return strconv.Itoa(i), val[i]
		})
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			b.WriteString(strconv.FormatInt(rv.Int(), 10))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			b.WriteString(strconv.FormatUint(rv.Uint(), 10))
		default:
			return UnsupportedValueError{Type: fmt.Sprintf("%T", v)}
		}
	}
	return nil
}

func writeArray(b *strings.Builder, n, depth int, item func(i int) (string, any)) error {
	if n == 0 {
		b.WriteString("[]")
		return nil
	}
	pad := strings.Repeat(indent, depth+1)
	b.WriteString("[\n")
	for i := 0; i < n; i++ {
		key, v := item(i)
		b.WriteString(pad + key + " => ")
		if err := writeValue(b, v, depth+1); err != nil {
			return err
		}
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat(indent, depth) + "]")
	return nil
}

// quote renders s as a single-quoted PHP string.
func quote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
