package syntax

import (
	"encoding/json"
	"io"
	"reflect"
	"strings"
)

// FprintJSON writes a JSON representation of the AST to w.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(node))
}

// toJSON converts a node into nested maps. Every node becomes an object
// with "type" and "pos" keys plus one key per non-zero exported field,
// named like the field with a lower-case first letter.
func toJSON(node Node) interface{} {
	if isNilNode(node) {
		return nil
	}

	v := reflect.ValueOf(node).Elem()
	t := v.Type()
	m := map[string]interface{}{
		"type": t.Name(),
		"pos":  node.Pos().String(),
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if val := jsonValue(v.Field(i)); val != nil {
			m[jsonKey(f.Name)] = val
		}
	}
	return m
}

// jsonValue converts a field value, returning nil for zero values.
func jsonValue(v reflect.Value) interface{} {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		if n, ok := v.Interface().(Node); ok {
			return toJSON(n)
		}
	case reflect.Slice:
		if v.Len() == 0 {
			return nil
		}
		list := make([]interface{}, v.Len())
		for i := range list {
			if n, ok := v.Index(i).Interface().(Node); ok {
				list[i] = toJSON(n)
			} else {
				list[i] = v.Index(i).Interface()
			}
		}
		return list
	case reflect.Bool:
		if v.Bool() {
			return true
		}
		return nil
	case reflect.Int:
		if v.Int() != 0 {
			return v.Int()
		}
		return nil
	case reflect.String:
		if v.String() != "" {
			return v.String()
		}
		return nil
	}
	if v.IsZero() {
		return nil
	}
	// Token, LitKind, TypeKind, Modifiers and Pos have String methods
	if s, ok := v.Interface().(interface{ String() string }); ok {
		return s.String()
	}
	return v.Interface()
}

func jsonKey(field string) string {
	return strings.ToLower(field[:1]) + field[1:]
}
