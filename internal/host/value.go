package host

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
)

// Kind is the Python type of a Value.
type Kind int

const (
	NoneKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StrKind
	ListKind
	TupleKind
	DictKind
	ObjectKind
)

var kindNames = [...]string{
	NoneKind:   "None",
	BoolKind:   "bool",
	IntKind:    "int",
	FloatKind:  "float",
	StrKind:    "str",
	ListKind:   "list",
	TupleKind:  "tuple",
	DictKind:   "dict",
	ObjectKind: "object",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a Python value returned from the interpreter. Ints are
// arbitrary precision and never conflated with floats.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   *big.Int
	Float float64
	Str   string
	Items []*Value // list and tuple elements; (key, value) tuples for dicts
	Class string   // type name for ObjectKind
	Repr  string   // Python repr()
}

// String returns the Python repr of v.
func (v *Value) String() string { return v.Repr }

// Interface converts v to a Go value: nil, bool, int64 (or *big.Int when
// out of range), float64, string, []interface{} for lists and tuples,
// map[interface{}]interface{} for dicts, and the repr string for objects.
func (v *Value) Interface() interface{} {
	switch v.Kind {
	case NoneKind:
		return nil
	case BoolKind:
		return v.Bool
	case IntKind:
		if v.Int.IsInt64() {
			return v.Int.Int64()
		}
		return v.Int
	case FloatKind:
		return v.Float
	case StrKind:
		return v.Str
	case ListKind, TupleKind:
		out := make([]interface{}, len(v.Items))
		for i, x := range v.Items {
			out[i] = x.Interface()
		}
		return out
	case DictKind:
		out := make(map[interface{}]interface{}, len(v.Items))
		for _, kv := range v.Items {
			k := kv.Items[0].Interface()
			switch k.(type) {
			case nil, bool, int64, float64, string:
			default:
				k = kv.Items[0].Repr
			}
			out[k] = kv.Items[1].Interface()
		}
		return out
	}
	return v.Repr
}

type wireValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
	Items []*wireValue    `json:"items"`
	Class string          `json:"class"`
	Repr  string          `json:"repr"`
}

func decodeValue(data []byte) (*Value, error) {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return w.value()
}

func (w *wireValue) value() (*Value, error) {
	v := &Value{Repr: w.Repr, Class: w.Class}
	var err error
	switch w.Type {
	case "None":
		v.Kind = NoneKind
	case "bool":
		v.Kind = BoolKind
		err = json.Unmarshal(w.Value, &v.Bool)
	case "int":
		v.Kind = IntKind
		var s string
		if err = json.Unmarshal(w.Value, &s); err == nil {
			var ok bool
			if v.Int, ok = new(big.Int).SetString(s, 10); !ok {
				err = fmt.Errorf("bad int %q", s)
			}
		}
	case "float":
		v.Kind = FloatKind
		var s string
		if err = json.Unmarshal(w.Value, &s); err == nil {
			v.Float, err = strconv.ParseFloat(s, 64)
		}
	case "str":
		v.Kind = StrKind
		err = json.Unmarshal(w.Value, &v.Str)
	case "list", "tuple", "dict":
		v.Kind = map[string]Kind{"list": ListKind, "tuple": TupleKind, "dict": DictKind}[w.Type]
		for _, x := range w.Items {
			item, err := x.value()
			if err != nil {
				return nil, err
			}
			if v.Kind == DictKind && (item.Kind != TupleKind || len(item.Items) != 2) {
				return nil, fmt.Errorf("dict entry is not a pair: %s", item.Repr)
			}
			v.Items = append(v.Items, item)
		}
	case "object":
		v.Kind = ObjectKind
	default:
		return nil, fmt.Errorf("unknown value type %q", w.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%s value: %w", w.Type, err)
	}
	return v, nil
}
