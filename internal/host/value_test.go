package host

import (
	"math"
	"math/big"
	"reflect"
	"testing"
)

func TestDecodeValue(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	tests := []struct {
		name string
		in   string
		kind Kind
		want interface{}
	}{
		{"none", `{"type":"None","repr":"None"}`, NoneKind, nil},
		{"bool", `{"type":"bool","value":true,"repr":"True"}`, BoolKind, true},
		{"int", `{"type":"int","value":"42","repr":"42"}`, IntKind, int64(42)},
		{"bigint", `{"type":"int","value":"123456789012345678901234567890","repr":"123456789012345678901234567890"}`, IntKind, huge},
		{"float", `{"type":"float","value":"1.0","repr":"1.0"}`, FloatKind, 1.0},
		{"str", `{"type":"str","value":"hi","repr":"'hi'"}`, StrKind, "hi"},
		{"list", `{"type":"list","items":[{"type":"int","value":"1","repr":"1"},{"type":"str","value":"a","repr":"'a'"}],"repr":"[1, 'a']"}`,
			ListKind, []interface{}{int64(1), "a"}},
		{"dict", `{"type":"dict","items":[{"type":"tuple","items":[{"type":"str","value":"k","repr":"'k'"},{"type":"int","value":"2","repr":"2"}],"repr":"('k', 2)"}],"repr":"{'k': 2}"}`,
			DictKind, map[interface{}]interface{}{"k": int64(2)}},
		{"object", `{"type":"object","class":"C","repr":"<C object>"}`, ObjectKind, "<C object>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := decodeValue([]byte(tt.in))
			if err != nil {
				t.Fatalf("decodeValue: %v", err)
			}
			if v.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", v.Kind, tt.kind)
			}
			if got := v.Interface(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Interface() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeFloatSpecials(t *testing.T) {
	v, err := decodeValue([]byte(`{"type":"float","value":"inf","repr":"inf"}`))
	if err != nil {
		t.Fatalf("decodeValue: %v", err)
	}
	if !math.IsInf(v.Float, 1) {
		t.Errorf("Float = %v, want +Inf", v.Float)
	}
	v, err = decodeValue([]byte(`{"type":"float","value":"nan","repr":"nan"}`))
	if err != nil {
		t.Fatalf("decodeValue: %v", err)
	}
	if !math.IsNaN(v.Float) {
		t.Errorf("Float = %v, want NaN", v.Float)
	}
}

func TestDecodeValueErrors(t *testing.T) {
	tests := []string{
		`not json`,
		`{"type":"complex","repr":"1j"}`,
		`{"type":"int","value":"x1","repr":"x1"}`,
		`{"type":"dict","items":[{"type":"int","value":"1","repr":"1"}],"repr":"?"}`,
	}
	for _, in := range tests {
		if _, err := decodeValue([]byte(in)); err == nil {
			t.Errorf("decodeValue(%s) succeeded, want error", in)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := FloatKind.String(); got != "float" {
		t.Errorf("FloatKind.String() = %q", got)
	}
	if got := Kind(99).String(); got != "Kind(99)" {
		t.Errorf("Kind(99).String() = %q", got)
	}
}
