package ply

import (
	"encoding/json"
	"errors"
	"math"
	"slices"
	"testing"
)

func TestPropertyJSONRoundTrip(t *testing.T) {
	for name, p := range samples() {
		t.Run(name, func(t *testing.T) {
			data, err := MarshalProperty(p)
			if err != nil {
				t.Fatalf("MarshalProperty: %v", err)
			}
			got, err := UnmarshalProperty(data)
			if err != nil {
				t.Fatalf("UnmarshalProperty(%s): %v", data, err)
			}
			if !Equal(got, p) {
				t.Errorf("round trip of %s = %#v, want %#v", data, got, p)
			}
		})
	}
}

func TestPropertyJSONForm(t *testing.T) {
	tests := []struct {
		p    Property
		want string
	}{
		{FloatValue(3.5), `{"type":"float","value":3.5}`},
		{FloatValue(0.1), `{"type":"float","value":0.1}`},
		{ListUInt{1, 2, 3}, `{"type":"list uint","value":[1,2,3]}`},
		{ListUChar{7, 8}, `{"type":"list uchar","value":[7,8]}`},
		{ListDouble{}, `{"type":"list double","value":[]}`},
		{CharValue(-3), `{"type":"char","value":-3}`},
	}
	for _, tt := range tests {
		data, err := MarshalProperty(tt.p)
		if err != nil {
			t.Fatalf("MarshalProperty(%#v): %v", tt.p, err)
		}
		if string(data) != tt.want {
			t.Errorf("MarshalProperty(%#v) = %s, want %s", tt.p, data, tt.want)
		}
	}
}

func TestUnmarshalPropertyErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"char overflow", `{"type":"char","value":128}`, ErrValueOutOfRange},
		{"uchar overflow", `{"type":"uchar","value":256}`, ErrValueOutOfRange},
		{"negative uint", `{"type":"uint","value":-1}`, ErrValueOutOfRange},
		{"list short overflow", `{"type":"list short","value":[1,40000]}`, ErrValueOutOfRange},
		{"float overflow", `{"type":"float","value":1e39}`, ErrValueOutOfRange},
		{"unknown type", `{"type":"long","value":1}`, ErrUnknownScalarType},
		{"bad type form", `{"type":"list of int","value":[]}`, ErrInvalidPropertyType},
		{"list without value", `{"type":"list int"}`, ErrInvalidValue},
		{"scalar without value", `{"type":"int"}`, ErrInvalidValue},
		{"null list", `{"type":"list uchar","value":null}`, ErrInvalidValue},
		{"quoted scalar", `{"type":"int","value":"5"}`, ErrInvalidValue},
		{"quoted list element", `{"type":"list float","value":[1,"2.5"]}`, ErrInvalidValue},
		{"boolean scalar", `{"type":"uchar","value":true}`, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalProperty([]byte(tt.in))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("UnmarshalProperty(%s) error = %v, want %v", tt.in, err, tt.wantErr)
			}
		})
	}

	for _, in := range []string{
		`{"type":"int","value":1.5}`,
		`{"type":"list int","value":{"a":1}}`,
		`not json`,
	} {
		if _, err := UnmarshalProperty([]byte(in)); err == nil {
			t.Errorf("UnmarshalProperty(%s) succeeded", in)
		}
	}
}

func TestDecodeValueEmptyList(t *testing.T) {
	p, err := DecodeValue("list int", json.RawMessage(` [ ] `))
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if !Equal(p, ListInt{}) || Len(p) != 0 {
		t.Errorf("DecodeValue(list int, []) = %#v, want empty ListInt", p)
	}
}

func TestMarshalPropertyNaN(t *testing.T) {
	if _, err := MarshalProperty(DoubleValue(math.NaN())); err == nil {
		t.Error("MarshalProperty(NaN) succeeded")
	}
	if _, err := MarshalProperty(nil); !errors.Is(err, ErrInvalidPropertyType) {
		t.Errorf("MarshalProperty(nil) error = %v, want %v", err, ErrInvalidPropertyType)
	}
}

func TestDefaultElementJSON(t *testing.T) {
	e := NewDefaultElement()
	e.SetProperty("x", FloatValue(1.25))
	e.SetProperty("vertex_indices", ListUInt{0, 1, 2})
	e.SetProperty("alpha", UCharValue(9))

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[{"name":"x","type":"float","value":1.25},` +
		`{"name":"vertex_indices","type":"list uint","value":[0,1,2]},` +
		`{"name":"alpha","type":"uchar","value":9}]`
	if string(data) != want {
		t.Errorf("Marshal = %s\nwant %s", data, want)
	}

	var got DefaultElement
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(e) {
		t.Error("decoded element differs from original")
	}
	if !slices.Equal(got.Names(), e.Names()) {
		t.Errorf("decoded order = %v, want %v", got.Names(), e.Names())
	}
}

func TestDefaultElementUnmarshalErrors(t *testing.T) {
	for _, in := range []string{
		`[{"name":"","type":"int","value":1}]`,
		`[{"name":"a","type":"int","value":"x"}]`,
		`{"a":1}`,
	} {
		var e DefaultElement
		if err := json.Unmarshal([]byte(in), &e); err == nil {
			t.Errorf("Unmarshal(%s) succeeded", in)
		}
	}
}
