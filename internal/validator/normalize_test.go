package validator

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []EngineError
		want []ErrorObject
	}{
		{
			name: "required uses param, empty path omitted",
			in: []EngineError{{
				Keyword: "required", InstancePath: "",
				Params:  map[string]any{"missingProperty": "name"},
				Message: "must have required property 'name'",
			}},
			want: []ErrorObject{{Message: "must have required property 'name'", Property: "name"}},
		},
		{
			name: "required keeps instance path",
			in: []EngineError{{
				Keyword: "required", InstancePath: "/address",
				Params:  map[string]any{"missingProperty": "zip"},
				Message: "m",
			}},
			want: []ErrorObject{{Message: "m", Property: "zip", Path: "/address"}},
		},
		{
			name: "positional property from instance path",
			in: []EngineError{{
				Keyword: "type", InstancePath: "/user/tags/2",
				Params:  map[string]any{"type": "string"}, Message: "must be string",
			}},
			want: []ErrorObject{{Message: "must be string", Property: "2", Path: "/user/tags"}},
		},
		{
			name: "root error has neither property nor path",
			in:   []EngineError{{Keyword: "type", Message: "must be object"}},
			want: []ErrorObject{{Message: "must be object"}},
		},
		{
			name: "mapped keyword with missing param falls back to position",
			in:   []EngineError{{Keyword: "additionalProperties", InstancePath: "/a/b", Message: "m"}},
			want: []ErrorObject{{Message: "m", Property: "b", Path: "/a"}},
		},
		{
			name: "empty message gets default",
			in:   []EngineError{{Keyword: "minimum", InstancePath: "/age"}},
			want: []ErrorObject{{Message: UnknownMessage, Property: "age"}},
		},
		{
			name: "combinators dropped, order kept",
			in: []EngineError{
				{Keyword: "anyOf", Message: "must match a schema in anyOf"},
				{Keyword: "type", InstancePath: "/a", Message: "first"},
				{Keyword: "oneOf"},
				{Keyword: "allOf"},
				{Keyword: "if", Params: map[string]any{"failingKeyword": "then"}},
				{Keyword: "enum", InstancePath: "/b", Message: "second"},
			},
			want: []ErrorObject{
				{Message: "first", Property: "a"},
				{Message: "second", Property: "b"},
			},
		},
		{
			name: "keyword merely containing a combinator name is kept",
			in:   []EngineError{{Keyword: "notIf", InstancePath: "/x", Message: "custom"}},
			want: []ErrorObject{{Message: "custom", Property: "x"}},
		},
		{
			name: "non-string param is stringified",
			in: []EngineError{{
				Keyword: "propertyNames", Params: map[string]any{"propertyName": 7}, Message: "m",
			}},
			want: []ErrorObject{{Message: "m", Property: "7"}},
		},
		{
			name: "only combinators yields empty, non-nil list",
			in:   []EngineError{{Keyword: "oneOf"}},
			want: []ErrorObject{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got == nil {
				t.Fatalf("Normalize returned nil")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Normalize = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSplitLast(t *testing.T) {
	cases := []struct{ in, last, prefix string }{
		{"", "", ""},
		{"/name", "name", ""},
		{"/a/b", "b", "/a"},
		{"plain", "plain", ""},
	}
	for _, c := range cases {
		last, prefix := splitLast(c.in)
		if last != c.last || prefix != c.prefix {
			t.Errorf("splitLast(%q) = %q, %q, want %q, %q", c.in, last, prefix, c.last, c.prefix)
		}
	}
}
