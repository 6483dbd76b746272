package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagesUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Pages
	}{
		{name: "string", in: `{"pages":"320"}`, want: "320"},
		{name: "number", in: `{"pages":320}`, want: "320"},
		{name: "float", in: `{"pages":12.5}`, want: "12.5"},
		{name: "free_text", in: `{"pages":"about 300"}`, want: "about 300"},
		{name: "null", in: `{"pages":null}`, want: ""},
		{name: "missing", in: `{}`, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b Book
			require.NoError(t, json.Unmarshal([]byte(tc.in), &b))
			assert.Equal(t, tc.want, b.Pages)
		})
	}
}

func TestPagesUnmarshalRejectsBool(t *testing.T) {
	var b Book
	assert.Error(t, json.Unmarshal([]byte(`{"pages":true}`), &b))
}

func TestPagesAlwaysEncodedAsString(t *testing.T) {
	out, err := json.Marshal(Book{Title: "Dune", Author: "Frank Herbert", Pages: "412"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Dune","author":"Frank Herbert","pages":"412"}`, string(out))
}
