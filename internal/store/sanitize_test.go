package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nan", `{"a":NaN}`, `{"a":0}`},
		{"infinities", `[Infinity,-Infinity, +Infinity]`, `[0,0, 0]`},
		{"undefined", `{"a":undefined,"b":1}`, `{"a":null,"b":1}`},
		{"inside string untouched", `{"s":"NaN and Infinity","t":"say \"undefined\""}`, `{"s":"NaN and Infinity","t":"say \"undefined\""}`},
		{"keys untouched", `{"NaN":1}`, `{"NaN":1}`},
		{"clean input", `{"a":1.5,"b":[true,false,null]}`, `{"a":1.5,"b":[true,false,null]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(Sanitize([]byte(tt.in))))
		})
	}
}

func TestSanitize_ProducesValidJSON(t *testing.T) {
	raw := []byte(`{"currentPrice": NaN, "beta": Infinity, "peRatio": undefined, "history": [1, NaN, -Infinity]}`)
	var v map[string]any
	require.NoError(t, json.Unmarshal(Sanitize(raw), &v))
	assert.Equal(t, float64(0), v["currentPrice"])
	assert.Nil(t, v["peRatio"])
	assert.Equal(t, []any{float64(1), float64(0), float64(0)}, v["history"])
}
