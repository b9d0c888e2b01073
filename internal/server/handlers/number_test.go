package handlers

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
		nan  bool
	}{
		{name: "number", body: `{"quantity": 5000}`, want: 5000},
		{name: "numeric string", body: `{"quantity": "12.5"}`, want: 12.5},
		{name: "padded string", body: `{"quantity": " 7 "}`, want: 7},
		{name: "word", body: `{"quantity": "abc"}`, nan: true},
		{name: "empty string", body: `{"quantity": ""}`, nan: true},
		{name: "bool", body: `{"quantity": true}`, nan: true},
		{name: "overflow", body: `{"quantity": 1e400}`, nan: true},
		{name: "null", body: `{"quantity": null}`, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req stockRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			if tc.nan {
				assert.True(t, math.IsNaN(float64(req.Quantity)))
				return
			}
			assert.Equal(t, tc.want, float64(req.Quantity))
		})
	}
}

func TestStockPatchRequest_AbsentNumbers(t *testing.T) {
	var req stockPatchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"unit_price": "9.5", "quantity": null}`), &req))

	p := req.patch()
	assert.Nil(t, p.Quantity)
	require.NotNil(t, p.UnitPrice)
	assert.Equal(t, 9.5, *p.UnitPrice)
}
