package aa_test

import (
	"encoding/json"
	"testing"

	"github.com/DanielPopoola/aa-data-gateway/internal/infrastructure/aa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  aa.RawNumber
	}{
		{"bare number", `{"v": 1250.75}`, "1250.75"},
		{"quoted number", `{"v": "1250.75"}`, "1250.75"},
		{"negative bare number", `{"v": -42}`, "-42"},
		{"null", `{"v": null}`, ""},
		{"quoted null", `{"v": "null"}`, ""},
		{"escaped digits", `{"v": "250.00"}`, "250.00"},
		{"string with inner quote", `{"v": "12\"50"}`, `12"50`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc struct {
				V aa.RawNumber `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.input), &doc))
			assert.Equal(t, tt.want, doc.V)
		})
	}
}

func TestFIPayload_Ready(t *testing.T) {
	assert.True(t, (&aa.FIPayload{Status: "READY"}).Ready())
	assert.True(t, (&aa.FIPayload{Status: "COMPLETED"}).Ready())
	assert.True(t, (&aa.FIPayload{}).Ready())
	assert.False(t, (&aa.FIPayload{Status: "PENDING"}).Ready())
}
