package service

import (
	"testing"

	"kraisys/internal/model"

	"github.com/stretchr/testify/assert"
)

func int64p(v int64) *int64 { return &v }

func TestNormalizeOptionIDs(t *testing.T) {
	cases := []struct {
		name   string
		scalar *int64
		array  interface{}
		want   []int64
	}{
		{"array wins over scalar", int64p(9), []int64{1, 2, 3}, []int64{1, 2, 3}},
		{"scalar only becomes one-element list", int64p(7), nil, []int64{7}},
		{"empty array falls back to scalar", int64p(7), []int64{}, []int64{7}},
		{"both absent yields empty", nil, nil, []int64{}},
		{"json string array", nil, `[4, 5]`, []int64{4, 5}},
		{"json bytes array", nil, []byte(`[11]`), []int64{11}},
		{"typed OptionIDs column value", nil, model.OptionIDs{2, 4}, []int64{2, 4}},
		{"decoded interface slice", nil, []interface{}{float64(3), float64(6)}, []int64{3, 6}},
		{"malformed json treated as absent", int64p(5), `{broken`, []int64{5}},
		{"malformed json with no scalar yields empty", nil, `{broken`, []int64{}},
		{"unexpected type treated as absent", int64p(8), 3.14, []int64{8}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeOptionIDs(tc.scalar, tc.array)
			assert.NotNil(t, got, "result must never be nil")
			assert.Equal(t, tc.want, got)
		})
	}
}
