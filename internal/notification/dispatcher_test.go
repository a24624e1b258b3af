package notification

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []int64
		want []int64
	}{
		{"empty", nil, []int64{}},
		{"drops zero", []int64{0, 7}, []int64{7}},
		{"drops duplicates keeping order", []int64{7, 11, 7, 11}, []int64{7, 11}},
		{"reporter equals assignee", []int64{5, 5}, []int64{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, dedupe(tt.in...))
		})
	}
}

func TestParseID(t *testing.T) {
	id, ok := parseID("42")
	require.True(t, ok)
	require.Equal(t, int64(42), id)

	for _, raw := range []string{"", "abc", "-1", "0", "4.2"} {
		_, ok := parseID(raw)
		require.False(t, ok, raw)
	}
}

func TestDerefID(t *testing.T) {
	require.Equal(t, int64(0), derefID(nil))
	v := int64(9)
	require.Equal(t, int64(9), derefID(&v))
}
