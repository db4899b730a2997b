package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"T1", "refund-T1"},
		{"a1b2-c3d4", "refund-a1b2-c3d4"},
		{"", "refund-"},
	}
	for _, tt := range tests {
		got := RefundID(tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestRefundID_Deterministic(t *testing.T) {
	// Same input must always derive the same id.
	assert.Equal(t, RefundID("T42"), RefundID("T42"))
}

func TestIsRefund(t *testing.T) {
	assert.True(t, IsRefund("refund-T1"))
	assert.False(t, IsRefund("T1"))
	assert.False(t, IsRefund(""))
}

func TestOriginalID(t *testing.T) {
	original, ok := OriginalID("refund-T1")
	require.True(t, ok)
	assert.Equal(t, "T1", original)

	_, ok = OriginalID("T1")
	assert.False(t, ok)
}

func TestNewTransactionID_Unique(t *testing.T) {
	a := NewTransactionID()
	b := NewTransactionID()
	require.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestNewRunID_Sortable(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	require.Len(t, a, 26)
	assert.LessOrEqual(t, a, b)
}
