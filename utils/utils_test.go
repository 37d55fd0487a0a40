package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare ten digits", in: "9876543210", want: "+919876543210"},
		{name: "already normalized", in: "+919876543210", want: "+919876543210"},
		{name: "surrounding whitespace", in: " 9876543210 ", want: "+919876543210"},
		{name: "too short", in: "12345", wantErr: true},
		{name: "too long", in: "98765432101", wantErr: true},
		{name: "letters", in: "98765.3210", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "+9198****3210", MaskPhone("+919876543210"))
	// Too short to mask, returned as-is.
	assert.Equal(t, "12345", MaskPhone("12345"))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 0.13, RoundMoney(0.125))
	assert.Equal(t, 0.12, RoundMoney(0.124))
	assert.Equal(t, 2.35, RoundMoney(2.345))
	assert.Equal(t, 10.0, RoundMoney(10.0))
	assert.Equal(t, 0.0, RoundMoney(0))
}

func TestParseUUID(t *testing.T) {
	id, err := ParseUUID("f47ac10b-58cc-4372-a567-0e02b2c3d479")
	require.NoError(t, err)
	assert.Equal(t, "f47ac10b-58cc-4372-a567-0e02b2c3d479", id.String())

	_, err = ParseUUID("not-a-uuid")
	require.Error(t, err)
}

func TestPointerHelpers(t *testing.T) {
	assert.True(t, IsTrue(ToPtr(true)))
	assert.False(t, IsTrue(ToPtr(false)))
	assert.False(t, IsTrue(nil))

	assert.Equal(t, "x", Deref(ToPtr("x")))
	var nilStr *string
	assert.Equal(t, "", Deref(nilStr))
}
