package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidGSTIN(t *testing.T) {
	require.True(t, ValidGSTIN("37AAICP9359G1ZU"))
	require.False(t, ValidGSTIN("37AAICP9359G1Z"), "14 characters must fail")
	require.False(t, ValidGSTIN("37AAICP9359G1ZUX"), "16 characters must fail")
	require.False(t, ValidGSTIN("37aaicp9359g1zu"), "lowercase must fail")
	require.False(t, ValidGSTIN("XXAAICP9359G1ZU"), "state code must be digits")
}

func TestValidPhone(t *testing.T) {
	require.True(t, ValidPhone("9876543210"))
	require.True(t, ValidPhone("98765-43210"), "separators are stripped")
	require.True(t, ValidPhone("98765 43210"))
	require.False(t, ValidPhone("12345"))
	require.False(t, ValidPhone("987654321012"))
}

func TestValidatorTags(t *testing.T) {
	v := NewValidator()

	type party struct {
		GSTIN string `validate:"omitempty,gstin"`
		Phone string `validate:"omitempty,inphone"`
	}

	require.NoError(t, v.Struct(party{}))
	require.NoError(t, v.Struct(party{GSTIN: "37AAICP9359G1ZU", Phone: "98765 43210"}))
	require.Error(t, v.Struct(party{GSTIN: "bad"}))
	require.Error(t, v.Struct(party{Phone: "123"}))
}
