package scanning

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQRPayload(t *testing.T) {
	p, err := ParseQRPayload(`{"id":12,"code":"BP-8708-A","location":"R2-S4","stock":3}`)
	require.NoError(t, err)
	require.Equal(t, int64(12), p.ID)
	require.Equal(t, "BP-8708-A", p.Code)
	require.Equal(t, "R2-S4", p.Location)
	require.Equal(t, 3, p.Stock)
}

func TestParseQRPayloadCodeOnly(t *testing.T) {
	p, err := ParseQRPayload(`{"code":"BP-8708-A"}`)
	require.NoError(t, err)
	require.Equal(t, "BP-8708-A", p.Code)
}

func TestParseQRPayloadRejectsGarbage(t *testing.T) {
	_, err := ParseQRPayload("not json at all")
	require.ErrorIs(t, err, ErrBadPayload)

	_, err = ParseQRPayload(`{"location":"R2-S4"}`)
	require.ErrorIs(t, err, ErrBadPayload)
}

func TestValidAction(t *testing.T) {
	for _, a := range []ScanAction{ActionView, ActionSold, ActionStockUp, ActionCustomAdjust, ActionRelocate, ActionFlag, ActionUnflag} {
		require.True(t, ValidAction(a))
	}
	require.False(t, ValidAction("delete"))
	require.False(t, ValidAction(""))
}
