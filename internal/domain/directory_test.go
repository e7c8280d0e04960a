package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordFromMap_LowercaseKeys(t *testing.T) {
	rec := RecordFromMap(map[string]any{
		"telefono": "+52 1 55 1234 5678",
		"nombre":   "Ana",
		"nivel":    "Intermedio",
		"activo":   true,
		"ciudad":   "CDMX",
	})
	require.Equal(t, "+52 1 55 1234 5678", rec.Phone)
	require.Equal(t, "Ana", rec.Name)
	require.Equal(t, "Intermedio", rec.Level)
	require.True(t, rec.HasActive)
	require.Equal(t, true, rec.Active)
	require.Equal(t, map[string]any{"ciudad": "CDMX"}, rec.Extra)
}

func TestRecordFromMap_CapitalizedKeys(t *testing.T) {
	rec := RecordFromMap(map[string]any{
		"Telefono": float64(5215512345678),
		"Nombre":   "Luis",
		"Activo":   "no",
	})
	require.Equal(t, "5215512345678", rec.Phone)
	require.Equal(t, "Luis", rec.Name)
	require.Empty(t, rec.Level)
	require.Equal(t, "no", rec.Active)
	require.Empty(t, rec.Extra)
}

func TestRecordFromMap_FirstCandidateWins(t *testing.T) {
	rec := RecordFromMap(map[string]any{"nombre": "primero", "Nombre": "segundo"})
	require.Equal(t, "primero", rec.Name)
	require.Equal(t, map[string]any{"Nombre": "segundo"}, rec.Extra)
}

func TestRecordFromMap_MissingActive(t *testing.T) {
	rec := RecordFromMap(map[string]any{"telefono": "5512345678", "nombre": nil})
	require.False(t, rec.HasActive)
	require.Nil(t, rec.Active)
	require.Empty(t, rec.Name)
}

func TestLookup(t *testing.T) {
	k, v, ok := Lookup(map[string]any{"b": 2}, "a", "b")
	require.True(t, ok)
	require.Equal(t, "b", k)
	require.Equal(t, 2, v)

	_, _, ok = Lookup(map[string]any{}, "a")
	require.False(t, ok)
}

func TestText(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "none"},
		{"  x ", "x"},
		{false, "false"},
		{float64(0), "0"},
		{float64(1.5), "1.5"},
		{42, "42"},
		{int64(7), "7"},
		{json.Number("5215512345678"), "5215512345678"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Text(tc.in), "in=%v", tc.in)
	}
}
