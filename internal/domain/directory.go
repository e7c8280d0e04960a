package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Candidate keys per logical directory field, tried in order. Directory
// exports are hand-edited spreadsheets, so the same column shows up under
// several spellings.
var (
	PhoneKeys  = []string{"telefono", "Telefono", "TELEFONO", "teléfono", "Teléfono", "phone", "Phone"}
	NameKeys   = []string{"nombre", "Nombre", "NOMBRE", "name", "Name"}
	LevelKeys  = []string{"nivel", "Nivel", "NIVEL", "level", "Level"}
	ActiveKeys = []string{"activo", "Activo", "ACTIVO", "active", "Active"}
)

// Record is a single user directory entry. It is read-only from the bot's
// point of view.
type Record struct {
	Name  string
	Phone string
	Level string

	// Active holds the raw activation value; HasActive is false when no
	// activation key was present at all.
	Active    any
	HasActive bool

	// Extra carries every attribute that is not one of the resolved fields.
	Extra map[string]any
}

// Lookup returns the first candidate key present in m and its value.
func Lookup(m map[string]any, keys ...string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return k, v, true
		}
	}
	return "", nil, false
}

// RecordFromMap resolves a raw directory row into a Record.
func RecordFromMap(m map[string]any) Record {
	rec := Record{Extra: map[string]any{}}
	resolved := map[string]bool{}

	take := func(keys []string) (any, bool) {
		k, v, ok := Lookup(m, keys...)
		if ok {
			resolved[k] = true
		}
		return v, ok
	}

	if v, ok := take(PhoneKeys); ok {
		rec.Phone = field(v)
	}
	if v, ok := take(NameKeys); ok {
		rec.Name = field(v)
	}
	if v, ok := take(LevelKeys); ok {
		rec.Level = field(v)
	}
	rec.Active, rec.HasActive = take(ActiveKeys)

	for k, v := range m {
		if !resolved[k] {
			rec.Extra[k] = v
		}
	}
	return rec
}

func field(v any) string {
	if v == nil {
		return ""
	}
	return Text(v)
}

// Text renders a loosely typed directory value as trimmed text. JSON null
// renders as "none" and numbers use their shortest decimal form, so a phone
// stored as a number keeps all of its digits.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return "none"
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
