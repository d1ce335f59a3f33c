package store

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Cell coercion helpers shared by the entity codecs. All of them are
// lenient: blank or malformed input degrades to a zero value or an empty
// structure, never an error.

// cleanCell trims a raw cell and maps textual null markers left behind by
// spreadsheet tooling to the empty string.
func cleanCell(cell string) string {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "nan", "none", "null":
		return ""
	}
	return cell
}

func toFloat(cell string) float64 {
	v, err := cast.ToFloat64E(cleanCell(cell))
	if err != nil {
		return 0
	}
	return v
}

// toInt accepts both integer and float-formatted cells ("37" and "37.0"),
// truncating the latter.
func toInt(cell string) int {
	cell = cleanCell(cell)
	if v, err := cast.ToIntE(cell); err == nil {
		return v
	}
	if v, err := cast.ToFloat64E(cell); err == nil {
		return int(v)
	}
	return 0
}

func toBool(cell string, fallback bool) bool {
	v, err := cast.ToBoolE(cleanCell(cell))
	if err != nil {
		return fallback
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

// decodeList decodes a JSON-array cell, yielding an empty slice on blank or
// malformed content.
func decodeList[T any](cell string) []T {
	out := make([]T, 0)
	if err := json.Unmarshal([]byte(sanitizeJSONCell(cell, "[]")), &out); err != nil {
		return make([]T, 0)
	}
	return out
}

// encodeJSON serializes a structured sub-field into its embeddable text
// form. fallback is the empty-structure token for the field ("[]" or "{}").
func encodeJSON(v any, fallback string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(b)
}

// sanitizeJSONCell validates a caller-supplied pre-serialized cell,
// resetting it to the empty-structure token when it is not well-formed JSON.
func sanitizeJSONCell(cell, fallback string) string {
	cell = cleanCell(cell)
	if cell == "" || !json.Valid([]byte(cell)) {
		return fallback
	}
	return cell
}
