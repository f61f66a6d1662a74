package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/scriptplan/internal/asset"
)

// timeLayout is the TEXT format of every timestamp column.
const timeLayout = time.RFC3339Nano

// marshalJSON converts v to JSON TEXT for storage.
// HTML escaping is disabled so stored script fragments stay readable.
func marshalJSON(field string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal %s: %w", field, err)
	}
	// Encoder adds a trailing newline
	return strings.TrimSpace(buf.String()), nil
}

// marshalDependencies stores nil as an empty array.
func marshalDependencies(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	return marshalJSON("dependencies", ids)
}

// marshalOptional returns NULL for a nil pointer.
func marshalOptional[T any](field string, v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	s, err := marshalJSON(field, v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: s, Valid: true}, nil
}

func unmarshalDetails(data string) (asset.Details, error) {
	var d asset.Details
	if data == "" || data == "{}" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return asset.Details{}, fmt.Errorf("unmarshal details: %w", err)
	}
	return d, nil
}

func unmarshalDependencies(data string) ([]string, error) {
	ids := []string{}
	if data == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal dependencies: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func unmarshalOptional[T any](field string, data sql.NullString) (*T, error) {
	if !data.Valid || data.String == "" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(data.String), &v); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", field, err)
	}
	return &v, nil
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", field, err)
	}
	return t, nil
}
