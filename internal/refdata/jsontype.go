package refdata

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONStringSlice adapts []string to a jsonb column, the same pattern
// the reference tables use wherever a field is a small variable-length
// list rather than its own join table.
type JSONStringSlice []string

// Value implements driver.Valuer.
func (s JSONStringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal([]string(s))
}

// Scan implements sql.Scanner.
func (s *JSONStringSlice) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("refdata: JSONStringSlice.Scan: unsupported source type")
	}
	if len(raw) == 0 {
		*s = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// RawJSON adapts an arbitrary pre-encoded JSON payload to a jsonb column,
// used where the shape varies per record (e.g. the per-check detail
// attached to an audit row) and a fixed Go type would not fit.
type RawJSON []byte

// Value implements driver.Valuer.
func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "{}", nil
	}
	return []byte(r), nil
}

// Scan implements sql.Scanner.
func (r *RawJSON) Scan(src interface{}) error {
	if src == nil {
		*r = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*r = append(RawJSON(nil), v...)
	case string:
		*r = RawJSON(v)
	default:
		return errors.New("refdata: RawJSON.Scan: unsupported source type")
	}
	return nil
}
