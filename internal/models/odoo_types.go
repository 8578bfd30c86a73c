package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// OdooString is a custom string type that handles Odoo's dynamic typing.
// Odoo returns `false` (boolean) for empty text fields instead of an empty string.
type OdooString string

// UnmarshalJSON accepts a string or bool(false)
func (os *OdooString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*os = OdooString(s)
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if !b {
			*os = ""
			return nil
		}
		*os = "true"
		return nil
	}

	if string(data) == "null" {
		*os = ""
		return nil
	}

	return errors.New("OdooString: cannot unmarshal value into string")
}

// Value implements driver.Valuer interface for database storage
func (os OdooString) Value() (driver.Value, error) {
	return string(os), nil
}

// Scan implements sql.Scanner interface for database retrieval
func (os *OdooString) Scan(value interface{}) error {
	if value == nil {
		*os = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*os = OdooString(v)
	case []byte:
		*os = OdooString(string(v))
	default:
		return fmt.Errorf("failed to scan OdooString: %v", value)
	}
	return nil
}

// String returns native string value
func (os OdooString) String() string {
	return string(os)
}

// OdooID holds the id side of an Odoo many2one value.
// Odoo sends `[id, "display name"]` for a set relation and `false` for an empty one;
// plain integers are accepted as well.
type OdooID int64

// UnmarshalJSON handles [id, name], id, false and null
func (id *OdooID) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = OdooID(n)
		return nil
	}

	var pair []interface{}
	if err := json.Unmarshal(data, &pair); err == nil {
		*id = 0
		if len(pair) > 0 {
			if f, ok := pair[0].(float64); ok {
				*id = OdooID(int64(f))
			}
		}
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil || string(data) == "null" {
		*id = 0
		return nil
	}

	return fmt.Errorf("OdooID: cannot unmarshal %s", string(data))
}

// Int64 returns the plain id
func (id OdooID) Int64() int64 {
	return int64(id)
}
