package insales

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scalar is a JSON value InSales may send as a string, a number, a bool or null.
// null is kept as the empty string.
type Scalar string

// UnmarshalJSON accepts strings, numbers, bools and null
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*s = ""
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	case string(data) == "true" || string(data) == "false":
		*s = Scalar(data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("insales: unsupported scalar %s", string(data))
		}
		*s = Scalar(n.String())
	}
	return nil
}

// Int returns the value truncated to an integer; empty or unparsable values are 0
func (s Scalar) Int() int {
	str := strings.TrimSpace(string(s))
	if str == "" {
		return 0
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return 0
	}
	return int(d.IntPart())
}

// Decimal parses the value; empty means null
func (s Scalar) Decimal() (decimal.NullDecimal, error) {
	str := strings.TrimSpace(string(s))
	if str == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("insales: invalid decimal %q: %w", str, err)
	}
	return decimal.NewNullDecimal(d), nil
}

// FieldValue is one entry of a variant's additional field values
type FieldValue struct {
	ID             int64  `json:"id"`
	VariantFieldID int64  `json:"variant_field_id"`
	Value          Scalar `json:"value"`
}

// AdditionalFieldValue is the write shape of an additional field value
type AdditionalFieldValue struct {
	Handle string `json:"handle"`
	Value  int    `json:"value"`
}

// Variant is a read-only view over a variant payload.
// Only the keys used by the synchronization have typed accessors;
// everything else is reachable through Has/Scalar.
type Variant struct {
	fields map[string]json.RawMessage
}

// UnmarshalJSON keeps the raw payload
func (v *Variant) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	v.fields = fields
	return nil
}

// MarshalJSON returns the payload as received
func (v Variant) MarshalJSON() ([]byte, error) {
	if v.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v.fields)
}

// Has reports whether key is a top-level key of the payload (null values included)
func (v Variant) Has(key string) bool {
	_, ok := v.fields[key]
	return ok
}

// Scalar returns a top-level value; ok is false when the key is absent
func (v Variant) Scalar(key string) (Scalar, bool) {
	raw, ok := v.fields[key]
	if !ok {
		return "", false
	}
	var s Scalar
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", true
	}
	return s, true
}

func (v Variant) int64Field(key string) int64 {
	s, _ := v.Scalar(key)
	return int64(s.Int())
}

func (v Variant) decimalField(key string) (decimal.NullDecimal, error) {
	s, _ := v.Scalar(key)
	d, err := s.Decimal()
	if err != nil {
		return d, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// ID is the InSales variant id
func (v Variant) ID() int64 { return v.int64Field("id") }

// ProductID is the InSales product id of the variant
func (v Variant) ProductID() int64 { return v.int64Field("product_id") }

// SKU returns the external code; ok is false when it is absent, null or blank
func (v Variant) SKU() (string, bool) {
	s, ok := v.Scalar("sku")
	if !ok || strings.TrimSpace(string(s)) == "" {
		return "", false
	}
	return string(s), true
}

// Weight is the remote weight, invalid when null
func (v Variant) Weight() (decimal.NullDecimal, error) { return v.decimalField("weight") }

// Price is the remote price, invalid when null
func (v Variant) Price() (decimal.NullDecimal, error) { return v.decimalField("price") }

// OldPrice is the remote compare-at price, invalid when null
func (v Variant) OldPrice() (decimal.NullDecimal, error) { return v.decimalField("old_price") }

// FieldValues returns the additional field values of the variant
func (v Variant) FieldValues() []FieldValue {
	raw, ok := v.fields["variant_field_values"]
	if !ok {
		return nil
	}
	var values []FieldValue
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

// Product is an InSales product with its variants
type Product struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Permalink  string    `json:"permalink"`
	CategoryID int64     `json:"category_id"`
	Variants   []Variant `json:"variants"`
}

// Category is one node of the shop's category tree
type Category struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ParentID *int64 `json:"parent_id"`
}

// VariantField describes an additional variant field
type VariantField struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Type   string `json:"type"`
}
