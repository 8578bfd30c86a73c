package reconcile

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xelth-com/insalessync/internal/insales"
	"github.com/xelth-com/insalessync/internal/models"
)

// DefaultDigits is used when a precision cannot be resolved
const DefaultDigits = 16

const nullText = "null"

// Diff describes one change for logs and events
type Diff struct {
	Name string `json:"name"`
	Old  string `json:"old"`
	New  string `json:"new"`
}

func (d Diff) String() string {
	return fmt.Sprintf("%s(%s -> %s)", d.Name, d.Old, d.New)
}

// Modifier is a pending change of one remote variant field.
// A nil Value clears the field. Append modifiers accumulate into a list under Key.
type Modifier struct {
	Key    string
	Value  interface{}
	Append bool
	Diff   Diff
}

// formatFixed renders v with exactly digits decimals and parses it back,
// so comparisons happen on the value that would be sent.
func formatFixed(v float64, digits int) (string, decimal.Decimal) {
	s := decimal.NewFromFloat(v).StringFixed(int32(digits))
	return s, decimal.RequireFromString(s)
}

// nullDecimalText renders a remote value with the digits it was received with
func nullDecimalText(d decimal.NullDecimal) string {
	if !d.Valid {
		return nullText
	}
	if exp := d.Decimal.Exponent(); exp < 0 {
		return d.Decimal.StringFixed(-exp)
	}
	return d.Decimal.String()
}

// equalAt reports whether the remote value is exactly target; an invalid target means null
func equalAt(remote decimal.NullDecimal, target decimal.NullDecimal) bool {
	if !remote.Valid || !target.Valid {
		return remote.Valid == target.Valid
	}
	return remote.Decimal.Equal(target.Decimal)
}

// WeightModifier compares the local weight with the remote one.
// zeroSkipped is true when a change was suppressed because the local weight is zero.
func WeightModifier(local float64, remote decimal.NullDecimal, digits int, skipZero bool) (mod *Modifier, zeroSkipped bool) {
	str, target := formatFixed(math.Max(local, 0), digits)
	if equalAt(remote, decimal.NewNullDecimal(target)) {
		return nil, false
	}

	if target.IsZero() {
		if skipZero {
			return nil, true
		}
		if !remote.Valid {
			return nil, false
		}
		return &Modifier{
			Key:   "weight",
			Value: nil,
			Diff:  Diff{Name: "weight", Old: nullDecimalText(remote), New: nullText},
		}, false
	}

	return &Modifier{
		Key:   "weight",
		Value: str,
		Diff:  Diff{Name: "weight", Old: nullDecimalText(remote), New: str},
	}, false
}

// PriceModifiers compares price and old price. oldPrice is nil when no old price
// pricelist is configured. An old price not above the price is treated as absent.
func PriceModifiers(price float64, oldPrice *float64, digits int, remotePrice, remoteOld decimal.NullDecimal) []Modifier {
	var mods []Modifier

	priceStr, priceDec := formatFixed(math.Max(price, 0), digits)
	if !equalAt(remotePrice, decimal.NewNullDecimal(priceDec)) {
		mods = append(mods, Modifier{
			Key:   "price",
			Value: priceStr,
			Diff:  Diff{Name: "price", Old: nullDecimalText(remotePrice), New: priceStr},
		})
	}

	if oldPrice == nil {
		return mods
	}

	oldStr, oldDec := formatFixed(*oldPrice, digits)
	target := decimal.NewNullDecimal(oldDec)
	var value interface{} = oldStr
	if oldDec.LessThanOrEqual(priceDec) {
		target = decimal.NullDecimal{}
		value = nil
		oldStr = nullText
	}

	if !equalAt(remoteOld, target) {
		mods = append(mods, Modifier{
			Key:   "old_price",
			Value: value,
			Diff:  Diff{Name: "old_price", Old: nullDecimalText(remoteOld), New: oldStr},
		})
	}
	return mods
}

// QuantityModifier compares the local available quantity of one mapping with the remote value
func QuantityModifier(field models.InSalesQuantityField, available float64, remote insales.Variant) (*Modifier, error) {
	remoteQty, err := ExtractQuantity(remote, field)
	if err != nil {
		return nil, err
	}
	if remoteQty < 0 {
		remoteQty = 0
	}

	localQty := int(available)
	if localQty == remoteQty {
		return nil, nil
	}

	mod := &Modifier{
		Key:   field.RemoteField,
		Value: localQty,
		Diff: Diff{
			Name: field.RemoteField,
			Old:  strconv.Itoa(remoteQty),
			New:  strconv.Itoa(localQty),
		},
	}
	if field.IsAdditional {
		mod.Key = AdditionalFieldsKey
		mod.Value = insales.AdditionalFieldValue{Handle: field.RemoteField, Value: localQty}
		mod.Append = true
	}
	return mod, nil
}

// BuildPayload merges modifiers into one update body
func BuildPayload(mods []Modifier) map[string]interface{} {
	payload := make(map[string]interface{}, len(mods))
	for _, m := range mods {
		if !m.Append {
			payload[m.Key] = m.Value
			continue
		}
		list, _ := payload[m.Key].([]interface{})
		payload[m.Key] = append(list, m.Value)
	}
	return payload
}

func diffs(mods []Modifier) []Diff {
	out := make([]Diff, len(mods))
	for i, m := range mods {
		out[i] = m.Diff
	}
	return out
}

func diffString(mods []Modifier) string {
	s := ""
	for i, m := range mods {
		if i > 0 {
			s += ", "
		}
		s += m.Diff.String()
	}
	return s
}
