package reconcile

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xelth-com/insalessync/internal/insales"
	"github.com/xelth-com/insalessync/internal/models"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestWeightModifier_EqualAtPrecision(t *testing.T) {
	cases := []struct {
		local  float64
		remote string
		digits int
	}{
		{2.5, "2.500", 3},
		{2.5, "2.5", 3},
		{1.2344, "1.234", 3},
		{0.1 + 0.2, "0.300", 3},
		{10, "10", 16},
	}
	for _, c := range cases {
		mod, zero := WeightModifier(c.local, dec(c.remote), c.digits, false)
		if mod != nil || zero {
			t.Errorf("weight %v vs %s at %d: expected no modifier, got %+v", c.local, c.remote, c.digits, mod)
		}
	}
}

func TestWeightModifier_Changed(t *testing.T) {
	mod, _ := WeightModifier(2.5, dec("3.000"), 3, false)
	if mod == nil {
		t.Fatal("Expected a weight modifier")
	}
	if mod.Key != "weight" || mod.Value != "2.500" {
		t.Errorf("Expected weight=2.500, got %s=%v", mod.Key, mod.Value)
	}
	if mod.Diff.String() != "weight(3.000 -> 2.500)" {
		t.Errorf("Unexpected diff: %s", mod.Diff)
	}

	// Null remote weight gets the local value
	mod, _ = WeightModifier(1, decimal.NullDecimal{}, 3, true)
	if mod == nil || mod.Value != "1.000" {
		t.Errorf("Expected weight=1.000, got %+v", mod)
	}
}

func TestWeightModifier_SkipZero(t *testing.T) {
	for _, local := range []float64{0, -4, 0.0001} {
		mod, zero := WeightModifier(local, dec("1.200"), 3, true)
		if mod != nil {
			t.Errorf("weight %v: zero weight must not be synced, got %+v", local, mod)
		}
		if !zero {
			t.Errorf("weight %v: expected zero skip to be reported", local)
		}
	}
}

func TestWeightModifier_ClearZero(t *testing.T) {
	mod, _ := WeightModifier(0, dec("1.200"), 3, false)
	if mod == nil {
		t.Fatal("Expected a clearing modifier")
	}
	if mod.Value != nil {
		t.Errorf("Expected null weight, got %v", mod.Value)
	}
	if mod.Diff.New != "null" {
		t.Errorf("Expected null in diff, got %s", mod.Diff.New)
	}

	// Already null remotely
	if mod, _ := WeightModifier(0, decimal.NullDecimal{}, 3, false); mod != nil {
		t.Errorf("Null weight should stay untouched, got %+v", mod)
	}
	// Zero remotely
	if mod, _ := WeightModifier(0, dec("0.000"), 3, false); mod != nil {
		t.Errorf("Zero weight should stay untouched, got %+v", mod)
	}
}

func TestPriceModifiers(t *testing.T) {
	mods := PriceModifiers(199.999, nil, 2, dec("150"), dec("300"))
	if len(mods) != 1 {
		t.Fatalf("Expected only a price modifier, got %+v", mods)
	}
	if mods[0].Key != "price" || mods[0].Value != "200.00" {
		t.Errorf("Expected price=200.00, got %s=%v", mods[0].Key, mods[0].Value)
	}

	// Negative prices are floored
	mods = PriceModifiers(-5, nil, 2, dec("0"), decimal.NullDecimal{})
	if len(mods) != 0 {
		t.Errorf("Expected no modifier for floored price, got %+v", mods)
	}

	mods = PriceModifiers(100, nil, 2, dec("100.00"), decimal.NullDecimal{})
	if len(mods) != 0 {
		t.Errorf("Expected no modifier for equal price, got %+v", mods)
	}
}

func TestPriceModifiers_OldPriceNotAbovePrice(t *testing.T) {
	old := 150.0
	mods := PriceModifiers(200, &old, 2, dec("200.00"), dec("150.00"))
	if len(mods) != 1 {
		t.Fatalf("Expected one old price modifier, got %+v", mods)
	}
	if mods[0].Key != "old_price" || mods[0].Value != nil {
		t.Errorf("Expected old_price=null, got %s=%v", mods[0].Key, mods[0].Value)
	}

	// Equal old price is not a discount either
	old = 200
	mods = PriceModifiers(200, &old, 2, dec("200.00"), dec("200.00"))
	if len(mods) != 1 || mods[0].Value != nil {
		t.Errorf("Expected old_price=null, got %+v", mods)
	}

	// Remote already null
	mods = PriceModifiers(200, &old, 2, dec("200.00"), decimal.NullDecimal{})
	if len(mods) != 0 {
		t.Errorf("Expected no modifier, got %+v", mods)
	}
}

func TestPriceModifiers_OldPrice(t *testing.T) {
	old := 250.0
	mods := PriceModifiers(200, &old, 2, dec("200"), decimal.NullDecimal{})
	if len(mods) != 1 || mods[0].Key != "old_price" || mods[0].Value != "250.00" {
		t.Fatalf("Expected old_price=250.00, got %+v", mods)
	}

	mods = PriceModifiers(200, &old, 2, dec("200"), dec("250"))
	if len(mods) != 0 {
		t.Errorf("Expected no modifier, got %+v", mods)
	}
}

func TestExtractQuantity(t *testing.T) {
	remote := mustVariant(t, map[string]interface{}{
		"id":       1,
		"quantity": "12.7",
		"empty":    nil,
		"variant_field_values": []map[string]interface{}{
			{"variant_field_id": 42, "value": "5"},
			{"variant_field_id": 43, "value": ""},
		},
	})

	qty, err := ExtractQuantity(remote, models.InSalesQuantityField{RemoteField: "quantity"})
	if err != nil || qty != 12 {
		t.Errorf("Expected 12, got %d %v", qty, err)
	}
	qty, err = ExtractQuantity(remote, models.InSalesQuantityField{RemoteField: "empty"})
	if err != nil || qty != 0 {
		t.Errorf("Null should read as 0, got %d %v", qty, err)
	}

	_, err = ExtractQuantity(remote, models.InSalesQuantityField{RemoteField: "quantity_store"})
	var unknown *UnknownRemoteFieldError
	if !errors.As(err, &unknown) || unknown.Field != "quantity_store" {
		t.Errorf("Expected UnknownRemoteFieldError, got %v", err)
	}

	additional := func(id int64) models.InSalesQuantityField {
		return models.InSalesQuantityField{IsAdditional: true, RemoteField: "custom_stock", RemoteFieldID: int64Ptr(id)}
	}
	if qty, _ := ExtractQuantity(remote, additional(42)); qty != 5 {
		t.Errorf("Expected 5, got %d", qty)
	}
	if qty, _ := ExtractQuantity(remote, additional(43)); qty != 0 {
		t.Errorf("Empty additional value should be 0, got %d", qty)
	}
	if qty, err := ExtractQuantity(remote, additional(99)); qty != 0 || err != nil {
		t.Errorf("Absent additional field should be 0, got %d %v", qty, err)
	}
}

func TestQuantityModifier(t *testing.T) {
	remote := mustVariant(t, map[string]interface{}{"quantity": -3})
	field := models.InSalesQuantityField{RemoteField: "quantity"}

	// Negative remote quantity counts as 0
	if mod, err := QuantityModifier(field, 0, remote); mod != nil || err != nil {
		t.Errorf("Expected no modifier, got %+v %v", mod, err)
	}

	mod, err := QuantityModifier(field, 7.9, remote)
	if err != nil || mod == nil {
		t.Fatalf("Expected a modifier, got %v", err)
	}
	if mod.Key != "quantity" || mod.Value != 7 || mod.Append {
		t.Errorf("Unexpected modifier: %+v", mod)
	}
}

func TestBuildPayload_AppendsAdditionalFields(t *testing.T) {
	remote := mustVariant(t, map[string]interface{}{"quantity": 1})
	first := models.InSalesQuantityField{IsAdditional: true, RemoteField: "stock_a", RemoteFieldID: int64Ptr(1)}
	second := models.InSalesQuantityField{IsAdditional: true, RemoteField: "stock_b", RemoteFieldID: int64Ptr(2)}

	m1, _ := QuantityModifier(first, 3, remote)
	m2, _ := QuantityModifier(second, 4, remote)
	weight := Modifier{Key: "weight", Value: "1.000"}

	payload := BuildPayload([]Modifier{*m1, weight, *m2})

	list, ok := payload[AdditionalFieldsKey].([]interface{})
	if !ok || len(list) != 2 {
		t.Fatalf("Expected two accumulated additional values, got %#v", payload[AdditionalFieldsKey])
	}
	if v := list[1].(insales.AdditionalFieldValue); v.Handle != "stock_b" || v.Value != 4 {
		t.Errorf("Unexpected second value: %+v", v)
	}
	if payload["weight"] != "1.000" {
		t.Errorf("Unexpected weight: %v", payload["weight"])
	}
}

func TestNullDecimalText_AsReceived(t *testing.T) {
	cases := map[string]string{
		"3.000":   "3.000",
		"1200.50": "1200.50",
		"3":       "3",
		"0.0":     "0.0",
	}
	for in, want := range cases {
		if got := nullDecimalText(dec(in)); got != want {
			t.Errorf("%s: expected %s, got %s", in, want, got)
		}
	}
	if got := nullDecimalText(decimal.NullDecimal{}); got != "null" {
		t.Errorf("Expected null, got %s", got)
	}
}
