package models

import (
	"encoding/json"
	"testing"
)

func TestOdooString_Unmarshal(t *testing.T) {
	cases := map[string]OdooString{
		`"SKU1"`: "SKU1",
		`false`:  "",
		`null`:   "",
	}
	for in, want := range cases {
		var got OdooString
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("Unmarshal(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestOdooID_Unmarshal(t *testing.T) {
	cases := map[string]OdooID{
		`[7, "Chair"]`: 7,
		`12`:           12,
		`false`:        0,
		`null`:         0,
		`[]`:           0,
	}
	for in, want := range cases {
		var got OdooID
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("Unmarshal(%s) = %d, want %d", in, got, want)
		}
	}

	var bad OdooID
	if err := json.Unmarshal([]byte(`"x"`), &bad); err == nil {
		t.Error("Expected error for a string id")
	}
}

func TestJoinPath(t *testing.T) {
	if got := JoinPath("", 5); got != "5" {
		t.Errorf("Expected 5, got %s", got)
	}
	if got := JoinPath("1/2", 5); got != "1/2/5" {
		t.Errorf("Expected 1/2/5, got %s", got)
	}
}

func TestProjectTemplate(t *testing.T) {
	cfg := uint(1)
	link := InSalesTemplateLink{TemplateID: 3, ConfigID: &cfg, RemoteProductID: 900, Permalink: "chair"}

	view := ProjectTemplate(link, []InSalesVariantLink{{ProductID: 10, RemoteVariantID: 901, SkipQty: true}}, "myshop")
	if view.RemoteVariantID != 901 || !view.SkipQty {
		t.Errorf("Single variant fields should be projected: %+v", view)
	}
	if view.PublicURL != "https://myshop.myinsales.ru/product/chair" {
		t.Errorf("Unexpected public url %s", view.PublicURL)
	}
	if view.AdminURL != "https://myshop.myinsales.ru/admin2/products/900" {
		t.Errorf("Unexpected admin url %s", view.AdminURL)
	}

	view = ProjectTemplate(link, []InSalesVariantLink{{ProductID: 10, SkipQty: true}, {ProductID: 11}}, "myshop")
	if view.VariantCount != 2 || view.SkipQty || view.RemoteVariantID != 0 {
		t.Errorf("Multi variant templates leave variant fields empty: %+v", view)
	}

	view = ProjectTemplate(InSalesTemplateLink{TemplateID: 4}, nil, "myshop")
	if view.PublicURL != "" || view.AdminURL != "" {
		t.Error("Unlinked templates have no urls")
	}
}
