package transcript

import (
	"reflect"
	"testing"
)

func TestDecodeResults_StylesAndProducts(t *testing.T) {
	r := DecodeResults("STYLES: ['Bold', 'Casual']; PRODUCTS [['p1','p2'],['p3']]")

	if r.State != ResultsDecoded {
		t.Fatalf("state = %v, want decoded", r.State)
	}
	if !reflect.DeepEqual(r.Styles, []string{"Bold", "Casual"}) {
		t.Errorf("styles = %v", r.Styles)
	}
	if !reflect.DeepEqual(r.Products, []string{"p1", "p2", "p3"}) {
		t.Errorf("products = %v", r.Products)
	}
}

func TestDecodeResults_FlattenPreservesDuplicates(t *testing.T) {
	r := DecodeResults("PRODUCTS [['a','a'],['b']]")

	if !reflect.DeepEqual(r.Products, []string{"a", "a", "b"}) {
		t.Errorf("products = %v, want [a a b]", r.Products)
	}
}

func TestDecodeResults_DeeplyNested(t *testing.T) {
	r := DecodeResults("PRODUCTS [[['x'],['y',['z']]]]")

	if !reflect.DeepEqual(r.Products, []string{"x", "y", "z"}) {
		t.Errorf("products = %v, want [x y z]", r.Products)
	}
}

func TestDecodeResults_UnbalancedBracketRetainsRaw(t *testing.T) {
	r := DecodeResults("PRODUCTS [['p1','p2']")

	if r.State != ResultsPartial {
		t.Fatalf("state = %v, want partial", r.State)
	}
	if len(r.Products) != 0 {
		t.Errorf("products = %v, want none", r.Products)
	}
	if r.ProductsRaw == "" {
		t.Error("expected raw fragment retained for diagnostics")
	}
}

func TestDecodeResults_MalformedJSONRetainsRaw(t *testing.T) {
	r := DecodeResults("PRODUCTS [p1, p2,]")

	if r.State != ResultsPartial {
		t.Fatalf("state = %v, want partial", r.State)
	}
	if r.ProductsRaw != "[p1, p2,]" {
		t.Errorf("raw = %q", r.ProductsRaw)
	}
}

func TestDecodeResults_StylesOnly(t *testing.T) {
	r := DecodeResults("STYLES: [Minimal]")

	if r.State != ResultsDecoded {
		t.Fatalf("state = %v, want decoded", r.State)
	}
	if !reflect.DeepEqual(r.Styles, []string{"Minimal"}) {
		t.Errorf("styles = %v", r.Styles)
	}
	if len(r.Products) != 0 {
		t.Errorf("products = %v, want none", r.Products)
	}
}

func TestDecodeResults_NumericIdentifiers(t *testing.T) {
	r := DecodeResults("PRODUCTS [[1001, 'p2']]")

	if !reflect.DeepEqual(r.Products, []string{"1001", "p2"}) {
		t.Errorf("products = %v", r.Products)
	}
}

func TestDecodeResults_EmptyAndGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "nothing recognizable here"} {
		r := DecodeResults(input)
		if r.State != ResultsEmpty {
			t.Errorf("DecodeResults(%q) state = %v, want empty", input, r.State)
		}
		if len(r.Styles) != 0 || len(r.Products) != 0 {
			t.Errorf("DecodeResults(%q) invented values: %+v", input, r)
		}
	}
}
