package parser

import (
	"testing"

	"produccion/internal/grid"
)

func TestNormalizeSKUString(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"ABC1X20":      "ABC1X20",
		"ABC1X20\t  ":  "ABC1X20",
		"ANSA12345":    "12345",
		"00123":        "123",
		"12345.0":      "12345",
		"12345-2":      "12345",
		"AB´C-01.5":    "ABC",
		"ANSAPOL.1 X":  "POL X",
		"  77":         "77",
		"LIQ 200":      "LIQ 200",
	}
	for in, want := range cases {
		if got := NormalizeSKUString(in); got != want {
			t.Fatalf("NormalizeSKUString(%q) want=%q got=%q", in, want, got)
		}
	}
}

func TestNormalizeSKU_NumericCell(t *testing.T) {
	t.Parallel()

	if got := NormalizeSKU(grid.Number(1234)); got != "1234" {
		t.Fatalf("want 1234 got %q", got)
	}
	if got := NormalizeSKU(grid.Number(1234.5)); got != "1234" {
		t.Fatalf("want 1234 got %q", got)
	}
	if got := NormalizeSKU(grid.Empty()); got != "" {
		t.Fatalf("want empty got %q", got)
	}
}

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	ok := []struct {
		v    grid.Value
		want float64
	}{
		{grid.Number(12.5), 12.5},
		{grid.Text(" 1,250.5 "), 1250.5},
		{grid.Text("0"), 0},
	}
	for _, tc := range ok {
		got, valid := ParseQuantity(tc.v)
		if !valid || got != tc.want {
			t.Fatalf("ParseQuantity(%v) want=%v got=%v valid=%v", tc.v, tc.want, got, valid)
		}
	}

	for _, v := range []grid.Value{grid.Empty(), grid.Text("n/a"), grid.Text(""), grid.Text("NaN"), grid.Bool(true)} {
		if _, valid := ParseQuantity(v); valid {
			t.Fatalf("ParseQuantity(%v) should be invalid", v)
		}
	}
}
