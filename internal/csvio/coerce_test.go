package csvio

import (
	"testing"
	"time"
)

func TestIntFallbacks(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		coerced bool
	}{
		{"1", 1, false},
		{"0", 0, false},
		{"1.0", 1, false},
		{" 1 ", 1, false},
		{"", 0, true},
		{"NaN", 0, true},
		{"null", 0, true},
		{"X, X, X, X", 0, true},
		{"x", 0, true},
		{"1,0", 0, true},
		{"abc", 0, true},
	}
	for _, tc := range cases {
		got, coerced := Int(tc.in)
		if got != tc.want || coerced != tc.coerced {
			t.Errorf("Int(%q) = (%d, %v), want (%d, %v)", tc.in, got, coerced, tc.want, tc.coerced)
		}
	}
}

func TestFloatFallbacks(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		coerced bool
	}{
		{"45", 45, false},
		{"45.5", 45.5, false},
		{"-12.3", -12.3, false},
		{"80 km/h", 80, false},
		{"", 0, true},
		{"nan", 0, true},
		{"-", 0, true},
		{"xx", 0, true},
		{"X", 0, true},
		{".", 0, true},
		{"km/h", 0, true},
	}
	for _, tc := range cases {
		got, coerced := Float(tc.in)
		if got != tc.want || coerced != tc.coerced {
			t.Errorf("Float(%q) = (%v, %v), want (%v, %v)", tc.in, got, coerced, tc.want, tc.coerced)
		}
	}
}

func TestFloatNeverPanicsOnGarbage(t *testing.T) {
	for _, in := range []string{"--", "..", "1.2.3", "-.-", "1-2", "\x00"} {
		got, _ := Float(in)
		_ = got
	}
}

func TestFlag(t *testing.T) {
	cases := map[string]bool{
		"1":   true,
		" 1 ": true,
		"0":   false,
		"":    false,
		"2":   false,
		"yes": false,
	}
	for in, want := range cases {
		if got := Flag(in); got != want {
			t.Errorf("Flag(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDateDayFirst(t *testing.T) {
	got, ok := Date("01/02/2024 10:00:00")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	want := time.Date(2024, time.February, 1, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v (day-first), got %v", want, got)
	}
}

func TestDateVariants(t *testing.T) {
	cases := []string{
		"15/03/2024",
		"15/03/2024 08:30",
		"2024-03-15 08:30:00",
		"2024-03-15",
	}
	for _, in := range cases {
		if _, ok := Date(in); !ok {
			t.Errorf("Date(%q) failed to parse", in)
		}
	}
}

func TestDateUnparseable(t *testing.T) {
	for _, in := range []string{"", "NaN", "not a date", "32/13/2024"} {
		if got, ok := Date(in); ok || !got.IsZero() {
			t.Errorf("Date(%q) = (%v, %v), want zero time and false", in, got, ok)
		}
	}
}

func TestLatLon(t *testing.T) {
	lat, lon, ok := LatLon("-23.55,-46.63")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if lat != -23.55 || lon != -46.63 {
		t.Fatalf("got (%v, %v)", lat, lon)
	}
}

func TestLatLonSplitsOnFirstComma(t *testing.T) {
	if _, _, ok := LatLon("-23.55,-46.63,extra"); ok {
		t.Fatalf("trailing garbage after the first comma must not parse")
	}
}

func TestLatLonFailuresAreSilent(t *testing.T) {
	for _, in := range []string{"", "no comma", "a,b", "1.0", ","} {
		if _, _, ok := LatLon(in); ok {
			t.Errorf("LatLon(%q) unexpectedly parsed", in)
		}
	}
}

func TestTextFallback(t *testing.T) {
	if got := Text("  ACME  ", "fallback"); got != "ACME" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	for _, in := range []string{"", "NaN", "None", "null"} {
		if got := Text(in, "fallback"); got != "fallback" {
			t.Errorf("Text(%q) = %q, want fallback", in, got)
		}
	}
}
