package csvio

import (
	"strconv"
	"strings"
	"time"
)

// Coercion rules never fail: every malformed input resolves to a typed
// fallback. The boolean result reports whether the fallback was taken, so
// callers can surface data-quality counts without changing control flow.

var nullLike = map[string]struct{}{
	"":     {},
	"nan":  {},
	"null": {},
	"none": {},
}

func isNullLike(raw string) bool {
	_, ok := nullLike[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Int parses integer flag columns. Vendor placeholders like "X, X, X, X" and
// anything unparseable fall back to 0. "1.0" style values are accepted by
// parsing as float first and truncating.
func Int(raw string) (int, bool) {
	if isNullLike(raw) {
		return 0, true
	}
	val := strings.TrimSpace(raw)
	if strings.ContainsAny(val, "xX") || strings.Contains(val, ",") {
		return 0, true
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, true
	}
	return int(f), false
}

// Float parses numeric columns (speed, odometers, voltage). Inputs containing
// x/X or a bare "-" fall back to 0.0; otherwise every character that is not a
// digit, '.' or '-' is stripped before parsing.
func Float(raw string) (float64, bool) {
	if isNullLike(raw) {
		return 0, true
	}
	val := strings.TrimSpace(raw)
	if strings.ContainsAny(val, "xX") || val == "-" {
		return 0, true
	}
	var b strings.Builder
	for _, c := range val {
		if (c >= '0' && c <= '9') || c == '.' || c == '-' {
			b.WriteRune(c)
		}
	}
	stripped := b.String()
	if stripped == "" || stripped == "." || stripped == "-" {
		return 0, true
	}
	f, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0, true
	}
	return f, false
}

// Flag interprets boolean-as-string columns: literal "1" after trimming.
func Flag(raw string) bool {
	return strings.TrimSpace(raw) == "1"
}

// Source vendors use Brazilian day-first date order.
var dateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Date parses day-first timestamps. Unparseable input returns the zero time
// and ok=false; the caller decides whether the field was mandatory.
func Date(raw string) (time.Time, bool) {
	if isNullLike(raw) {
		return time.Time{}, false
	}
	val := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LatLon splits a composite "lat,lon" location string on the first comma. Any
// failure leaves both halves unset; coordinates are best-effort enrichment,
// never a required field.
func LatLon(raw string) (float64, float64, bool) {
	if isNullLike(raw) {
		return 0, 0, false
	}
	latStr, lonStr, found := strings.Cut(raw, ",")
	if !found {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// Text trims a free-text column and substitutes the field's fallback for
// null-like values so downstream grouping never sees empties it cannot handle.
func Text(raw, fallback string) string {
	if isNullLike(raw) {
		return fallback
	}
	return strings.TrimSpace(raw)
}
