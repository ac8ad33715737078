package extract

import "testing"

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		name string
		text string
		min  *float64
		max  *float64
	}{
		{"empty", "", nil, nil},
		{"free italian", "Gratis", f(0), f(0)},
		{"free english", "Free", f(0), f(0)},
		{"free entry", "free entry", f(0), f(0)},
		{"ingresso gratuito", "Ingresso gratuito", f(0), f(0)},
		{"single price", "€15", f(15), f(15)},
		{"range", "€10 – €25", f(10), f(25)},
		{"range reversed", "€25 - €10", f(10), f(25)},
		{"decimal comma", "€12,50", f(12.5), f(12.5)},
		{"decimal dot", "from €9.99", f(9.99), f(9.99)},
		{"no numbers", "sold out", nil, nil},
		{"three prices", "€5 / €10 / €20", f(5), f(20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := ParsePriceRange(tt.text)
			assertFloat(t, "min", min, tt.min)
			assertFloat(t, "max", max, tt.max)
		})
	}
}

func f(v float64) *float64 { return &v }

func assertFloat(t *testing.T, field string, got, want *float64) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s: got %v, want %v", field, deref(got), deref(want))
	case *got != *want:
		t.Errorf("%s: got %v, want %v", field, *got, *want)
	}
}

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
