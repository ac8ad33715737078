package match

import (
	"testing"

	"github.com/cityfeed/cityfeed/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Magazzini Generali", "magazzini generali"},
		{"  BAR   Basso! ", "bar basso"},
		{"Café-Club", "caf club"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlace_ExactBeatsContainment(t *testing.T) {
	places := []model.Place{
		{Name: "Tunnel Club Milano"},
		{Name: "Tunnel"},
	}
	got := Place("tunnel", places)
	if got == nil {
		t.Fatal("Expected a match")
	}
	// Exact normalized equality wins even though the first entry contains
	// the venue text.
	if got.Name != "Tunnel" {
		t.Errorf("Expected exact match, got %q", got.Name)
	}
}

func TestPlace_BidirectionalContainment(t *testing.T) {
	places := []model.Place{{Name: "Circolo Magnolia"}}

	if got := Place("Magnolia", places); got == nil {
		t.Error("Venue contained in place name must match")
	}
	if got := Place("Circolo Magnolia Segrate", places); got == nil {
		t.Error("Place name contained in venue must match")
	}
}

func TestPlace_NoMatch(t *testing.T) {
	places := []model.Place{{Name: "Bar Basso"}}
	if got := Place("Terrazza Duomo", places); got != nil {
		t.Errorf("Expected nil, got %q", got.Name)
	}
	if got := Place("", places); got != nil {
		t.Error("Empty venue must not match")
	}
	if got := Place("Bar Basso", nil); got != nil {
		t.Error("Empty place list must not match")
	}
}
