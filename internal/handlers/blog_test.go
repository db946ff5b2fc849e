package handlers

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"How To Pick Zippers", "how-to-pick-zippers"},
		{"  GST & Your Invoice  ", "gst-your-invoice"},
		{"Buttons 101: Sizes, Shanks", "buttons-101-sizes-shanks"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := slugify(tt.title); got != tt.want {
			t.Fatalf("slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSlugifyStable(t *testing.T) {
	if slugify("Same Title") != slugify("Same Title") {
		t.Fatal("expected slugify to be deterministic")
	}
}
