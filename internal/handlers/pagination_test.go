package handlers

import "testing"

func TestParsePaginationParamsDefaults(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 1 || limit != 20 {
		t.Fatalf("expected defaults 1/20, got %d/%d", page, limit)
	}
}

func TestParsePaginationParamsRejectsInvalid(t *testing.T) {
	for _, tt := range [][2]string{{"0", "10"}, {"-1", "10"}, {"abc", "10"}, {"1", "0"}, {"1", "x"}} {
		if _, _, err := parsePaginationParams(tt[0], tt[1]); err == nil {
			t.Fatalf("expected error for page=%q limit=%q", tt[0], tt[1])
		}
	}
}

func TestParsePaginationParamsParsesValues(t *testing.T) {
	page, limit, err := parsePaginationParams("3", "50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 3 || limit != 50 {
		t.Fatalf("expected 3/50, got %d/%d", page, limit)
	}
}

func TestParsePaginationParamsCapsLimit(t *testing.T) {
	_, limit, err := parsePaginationParams("1", "5000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 100 {
		t.Fatalf("expected limit capped at 100, got %d", limit)
	}
}
