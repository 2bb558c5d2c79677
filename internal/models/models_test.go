package models

import (
	"errors"
	"testing"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		input    PageRequest
		expected PageRequest
	}{
		{"defaults", PageRequest{}, PageRequest{Page: 1, PerPage: 10}},
		{"negative page", PageRequest{Page: -3, PerPage: 5}, PageRequest{Page: 1, PerPage: 5}},
		{"per page capped", PageRequest{Page: 2, PerPage: 500}, PageRequest{Page: 2, PerPage: 100}},
		{"unchanged", PageRequest{Page: 4, PerPage: 25}, PageRequest{Page: 4, PerPage: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.Normalize()
			if got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestNewArticlePage(t *testing.T) {
	req := PageRequest{Page: 2, PerPage: 2}
	articles := []Article{{ID: 3, Title: "c"}, {ID: 4, Title: "d"}}

	page := NewArticlePage(req, articles, 5)

	if page.LastPage != 3 {
		t.Errorf("Expected last page 3, got %d", page.LastPage)
	}
	if page.From != 3 || page.To != 4 {
		t.Errorf("Expected from/to 3/4, got %d/%d", page.From, page.To)
	}
	if page.Total != 5 {
		t.Errorf("Expected total 5, got %d", page.Total)
	}
}

func TestNewArticlePage_Empty(t *testing.T) {
	page := NewArticlePage(PageRequest{Page: 1, PerPage: 10}, nil, 0)

	if page.Data == nil {
		t.Error("Expected empty slice, got nil")
	}
	if page.LastPage != 1 {
		t.Errorf("Expected last page 1, got %d", page.LastPage)
	}
	if page.From != 0 || page.To != 0 {
		t.Errorf("Expected zero from/to, got %d/%d", page.From, page.To)
	}
}

func TestPreference_IsEmpty(t *testing.T) {
	if !(&Preference{}).IsEmpty() {
		t.Error("Expected zero preference to be empty")
	}
	if (&Preference{Authors: []string{"Jane"}}).IsEmpty() {
		t.Error("Expected preference with authors to be non-empty")
	}
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError()
	if verr.OrNil() != nil {
		t.Error("Expected nil error when no fields failed")
	}

	verr.Add("per_page", "must be between 1 and 100")
	verr.Add("date_to", "must be a date after or equal to date_from")

	err := verr.OrNil()
	if err == nil {
		t.Fatal("Expected error")
	}

	var target *ValidationError
	if !errors.As(err, &target) {
		t.Fatal("Expected errors.As to find ValidationError")
	}
	if len(target.Fields) != 2 {
		t.Errorf("Expected 2 fields, got %d", len(target.Fields))
	}

	expected := "validation failed: date_to: must be a date after or equal to date_from; per_page: must be between 1 and 100"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}
