package main

import "testing"

func TestLookupDotted(t *testing.T) {
	m := map[string]any{
		"model": map[string]any{
			"default": "claude-sonnet",
		},
	}

	v, ok := lookupDotted(m, []string{"model", "default"})
	if !ok || v != "claude-sonnet" {
		t.Fatalf("lookupDotted(model.default) = %v, %v", v, ok)
	}

	if _, ok := lookupDotted(m, []string{"model", "missing"}); ok {
		t.Fatal("expected lookupDotted to report missing key as not found")
	}
	if _, ok := lookupDotted(m, []string{"missing"}); ok {
		t.Fatal("expected lookupDotted to report missing top-level key as not found")
	}
}

func TestSetDotted(t *testing.T) {
	m := map[string]any{}
	setDotted(m, []string{"model", "default"}, "claude-sonnet")

	v, ok := lookupDotted(m, []string{"model", "default"})
	if !ok || v != "claude-sonnet" {
		t.Fatalf("setDotted then lookupDotted = %v, %v", v, ok)
	}
}

func TestSetDottedOverwritesNonMapValue(t *testing.T) {
	m := map[string]any{"model": "flat-value"}
	setDotted(m, []string{"model", "default"}, "claude-sonnet")

	v, ok := lookupDotted(m, []string{"model", "default"})
	if !ok || v != "claude-sonnet" {
		t.Fatalf("expected nested overwrite to succeed, got %v, %v", v, ok)
	}
}
