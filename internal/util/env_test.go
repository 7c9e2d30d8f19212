package util

import (
	"slices"
	"testing"
)

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value      string
		defaultVal bool
		want       bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"YES", false, true},
		{" on ", false, true},
		{"1", false, true},
		{"false", true, false},
		{"off", true, false},
		{"0", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		t.Setenv("NURSE_TEST_BOOL", tt.value)
		if got := ParseBoolEnv("NURSE_TEST_BOOL", tt.defaultVal); got != tt.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defaultVal, got, tt.want)
		}
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("NURSE_TEST_VALUE", "  ")
	if got := GetEnv("NURSE_TEST_VALUE", "fallback"); got != "fallback" {
		t.Errorf("blank value should use default, got %q", got)
	}
	t.Setenv("NURSE_TEST_VALUE", " :9090 ")
	if got := GetEnv("NURSE_TEST_VALUE", "fallback"); got != ":9090" {
		t.Errorf("expected trimmed value, got %q", got)
	}
}

func TestParseListEnv(t *testing.T) {
	t.Setenv("NURSE_TEST_LIST", "http://a.test, ,http://b.test,")
	want := []string{"http://a.test", "http://b.test"}
	if got := ParseListEnv("NURSE_TEST_LIST"); !slices.Equal(got, want) {
		t.Errorf("ParseListEnv = %v, want %v", got, want)
	}
	t.Setenv("NURSE_TEST_LIST", "")
	if got := ParseListEnv("NURSE_TEST_LIST"); got != nil {
		t.Errorf("expected nil for empty list, got %v", got)
	}
}
