package util

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Svelte Society", "svelte-society"},
		{"svelte_society", "svelte-society"},
		{"SVELTE-SOCIETY", "svelte-society"},
		{"Crème Brûlée", "creme-brulee"},
		{"  multi   word ", "multi-word"},
		{"--leading--", "leading"},
		{"🐉 Dragons!", "dragons"},
		{"a/b\\c", "a-b-c"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugify_TruncatesWithoutTrailingDash(t *testing.T) {
	long := strings.Repeat("ab ", 60)
	got := Slugify(long)
	if len(got) > MaxSlugLength {
		t.Fatalf("slug length = %d, want <= %d", len(got), MaxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with a dash", got)
	}
}

func TestIsSlug(t *testing.T) {
	valid := []string{"svelte", "svelte-kit", "a1-b2"}
	for _, s := range valid {
		if !IsSlug(s) {
			t.Errorf("IsSlug(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "Svelte", "svelte--kit", "-svelte", "svelte kit", "svelte_kit"}
	for _, s := range invalid {
		if IsSlug(s) {
			t.Errorf("IsSlug(%q) = true, want false", s)
		}
	}
}
