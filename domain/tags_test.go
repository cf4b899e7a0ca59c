package domain

import "testing"

func TestCategoryForTag(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"golang", "programming"},
		{"GoLang", "programming"},
		{" devops ", "engineering"},
		{"music", "creative"},
		{"startups", "business"},
		{"travel", "lifestyle"},
		{"underwater-basket-weaving", CategoryGeneral},
		{"", CategoryGeneral},
	}
	for _, tt := range tests {
		if got := CategoryForTag(tt.tag); got != tt.want {
			t.Errorf("CategoryForTag(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"Go", " go ", "", "Web", "web", "Rust"})
	want := []string{"go", "web", "rust"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v in first-seen order", got, want)
		}
	}
}
