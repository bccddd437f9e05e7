package crawl

import "testing"

func TestIsSameDomain(t *testing.T) {
	if !IsSameDomain("https://docs.example.com/a", "docs.example.com") {
		t.Error("same host rejected")
	}
	if IsSameDomain("https://other.example.com/a", "docs.example.com") {
		t.Error("other host accepted")
	}
	if IsSameDomain("://bad", "docs.example.com") {
		t.Error("unparsable URL accepted")
	}
}

func TestIsStaticAsset(t *testing.T) {
	static := []string{
		"https://x/y/pic.PNG",
		"https://x/app.js?v=3",
		"https://x/manual.pdf",
	}
	for _, u := range static {
		if !IsStaticAsset(u) {
			t.Errorf("IsStaticAsset(%s) = false", u)
		}
	}
	pages := []string{
		"https://x/docs",
		"https://x/docs.html",
		"https://x/",
	}
	for _, u := range pages {
		if IsStaticAsset(u) {
			t.Errorf("IsStaticAsset(%s) = true", u)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := map[string]string{
		"https://x/docs/":       "https://x/docs",
		"https://x/docs#intro":  "https://x/docs",
		"https://x/docs?page=2": "https://x/docs?page=2",
		"https://x/":            "https://x/",
	}
	for in, want := range cases {
		if got := NormalizeURL(in); got != want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParentURL(t *testing.T) {
	cases := map[string]string{
		"https://x/docs/guide/intro": "https://x/docs/guide",
		"https://x/docs/guide/":      "https://x/docs",
		"https://x/docs":             "https://x",
		"https://x/":                 "",
		"https://x":                  "",
	}
	for in, want := range cases {
		if got := ParentURL(in); got != want {
			t.Errorf("ParentURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLastSegment(t *testing.T) {
	cases := map[string]string{
		"https://x/docs/getting-started": "getting started",
		"https://x/docs/api_reference":   "api reference",
		"https://x/docs/":                "docs",
		"https://docs.example.com/":      "docs.example.com",
		"https://docs.example.com":       "docs.example.com",
	}
	for in, want := range cases {
		if got := LastSegment(in); got != want {
			t.Errorf("LastSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
