package crawler

import "testing"

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Already-Slugged  ", "already-slugged"},
		{"Ünïcode & Symbols!", "n-code-symbols"},
		{"multiple   spaces", "multiple-spaces"},
		{"trailing-", "trailing"},
	}

	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugForURL(t *testing.T) {
	t.Parallel()

	if got := slugForURL("https://blog.example.org/posts/My-Post/", "fallback"); got != "my-post" {
		t.Fatalf("expected slug from last path segment, got %q", got)
	}
	if got := slugForURL("https://blog.example.org", "Fallback Title"); got != "fallback-title" {
		t.Fatalf("expected title fallback, got %q", got)
	}
}
