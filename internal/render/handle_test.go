package render_test

import (
	"testing"

	"feditimes/internal/render"
)

func TestDisplayHandle(t *testing.T) {
	tests := []struct {
		name      string
		authorURL string
		want      string
	}{
		{"users path", "https://instance.example/users/alice", "@alice"},
		{"at path", "https://instance.example/@bob", "@bob"},
		{"at path with status", "https://instance.example/@bob/11223344", "@bob"},
		{"profile path", "https://social.example/profile/carol", "@carol"},
		{"u path", "https://lemmy.example/u/dave", "@dave"},
		{"trimmed", "  https://instance.example/users/erin  ", "@erin"},
		{"no handle path", "https://instance.example/about", "Display Name"},
		{"empty", "", "Display Name"},
		{"relative", "users/alice", "Display Name"},
		{"not a url", "::not a url::", "Display Name"},
		{"javascript scheme", "javascript:alert(1)", "Display Name"},
		{"embedded space is escaped", "https://social.example/users/a b", "@a%20b"},
		{"trailing dot", "https://social.example/users/alice.", "@alice."},
		{"trailing paren", "https://social.example/users/alice)", "@alice)"},
		{"other scheme", "ftp://social.example/users/alice", "@alice"},
		{"query ignored", "https://social.example/@alice?lang=de", "@alice"},
		{"no host", "mailto:alice@social.example", "Display Name"},
		{"bad escape", "https://social.example/users/%zz", "Display Name"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := render.DisplayHandle(test.authorURL, "Display Name"); got != test.want {
				t.Fatalf("got %q want %q", got, test.want)
			}
		})
	}
}

func TestDisplayHandleFallbackIsExact(t *testing.T) {
	name := "  Ünïcödé <Name> & Co  "

	if got := render.DisplayHandle("not a url", name); got != name {
		t.Fatalf("expected fallback to equal display name exactly, got %q", got)
	}
}
