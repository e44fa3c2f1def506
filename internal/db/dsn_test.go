package db

import "testing"

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"url passthrough", "postgres://u:p@h:5432/db?sslmode=disable", "postgres://u:p@h:5432/db?sslmode=disable"},
		{"quoted url", `"postgres://u:p@h/db"`, "postgres://u:p@h/db"},
		{"kv gets sslmode", "host=h user=u dbname=d", "host=h user=u dbname=d sslmode=disable"},
		{"kv keeps sslmode", "host=h sslmode=require", "host=h sslmode=require"},
		{"kv collapses spaces", "host=h   user=u  dbname=d sslmode=disable", "host=h user=u dbname=d sslmode=disable"},
		{"garbage unchanged", "not a dsn", "not a dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDSN(tt.in); got != tt.want {
				t.Errorf("NormalizeDSN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("host=h password=secret dbname=d"); got != "host=h password=*** dbname=d" {
		t.Errorf("kv mask: %q", got)
	}
	if got := MaskDSN("postgres://user:secret@h/db"); got != "postgres://user:***@h/db" {
		t.Errorf("url mask: %q", got)
	}
}
