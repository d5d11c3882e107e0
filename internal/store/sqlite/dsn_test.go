package sqlite

import "testing"

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{"memory", "sqlite://:memory:", ":memory:", false},
		{"absolute path", "sqlite:///var/data/site.db", "/var/data/site.db", false},
		{"relative path", "sqlite://site.db", "./site.db", false},
		{"explicit relative path", "sqlite://./site.db", "./site.db", false},
		{"with query", "sqlite://site.db?mode=ro", "./site.db?mode=ro", false},
		{"wrong scheme", "postgres://localhost/site", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.dsn)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.dsn)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDSN(%q): %v", tt.dsn, err)
			}
			if got != tt.want {
				t.Errorf("parseDSN(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}
