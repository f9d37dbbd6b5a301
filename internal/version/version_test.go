package version

import (
	"strings"
	"testing"
)

func TestBuildID(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		want      int
		wantError bool
	}{
		{name: "epoch", date: "2026-01-01", want: 0},
		{name: "next day", date: "2026-01-02", want: 1},
		{name: "one year", date: "2027-01-01", want: 365},
		{name: "across leap year", date: "2029-01-01", want: 1096},
		{name: "invalid", date: "01/02/2026", wantError: true},
		{name: "empty", date: "", wantError: true},
		{name: "before epoch", date: "2025-12-31", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildID(tt.date)
			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got id %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildID(%q) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	oldDate, oldCommit := BuildDate, BuildCommit
	defer func() { BuildDate, BuildCommit = oldDate, oldCommit }()

	BuildDate, BuildCommit = "", ""
	info := Info()
	if info.Error == "" || info.Commit != "unknown" || info.Protocol != Protocol {
		t.Errorf("Dev build info = %+v", info)
	}
	if !strings.Contains(info.String(), "dev build") {
		t.Errorf("String() = %q", info.String())
	}

	BuildDate, BuildCommit = "2026-02-01", "abc123"
	info = Info()
	if info.Error != "" || info.BuildID != 31 {
		t.Fatalf("Release info = %+v", info)
	}
	if s := String(); !strings.Contains(s, "build 31") || !strings.Contains(s, "commit[abc123]") {
		t.Errorf("String() = %q", s)
	}
}
