package formatting_test

import (
	"testing"

	"github.com/JaimeStill/glimpse/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bare bytes", "1024", 1024, false},
		{"bytes unit", "512B", 512, false},
		{"kilobytes", "1KB", 1024, false},
		{"megabytes", "10MB", 10 * 1024 * 1024, false},
		{"lowercase unit", "10mb", 10 * 1024 * 1024, false},
		{"with space", "100 MB", 100 * 1024 * 1024, false},
		{"surrounding whitespace", "  5MB  ", 5 * 1024 * 1024, false},
		{"fractional", "1.5KB", 1536, false},
		{"zero", "0", 0, false},
		{"empty string", "", 0, true},
		{"unknown unit", "50XX", 0, true},
		{"no number", "MB", 0, true},
		{"negative", "-5MB", 0, true},
		{"iec kibibytes", "4KiB", 4096, false},
		{"iec lowercase", "2 mib", 2 * 1024 * 1024, false},
		{"trailing dot", "3.MB", 3 * 1024 * 1024, false},
		{"two dots", "1.2.3MB", 0, true},
		{"space inside unit", "5 M B", 0, true},
		{"overflow", "9000000EB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name      string
		n         int64
		precision int
		want      string
	}{
		{"zero", 0, 2, "0 B"},
		{"bytes", 500, 0, "500 B"},
		{"one KB", 1024, 0, "1 KB"},
		{"10 MB", 10 * 1024 * 1024, 0, "10 MB"},
		{"fractional MB", 1536 * 1024, 1, "1.5 MB"},
		{"negative precision clamped to zero", 1024, -1, "1 KB"},
		{"bytes ignore precision", 512, 2, "512 B"},
		{"negative count", -2048, 0, "-2 KB"},
		{"largest unit", 3 << 60, 0, "3 EB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
				t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
			}
		})
	}
}
