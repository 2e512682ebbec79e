package bytesize

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "bytes", input: "512B", want: 512},
		{name: "bare number", input: "4096", want: 4096},
		{name: "kilobytes", input: "100KB", want: 100 * 1024},
		{name: "megabytes", input: "8MB", want: 8 * 1024 * 1024},
		{name: "gigabytes", input: "1GB", want: 1024 * 1024 * 1024},
		{name: "terabytes", input: "1TB", want: int64(1024) * 1024 * 1024 * 1024},
		{name: "decimal", input: "1.5GB", want: int64(1.5 * 1024 * 1024 * 1024)},
		{name: "lowercase", input: "8mb", want: 8 * 1024 * 1024},
		{name: "surrounding spaces", input: " 8 MB ", want: 8 * 1024 * 1024},
		{name: "empty", input: "", wantErr: true},
		{name: "unit only", input: "MB", wantErr: true},
		{name: "garbage", input: "lots", wantErr: true},
		{name: "negative", input: "-1MB", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{512, "512B"},
		{2048, "2.0KB"},
		{8 * 1024 * 1024, "8.0MB"},
		{3 << 30, "3.0GB"},
	}
	for _, tt := range tests {
		if got := Format(tt.input); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
