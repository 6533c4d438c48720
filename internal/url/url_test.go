package url

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://nms.example.com/api/v0/", want: "https://nms.example.com/api/v0"},
		{in: "https://nms.example.com//api//v0", want: "https://nms.example.com/api/v0"},
		{in: "http://10.0.0.5:8000/api/v0", want: "http://10.0.0.5:8000/api/v0"},
		{in: "nms.example.com/api/v0", wantErr: true},
		{in: "ftp://nms.example.com/api/v0", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Sanitize(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Sanitize(%q): expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Sanitize(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoin(t *testing.T) {
	got := Join("https://nms.example.com/api/v0/", "devicegroups", "core switches/dc1")
	want := "https://nms.example.com/api/v0/devicegroups/core%20switches%2Fdc1"
	if got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
}
