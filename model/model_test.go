package model

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		tag     string
		want    string
		wantErr bool
	}{
		{"en-US", "en-US", false},
		{"de", "de", false},
		{"zh", "zh", false},
		{"", "", true},
		{"!!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			m, err := Parse(tt.tag)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) = nil error, want failure", tt.tag)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) = %v", tt.tag, err)
			}
			if m.String() != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.tag, m.String(), tt.want)
			}
		})
	}
}

func TestModel_Equal(t *testing.T) {
	a := MustParse("en-US")
	b := MustParse("en-US")
	c := MustParse("de")

	if !a.Equal(b) {
		t.Error("identical tags compare unequal")
	}
	if a.Equal(c) {
		t.Error("distinct tags compare equal")
	}
}

func TestDownloadState_String(t *testing.T) {
	tests := []struct {
		state DownloadState
		want  string
	}{
		{StateNotRequested, "not-requested"},
		{StateDownloading, "downloading"},
		{StateDownloaded, "downloaded"},
		{StateFailed, "failed"},
		{DownloadState(42), "state(42)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
