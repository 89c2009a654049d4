package formats

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal.txt", "normal.txt"},
		{"path/to/file.txt", "path_to_file.txt"},
		{"", "unnamed"},
		{"a:b*c?d", "a_b_c_d"},
		{"re\x00port\x1f.pdf", "report.pdf"},
	}
	for _, tt := range tests {
		got := SanitizeFilename(tt.input)
		if got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsMSG(t *testing.T) {
	magic := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}
	if !IsMSG(magic) {
		t.Error("expected OLE2 magic to match")
	}
	if IsMSG([]byte("plain text")) {
		t.Error("expected plain text not to match")
	}
	if IsMSG([]byte{0xD0, 0xCF}) {
		t.Error("expected short data not to match")
	}
}

func TestAccepts(t *testing.T) {
	if !Accepts("mail.msg", []byte("no magic here")) {
		t.Error("expected .msg extension to be accepted")
	}
	if Accepts("notes.txt", []byte("no magic here")) {
		t.Error("expected .txt without magic to be rejected")
	}
}
