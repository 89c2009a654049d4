package msg

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func TestDecodeRejectsNonMSG(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x00, 0x01, 0x02},
		[]byte("From: someone@example.com"),
	}
	for _, in := range inputs {
		_, err := Decode(in)
		if !errors.Is(err, ErrNotMSG) {
			t.Errorf("Decode(%d bytes) error = %v, want ErrNotMSG", len(in), err)
		}
	}
}

func TestSubstgName(t *testing.T) {
	tests := []struct {
		name   string
		id     int
		typ    int
		wantOK bool
	}{
		{"__substg1.0_0037001F", 0x0037, 0x001F, true},
		{"__substg1.0_37010102", 0x3701, 0x0102, true},
		{"__substg1.0_39FE001F", 0x39FE, 0x001F, true},
		{"__properties_version1.0", 0, 0, false},
		{"__substg1.0_00", 0, 0, false},
		{"__substg1.0_ZZZZ001F", 0, 0, false},
	}
	for _, tt := range tests {
		id, typ, ok := substgName(tt.name)
		if ok != tt.wantOK || id != tt.id || typ != tt.typ {
			t.Errorf("substgName(%q) = (%#x, %#x, %v), want (%#x, %#x, %v)",
				tt.name, id, typ, ok, tt.id, tt.typ, tt.wantOK)
		}
	}
}

func TestStorageIndex(t *testing.T) {
	idx, ok := storageIndex("__recip_version1.0_#00000002", recipStoragePrefix)
	if !ok || idx != 2 {
		t.Fatalf("storageIndex = (%d, %v), want (2, true)", idx, ok)
	}
	if _, ok := storageIndex("__attach_version1.0_#00000000", recipStoragePrefix); ok {
		t.Error("attachment storage should not match recipient prefix")
	}
}

func TestDecodeStringUnicode(t *testing.T) {
	// "Hi" in UTF-16LE with trailing NUL.
	data := []byte{'H', 0, 'i', 0, 0, 0}
	if got := decodeString(ptUnicode, data); got != "Hi" {
		t.Errorf("decodeString = %q, want %q", got, "Hi")
	}
	if got := decodeString(ptString8, []byte("plain\x00")); got != "plain" {
		t.Errorf("decodeString = %q, want %q", got, "plain")
	}
}

func TestFiletimeToTime(t *testing.T) {
	// FILETIME for 2020-01-01T00:00:00Z.
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 132223104000000000)
	got := filetimeToTime(buf[:])
	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("filetimeToTime = %v, want %v", got, want)
	}
	if !filetimeToTime([]byte{0, 0, 0, 0, 0, 0, 0, 0}).IsZero() {
		t.Error("zero FILETIME should map to zero time")
	}
	if !filetimeToTime([]byte{1, 2}).IsZero() {
		t.Error("short value should map to zero time")
	}
}

func TestAttachmentFilename(t *testing.T) {
	a := &Attachment{ShortName: "REPORT~1.PDF", LongName: "quarterly report.pdf"}
	if got := a.Filename(); got != "REPORT~1.PDF" {
		t.Errorf("Filename = %q, want short name first", got)
	}
	a = &Attachment{LongName: "quarterly report.pdf"}
	if got := a.Filename(); got != "quarterly report.pdf" {
		t.Errorf("Filename = %q, want long name fallback", got)
	}
	a = &Attachment{}
	if got := a.Filename(); got != "" {
		t.Errorf("Filename = %q, want empty", got)
	}
}

func TestAttachmentContentError(t *testing.T) {
	wantErr := errors.New("truncated stream")
	a := &Attachment{readErr: wantErr}
	if _, err := a.Content(); !errors.Is(err, wantErr) {
		t.Errorf("Content error = %v, want %v", err, wantErr)
	}
	a = &Attachment{data: []byte{1, 2, 3}}
	data, err := a.Content()
	if err != nil || len(data) != 3 {
		t.Errorf("Content = (%d bytes, %v), want (3 bytes, nil)", len(data), err)
	}
}

func TestParseProperties(t *testing.T) {
	// One PT_LONG record for PR_ATTACH_METHOD after an 8-byte header.
	rec := make([]byte, 8+16)
	binary.LittleEndian.PutUint16(rec[8:10], ptLong)
	binary.LittleEndian.PutUint16(rec[10:12], MAPIAttachMethod)
	binary.LittleEndian.PutUint32(rec[16:20], AttachByValue)

	var gotID, gotTyp uint16
	var gotVal uint32
	parseProperties(rec, subPropsHeader, func(id, typ uint16, value []byte) {
		gotID, gotTyp = id, typ
		gotVal = binary.LittleEndian.Uint32(value[:4])
	})
	if gotID != MAPIAttachMethod || gotTyp != ptLong || gotVal != AttachByValue {
		t.Errorf("parseProperties = (%#x, %#x, %d)", gotID, gotTyp, gotVal)
	}
}
