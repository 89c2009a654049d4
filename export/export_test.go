package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lochlan-colman/Disquisitionis-MSG-repository/resolve"
)

func sampleRecord() resolve.Message {
	return resolve.Message{
		ID:          "id-1",
		SourceFile:  "mail.msg",
		Subject:     "Quarterly figures",
		SenderName:  "Jane Doe",
		SenderEmail: "jane@example.com",
		SenderPhone: "0412 345 678",
		Recipients: []resolve.Identity{
			{Name: "Bob", Email: "bob@example.com"},
			{Name: "No Address", Email: ""},
		},
		Body:     "Please find attached.",
		SentDate: time.Date(2023, 6, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestWorkbookEmpty(t *testing.T) {
	_, err := Workbook(nil)
	assert.True(t, errors.Is(err, ErrNoMessages))
}

func TestWorkbookRows(t *testing.T) {
	data, err := Workbook([]resolve.Message{sampleRecord()})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"Sender Name", "Sender Email", "Sender Phone", "To", "Sent Date", "Subject", "Body"}, rows[0])
	assert.Equal(t, "Jane Doe", rows[1][0])
	assert.Equal(t, "jane@example.com", rows[1][1])
	assert.Equal(t, "0412 345 678", rows[1][2])
	assert.Equal(t, "bob@example.com; No Address", rows[1][3])
	assert.Equal(t, "2023-06-01 09:30:00", rows[1][4])
	assert.Equal(t, "Quarterly figures", rows[1][5])
	assert.Equal(t, "Please find attached.", rows[1][6])
}

func TestSafeBodyTruncation(t *testing.T) {
	body := strings.Repeat("a", 40000)
	got := safeBody(body)
	assert.Len(t, got, maxBodyCell+len(truncationMarker))
	assert.Equal(t, body[:maxBodyCell], got[:maxBodyCell])
	assert.True(t, strings.HasSuffix(got, truncationMarker))

	// At or under the ceiling nothing changes.
	exact := strings.Repeat("b", maxBodyCell)
	assert.Equal(t, exact, safeBody(exact))
}

func TestSafeBodyCountsCharacters(t *testing.T) {
	// 20,000 characters is under the ceiling even though the UTF-8
	// encoding is 40,000 bytes; the body must pass through untouched.
	under := strings.Repeat("é", 20000)
	assert.Equal(t, under, safeBody(under))

	// Over the ceiling, the cut lands on a rune boundary and keeps
	// exactly the ceiling's worth of characters.
	over := strings.Repeat("é", 40000)
	got := safeBody(over)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, truncationMarker))
	assert.Equal(t, maxBodyCell+utf8.RuneCountInString(truncationMarker), utf8.RuneCountInString(got))
}

func TestSubjectPrefix(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"Quarterly figures", "Quart"},
		{"RE: budget", "REbud"},
		{"hi", "hi"},
		{"!!!", "NoSub"},
		{"", "NoSub"},
		{"a b 1 2 3 4", "ab123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, subjectPrefix(tt.subject), "subject %q", tt.subject)
	}
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{}
	tryName := func(name string) string {
		got := uniqueName(used, name)
		used[got] = true
		return got
	}

	assert.Equal(t, "ABCDE-report.pdf", tryName("ABCDE-report.pdf"))
	assert.Equal(t, "ABCDE-report_(1).pdf", tryName("ABCDE-report.pdf"))
	assert.Equal(t, "ABCDE-report_(2).pdf", tryName("ABCDE-report.pdf"))
	assert.Equal(t, "noext", tryName("noext"))
	assert.Equal(t, "noext_(1)", tryName("noext"))
}

func TestAttachmentArchive(t *testing.T) {
	recA := sampleRecord()
	recA.Subject = "ABCDE meeting"
	recA.Attachments = []resolve.Attachment{
		{FileName: "report.pdf", Content: []byte("pdf-a"), Size: 5},
	}
	recB := sampleRecord()
	recB.Subject = "ABCDE followup"
	recB.Attachments = []resolve.Attachment{
		{FileName: "report.pdf", Content: []byte("pdf-b"), Size: 5},
	}

	data, err := AttachmentArchive([]resolve.Message{recA, recB})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	names := []string{zr.File[0].Name, zr.File[1].Name}
	assert.Equal(t, []string{"ABCDE-report.pdf", "ABCDE-report_(1).pdf"}, names)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "pdf-a", string(content))
}

func TestAttachmentArchivePreconditions(t *testing.T) {
	_, err := AttachmentArchive(nil)
	assert.True(t, errors.Is(err, ErrNoMessages))

	// Records without attachments are a distinct condition.
	_, err = AttachmentArchive([]resolve.Message{sampleRecord()})
	assert.True(t, errors.Is(err, ErrNoAttachments))
}

func TestAttachmentArchiveSanitizesNames(t *testing.T) {
	rec := sampleRecord()
	rec.Subject = "X"
	rec.Attachments = []resolve.Attachment{
		{FileName: "../../evil.sh", Content: []byte("x"), Size: 1},
	}
	data, err := AttachmentArchive([]resolve.Message{rec})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "X-.._.._evil.sh", zr.File[0].Name)
}
