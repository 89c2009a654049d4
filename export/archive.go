// archive.go bundles every attachment across all records into one flat
// ZIP with deterministic, collision-free names.

package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/lochlan-colman/Disquisitionis-MSG-repository/formats"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/resolve"
)

// AttachmentArchive builds the ZIP bundle. Every attachment's name is
// prefixed with a short token derived from its message's subject; name
// collisions in the flat namespace are resolved with an incrementing
// "_(n)" marker before the extension. Returns ErrNoMessages for an empty
// collection and ErrNoAttachments when no record carries an attachment.
func AttachmentArchive(records []resolve.Message) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoMessages
	}
	total := 0
	for _, rec := range records {
		total += len(rec.Attachments)
	}
	if total == 0 {
		return nil, ErrNoAttachments
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]bool, total)

	for _, rec := range records {
		prefix := subjectPrefix(rec.Subject)
		for _, att := range rec.Attachments {
			name := uniqueName(used, prefix+"-"+formats.SanitizeFilename(att.FileName))
			used[name] = true

			w, err := zw.Create(name)
			if err != nil {
				return nil, fmt.Errorf("creating archive entry %s: %w", name, err)
			}
			if _, err := w.Write(att.Content); err != nil {
				return nil, fmt.Errorf("writing archive entry %s: %w", name, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// subjectPrefix derives the bundle prefix from a subject: its first five
// letters or digits, or "NoSub" when the subject yields nothing usable.
func subjectPrefix(subject string) string {
	var b strings.Builder
	for _, r := range subject {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 5 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "NoSub"
	}
	return b.String()
}

// uniqueName returns name if it is free, otherwise inserts "_(n)" before
// the extension with the smallest n that is. The loop terminates because
// each candidate is distinct.
func uniqueName(used map[string]bool, name string) string {
	if !used[name] {
		return name
	}
	base, ext := name, ""
	if dot := strings.LastIndex(name, "."); dot != -1 {
		base, ext = name[:dot], name[dot:]
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_(%d)%s", base, n, ext)
		if !used[candidate] {
			return candidate
		}
	}
}
