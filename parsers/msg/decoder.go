// decoder.go walks the compound file directory tree and maps MAPI
// property streams onto the Message shape.

package msg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
)

var cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Directory entry names defined by MS-OXMSG.
const (
	substgPrefix        = "__substg1.0_"
	recipStoragePrefix  = "__recip_version1.0_#"
	attachStoragePrefix = "__attach_version1.0_#"
	propertiesStream    = "__properties_version1.0"
)

// Fixed property stream header sizes (MS-OXMSG 2.4.1).
const (
	topPropsHeader = 32
	subPropsHeader = 8
)

// Decode parses a raw .msg byte buffer and returns the decoded Message.
// Recipients and attachments are ordered by their storage index, which
// preserves the order of the original recipient and attachment tables.
func Decode(data []byte) (*Message, error) {
	if !bytes.HasPrefix(data, cfbMagic) {
		return nil, ErrNotMSG
	}
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotMSG, err)
	}

	m := &Message{}
	recips := make(map[int]*Recipient)
	attachs := make(map[int]*Attachment)

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		path := storagePath(entry.Path)
		switch len(path) {
		case 0:
			applyTopLevel(m, entry)
		case 1:
			if idx, ok := storageIndex(path[0], recipStoragePrefix); ok {
				r := recips[idx]
				if r == nil {
					r = &Recipient{}
					recips[idx] = r
				}
				applyRecipientStream(r, entry)
			} else if idx, ok := storageIndex(path[0], attachStoragePrefix); ok {
				a := attachs[idx]
				if a == nil {
					a = &Attachment{}
					attachs[idx] = a
				}
				applyAttachmentStream(a, entry)
			}
		}
		// Deeper levels hold embedded message internals; not decoded.
	}

	for _, idx := range sortedKeys(recips) {
		m.Recipients = append(m.Recipients, *recips[idx])
	}
	for _, idx := range sortedKeys(attachs) {
		m.Attachments = append(m.Attachments, attachs[idx])
	}
	return m, nil
}

// applyTopLevel maps a root-level stream onto the message fields.
func applyTopLevel(m *Message, entry *mscfb.File) {
	if entry.Name == propertiesStream {
		data, err := readStream(entry)
		if err != nil {
			return
		}
		parseProperties(data, topPropsHeader, func(id, typ uint16, value []byte) {
			if typ != ptSystime {
				return
			}
			switch id {
			case MAPIClientSubmitTime:
				m.ClientSubmitTime = filetimeToTime(value)
			case MAPIDeliveryTime:
				m.DeliveryTime = filetimeToTime(value)
			}
		})
		return
	}

	id, typ, ok := substgName(entry.Name)
	if !ok {
		return
	}
	data, err := readStream(entry)
	if err != nil {
		return
	}
	s := decodeString(typ, data)
	switch id {
	case MAPISubject:
		m.Subject = s
	case MAPISenderName:
		m.SenderName = s
	case MAPISenderEmail:
		m.SenderEmail = s
	case MAPISenderSmtpAddress:
		m.SenderSMTPAddress = s
	case MAPISentRepName:
		m.SentRepresentingName = s
	case MAPISentRepEmail:
		m.SentRepresentingEmail = s
	case MAPISentRepSmtp:
		m.SentRepresentingSMTPAddress = s
	case MAPITransportHeaders:
		m.TransportHeaders = s
	case MAPIBody:
		m.Body = s
	case MAPIBodyHTML:
		m.BodyHTML = s
	}
}

// applyRecipientStream maps one stream inside a recipient storage.
func applyRecipientStream(r *Recipient, entry *mscfb.File) {
	id, typ, ok := substgName(entry.Name)
	if !ok {
		return
	}
	data, err := readStream(entry)
	if err != nil {
		return
	}
	s := decodeString(typ, data)
	switch id {
	case MAPIDisplayName:
		r.Name = s
	case MAPIEmailAddress:
		r.Email = s
	case MAPIRecipSmtpAddress:
		r.SMTPAddress = s
	}
}

// applyAttachmentStream maps one stream inside an attachment storage.
// The data stream is read here so that a truncated or unreadable payload
// is captured as a per-attachment error.
func applyAttachmentStream(a *Attachment, entry *mscfb.File) {
	if entry.Name == propertiesStream {
		data, err := readStream(entry)
		if err != nil {
			return
		}
		parseProperties(data, subPropsHeader, func(id, typ uint16, value []byte) {
			if id == MAPIAttachMethod && typ == ptLong {
				a.Method = int(binary.LittleEndian.Uint32(value[:4]))
			}
		})
		return
	}

	id, typ, ok := substgName(entry.Name)
	if !ok {
		return
	}
	if id == MAPIAttachDataBin && typ == ptBinary {
		a.HasData = true
		a.data, a.readErr = readStream(entry)
		return
	}
	data, err := readStream(entry)
	if err != nil {
		return
	}
	s := decodeString(typ, data)
	switch id {
	case MAPIAttachFilename:
		a.ShortName = s
	case MAPIAttachLongFname:
		a.LongName = s
	case MAPIAttachMimeTag:
		a.MimeTag = s
	}
}

// parseProperties walks the fixed 16-byte records of a properties stream.
func parseProperties(data []byte, headerLen int, fn func(id, typ uint16, value []byte)) {
	for off := headerLen; off+16 <= len(data); off += 16 {
		typ := binary.LittleEndian.Uint16(data[off : off+2])
		id := binary.LittleEndian.Uint16(data[off+2 : off+4])
		fn(id, typ, data[off+8:off+16])
	}
}

// substgName parses a "__substg1.0_XXXXYYYY" stream name into its
// property ID and type.
func substgName(name string) (id, typ int, ok bool) {
	if !strings.HasPrefix(name, substgPrefix) || len(name) != len(substgPrefix)+8 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(name[len(substgPrefix):], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return int(v >> 16), int(v & 0xFFFF), true
}

// storageIndex parses the hex index suffix of a recipient or attachment
// storage name.
func storageIndex(name, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	v, err := strconv.ParseUint(name[len(prefix):], 16, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// storagePath strips the root entry mscfb sometimes reports as the first
// path element.
func storagePath(path []string) []string {
	if len(path) > 0 && path[0] == "Root Entry" {
		return path[1:]
	}
	return path
}

// readStream reads a directory entry's full contents.
func readStream(f *mscfb.File) ([]byte, error) {
	if f.Size == 0 {
		return nil, nil
	}
	buf := make([]byte, f.Size)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("reading stream %s: %w", f.Name, err)
	}
	return buf, nil
}

// decodeString converts a property value to a string based on its type.
// Unicode properties are UTF-16LE; string8 are treated as Latin-1-safe
// bytes; binary values (the HTML body) pass through unchanged.
func decodeString(typ int, data []byte) string {
	switch typ {
	case ptUnicode:
		u := make([]uint16, 0, len(data)/2)
		for i := 0; i+1 < len(data); i += 2 {
			u = append(u, binary.LittleEndian.Uint16(data[i:i+2]))
		}
		return strings.TrimRight(string(utf16.Decode(u)), "\x00")
	default:
		return strings.TrimRight(string(data), "\x00")
	}
}

// filetimeToTime converts an 8-byte little-endian FILETIME value.
const filetimeEpochDelta = 116444736000000000 // 100ns ticks from 1601 to 1970

func filetimeToTime(value []byte) time.Time {
	if len(value) < 8 {
		return time.Time{}
	}
	ft := binary.LittleEndian.Uint64(value)
	if ft == 0 || ft < filetimeEpochDelta {
		return time.Time{}
	}
	return time.Unix(0, int64(ft-filetimeEpochDelta)*100).UTC()
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
