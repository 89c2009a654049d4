// types.go defines the decoded message, recipient, and attachment shapes
// handed to the resolution pipeline.

package msg

import "time"

// Message holds the decoded contents of a .msg file. Fields are best
// effort: any of them may be empty when the source property is absent.
type Message struct {
	Subject string

	SenderName        string // PR_SENDER_NAME
	SenderEmail       string // PR_SENDER_EMAIL_ADDRESS (often an X.500 DN)
	SenderSMTPAddress string // PidTagSenderSmtpAddress

	SentRepresentingName        string
	SentRepresentingEmail       string
	SentRepresentingSMTPAddress string

	TransportHeaders string // raw RFC 5322 header block, if captured

	Body     string // plain text body
	BodyHTML string // HTML body

	ClientSubmitTime time.Time // zero when absent
	DeliveryTime     time.Time // zero when absent

	Recipients  []Recipient
	Attachments []*Attachment
}

// Recipient is one entry from the message's recipient table.
type Recipient struct {
	Name        string // PR_DISPLAY_NAME
	Email       string // PR_EMAIL_ADDRESS (may be an X.500 DN)
	SMTPAddress string // PR_SMTP_ADDRESS
}

// Attachment describes one attachment storage. Content is read from the
// container during decode and served through the accessor so a corrupt
// attachment surfaces as a per-attachment error, not a decode failure.
type Attachment struct {
	ShortName string // PR_ATTACH_FILENAME (8.3 format)
	LongName  string // PR_ATTACH_LONG_FILENAME
	MimeTag   string // PR_ATTACH_MIME_TAG
	Method    int    // AttachByValue, AttachEmbeddedMsg, or AttachOLE
	HasData   bool   // true when the data stream exists in the container

	data    []byte
	readErr error
}

// NewAttachment builds a descriptor with a preloaded payload or a
// captured read error. Decoders other than this package's, and tests,
// use it to assemble attachment lists by hand.
func NewAttachment(shortName, longName, mimeTag string, method int, data []byte, readErr error) *Attachment {
	return &Attachment{
		ShortName: shortName,
		LongName:  longName,
		MimeTag:   mimeTag,
		Method:    method,
		HasData:   data != nil || readErr != nil,
		data:      data,
		readErr:   readErr,
	}
}

// Content returns the attachment payload, or the error captured while
// reading its data stream.
func (a *Attachment) Content() ([]byte, error) {
	if a.readErr != nil {
		return nil, a.readErr
	}
	return a.data, nil
}

// Filename returns the best available name for the attachment, preferring
// the short name over the long name, matching what the original property
// order yields in practice. Empty when neither is set.
func (a *Attachment) Filename() string {
	if a.ShortName != "" {
		return a.ShortName
	}
	return a.LongName
}
