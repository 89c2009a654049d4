// types.go defines the normalized record produced by the pipeline.

package resolve

import "time"

// Identity is one resolved sender or recipient. Email is empty when no
// valid address could be recovered; it is never a directory identifier.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Attachment is one extracted attachment. Size always equals
// len(Content). Content is excluded from JSON; the web surface ships
// attachments only through the ZIP export.
type Attachment struct {
	FileName string `json:"fileName"`
	Content  []byte `json:"-"`
	Size     int    `json:"size"`
	MimeType string `json:"mimeType,omitempty"`
}

// Message is the normalized, analysis-ready record for one input file.
// Records are immutable once created: the pipeline fills every field at
// creation and nothing mutates them afterwards.
type Message struct {
	ID          string       `json:"id"`
	SourceFile  string       `json:"fileName"`
	Subject     string       `json:"subject"`
	SenderName  string       `json:"senderName"`
	SenderEmail string       `json:"senderEmail"`
	SenderPhone string       `json:"senderPhone,omitempty"`
	Recipients  []Identity   `json:"recipients"`
	Body        string       `json:"body"`
	SentDate    time.Time    `json:"sentDate"`
	Attachments []Attachment `json:"attachments"`

	Failed       bool   `json:"hasError,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
