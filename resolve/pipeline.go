// pipeline.go composes the normalizer, phone extractor, and attachment
// collector into the single decode-and-resolve step. Process never lets
// an error escape: a file that cannot be decoded, or any unexpected
// internal failure, becomes a Failed record instead.

package resolve

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lochlan-colman/Disquisitionis-MSG-repository/parsers/msg"
)

// Decoder turns a raw .msg byte buffer into a decoded message. The
// concrete implementation is parsers/msg.Decode; tests substitute fakes.
type Decoder interface {
	Decode(data []byte) (*msg.Message, error)
}

// DecoderFunc adapts a plain function to the Decoder interface.
type DecoderFunc func(data []byte) (*msg.Message, error)

func (f DecoderFunc) Decode(data []byte) (*msg.Message, error) { return f(data) }

// Placeholders used when a source field is missing entirely.
const (
	placeholderSender    = "Unknown Sender"
	placeholderRecipient = "Unknown"
	placeholderSubject   = "(No Subject)"
)

var errNoMessageData = errors.New("decoder returned no message data")

// Pipeline resolves decoded messages into normalized records.
type Pipeline struct {
	dec        Decoder
	log        *logrus.Logger
	loosePhone *regexp.Regexp
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for per-attachment extraction warnings.
func WithLogger(log *logrus.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithLoosePhonePattern replaces the fallback phone pattern, which is
// country-specific policy rather than a fixed rule.
func WithLoosePhonePattern(re *regexp.Regexp) Option {
	return func(p *Pipeline) { p.loosePhone = re }
}

// New creates a Pipeline over the given decoder.
func New(dec Decoder, opts ...Option) *Pipeline {
	p := &Pipeline{dec: dec, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Logger returns the pipeline's logger so callers driving the pipeline
// can report through the same sink.
func (p *Pipeline) Logger() *logrus.Logger {
	return p.log
}

// Process decodes one raw file and resolves it into exactly one record.
// sourceFile and modTime describe the input file itself; modTime is the
// sent-date fallback when the message carries no timestamps.
func (p *Pipeline) Process(data []byte, sourceFile string, modTime time.Time) (rec Message) {
	id := uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("file", sourceFile).Errorf("panic during resolution: %v", r)
			rec = failedRecord(id, sourceFile, fmt.Sprint(r))
		}
	}()

	decoded, err := p.dec.Decode(data)
	if err == nil && decoded == nil {
		err = errNoMessageData
	}
	if err != nil {
		p.log.WithField("file", sourceFile).WithError(err).Warn("decode failed")
		return failedRecord(id, sourceFile, err.Error())
	}

	body := decoded.Body
	if body == "" {
		body = decoded.BodyHTML
	}
	subject := decoded.Subject
	if subject == "" {
		subject = placeholderSubject
	}

	return Message{
		ID:          id,
		SourceFile:  sourceFile,
		Subject:     subject,
		SenderName:  resolveSenderName(decoded),
		SenderEmail: resolveSenderEmail(decoded),
		SenderPhone: ExtractPhone(body, p.loosePhone),
		Recipients:  resolveRecipients(decoded),
		Body:        body,
		SentDate:    resolveSentDate(decoded, modTime),
		Attachments: p.collectAttachments(decoded, sourceFile),
	}
}

// failedRecord builds the error-flagged record: safe defaults everywhere
// except identity, source name, and the preserved error text.
func failedRecord(id, sourceFile, errMsg string) Message {
	return Message{
		ID:           id,
		SourceFile:   sourceFile,
		Subject:      "Failed to parse",
		SenderName:   "Error",
		Recipients:   []Identity{},
		Attachments:  []Attachment{},
		Failed:       true,
		ErrorMessage: errMsg,
	}
}

// firstMatch evaluates candidates in order and returns the first
// non-empty result. Keeping the chain explicit keeps its order auditable.
func firstMatch(candidates ...func() string) string {
	for _, c := range candidates {
		if v := c(); v != "" {
			return v
		}
	}
	return ""
}

var fromHeaderRE = regexp.MustCompile(`(?im)^From:[ \t]*(.*)$`)

// resolveSenderEmail tries the sender address sources from most to least
// reliable. Whatever survives the chain is still discarded if it turns
// out to be a directory identifier or lacks an @.
func resolveSenderEmail(d *msg.Message) string {
	email := firstMatch(
		func() string { return ExtractEmail(d.SenderSMTPAddress) },
		func() string { return ExtractEmail(d.SentRepresentingSMTPAddress) },
		func() string { return extractFromHeaderLine(d.TransportHeaders) },
		func() string { return ExtractEmail(d.SenderEmail) },
		func() string { return ExtractEmail(d.SentRepresentingEmail) },
		func() string { return ExtractEmail(d.SenderName) },
	)
	if IsDirectoryID(email) || !strings.Contains(email, "@") {
		return ""
	}
	return email
}

// extractFromHeaderLine pulls the first From: line out of a raw
// transport header block and extracts an address from its remainder.
func extractFromHeaderLine(headers string) string {
	if headers == "" {
		return ""
	}
	m := fromHeaderRE.FindStringSubmatch(headers)
	if m == nil {
		return ""
	}
	return ExtractEmail(m[1])
}

func resolveSenderName(d *msg.Message) string {
	name := firstMatch(
		func() string { return d.SenderName },
		func() string { return d.SentRepresentingName },
	)
	if name == "" {
		name = placeholderSender
	}
	return CleanDisplayName(name)
}

// resolveRecipients resolves each raw recipient entry in source order.
func resolveRecipients(d *msg.Message) []Identity {
	out := make([]Identity, 0, len(d.Recipients))
	for _, r := range d.Recipients {
		email := ExtractEmail(r.Email)
		if email == "" {
			email = ExtractEmail(r.SMTPAddress)
		}
		// Last resort: take the raw address field verbatim, but only
		// when it is plausibly an address and never when it is a DN.
		if email == "" && r.Email != "" && !IsDirectoryID(r.Email) && strings.Contains(r.Email, "@") {
			email = r.Email
		}

		name := r.Name
		if name == "" {
			name = placeholderRecipient
		}
		out = append(out, Identity{Name: CleanDisplayName(name), Email: email})
	}
	return out
}

// resolveSentDate picks submit time, then delivery time, then the input
// file's own modification time.
func resolveSentDate(d *msg.Message, modTime time.Time) time.Time {
	if !d.ClientSubmitTime.IsZero() {
		return d.ClientSubmitTime
	}
	if !d.DeliveryTime.IsZero() {
		return d.DeliveryTime
	}
	return modTime
}

// collectAttachments extracts the attachments that carry retrievable
// payloads. A single bad attachment is logged and skipped; it never
// fails the message.
func (p *Pipeline) collectAttachments(d *msg.Message, sourceFile string) []Attachment {
	out := make([]Attachment, 0, len(d.Attachments))
	for _, att := range d.Attachments {
		// Pure references and OLE links carry nothing to extract.
		if att.Method != msg.AttachByValue && !att.HasData {
			continue
		}
		content, err := att.Content()
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"file":       sourceFile,
				"attachment": att.Filename(),
			}).WithError(err).Warn("failed to extract attachment")
			continue
		}
		// A descriptor whose data stream turned out empty carries
		// nothing worth bundling.
		if len(content) == 0 {
			continue
		}
		name := att.Filename()
		if name == "" {
			name = fmt.Sprintf("attachment_%d", len(out)+1)
		}
		out = append(out, Attachment{
			FileName: name,
			Content:  content,
			Size:     len(content),
			MimeType: att.MimeTag,
		})
	}
	return out
}
