// Package msg decodes Outlook .msg files (OLE2 compound documents,
// MS-OXMSG) into a strongly-typed Message with sender fields, recipients,
// bodies, timestamps, and attachment descriptors.
//
// The compound file container is walked with github.com/richardlehane/mscfb;
// this package only interprets the MAPI property streams inside it.
package msg

import "errors"

// MAPI property IDs used during decoding.
const (
	MAPISubject           = 0x0037 // PR_SUBJECT
	MAPIClientSubmitTime  = 0x0039 // PR_CLIENT_SUBMIT_TIME
	MAPISentRepName       = 0x0042 // PR_SENT_REPRESENTING_NAME
	MAPISentRepEmail      = 0x0065 // PR_SENT_REPRESENTING_EMAIL_ADDRESS
	MAPITransportHeaders  = 0x007D // PR_TRANSPORT_MESSAGE_HEADERS
	MAPIDeliveryTime      = 0x0E06 // PR_MESSAGE_DELIVERY_TIME
	MAPISenderName        = 0x0C1A // PR_SENDER_NAME
	MAPISenderEmail       = 0x0C1F // PR_SENDER_EMAIL_ADDRESS
	MAPIBody              = 0x1000 // PR_BODY
	MAPIBodyHTML          = 0x1013 // PR_BODY_HTML
	MAPIDisplayName       = 0x3001 // PR_DISPLAY_NAME (recipient)
	MAPIEmailAddress      = 0x3003 // PR_EMAIL_ADDRESS (recipient)
	MAPIRecipSmtpAddress  = 0x39FE // PR_SMTP_ADDRESS (recipient)
	MAPIAttachDataBin     = 0x3701 // PR_ATTACH_DATA_BIN
	MAPIAttachFilename    = 0x3704 // PR_ATTACH_FILENAME
	MAPIAttachMethod      = 0x3705 // PR_ATTACH_METHOD
	MAPIAttachLongFname   = 0x3707 // PR_ATTACH_LONG_FILENAME
	MAPIAttachMimeTag     = 0x370E // PR_ATTACH_MIME_TAG
	MAPISenderSmtpAddress = 0x5D01 // PidTagSenderSmtpAddress
	MAPISentRepSmtp       = 0x5D02 // PidTagSentRepresentingSmtpAddress
)

// MAPI property types found in stream name suffixes and property records.
const (
	ptUnicode = 0x001F
	ptString8 = 0x001E
	ptBinary  = 0x0102
	ptLong    = 0x0003
	ptSystime = 0x0040
)

// Attachment method constants from PR_ATTACH_METHOD.
const (
	AttachByValue     = 1
	AttachEmbeddedMsg = 5
	AttachOLE         = 6
)

// ErrNotMSG is returned when the input is not a valid .msg compound file.
var ErrNotMSG = errors.New("not a valid .msg file")
