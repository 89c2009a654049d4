// view.go implements the CLI "view" command that displays the resolved
// metadata and structure of a single .msg file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lochlan-colman/Disquisitionis-MSG-repository/formats"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/parsers/msg"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/resolve"
)

// cmdView decodes one .msg file and prints its resolved summary to stdout.
func cmdView(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}
	name := filepath.Base(path)
	if !formats.Accepts(name, data) {
		fmt.Fprintf(os.Stderr, "Unsupported file format: %s\n", name)
		os.Exit(1)
	}

	if fi, err := os.Stat(path); err == nil {
		fmt.Printf("File:        %s (%s)\n", name, humanSize(int(fi.Size())))
	} else {
		fmt.Printf("File:        %s\n", name)
	}
	fmt.Println(strings.Repeat("─", 60))

	pipeline := resolve.New(resolve.DecoderFunc(msg.Decode))
	rec := pipeline.Process(data, name, fileModTime(path))
	if rec.Failed {
		fmt.Fprintf(os.Stderr, "Error decoding: %s\n", rec.ErrorMessage)
		os.Exit(1)
	}
	printRecord(rec)
}

// printRecord prints a resolved record's metadata and attachment list.
func printRecord(rec resolve.Message) {
	fields := []struct {
		label string
		value string
	}{
		{"Subject", rec.Subject},
		{"From", rec.SenderName},
		{"From Email", rec.SenderEmail},
		{"Phone", rec.SenderPhone},
		{"To", joinRecipients(rec.Recipients)},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Printf("%-13s%s\n", f.label+":", f.value)
		}
	}
	if !rec.SentDate.IsZero() {
		fmt.Printf("%-13s%s\n", "Sent:", rec.SentDate.Format("2006-01-02 15:04:05"))
	}
	if len(rec.Body) > 0 {
		fmt.Printf("%-13s%s\n", "Body:", humanSize(len(rec.Body)))
	}
	if len(rec.Attachments) == 0 {
		fmt.Println("Attachments: None")
		return
	}
	fmt.Printf("Attachments: %d item(s)\n", len(rec.Attachments))
	fmt.Println(strings.Repeat("─", 60))
	for i, att := range rec.Attachments {
		fmt.Printf("  %d. %-36s %8s  %s\n", i+1, att.FileName, humanSize(att.Size), att.MimeType)
	}
}

// joinRecipients renders recipients as "Name <email>" pairs.
func joinRecipients(recipients []resolve.Identity) string {
	parts := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r.Email != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", r.Name, r.Email))
		} else {
			parts = append(parts, r.Name)
		}
	}
	return strings.Join(parts, ", ")
}
