// process.go provides the batch CLI commands (process, xlsx, zip) that
// read input files, run the resolution pipeline over them with a
// progress bar, and write the export artifacts.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"

	"github.com/lochlan-colman/Disquisitionis-MSG-repository/batch"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/export"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/formats"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/parsers/msg"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/resolve"
)

// loadFiles reads each path into a batch input, skipping files that are
// neither .msg by content nor by extension. Exits when nothing is left.
func loadFiles(paths []string) []batch.File {
	var files []batch.File
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
			os.Exit(1)
		}
		name := filepath.Base(path)
		if !formats.Accepts(name, data) {
			fmt.Fprintf(os.Stderr, "Skipping unsupported file: %s\n", name)
			continue
		}
		modTime := fileModTime(path)
		files = append(files, batch.File{Name: name, Data: data, ModTime: modTime})
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "No .msg files to process.")
		os.Exit(1)
	}
	return files
}

// runBatch processes the files sequentially behind a progress bar.
func runBatch(paths []string) []resolve.Message {
	files := loadFiles(paths)
	pipeline := resolve.New(resolve.DecoderFunc(msg.Decode))

	pb, _ := pterm.DefaultProgressbar.
		WithTotal(len(files)).
		WithTitle("Processing messages").
		Start()
	records := batch.Process(pipeline, files, func(done, total int) {
		if done > 0 {
			pb.Increment()
		}
	})
	pb.Stop()
	return records
}

// cmdProcess runs the pipeline and prints a per-message summary.
func cmdProcess(paths []string) {
	records := runBatch(paths)

	failed := 0
	for _, rec := range records {
		if rec.Failed {
			failed++
			pterm.Error.Printf("%s: %s\n", rec.SourceFile, rec.ErrorMessage)
			continue
		}
		fmt.Printf("%-30s %-25s %-30s %d attachment(s)\n",
			rec.SourceFile, rec.SenderName, rec.SenderEmail, len(rec.Attachments))
	}
	fmt.Printf("\nProcessed %d file(s), %d failed.\n", len(records), failed)
}

// cmdExportXLSX runs the pipeline and writes the metadata spreadsheet.
func cmdExportXLSX(outPath string, paths []string) {
	records := runBatch(paths)
	data, err := export.Workbook(records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	writeArtifact(outPath, data)
}

// cmdExportZIP runs the pipeline and writes the attachment bundle.
func cmdExportZIP(outPath string, paths []string) {
	records := runBatch(paths)
	data, err := export.AttachmentArchive(records)
	if err != nil {
		if errors.Is(err, export.ErrNoAttachments) {
			fmt.Fprintln(os.Stderr, "No attachments found in the processed messages.")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	writeArtifact(outPath, data)
}

// fileModTime returns a file's modification time, or the zero time when
// stat fails; the pipeline then has no date fallback for that file.
func fileModTime(path string) time.Time {
	if fi, err := os.Stat(path); err == nil {
		return fi.ModTime()
	}
	return time.Time{}
}
