// Package batch drives the resolution pipeline over many input files.
// Processing is strictly sequential: one file finishes before the next
// starts, so progress counts are monotonic and memory use stays bounded
// no matter how large the batch is. A file that fails to decode becomes
// a flagged record; it never aborts the batch.
package batch

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lochlan-colman/Disquisitionis-MSG-repository/resolve"
)

// File is one input to a batch run: the raw bytes plus the metadata the
// pipeline needs from the file itself.
type File struct {
	Name    string
	Data    []byte
	ModTime time.Time
}

// ProgressFunc receives (done, total) counts. It is called once with
// (0, total) before the first file and once after each completed file,
// so done rises 0..total with no skips or repeats.
type ProgressFunc func(done, total int)

// Process runs every file through the pipeline in order and returns one
// record per file, in input order. progress may be nil.
func Process(p *resolve.Pipeline, files []File, progress ProgressFunc) []resolve.Message {
	if progress != nil {
		progress(0, len(files))
	}
	records := make([]resolve.Message, 0, len(files))
	for i, f := range files {
		rec := p.Process(f.Data, f.Name, f.ModTime)
		if rec.Failed {
			p.Logger().WithFields(logrus.Fields{
				"file":  f.Name,
				"error": rec.ErrorMessage,
			}).Warn("file failed to process")
		}
		records = append(records, rec)
		if progress != nil {
			progress(i+1, len(files))
		}
	}
	return records
}

// Session is the accumulating record collection shared by the web
// surface. Records are only ever appended; reads get a copied snapshot.
type Session struct {
	mu      sync.Mutex
	records []resolve.Message
}

// Add appends records to the session.
func (s *Session) Add(records ...resolve.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

// All returns a snapshot of the accumulated records in insertion order.
func (s *Session) All() []resolve.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]resolve.Message, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of accumulated records.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Clear drops the working set.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}
