// serve.go implements the embedded web interface: a drop-zone UI served
// from the binary plus a small JSON API over the pipeline, the session
// collection, and the export assembler.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lochlan-colman/Disquisitionis-MSG-repository/batch"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/export"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/formats"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/parsers/msg"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/resolve"
	"github.com/lochlan-colman/Disquisitionis-MSG-repository/web"
)

// maxUploadBytes bounds how much of a multipart upload is held in memory.
const maxUploadBytes = 200 << 20

type server struct {
	log      *logrus.Logger
	pipeline *resolve.Pipeline
	session  *batch.Session
}

// cmdServe starts the web interface on the given port, optionally under
// a URL prefix.
func cmdServe(port, basePath string) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	s := &server{
		log:      log,
		pipeline: resolve.New(resolve.DecoderFunc(msg.Decode), resolve.WithLogger(log)),
		session:  &batch.Session{},
	}

	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		log.WithError(err).Fatal("embedded static files missing")
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(staticFS)))
	mux.HandleFunc("/api/info", s.handleInfo)
	mux.HandleFunc("/api/process", s.handleProcess)
	mux.HandleFunc("/api/messages", s.handleMessages)
	mux.HandleFunc("/api/export/xlsx", s.handleExportXLSX)
	mux.HandleFunc("/api/export/zip", s.handleExportZIP)
	mux.HandleFunc("/api/clear", s.handleClear)

	handler := s.logged(mux)
	basePath = strings.TrimSuffix(basePath, "/")
	if basePath != "" {
		handler = http.StripPrefix(basePath, handler)
	}

	srv := &http.Server{Addr: ":" + port, Handler: handler}
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("listening on http://localhost:%s%s", port, basePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("server stopped")
}

// logged wraps a handler with request logging.
func (s *server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).Round(time.Millisecond).String(),
		}).Debug("request")
	})
}

func (s *server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":      "Disquisitionis MSG repository",
		"version":   version,
		"processed": s.session.Len(),
	})
}

// handleProcess accepts multipart file uploads under the "files" field,
// runs the batch, appends the records to the session, and returns them.
func (s *server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	uploads := r.MultipartForm.File["files"]
	if len(uploads) == 0 {
		jsonError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	var files []batch.File
	for _, fh := range uploads {
		src, err := fh.Open()
		if err != nil {
			jsonError(w, http.StatusBadRequest, "reading upload "+fh.Filename+": "+err.Error())
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			jsonError(w, http.StatusBadRequest, "reading upload "+fh.Filename+": "+err.Error())
			return
		}
		if !formats.Accepts(fh.Filename, data) {
			s.log.WithField("file", fh.Filename).Warn("skipping unsupported upload")
			continue
		}
		// Browsers do not forward the file's mtime; the upload time is
		// the best available date fallback.
		files = append(files, batch.File{Name: fh.Filename, Data: data, ModTime: time.Now()})
	}

	records := batch.Process(s.pipeline, files, nil)
	s.session.Add(records...)
	writeJSON(w, http.StatusOK, map[string]any{
		"records":   records,
		"processed": s.session.Len(),
	})
}

func (s *server) handleMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.All())
}

// exportStatus maps an export failure to the response code: 400 for the
// empty-collection preconditions, 500 for anything else.
func exportStatus(err error) int {
	if errors.Is(err, export.ErrNoMessages) || errors.Is(err, export.ErrNoAttachments) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := export.Workbook(s.session.All())
	if err != nil {
		jsonError(w, exportStatus(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="emails_export.xlsx"`)
	w.Write(data)
}

func (s *server) handleExportZIP(w http.ResponseWriter, r *http.Request) {
	data, err := export.AttachmentArchive(s.session.All())
	if err != nil {
		jsonError(w, exportStatus(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="all_attachments.zip"`)
	w.Write(data)
}

func (s *server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	s.session.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
