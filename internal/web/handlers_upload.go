package web

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/JonMunkholm/stockledger/internal/core"
)

// multipartOverhead is allowed on top of the file limit for part headers
// and boundaries.
const multipartOverhead = 64 << 10

// handleImport merges an inventory CSV. The file arrives either as the
// multipart field "file" or as the raw request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)

	if err := s.imports.Acquire(ctx); err != nil {
		s.respondError(w, r, err)
		return
	}
	defer s.imports.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Import.Timeout)
	defer cancel()

	maxSize := s.cfg.Import.MaxFileSize
	body, err := importBody(w, r, maxSize)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.ImportInventory(ctx, body, maxSize)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// importBody returns a reader over the uploaded CSV without buffering it.
func importBody(w http.ResponseWriter, r *http.Request, maxSize int64) (io.Reader, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, &core.ImportParseError{Reason: "invalid form", Err: err}
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, &core.ValidationError{Field: "file", Message: "no file provided"}
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				err = core.ErrFileTooLarge
			}
			return nil, &core.ImportParseError{Reason: "invalid form", Err: err}
		}
		if part.FormName() == "file" {
			return part, nil
		}
		part.Close()
	}
}
