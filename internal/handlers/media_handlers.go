package handlers

import (
	"net/http"

	"minbar-hub/internal/auth"
	"minbar-hub/internal/storage"
	"minbar-hub/internal/utils"
)

// MediaUploadResponse carries the stored file's public URL and the recording
// kind derived from its content type.
type MediaUploadResponse struct {
	URL       string `json:"url"`
	MediaType string `json:"mediaType"`
}

// HandleMediaUpload receives a multipart recording or poster image, enforces
// the size cap before any bytes reach the object store, and returns the
// public URL for the subsequent post submission.
func (s *Server) HandleMediaUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actingUser := s.currentUser(r)
		if appErr := auth.Check(actingUser, auth.ActionCreatePost); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes+1024)
		if err := r.ParseMultipartForm(s.MaxUploadBytes); err != nil {
			writeAppError(w, utils.NewValidationError("File exceeds the maximum upload size"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeAppError(w, utils.NewValidationError("Request is missing the file field"))
			return
		}
		defer file.Close()

		if header.Size > s.MaxUploadBytes {
			writeAppError(w, utils.NewValidationError("File exceeds the maximum upload size"))
			return
		}

		contentType := header.Header.Get("Content-Type")
		url, err := s.Uploader.Upload(r.Context(), header.Filename, contentType, file, header.Size)
		if err != nil {
			writeAppError(w, utils.NewAppError(utils.ErrUploadFailed, "Failed to store uploaded file", err))
			return
		}

		writeJSON(w, http.StatusOK, &MediaUploadResponse{
			URL:       url,
			MediaType: string(storage.MediaTypeFor(contentType)),
		})
	}
}
