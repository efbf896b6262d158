package sandbox

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var documentFields = []string{"photo", "id_photo", "signature_photo"}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := s.ledger.Profile(currentUser(r).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRaw(w, http.StatusOK, wrap("profile", doc))
	}
}

// UpdateProfileHandler accepts either a JSON field update or multipart document uploads.
func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "multipart/form-data" {
			s.uploadDocuments(w, r)
			return
		}

		data, _, err := readJSON(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		doc, err := s.ledger.UpdateProfile(currentUser(r).ID, data)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out, _ := sjson.SetBytes(wrap("profile", doc), "message", "Profile updated successfully")
		writeRaw(w, http.StatusOK, out)
	}
}

func (s *Server) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err))
		return
	}
	user := currentUser(r)

	uploaded := 0
	for _, field := range documentFields {
		files := r.MultipartForm.File[field]
		if len(files) == 0 {
			continue
		}
		url := fmt.Sprintf("/media/%s/%s-%s", user.ID, field, filepath.Base(files[0].Filename))
		if err := s.ledger.SetProfileField(user.ID, field, url); err != nil {
			writeError(w, r, err)
			return
		}
		uploaded++
	}
	if uploaded == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No documents were uploaded"})
		return
	}

	doc, err := s.ledger.Profile(user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	complete := true
	for _, field := range documentFields {
		if gjson.GetBytes(doc, field).String() == "" {
			complete = false
		}
	}
	if complete {
		s.ledger.SubmitKYC(user.ID)
	}
	writeMessage(w, http.StatusOK, "Documents uploaded successfully", map[string]any{"kyc_submitted": complete})
}

func (s *Server) ListNextOfKinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := s.ledger.NextOfKin(currentUser(r).ID)
		list := []byte(`{"count":0,"results":[]}`)
		for _, e := range entries {
			list, _ = sjson.SetRawBytes(list, "results.-1", e)
		}
		list, _ = sjson.SetBytes(list, "count", len(entries))
		writeRaw(w, http.StatusOK, wrap("next_of_kin", list))
	}
}

func validateNextOfKin(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, body, err := readJSON(w, r)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	errs := fieldErrors{}
	errs.require(body, "first_name", "last_name", "relationship")
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return nil, false
	}
	return data, true
}

func (s *Server) CreateNextOfKinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := validateNextOfKin(w, r)
		if !ok {
			return
		}
		doc, err := s.ledger.AddNextOfKin(currentUser(r).ID, data)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRaw(w, http.StatusCreated, wrap("next_of_kin", doc))
	}
}

func (s *Server) UpdateNextOfKinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := validateNextOfKin(w, r)
		if !ok {
			return
		}
		doc, err := s.ledger.ReplaceNextOfKin(currentUser(r).ID, r.PathValue("id"), data)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRaw(w, http.StatusOK, wrap("next_of_kin", doc))
	}
}

func (s *Server) DeleteNextOfKinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.ledger.DeleteNextOfKin(currentUser(r).ID, r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// wrap returns {"key": doc}.
func wrap(key string, doc []byte) []byte {
	out, _ := sjson.SetRawBytes([]byte(`{}`), key, doc)
	return out
}
