package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/jrsteele09/go-bank-client/gateway"
)

// PathProfile serves reads, field updates and multipart document uploads.
const PathProfile = "/profiles/my-profile/"

// nullableDates are sent as null when left empty.
var nullableDates = []string{"date_of_birth", "id_issue_date", "id_expiry_date", "date_of_employment"}

// Profile returns the signed-in user's profile. ErrProfileNotFound means the user has
// not completed profile setup yet.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	resp, err := c.send(ctx, gateway.Get(PathProfile, nil))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %w", ErrProfileNotFound, err)
		}
		return nil, err
	}
	doc := unwrap(resp.JSON(), "profile.data", "profile")
	p := &Profile{}
	if err := decode(doc, p); err != nil {
		return nil, err
	}
	p.Raw = json.RawMessage(doc.Raw)
	return p, nil
}

// UpdateProfile patches profile fields and returns the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (*Profile, error) {
	body := make(map[string]any, len(fields))
	for k, v := range fields {
		body[k] = v
	}
	for _, k := range nullableDates {
		if v, ok := body[k]; ok && v == "" {
			body[k] = nil
		}
	}

	resp, err := c.send(ctx, gateway.Patch(PathProfile, body))
	if err != nil {
		return nil, err
	}
	doc := unwrap(resp.JSON(), "profile.data", "profile")
	p := &Profile{}
	if err := decode(doc, p); err != nil {
		return nil, err
	}
	p.Raw = json.RawMessage(doc.Raw)
	return p, nil
}

// Document is a file to upload for KYC.
type Document struct {
	Name    string
	Content []byte
}

type Documents struct {
	Photo          *Document
	IDPhoto        *Document
	SignaturePhoto *Document
}

// UploadDocuments sends the selected KYC documents as multipart form data.
func (c *Client) UploadDocuments(ctx context.Context, docs Documents) (string, error) {
	parts := []struct {
		field string
		doc   *Document
	}{
		{"photo", docs.Photo},
		{"id_photo", docs.IDPhoto},
		{"signature_photo", docs.SignaturePhoto},
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	added := 0
	for _, p := range parts {
		if p.doc == nil {
			continue
		}
		fw, err := w.CreateFormFile(p.field, filepath.Base(p.doc.Name))
		if err != nil {
			return "", fmt.Errorf("add %s: %w", p.field, err)
		}
		if _, err := fw.Write(p.doc.Content); err != nil {
			return "", fmt.Errorf("write %s: %w", p.field, err)
		}
		added++
	}
	if added == 0 {
		return "", ErrNoDocuments
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	return c.message(ctx, &gateway.Request{
		Method:      http.MethodPatch,
		Path:        PathProfile,
		RawBody:     buf.Bytes(),
		ContentType: w.FormDataContentType(),
	})
}
