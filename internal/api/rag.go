package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Upload reports what the server stored for an uploaded document.
type Upload struct {
	DocumentID string `json:"document_id"`
	Message    string `json:"message"`
}

// Query sends a question against the caller's uploaded documents and returns
// the generated answer.
func (c *Client) Query(ctx context.Context, question string) (string, error) {
	payload := map[string]string{"query": question}
	body, err := c.postJSON(ctx, "/api/rag/query", payload, "query", "query failed")
	if err != nil {
		return "", err
	}
	var parsed struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	return strings.TrimSpace(parsed.Answer), nil
}

// ListDocuments returns the filenames currently indexed for the caller.
func (c *Client) ListDocuments(ctx context.Context) ([]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/rag/documents", nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req, "list documents", "listing documents failed")
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(body, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// UploadDocument sends one file as multipart form data. The server indexes
// it and reports the stored document ID.
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (Upload, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Upload{}, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return Upload{}, err
	}
	if err := writer.Close(); err != nil {
		return Upload{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/rag/upload", &buf)
	if err != nil {
		return Upload{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.do(req, "upload", "upload failed")
	if err != nil {
		return Upload{}, err
	}
	var parsed Upload
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Upload{}, err
	}
	return parsed, nil
}

// DeleteDocument removes one document by filename. Filenames may contain
// spaces or slashes, so the path segment is escaped.
func (c *Client) DeleteDocument(ctx context.Context, filename string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/rag/documents/"+url.PathEscape(filename), nil)
	if err != nil {
		return err
	}
	_, err = c.do(req, "delete document", "delete failed")
	return err
}

// SaveDriveFolder records the Google Drive folder the server should sync
// documents from.
func (c *Client) SaveDriveFolder(ctx context.Context, folderID string) (string, error) {
	payload := map[string]string{"folder_id": folderID}
	body, err := c.postJSON(ctx, "/api/rag/drive/folder", payload, "save drive folder", "saving folder failed")
	if err != nil {
		return "", err
	}
	return messageOf(body), nil
}

// SyncDrive pulls new documents from the saved Drive folder into the index.
func (c *Client) SyncDrive(ctx context.Context) (string, error) {
	body, err := c.postJSON(ctx, "/api/rag/drive/sync", struct{}{}, "drive sync", "drive sync failed")
	if err != nil {
		return "", err
	}
	return messageOf(body), nil
}
