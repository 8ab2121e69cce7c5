package domain

import (
	"bytes"
	"encoding/json"
)

// Domain contains core models shared by the client, session and runtime packages.

// Credentials is what a successful login or register hands back.
// User is kept as the raw JSON record the server sent.
type Credentials struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// UploadedFile describes a drawing stored by the server.
type UploadedFile struct {
	ID          int64  `json:"id"`
	ProductCode string `json:"product_code"`
	StoredPath  string `json:"pdf_path"`
	PublicURL   string `json:"pdf_url"`
}

// HasUser reports whether raw holds a JSON value other than null.
func HasUser(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
