package api

import (
	"errors"
	"strings"

	"github.com/samvad-hq/drawing-uploader/pkg/httpclient"
)

// Endpoint paths on the drawing server.
const (
	LoginPath    = "/api/mobile/login"
	RegisterPath = "/api/mobile/register"
	UploadPath   = "/api/mobile/upload"
)

// Endpoint supplies the server root for each request.
type Endpoint interface {
	BaseURL() string
}

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}

// Client issues the mobile API calls. Every operation returns a Result and never
// an error: transport, parse and server failures all end up in Result.Message.
type Client struct {
	endpoint  Endpoint
	transport httpclient.Client
	log       Logger
}

// New builds a client reading the base URL from endpoint on every call.
func New(endpoint Endpoint, transport httpclient.Client, log Logger) *Client {
	if log == nil {
		log = noopLogger{}
	}
	return &Client{endpoint: endpoint, transport: transport, log: log}
}

func (c *Client) url(path string) string {
	base := ""
	if c.endpoint != nil {
		base = c.endpoint.BaseURL()
	}
	return strings.TrimRight(base, "/") + path
}

// failureMessage maps a transport-layer error to its user-facing message.
func (c *Client) failureMessage(op, url string, err error) string {
	var ferr *httpclient.FileError
	var terr *httpclient.TransportError
	msg := MsgNetworkError
	kind := "transport"
	switch {
	case errors.As(err, &ferr):
		msg = MsgFileUnreadable
		kind = "file"
	case errors.As(err, &terr):
	default:
		kind = "request"
	}
	c.log.WarnObj("api request failed", "api_error", map[string]any{
		"op":    op,
		"url":   url,
		"kind":  kind,
		"error": err.Error(),
	})
	return msg
}

// logMalformed records why a response body was rejected.
func (c *Client) logMalformed(op string, status int, body []byte, err error) {
	fields := map[string]any{
		"op":      op,
		"status":  status,
		"error":   err.Error(),
		"snippet": bodySnippet(body),
	}
	if title := htmlTitle(body); title != "" {
		fields["html_title"] = title
	}
	c.log.WarnObj("api response rejected", "api_malformed", fields)
}
