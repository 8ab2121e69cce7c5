package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// MultipartRequest describes a single-file multipart/form-data upload.
type MultipartRequest struct {
	FileField string
	FilePath  string
	Fields    map[string]string
	Headers   map[string]string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Each call performs exactly one request. Non-2xx responses are returned as
// responses, not errors; connection failures come back as *TransportError.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	SendJSON(ctx context.Context, method, url string, body any, headers map[string]string) (Response, error)
	SendMultipart(ctx context.Context, url string, req MultipartRequest) (Response, error)
}
