package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultFileField = "file"

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
// Retries stay at resty's default of zero.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: url, Err: err}
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// SendJSON performs a GET or POST with a JSON content type. For POST a nil body
// is sent as an empty object; for GET the body's top-level fields become query
// parameters.
func (r *RestyClient) SendJSON(ctx context.Context, method, url string, body any, headers map[string]string) (Response, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	switch method {
	case http.MethodGet, http.MethodPost:
	default:
		return nil, fmt.Errorf("unsupported json method %q", method)
	}

	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	req.SetHeader("Content-Type", "application/json")

	switch method {
	case http.MethodPost:
		if body == nil {
			body = map[string]any{}
		}
		req.SetBody(body)
	case http.MethodGet:
		params, err := queryParams(body)
		if err != nil {
			return nil, fmt.Errorf("encode query for %s: %w", url, err)
		}
		req.SetQueryParams(params)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// queryParams flattens a JSON object body into query parameters. Strings are
// used as is; other values keep their JSON encoding.
func queryParams(body any) (map[string]string, error) {
	if body == nil {
		return nil, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("GET body must be a JSON object: %w", err)
	}
	params := make(map[string]string, len(fields))
	for k, v := range fields {
		if string(v) == "null" {
			continue
		}
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			params[k] = str
			continue
		}
		params[k] = string(v)
	}
	return params, nil
}

// SendMultipart uploads one local file plus string form fields as multipart/form-data.
// The file is opened and closed here; it is never modified.
func (r *RestyClient) SendMultipart(ctx context.Context, url string, mr MultipartRequest) (Response, error) {
	path := strings.TrimSpace(mr.FilePath)
	if path == "" {
		return nil, &FileError{Path: mr.FilePath, Err: errors.New("no file selected")}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &FileError{Path: path, Err: errors.New("is a directory")}
	}

	field := mr.FileField
	if field == "" {
		field = defaultFileField
	}

	req := r.client.R().
		SetContext(ctx).
		SetFileReader(field, filepath.Base(path), file)

	if len(mr.Fields) > 0 {
		req.SetFormData(mr.Fields)
	}
	if len(mr.Headers) > 0 {
		req.SetHeaders(mr.Headers)
	}

	resp, err := req.Post(url)
	if err != nil {
		return nil, &TransportError{Method: http.MethodPost, URL: url, Err: err}
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
