package api

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrMalformedResponse marks a reachable server that answered with a body the
// client cannot interpret (not JSON, or JSON of the wrong shape).
var ErrMalformedResponse = errors.New("malformed response")

const maxSnippetBytes = 512

// bodySnippet returns a trimmed prefix of body for logs.
func bodySnippet(body []byte) string {
	if len(body) > maxSnippetBytes {
		body = body[:maxSnippetBytes]
	}
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	return s
}

// htmlTitle extracts the <title> of an HTML error page, which is what proxies and
// framework error handlers usually send back instead of JSON.
func htmlTitle(body []byte) string {
	if !bytes.Contains(body, []byte("<")) {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
