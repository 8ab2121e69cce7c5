package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samvad-hq/drawing-uploader/internal/domain"
	"github.com/samvad-hq/drawing-uploader/pkg/httpclient"
)

// UploadRequest names the file to send and the product it belongs to.
// FilePath stays owned by the caller.
type UploadRequest struct {
	Token       string
	ProductCode string
	FilePath    string
}

type uploadResponse struct {
	Success *bool         `json:"success"`
	Data    *uploadedFile `json:"data"`
	Message string        `json:"message"`
}

type uploadedFile struct {
	ID          *int64 `json:"id"`
	ProductCode string `json:"product_code"`
	PDFPath     string `json:"pdf_path"`
	PDFURL      string `json:"pdf_url"`
}

// UploadFile sends a drawing as multipart/form-data. The token travels both as
// the Authorization header and as the token form field; the server may read either.
func (c *Client) UploadFile(ctx context.Context, req UploadRequest) Result[domain.UploadedFile] {
	url := c.url(UploadPath)
	resp, err := c.transport.SendMultipart(ctx, url, httpclient.MultipartRequest{
		FileField: "file",
		FilePath:  req.FilePath,
		Fields: map[string]string{
			"product_code": req.ProductCode,
			"token":        req.Token,
		},
		Headers: map[string]string{
			"Authorization": "Bearer " + req.Token,
		},
	})
	if err != nil {
		return fail[domain.UploadedFile](c.failureMessage("upload", url, err))
	}

	file, appMsg, err := decodeUpload(resp.Body())
	if err != nil {
		c.logMalformed("upload", resp.StatusCode(), resp.Body(), err)
		return fail[domain.UploadedFile](MsgUploadParseFailed)
	}
	if appMsg != nil {
		c.log.DebugObj("api request refused", "api_refused", map[string]any{
			"op":      "upload",
			"status":  resp.StatusCode(),
			"message": *appMsg,
		})
		if *appMsg == "" {
			return fail[domain.UploadedFile](MsgUploadFailed)
		}
		return fail[domain.UploadedFile](*appMsg)
	}
	return ok(file)
}

func decodeUpload(body []byte) (domain.UploadedFile, *string, error) {
	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.UploadedFile{}, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Success == nil {
		return domain.UploadedFile{}, nil, fmt.Errorf("%w: success flag missing", ErrMalformedResponse)
	}
	if !*resp.Success {
		msg := resp.Message
		return domain.UploadedFile{}, &msg, nil
	}

	d := resp.Data
	switch {
	case d == nil:
		return domain.UploadedFile{}, nil, fmt.Errorf("%w: data missing", ErrMalformedResponse)
	case d.ID == nil:
		return domain.UploadedFile{}, nil, fmt.Errorf("%w: data.id missing", ErrMalformedResponse)
	case d.ProductCode == "":
		return domain.UploadedFile{}, nil, fmt.Errorf("%w: data.product_code missing", ErrMalformedResponse)
	case d.PDFPath == "":
		return domain.UploadedFile{}, nil, fmt.Errorf("%w: data.pdf_path missing", ErrMalformedResponse)
	case d.PDFURL == "":
		return domain.UploadedFile{}, nil, fmt.Errorf("%w: data.pdf_url missing", ErrMalformedResponse)
	}

	return domain.UploadedFile{
		ID:          *d.ID,
		ProductCode: d.ProductCode,
		StoredPath:  d.PDFPath,
		PublicURL:   d.PDFURL,
	}, nil, nil
}
