package api

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/samvad-hq/drawing-uploader/internal/domain"
)

func TestFailedResultOmitsData(t *testing.T) {
	cases := []any{
		fail[domain.Credentials](MsgNetworkError),
		fail[domain.UploadedFile](MsgUploadParseFailed),
		fail[string](MsgDownloadFailed),
	}
	for _, res := range cases {
		raw, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if _, has := fields["data"]; has {
			t.Fatalf("failed result must not carry data: %s", raw)
		}
		if _, has := fields["message"]; !has {
			t.Fatalf("failed result must carry a message: %s", raw)
		}
	}
}

func TestSuccessfulResultOmitsMessage(t *testing.T) {
	raw, err := json.Marshal(ok(domain.UploadedFile{ID: 1, ProductCode: "P-1"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), `"message"`) || !strings.Contains(string(raw), `"product_code":"P-1"`) {
		t.Fatalf("unexpected success encoding %s", raw)
	}
}
