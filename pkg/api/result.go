package api

// Result is the envelope every client operation returns. On success Data is set
// and Message is empty; on failure Message is a display-ready explanation.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitzero"`
	Message string `json:"message,omitempty"`
}

// Failure messages shown to the user.
const (
	MsgNetworkError       = "network error"
	MsgUploadParseFailed  = "failed to parse upload response"
	MsgLoginParseFailed   = "failed to parse login response"
	MsgRegParseFailed     = "failed to parse register response"
	MsgFileUnreadable     = "cannot read the selected file"
	MsgLoginFailed        = "login failed"
	MsgRegisterFailed     = "register failed"
	MsgUploadFailed       = "upload failed"
	MsgDownloadFailed     = "download failed"
	MsgNothingToPreview   = "no file to preview"
	MsgDownloadSaveFailed = "failed to save downloaded file"
)

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func fail[T any](msg string) Result[T] {
	return Result[T]{Message: msg}
}
