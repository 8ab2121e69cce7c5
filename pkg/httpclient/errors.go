package httpclient

import "fmt"

// TransportError reports that a request never produced an HTTP response:
// DNS failure, refused connection, timeout or a cancelled context.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FileError reports that the local file for an upload could not be read.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("upload file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
