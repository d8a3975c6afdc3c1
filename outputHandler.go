package httpd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// BodySource is a response body whose length is known up front.
type BodySource interface {
	Len() int64
	// Reader returns a reader yielding at most Len bytes.
	Reader() io.Reader
}

// BytesBody is an in-memory body.
type BytesBody string

func (b BytesBody) Len() int64 { return int64(len(b)) }

func (b BytesBody) Reader() io.Reader { return strings.NewReader(string(b)) }

// FileBody is an open file whose size was taken when it was opened.
type FileBody struct {
	f    *os.File
	size int64
	dir  bool
}

// OpenFileBody opens path read-only and stats it.
// A failed open is returned as is; a failed stat is wrapped.
func OpenFileBody(path string) (*FileBody, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &StatError{Path: path, Err: err}
	}
	return &FileBody{f: f, size: fi.Size(), dir: fi.IsDir()}, nil
}

func (b *FileBody) Len() int64 { return b.size }

func (b *FileBody) Reader() io.Reader { return io.LimitReader(b.f, b.size) }

func (b *FileBody) Close() error { return b.f.Close() }

// IsDir reports whether the opened path was a directory.
func (b *FileBody) IsDir() bool { return b.dir }

// StatError is returned when a file opened fine but could not be stat'ed.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string { return fmt.Sprintf("stat %s: %v", e.Path, e.Err) }

func (e *StatError) Unwrap() error { return e.Err }

// OutputHandler turns the captured standard output of a program that exited
// cleanly into a response. The capture file is removed by the caller after
// the response has been written, whatever OutputHandler returns.
// The returned func, if non-nil, is called once the response is written.
type OutputHandler func(h *Handler, req *Request, capturePath string) (*Response, func(), error)

// CapturedOutputHandler sends the whole capture as a 200 response body,
// without looking for headers in it.
var CapturedOutputHandler OutputHandler = func(h *Handler, req *Request, capturePath string) (*Response, func(), error) {
	body, err := OpenFileBody(capturePath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading captured output: %w", err)
	}
	res := &Response{Status: 200, Reason: "OK", Body: body}
	return res, func() { body.Close() }, nil
}
