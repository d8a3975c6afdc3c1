package httpd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

const (
	// ContentType is sent with every response.
	ContentType = "text/html"

	chunkSize = 1024
)

// Response is a status line plus a body whose size is known before anything is written.
type Response struct {
	Status int
	Reason string
	Body   BodySource
}

var (
	ResponseBadRequest     = cannedResponse(400, "Bad Request")
	ResponseForbidden      = cannedResponse(403, "Permission Denied")
	ResponseNotFound       = cannedResponse(404, "Not Found")
	ResponseInternalError  = cannedResponse(500, "Internal Error")
	ResponseNotImplemented = cannedResponse(501, "Not Implemented")
)

// cannedResponse builds an error response whose body is "<code> <reason>".
func cannedResponse(status int, reason string) *Response {
	return &Response{
		Status: status,
		Reason: reason,
		Body:   BytesBody(fmt.Sprintf("%d %s", status, reason)),
	}
}

// ErrorResponse maps a parse error to the canned response for it.
func ErrorResponse(err error) *Response {
	switch {
	case errors.Is(err, ErrBadRequest):
		return ResponseBadRequest
	case errors.Is(err, ErrNotImplemented):
		return ResponseNotImplemented
	case errors.Is(err, ErrForbidden):
		return ResponseForbidden
	}
	return ResponseInternalError
}

// WriteResponse writes the status line and headers, flushes, then copies the
// body unless head is set. w is flushed again after the body.
func WriteResponse(w *bufio.Writer, res *Response, head bool) error {
	fmt.Fprintf(w, "HTTP/1.0 %d %s\r\n", res.Status, res.Reason)
	fmt.Fprintf(w, "Content-Type: %s\r\n", ContentType)
	fmt.Fprintf(w, "Content-Length: %d\r\n", res.Body.Len())
	fmt.Fprintf(w, "\r\n")
	if err := w.Flush(); err != nil {
		return err
	}
	if head {
		return nil
	}

	r := res.Body.Reader()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
	}
	return w.Flush()
}
