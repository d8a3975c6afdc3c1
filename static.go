package httpd

import (
	"errors"
	"path/filepath"
	"strings"
)

// serveFile answers req from the file its path names under Root.
func (h *Handler) serveFile(req *Request) (*Response, func()) {
	path := filepath.Join(h.root(), strings.TrimPrefix(req.Path, "/"))

	body, err := OpenFileBody(path)
	if err != nil {
		res := openErrorResponse(err)
		if res == ResponseInternalError {
			h.logErr("static: %v", err)
		}
		return res, nil
	}

	// A directory opens fine but has no byte stream to match its stat size.
	if body.IsDir() {
		body.Close()
		return ResponseNotFound, nil
	}

	return &Response{Status: 200, Reason: "OK", Body: body}, func() { body.Close() }
}

// openErrorResponse maps an OpenFileBody error to its response. Only a file
// that opened but could not be stat'ed is a server fault; any failure to open
// is reported as missing.
func openErrorResponse(err error) *Response {
	var se *StatError
	if errors.As(err, &se) {
		return ResponseInternalError
	}
	return ResponseNotFound
}
