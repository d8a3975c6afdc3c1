package httpd

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	maxMethodLen  = 4
	maxURILen     = 2047
	maxVersionLen = 15

	// MaxArgs is the largest argument vector handed to a program, including its name.
	MaxArgs = 255
)

var (
	ErrBadRequest     = errors.New("httpd: malformed request line")
	ErrNotImplemented = errors.New("httpd: unsupported method")
	ErrForbidden      = errors.New("httpd: path contains traversal marker")
)

// Request is a parsed request line.
// Path never contains "..".
type Request struct {
	Method   string
	URI      string
	Path     string
	Query    string
	HasQuery bool
	Version  string
}

// ReadRequestLine reads a single line from r and returns its whitespace
// separated tokens joined by single spaces. Only the first maxMethodLen,
// maxURILen and maxVersionLen bytes of the first three tokens are kept, and
// one byte of a fourth, so memory stays bounded however long the line is
// while the token count still reaches ParseRequest.
// io.EOF is only returned when the client sent nothing at all.
func ReadRequestLine(r *bufio.Reader) (string, error) {
	limits := [...]int{maxMethodLen, maxURILen, maxVersionLen, 1}
	var tokens [len(limits)][]byte
	n := 0
	inToken := false
	read := false
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && read {
				break
			}
			return "", err
		}
		read = true
		if c == '\n' {
			break
		}
		if isSpace(c) {
			inToken = false
			continue
		}
		if !inToken {
			inToken = true
			n++
		}
		if i := n - 1; i < len(limits) && len(tokens[i]) < limits[i] {
			tokens[i] = append(tokens[i], c)
		}
	}

	if n > len(limits) {
		n = len(limits)
	}
	fields := make([]string, n)
	for i := range fields {
		fields[i] = string(tokens[i])
	}
	return strings.Join(fields, " "), nil
}

// ParseRequest parses "METHOD URI VERSION". Over-long tokens are truncated.
func ParseRequest(line string) (*Request, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r < 0x80 && isSpace(byte(r)) })
	if len(fields) != 3 {
		return nil, ErrBadRequest
	}

	req := &Request{
		Method:  truncate(fields[0], maxMethodLen),
		URI:     truncate(fields[1], maxURILen),
		Version: truncate(fields[2], maxVersionLen),
	}

	if req.Method != "GET" && req.Method != "HEAD" {
		return nil, ErrNotImplemented
	}

	req.Path = req.URI
	if i := strings.IndexByte(req.URI, '?'); i >= 0 {
		req.Path = req.URI[:i]
		req.Query = req.URI[i+1:]
		req.HasQuery = true
	}

	// No percent-decoding happens anywhere, so the raw path is what gets checked.
	if strings.Contains(req.Path, "..") {
		return nil, ErrForbidden
	}

	return req, nil
}

// Args builds the argument vector for running name: name itself followed by
// the '&'-separated query tokens. Empty tokens are skipped and anything past
// MaxArgs is dropped.
func (r *Request) Args(name string) []string {
	args := []string{name}
	if !r.HasQuery {
		return args
	}
	for _, tok := range strings.Split(r.Query, "&") {
		if len(args) >= MaxArgs {
			break
		}
		if tok == "" {
			continue
		}
		args = append(args, tok)
	}
	return args
}

// IsHead reports whether the response must omit its body.
func (r *Request) IsHead() bool {
	return r.Method == "HEAD"
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// isSpace matches C isspace in the "C" locale.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
