package httpd

import (
	"bufio"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ExecPrefix marks request paths that name a program to run.
const ExecPrefix = "/cgi-like/"

// Handler answers one parsed request, either from a file under Root or by
// running a program from the execution directory and sending what it printed.
type Handler struct {
	// Root is the directory static paths and capture files are resolved
	// against. Defaults to ".".
	Root string

	// ExecDir is the programs' working directory, relative to Root.
	// Defaults to "cgi-like".
	ExecDir string

	Logger *log.Logger
	Stderr io.Writer

	// Reaper, if set, is kept from collecting children this Handler waits on.
	Reaper *Reaper

	// OutputHandler builds the response from a successful run's output.
	// Defaults to CapturedOutputHandler.
	OutputHandler OutputHandler
}

// ServeLine parses line and answers it on w. Errors in the request line
// itself are answered with a body even for HEAD.
// The returned error is only about writing to w.
func (h *Handler) ServeLine(w *bufio.Writer, line string) error {
	req, err := ParseRequest(line)
	if err != nil {
		return WriteResponse(w, ErrorResponse(err), false)
	}
	return h.Serve(w, req)
}

// Serve dispatches req and writes the response to w.
func (h *Handler) Serve(w *bufio.Writer, req *Request) error {
	var (
		res  *Response
		done func()
	)
	if isExecPath(req.Path) {
		res, done = h.serveExec(req)
	} else {
		res, done = h.serveFile(req)
	}
	if done != nil {
		defer done()
	}
	return WriteResponse(w, res, req.IsHead())
}

func isExecPath(path string) bool {
	return strings.HasPrefix(path, ExecPrefix) && len(path) > len(ExecPrefix)
}

func (h *Handler) root() string {
	if h.Root == "" {
		return "."
	}
	return h.Root
}

func (h *Handler) execDir() string {
	dir := h.ExecDir
	if dir == "" {
		dir = "cgi-like"
	}
	return filepath.Join(h.root(), dir)
}

func (h *Handler) stderr() io.Writer {
	if h.Stderr == nil {
		return os.Stderr
	}
	return h.Stderr
}

func (h *Handler) outputHandler() OutputHandler {
	if h.OutputHandler == nil {
		return CapturedOutputHandler
	}
	return h.OutputHandler
}

func (h *Handler) logErr(format string, v ...interface{}) {
	if h.Logger != nil {
		h.Logger.Printf(format, v...)
	} else {
		log.Printf(format, v...)
	}
}
