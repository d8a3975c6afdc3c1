package httpd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
)

// serveExec runs the program named after ExecPrefix with the query tokens as
// arguments and answers with its standard output. The capture file is gone
// once the returned func has run, or before serveExec returns on failure.
func (h *Handler) serveExec(req *Request) (*Response, func()) {
	name := strings.TrimPrefix(req.Path, ExecPrefix)
	args := req.Args(name)

	capturePath := filepath.Join(h.root(), "temp_output_"+uuid.NewString()+".txt")
	out, err := os.OpenFile(capturePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		h.logErr("cgi: creating capture file: %v", err)
		return ResponseInternalError, nil
	}
	remove := func() {
		if err := os.Remove(capturePath); err != nil && !os.IsNotExist(err) {
			h.logErr("cgi: removing capture file: %v", err)
		}
	}
	handedOff := false
	defer func() {
		if !handedOff {
			remove()
		}
	}()

	if err := h.run(args, out); err != nil {
		h.logErr("cgi: %s: %v", name, err)
		return ResponseInternalError, nil
	}

	res, done, err := h.outputHandler()(h, req, capturePath)
	if err != nil {
		h.logErr("cgi: %s: %v", name, err)
		return ResponseInternalError, nil
	}

	handedOff = true
	return res, func() {
		if done != nil {
			done()
		}
		remove()
	}
}

// run starts args[0] from the execution directory with stdout going to out,
// and waits for it. out is closed before run returns. A non-nil error covers
// lookup, start and wait failures as well as a non-zero exit or a signal.
func (h *Handler) run(args []string, out *os.File) error {
	defer out.Close()

	dir := h.execDir()
	path, err := lookProgram(dir, args[0])
	if err != nil {
		return err
	}

	cmd := &exec.Cmd{
		Path:   path,
		Args:   args,
		Dir:    dir,
		Stdout: out,
		Stderr: h.stderr(),
	}

	return h.Reaper.Track(func() error {
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("start: %w", err)
		}
		err := cmd.Wait()
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return fmt.Errorf("program failed: %v", ee.ProcessState)
		}
		if err != nil {
			return fmt.Errorf("wait: %w", err)
		}
		return nil
	})
}

// lookProgram resolves name the way execvp would from inside dir, except that
// dir itself is searched before PATH. A trailing slash names a directory, so
// it never resolves to a program.
func lookProgram(dir, name string) (string, error) {
	if strings.HasSuffix(name, "/") {
		return "", &os.PathError{Op: "exec", Path: name, Err: syscall.ENOTDIR}
	}
	if strings.Contains(name, "/") {
		return filepath.Abs(filepath.Join(dir, name))
	}

	candidate := filepath.Join(dir, name)
	if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() && fi.Mode()&0111 != 0 {
		return filepath.Abs(candidate)
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", err
	}
	return filepath.Abs(path)
}
