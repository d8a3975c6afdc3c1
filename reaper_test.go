package httpd

import (
	"errors"
	"os"
	"os/exec"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func startStrayChild(t *testing.T) int {
	t.Helper()
	p, err := os.StartProcess("/bin/sh", []string{"sh", "-c", "exit 0"}, &os.ProcAttr{})
	if err != nil {
		t.Fatalf("error while starting child: %s", err)
	}
	pid := p.Pid
	p.Release()
	return pid
}

// waitGone reports whether pid is no longer our child, i.e. it was reaped.
// WNOWAIT leaves a zombie in place, so this never does the reaping itself.
func waitGone(pid int) bool {
	var info unix.Siginfo
	err := unix.Waitid(unix.P_PID, pid, &info, unix.WEXITED|unix.WNOHANG|unix.WNOWAIT, nil)
	return err == unix.ECHILD
}

func TestReaperCollectsStrayChildren(t *testing.T) {
	r := NewReaper(testLogger())
	pid := startStrayChild(t)

	deadline := time.Now().Add(5 * time.Second)
	collected := 0
	for collected == 0 && time.Now().Before(deadline) {
		collected += r.Reap()
		time.Sleep(10 * time.Millisecond)
	}
	if collected == 0 {
		t.Fatalf("stray child %d was never collected", pid)
	}
	if !waitGone(pid) {
		t.Fatalf("child %d is still waitable after reaping", pid)
	}
}

func TestReaperBackgroundLoop(t *testing.T) {
	r := NewReaper(testLogger())
	r.Interval = 10 * time.Millisecond
	r.Start()
	r.Start()
	defer r.Stop()

	pid := startStrayChild(t)

	deadline := time.Now().Add(5 * time.Second)
	for !waitGone(pid) {
		if time.Now().After(deadline) {
			t.Fatalf("stray child %d was never collected", pid)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestReaperSkipsWhileTracking(t *testing.T) {
	r := NewReaper(testLogger())

	err := r.Track(func() error {
		cmd := exec.Command("/bin/sh", "-c", "exit 7")
		if err := cmd.Start(); err != nil {
			return err
		}
		// Give the child time to become a zombie.
		time.Sleep(100 * time.Millisecond)
		if n := r.Reap(); n != 0 {
			t.Errorf("reaped %d children inside a tracked window", n)
		}
		return cmd.Wait()
	})

	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected an exit error, received: %v", err)
	}
	if ee.ExitCode() != 7 {
		t.Fatalf("wrong exit code - expected: 7\treceived: %d", ee.ExitCode())
	}
}

func TestReaperNil(t *testing.T) {
	var r *Reaper
	called := false
	if err := r.Track(func() error { called = true; return nil }); err != nil || !called {
		t.Fatalf("nil reaper should just run fn, called: %v, err: %v", called, err)
	}
}

func TestReaperStopWithoutStart(t *testing.T) {
	r := NewReaper(testLogger())
	done := make(chan struct{})
	go func() {
		r.Stop()
		r.Start()
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a reaper that was never started")
	}
}
