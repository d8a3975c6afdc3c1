package httpd

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultReapInterval is how often a Reaper sweeps when no SIGCHLD arrives.
const DefaultReapInterval = 5 * time.Second

// Reaper collects terminated children nobody waits for.
//
// Code that waits for a specific child runs inside Track. A sweep only runs
// while no Track window is open, so it can never consume the exit status of
// a child someone is waiting on; a sweep that finds a window open is skipped.
type Reaper struct {
	Logger   *log.Logger
	Interval time.Duration

	mu sync.RWMutex

	startOnce sync.Once
	stopOnce  sync.Once
	sig       chan os.Signal
	stop      chan struct{}
	done      chan struct{}
}

// NewReaper returns a Reaper that has not been started.
func NewReaper(logger *log.Logger) *Reaper {
	return &Reaper{
		Logger:   logger,
		Interval: DefaultReapInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Track runs fn with sweeps held off. A nil Reaper just runs fn.
func (r *Reaper) Track(fn func() error) error {
	if r == nil {
		return fn()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn()
}

// Start begins sweeping on SIGCHLD and every Interval. Calls after the first
// do nothing.
func (r *Reaper) Start() {
	r.startOnce.Do(func() {
		r.sig = make(chan os.Signal, 1)
		signal.Notify(r.sig, unix.SIGCHLD)
		go r.loop()
	})
}

// Stop ends the sweeping goroutine started by Start. After Stop, Start does
// nothing.
func (r *Reaper) Stop() {
	r.startOnce.Do(func() { close(r.done) })
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (r *Reaper) loop() {
	defer close(r.done)
	defer signal.Stop(r.sig)

	interval := r.Interval
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.sig:
			r.Reap()
		case <-ticker.C:
			r.Reap()
		case <-r.stop:
			return
		}
	}
}

// Reap collects every child that has already terminated and returns how many
// it found. It returns 0 without waiting if a Track window is open.
func (r *Reaper) Reap() int {
	if !r.mu.TryLock() {
		return 0
	}
	defer r.mu.Unlock()

	n := 0
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || pid <= 0 {
			return n
		}
		n++
		r.logf("reaper: collected stray child %d (status %d)", pid, ws.ExitStatus())
	}
}

func (r *Reaper) logf(format string, v ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, v...)
	} else {
		log.Printf(format, v...)
	}
}
