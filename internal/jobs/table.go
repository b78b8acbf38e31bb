// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jobs

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"
)

// DefaultMaxBackgroundJobs caps the number of background slots.
const DefaultMaxBackgroundJobs = 1 << 16

var (
	// ErrInvalidJobIndex is returned when a slot index is malformed or out of range.
	ErrInvalidJobIndex = errors.New("incorrect background process index")
	// ErrJobFinished is returned when terminating a job that has already finished.
	ErrJobFinished = errors.New("background task is already finished")
	// ErrJobTableFull is returned when the background table cannot grow.
	ErrJobTableFull = errors.New("couldn't grow the background task table")
	// ErrTableClosed is returned once the table has been shut down.
	ErrTableClosed = errors.New("job table is shut down")
	// ErrWaitFailed is returned when the completion of a process could not be tracked.
	ErrWaitFailed = errors.New("couldn't track the completion of the process")
)

// SignalFunc delivers sig to pid.
type SignalFunc func(pid int, sig unix.Signal) error

// ForegroundJob is the process the shell is blocked on. PID is 0 when unset.
type ForegroundJob struct {
	PID      int
	Finished bool
}

// BackgroundJob is a process tracked by slot index.
type BackgroundJob struct {
	PID      int
	Finished bool
	Started  time.Time
	Command  string

	announced bool
}

// Table holds the job state shared between the main loop and the reaper.
type Table struct {
	mu sync.Mutex

	fg       ForegroundJob
	fgDone   chan struct{}
	fgStatus unix.WaitStatus
	fgErr    error
	fgReaped bool

	bg      []BackgroundJob
	maxJobs int

	signal SignalFunc
	now    func() time.Time

	closed   bool
	closedCh chan struct{}
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithMaxBackgroundJobs caps the number of background slots.
func WithMaxBackgroundJobs(n int) TableOption {
	return func(t *Table) {
		if n > 0 {
			t.maxJobs = n
		}
	}
}

// WithSignalFunc replaces kill(2) for delivering termination requests.
func WithSignalFunc(f SignalFunc) TableOption {
	return func(t *Table) {
		if f != nil {
			t.signal = f
		}
	}
}

// NewTable returns an empty table.
func NewTable(opts ...TableOption) *Table {
	t := &Table{
		maxJobs:  DefaultMaxBackgroundJobs,
		signal:   func(pid int, sig unix.Signal) error { return unix.Kill(pid, sig) },
		now:      time.Now,
		closedCh: make(chan struct{}),
	}

	for _, o := range opts {
		o(t)
	}

	return t
}

// setForegroundLocked overwrites the foreground job. The returned channel is
// closed once the reaper has collected pid.
func (t *Table) setForegroundLocked(pid int) <-chan struct{} {
	t.fg = ForegroundJob{PID: pid}
	t.fgDone = make(chan struct{})
	t.fgStatus = 0
	t.fgErr = nil
	t.fgReaped = false

	return t.fgDone
}

// appendBackgroundLocked records a new background job and returns its slot.
// Capacity grows to cap*2+1; existing slot indices never change.
func (t *Table) appendBackgroundLocked(pid int, command string) (int, error) {
	if t.closed {
		return -1, ErrTableClosed
	}

	if len(t.bg) >= t.maxJobs {
		return -1, fmt.Errorf("%w: limit of %d reached", ErrJobTableFull, t.maxJobs)
	}

	if len(t.bg) == cap(t.bg) {
		grown := make([]BackgroundJob, len(t.bg), min(cap(t.bg)*2+1, t.maxJobs))
		copy(grown, t.bg)
		t.bg = grown
	}

	t.bg = append(t.bg, BackgroundJob{
		PID:     pid,
		Started: t.now(),
		Command: command,
	})

	return len(t.bg) - 1, nil
}

// MarkExited records that pid has been reaped. It only compares PIDs and sets
// flags; it reports whether pid belonged to a live tracked job. Jobs already
// reaped are skipped so a reused PID is credited to the job that now owns it.
func (t *Table) MarkExited(pid int, status unix.WaitStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fg.PID != 0 && t.fg.PID == pid && !t.fgReaped {
		t.fg.Finished = true
		t.fgReaped = true
		t.fgStatus = status
		close(t.fgDone)

		return true
	}

	for i := range t.bg {
		if t.bg[i].PID == pid && !t.bg[i].Finished {
			t.bg[i].Finished = true
			return true
		}
	}

	return false
}

// failForeground releases a foreground waiter whose process can no longer be
// tracked because wait4 failed.
func (t *Table) failForeground(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fg.PID == 0 || t.fgReaped {
		return
	}

	t.fgReaped = true
	t.fgErr = errors.Join(ErrWaitFailed, err)
	close(t.fgDone)
}

// foregroundResult returns the status collected for the last foreground job.
func (t *Table) foregroundResult() (unix.WaitStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.fgStatus, t.fgErr
}

// KillForeground sends SIGTERM to the foreground job if it is set and not yet
// finished, and marks it finished. It reports whether a signal was sent.
func (t *Table) KillForeground() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.killForegroundLocked()
}

func (t *Table) killForegroundLocked() (bool, error) {
	if t.fg.PID == 0 || t.fg.Finished {
		return false, nil
	}

	t.fg.Finished = true

	if err := t.signal(t.fg.PID, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		return true, fmt.Errorf("signal foreground pid %d: %w", t.fg.PID, err)
	}

	return true, nil
}

// Terminate sends SIGTERM to the background job in the slot named by index.
// index must be a plain non-negative decimal literal.
func (t *Table) Terminate(index string) error {
	slot, err := ParseSlot(index)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if slot >= len(t.bg) {
		return fmt.Errorf("%w: %s", ErrInvalidJobIndex, index)
	}

	job := t.bg[slot]
	if job.Finished {
		return fmt.Errorf("%w: %d", ErrJobFinished, slot)
	}

	if err := t.signal(job.PID, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("signal background pid %d: %w", job.PID, err)
	}

	return nil
}

// ParseSlot validates a slot index literal.
func ParseSlot(index string) (int, error) {
	if index == "" {
		return -1, fmt.Errorf("%w: empty", ErrInvalidJobIndex)
	}

	for _, c := range index {
		if c < '0' || c > '9' {
			return -1, fmt.Errorf("%w: %s", ErrInvalidJobIndex, index)
		}
	}

	slot, err := strconv.Atoi(index)
	if err != nil {
		return -1, fmt.Errorf("%w: %s", ErrInvalidJobIndex, index)
	}

	return slot, nil
}

// Foreground returns a copy of the foreground job.
func (t *Table) Foreground() ForegroundJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.fg
}

// Background returns a copy of every background slot in index order.
func (t *Table) Background() []BackgroundJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]BackgroundJob, len(t.bg))
	copy(out, t.bg)

	return out
}

// DrainFinished returns, in slot order, the background jobs that finished
// since the previous call. Each slot is returned at most once.
func (t *Table) DrainFinished() []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []int

	for i := range t.bg {
		if t.bg[i].Finished && !t.bg[i].announced {
			t.bg[i].announced = true
			out = append(out, i)
		}
	}

	return out
}

// Done is closed when the table is shut down.
func (t *Table) Done() <-chan struct{} {
	return t.closedCh
}

// Shutdown terminates the foreground job and every unfinished background job,
// each exactly once, then releases the background slots. Later calls are no-ops.
// Processes that have already gone are not reported as errors.
func (t *Table) Shutdown() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true
	close(t.closedCh)

	var result *multierror.Error

	if _, err := t.killForegroundLocked(); err != nil {
		result = multierror.Append(result, err)
	}

	for i, job := range t.bg {
		if job.Finished {
			continue
		}

		if err := t.signal(job.PID, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
			result = multierror.Append(result, fmt.Errorf("signal task %d (pid %d): %w", i, job.PID, err))
		}
	}

	t.bg = nil

	return result.ErrorOrNil()
}
