// Package uploader runs a queue of file uploads: validate, presign, transfer,
// register, with bounded automatic retries for transient failures.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"palmr-api/pkg/transfer"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

type ErrKind string

const (
	ErrKindNone       ErrKind = ""
	ErrKindValidation ErrKind = "validation"
	ErrKindObjectName ErrKind = "object_name"
	ErrKindPresign    ErrKind = "presign"
	ErrKindCanceled   ErrKind = "canceled"
	ErrKindTimeout    ErrKind = "timeout"
	ErrKindRejected   ErrKind = "rejected"
	ErrKindNoResponse ErrKind = "no_response"
	ErrKindUnreadable ErrKind = "unreadable"
	ErrKindRegister   ErrKind = "register"
)

const (
	DefaultMaxAttempts = 5
	DefaultMaxRetries  = 3
)

var DefaultDelays = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}

var (
	ErrTaskNotFound = errors.New("upload task not found")
	ErrNotRetryable = errors.New("only failed uploads can be retried")
	ErrRetryLimit   = errors.New("retry limit reached")
)

type Task struct {
	ID         string
	File       transfer.File
	Status     Status
	Progress   int
	Err        string
	ErrKind    ErrKind
	ObjectName string
	RetryCount int
	Attempts   int
}

type Summary struct {
	Succeeded int
	Failed    int
	Tasks     []Task
}

type Option func(*Orchestrator)

// WithConcurrency caps parallel uploads; 0 means unlimited.
func WithConcurrency(n int) Option { return func(o *Orchestrator) { o.concurrency = n } }

func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

func WithMaxRetries(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithDelays sets the wait before each automatic retry; the last value
// repeats once the list runs out.
func WithDelays(d ...time.Duration) Option { return func(o *Orchestrator) { o.delays = d } }

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

func WithRemoveOnSuccess() Option { return func(o *Orchestrator) { o.removeOnSuccess = true } }

func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func OnProgress(fn func(id string, percent int)) Option {
	return func(o *Orchestrator) { o.onProgress = fn }
}

func OnTaskChange(fn func(Task)) Option { return func(o *Orchestrator) { o.onTaskChange = fn } }

// OnComplete fires once each time the last in-flight upload settles and no
// task is left pending.
func OnComplete(fn func(Summary)) Option { return func(o *Orchestrator) { o.onComplete = fn } }

type entry struct {
	task    Task
	claimed bool
	removed bool
	cancel  context.CancelFunc
}

type Orchestrator struct {
	policy    Policy
	presigner Presigner
	transfer  Transfer
	logger    *zap.Logger

	concurrency     int
	maxAttempts     int
	maxRetries      int
	delays          []time.Duration
	sleep           func(ctx context.Context, d time.Duration) error
	removeOnSuccess bool

	onProgress   func(id string, percent int)
	onTaskChange func(Task)
	onComplete   func(Summary)

	mu       sync.Mutex
	order    []string
	entries  map[string]*entry
	inFlight int
	settled  []Task
}

func New(policy Policy, presigner Presigner, tr Transfer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		policy:      policy,
		presigner:   presigner,
		transfer:    tr,
		logger:      zap.NewNop(),
		maxAttempts: DefaultMaxAttempts,
		maxRetries:  DefaultMaxRetries,
		delays:      DefaultDelays,
		sleep:       sleepCtx,
		entries:     make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddFiles queues files as pending tasks.
func (o *Orchestrator) AddFiles(files ...transfer.File) []Task {
	o.mu.Lock()
	defer o.mu.Unlock()

	added := make([]Task, 0, len(files))
	for _, f := range files {
		t := Task{ID: uuid.NewString(), File: f, Status: StatusPending}
		o.entries[t.ID] = &entry{task: t}
		o.order = append(o.order, t.ID)
		added = append(added, t)
	}
	return added
}

// Tasks returns a snapshot in insertion order.
func (o *Orchestrator) Tasks() []Task {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Task, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.entries[id].task)
	}
	return out
}

func (o *Orchestrator) Task(id string) (Task, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[id]
	if !ok {
		return Task{}, false
	}
	return e.task, true
}

// RemoveFile drops the task and cancels its upload if one is running.
func (o *Orchestrator) RemoveFile(id string) bool {
	o.mu.Lock()
	e, ok := o.entries[id]
	var cancel context.CancelFunc
	if ok {
		e.removed = true
		cancel = e.cancel
		o.removeLocked(id)
	}
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return ok
}

func (o *Orchestrator) removeLocked(id string) {
	delete(o.entries, id)
	for i, v := range o.order {
		if v == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// StartUpload runs every pending task and blocks until each is terminal or
// removed.
func (o *Orchestrator) StartUpload(ctx context.Context) Summary {
	o.mu.Lock()
	var ids []string
	for _, id := range o.order {
		e := o.entries[id]
		if e.task.Status != StatusPending || e.claimed {
			continue
		}
		e.claimed = true
		ids = append(ids, id)
	}
	o.inFlight += len(ids)
	o.mu.Unlock()

	results := make([]Task, len(ids))
	kept := make([]bool, len(ids))

	var g errgroup.Group
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i, id := range ids {
		g.Go(func() error {
			results[i], kept[i] = o.runTask(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	var s Summary
	for i, t := range results {
		if kept[i] {
			s.add(t)
		}
	}
	return s
}

func (s *Summary) add(t Task) {
	switch t.Status {
	case StatusSuccess:
		s.Succeeded++
	case StatusError:
		s.Failed++
	}
	s.Tasks = append(s.Tasks, t)
}

// RetryUpload reruns a failed task. Each task gets at most MaxRetries
// explicit retries.
func (o *Orchestrator) RetryUpload(ctx context.Context, id string) (Task, error) {
	o.mu.Lock()
	e, ok := o.entries[id]
	switch {
	case !ok:
		o.mu.Unlock()
		return Task{}, ErrTaskNotFound
	case e.task.Status != StatusError:
		o.mu.Unlock()
		return e.task, ErrNotRetryable
	case e.task.RetryCount >= o.maxRetries:
		o.mu.Unlock()
		return e.task, fmt.Errorf("%s: %w", e.task.File.Name(), ErrRetryLimit)
	}
	e.task.RetryCount++
	e.task.Status = StatusPending
	e.task.Progress = 0
	e.task.Err = ""
	e.task.ErrKind = ErrKindNone
	e.task.ObjectName = ""
	e.claimed = true
	o.inFlight++
	snapshot := e.task
	o.mu.Unlock()

	o.notify(snapshot)
	t, _ := o.runTask(ctx, id)

	return t, nil
}

// runTask returns the final task state and false when the task was removed
// before it settled.
func (o *Orchestrator) runTask(parent context.Context, id string) (Task, bool) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	o.mu.Lock()
	e, ok := o.entries[id]
	var file transfer.File
	if ok {
		e.cancel = cancel
		file = e.task.File
	}
	o.mu.Unlock()

	if !ok {
		o.done(Task{}, false)
		return Task{}, false
	}

	o.process(ctx, id, file)

	o.mu.Lock()
	final, kept := e.task, !e.removed
	o.mu.Unlock()

	o.done(final, kept)
	return final, kept
}

func (o *Orchestrator) process(ctx context.Context, id string, file transfer.File) {
	if err := o.policy.Validate(file); err != nil {
		o.fail(id, ErrKindValidation, err.Error())
		return
	}

	o.update(id, func(t *Task) { t.Status = StatusUploading })

	objectName, err := o.policy.ObjectName(file)
	if err != nil {
		o.fail(id, ErrKindObjectName, err.Error())
		return
	}

	stored, ok := o.upload(ctx, id, file, objectName)
	if !ok {
		return
	}

	if err = o.policy.Register(ctx, file, stored); err != nil {
		if ctx.Err() != nil {
			o.fail(id, ErrKindCanceled, "upload cancelled")
			return
		}
		o.logger.Warn("file registration failed", zap.String("object", stored), zap.Error(err))
		o.fail(id, ErrKindRegister, err.Error())
		return
	}

	o.update(id, func(t *Task) {
		t.Status = StatusSuccess
		t.Progress = 100
		t.Err = ""
		t.ErrKind = ErrKindNone
	})
}

// upload presigns and transfers, retrying transient transfer failures up to
// maxAttempts total attempts.
func (o *Orchestrator) upload(ctx context.Context, id string, file transfer.File, objectName string) (string, bool) {
	for attempt := 1; ; attempt++ {
		o.update(id, func(t *Task) {
			t.Attempts++
			t.Progress = 0
		})

		presigned, err := o.presigner.PresignUpload(ctx, objectName, file)
		if err != nil {
			if ctx.Err() != nil {
				o.fail(id, ErrKindCanceled, "upload cancelled")
			} else {
				o.fail(id, ErrKindPresign, err.Error())
			}
			return "", false
		}
		if presigned.ObjectName == "" {
			presigned.ObjectName = objectName
		}
		objectName = presigned.ObjectName
		o.update(id, func(t *Task) { t.ObjectName = objectName })

		res := o.transfer.PutFile(ctx, file, presigned.URL, func(pct int) { o.progress(id, pct) })
		if res.Success {
			return presigned.ObjectName, true
		}

		if !res.Kind.Retryable() || attempt >= o.maxAttempts {
			o.fail(id, ErrKind(res.Kind), res.Reason)
			return "", false
		}

		delay := o.delay(attempt)
		o.logger.Info("retrying upload",
			zap.String("file", file.Name()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.String("reason", res.Reason),
		)
		if err = o.sleep(ctx, delay); err != nil {
			o.fail(id, ErrKindCanceled, "upload cancelled")
			return "", false
		}
	}
}

func (o *Orchestrator) delay(attempt int) time.Duration {
	if len(o.delays) == 0 {
		return 0
	}
	i := attempt - 1
	if i >= len(o.delays) {
		i = len(o.delays) - 1
	}
	return o.delays[i]
}

func (o *Orchestrator) progress(id string, pct int) {
	o.mu.Lock()
	e, ok := o.entries[id]
	if !ok || pct <= e.task.Progress {
		o.mu.Unlock()
		return
	}
	e.task.Progress = pct
	o.mu.Unlock()

	if o.onProgress != nil {
		o.onProgress(id, pct)
	}
}

func (o *Orchestrator) fail(id string, kind ErrKind, reason string) {
	o.update(id, func(t *Task) {
		t.Status = StatusError
		t.ErrKind = kind
		t.Err = reason
	})
}

// update mutates a live task and reports the change. Removed tasks are
// ignored.
func (o *Orchestrator) update(id string, fn func(t *Task)) {
	o.mu.Lock()
	e, ok := o.entries[id]
	if !ok {
		o.mu.Unlock()
		return
	}
	fn(&e.task)
	snapshot := e.task
	if snapshot.Status == StatusSuccess || snapshot.Status == StatusError {
		e.claimed = false
		if snapshot.Status == StatusSuccess && o.removeOnSuccess {
			o.removeLocked(id)
		}
	}
	o.mu.Unlock()

	o.notify(snapshot)
}

func (o *Orchestrator) notify(t Task) {
	if o.onTaskChange != nil {
		o.onTaskChange(t)
	}
}

// done retires one in-flight task and fires OnComplete when it was the last
// and nothing is left pending.
func (o *Orchestrator) done(t Task, kept bool) {
	o.mu.Lock()
	o.inFlight--
	if kept {
		o.settled = append(o.settled, t)
	}
	if o.inFlight > 0 || o.hasPendingLocked() {
		o.mu.Unlock()
		return
	}
	settled := o.settled
	o.settled = nil
	o.mu.Unlock()

	if o.onComplete == nil {
		return
	}
	var s Summary
	for _, t := range settled {
		s.add(t)
	}
	o.onComplete(s)
}

func (o *Orchestrator) hasPendingLocked() bool {
	for _, e := range o.entries {
		if e.task.Status == StatusPending || e.task.Status == StatusUploading {
			return true
		}
	}
	return false
}
