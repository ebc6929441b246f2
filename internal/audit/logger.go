package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/quizguard/internal/logging"
	"github.com/ppiankov/quizguard/internal/metrics"
	"github.com/ppiankov/quizguard/internal/model"
	"go.uber.org/zap"
)

// ErrClosed is returned by Append after Close
var ErrClosed = errors.New("audit logger closed")

// Logger serializes appends through a single writer goroutine so entries
// get gapless, strictly increasing sequence numbers.
type Logger struct {
	store    Store
	requests chan appendRequest
	done     chan struct{}
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.RWMutex
	closed bool
	seq    int64 // owned by the writer goroutine
}

type appendRequest struct {
	ctx   context.Context
	entry model.AuditEntry
	reply chan appendReply
}

type appendReply struct {
	entry model.AuditEntry
	err   error
}

// NewLogger starts the writer goroutine. Sequences continue from the
// highest one already in store.
func NewLogger(ctx context.Context, store Store, bufferSize int, logger *zap.Logger) (*Logger, error) {
	last, err := store.LastSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("read last audit sequence: %w", err)
	}
	if bufferSize <= 0 {
		bufferSize = 64
	}

	l := &Logger{
		store:    store,
		requests: make(chan appendRequest, bufferSize),
		done:     make(chan struct{}),
		logger:   logging.OrNop(logger),
		now:      time.Now,
		seq:      last,
	}
	go l.run()
	return l, nil
}

func (l *Logger) run() {
	defer close(l.done)
	for req := range l.requests {
		req.reply <- l.write(req)
	}
}

func (l *Logger) write(req appendRequest) appendReply {
	if err := req.ctx.Err(); err != nil {
		return appendReply{err: err}
	}

	entry := req.entry
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.Sequence = l.seq + 1
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}

	if err := l.store.Append(req.ctx, entry); err != nil {
		l.logger.Error("audit append failed",
			zap.String("content_id", entry.ContentID),
			zap.Error(err))
		return appendReply{err: fmt.Errorf("append audit entry: %w", err)}
	}

	l.seq = entry.Sequence
	metrics.AuditEntriesWritten.WithLabelValues(string(entry.ReviewStatus)).Inc()
	l.logger.Debug("audit entry appended",
		zap.String("id", entry.ID),
		zap.Int64("sequence", entry.Sequence),
		zap.String("content_id", entry.ContentID),
		zap.String("review_status", string(entry.ReviewStatus)))

	return appendReply{entry: entry}
}

// Append records entry and returns it with ID, Sequence and Timestamp set.
// It blocks until the entry is durable in the store.
func (l *Logger) Append(ctx context.Context, entry model.AuditEntry) (model.AuditEntry, error) {
	reply := make(chan appendReply, 1)

	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return model.AuditEntry{}, ErrClosed
	}
	select {
	case l.requests <- appendRequest{ctx: ctx, entry: entry.Clone(), reply: reply}:
		l.mu.RUnlock()
	case <-ctx.Done():
		l.mu.RUnlock()
		return model.AuditEntry{}, ctx.Err()
	}

	// The writer always answers an accepted request
	r := <-reply
	return r.entry, r.err
}

// Entries returns the trail for one content id
func (l *Logger) Entries(ctx context.Context, contentID string) ([]model.AuditEntry, error) {
	return l.store.Entries(ctx, contentID)
}

// Latest returns the most recent entry for contentID, or nil when there is none
func (l *Logger) Latest(ctx context.Context, contentID string) (*model.AuditEntry, error) {
	entries, err := l.store.Entries(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	latest := entries[len(entries)-1]
	return &latest, nil
}

// Releasable reports whether contentID may be shown to a learner: its
// latest entry must be auto_approved or approved.
func (l *Logger) Releasable(ctx context.Context, contentID string) (bool, error) {
	latest, err := l.Latest(ctx, contentID)
	if err != nil {
		return false, err
	}
	return latest != nil && latest.ReviewStatus.Released(), nil
}

// Close drains queued appends and stops the writer
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.requests)
	l.mu.Unlock()

	<-l.done
	return nil
}
