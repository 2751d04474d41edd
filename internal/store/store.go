package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bimakw/pmo/internal/apperr"
	"github.com/bimakw/pmo/internal/model"
	"gorm.io/gorm"
)

// Mutation is the unit of state change. Apply performs the writes inside tx
// and records one activity event per observable change on rec. The store
// inserts the recorded events in the same transaction, so the audit trail
// cannot diverge from entity state.
type Mutation interface {
	Apply(tx *gorm.DB, rec *Recorder) error
}

type MutationFunc func(tx *gorm.DB, rec *Recorder) error

func (f MutationFunc) Apply(tx *gorm.DB, rec *Recorder) error { return f(tx, rec) }

// Recorder stages activity events during a mutation.
type Recorder struct {
	events []model.ActivityEvent
}

func (r *Recorder) Record(actorID, projectID *uint, action, entityType string, entityID uint, detail model.JSONMap) {
	r.events = append(r.events, model.ActivityEvent{
		ActorID:    actorID,
		ProjectID:  projectID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	})
}

// Events returns the events staged so far.
func (r *Recorder) Events() []model.ActivityEvent { return r.events }

// Hook observes committed activity events. Hooks run after commit only.
type Hook func(model.ActivityEvent)

type Store struct {
	db *gorm.DB

	mu    sync.RWMutex
	hooks []Hook
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for read paths.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) AddHook(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Exec runs m and its recorded events as one transaction. A mutation that
// records no event is rejected: every state change must describe itself.
func (s *Store) Exec(m Mutation) error {
	rec := &Recorder{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := m.Apply(tx, rec); err != nil {
			return err
		}
		if len(rec.events) == 0 {
			return fmt.Errorf("store: mutation recorded no activity event")
		}
		for i := range rec.events {
			if err := tx.Create(&rec.events[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Translate(err)
	}

	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()
	for _, h := range hooks {
		for _, e := range rec.events {
			h(e)
		}
	}
	return nil
}

// Translate maps storage errors onto the apperr taxonomy. Application errors
// pass through untouched.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := apperr.As(err); ok {
		return e
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("", 0, "记录不存在")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Validation("", "唯一约束冲突")
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		return apperr.Validation("", "唯一约束冲突: "+err.Error())
	}
	if strings.Contains(msg, "deadlock") || strings.Contains(msg, "lock") || strings.Contains(msg, "busy") {
		return apperr.TxConflict("并发写入冲突，请重试")
	}
	return err
}
