package notify

import (
	"log"
	"sync"

	"github.com/bimakw/pmo/internal/model"
	"gorm.io/gorm"
)

// Trigger consumes committed activity events asynchronously and writes the
// notifications the policy derives. Delivery (email, push) is someone
// else's job.
type Trigger struct {
	db     *gorm.DB
	policy Policy
	ch     chan model.ActivityEvent
	wg     sync.WaitGroup

	closeOnce sync.Once
}

func NewTrigger(db *gorm.DB, policy Policy) *Trigger {
	if policy == nil {
		policy = DefaultPolicy{}
	}
	return &Trigger{
		db:     db,
		policy: policy,
		ch:     make(chan model.ActivityEvent, 256),
	}
}

func (t *Trigger) Start() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for ev := range t.ch {
			t.process(ev)
		}
	}()
}

// Stop drains pending events and waits for the worker.
func (t *Trigger) Stop() {
	t.closeOnce.Do(func() { close(t.ch) })
	t.wg.Wait()
}

// Enqueue is registered as a store hook. Events are dropped rather than
// blocking the mutation path when the buffer is full.
func (t *Trigger) Enqueue(ev model.ActivityEvent) {
	select {
	case t.ch <- ev:
	default:
		log.Printf("[notify] event buffer full, dropping event id=%d", ev.ID)
	}
}

func (t *Trigger) process(ev model.ActivityEvent) {
	notifications := t.policy.Derive(t.db, ev)
	for i := range notifications {
		if err := t.db.Create(&notifications[i]).Error; err != nil {
			log.Printf("[notify] create notification for user %d: %v", notifications[i].UserID, err)
		}
	}
}
