package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/bimakw/pmo/internal/model"
	"github.com/redis/go-redis/v9"
)

// Event is one frame of a project's live activity stream. ID is the
// activity event id, which is monotonic per insertion.
type Event struct {
	ID   uint        `json:"id"`
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// streamCap bounds the Redis replay buffer per project.
const streamCap = 500

type subscriber struct {
	ch chan Event
}

// Hub fans committed activity events out to SSE subscribers, keyed by
// project. A capped Redis list per project backs Last-Event-ID replay
// across process restarts.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint][]*subscriber
	rdb         *redis.Client
	ttl         time.Duration
}

func NewHub(rdb *redis.Client, ttl time.Duration) *Hub {
	return &Hub{
		subscribers: make(map[uint][]*subscriber),
		rdb:         rdb,
		ttl:         ttl,
	}
}

func (h *Hub) Subscribe(projectID uint) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, 256)}
	h.subscribers[projectID] = append(h.subscribers[projectID], sub)

	unsub := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[projectID]
		for i, s := range subs {
			if s == sub {
				h.subscribers[projectID] = append(subs[:i], subs[i+1:]...)
				close(sub.ch)
				break
			}
		}
		if len(h.subscribers[projectID]) == 0 {
			delete(h.subscribers, projectID)
		}
	}
	return sub.ch, unsub
}

// Publish is registered as a store hook; events without a project scope
// have no stream to land on.
func (h *Hub) Publish(ev model.ActivityEvent) {
	if ev.ProjectID == nil {
		return
	}
	h.Broadcast(*ev.ProjectID, Event{ID: ev.ID, Type: ev.Action, Data: ev})
}

func (h *Hub) Broadcast(projectID uint, event Event) {
	ctx := context.Background()
	key := streamKey(projectID)

	if h.rdb != nil {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("[sse] marshal event %d: %v", event.ID, err)
		} else {
			pipe := h.rdb.Pipeline()
			pipe.RPush(ctx, key, string(data))
			pipe.LTrim(ctx, key, -streamCap, -1)
			if h.ttl > 0 {
				pipe.Expire(ctx, key, h.ttl)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				log.Printf("[sse] buffer event %d on %s: %v", event.ID, key, err)
			}
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers[projectID] {
		select {
		case sub.ch <- event:
		default:
			// drop if full
		}
	}
}

// ReplayFrom returns buffered events with id greater than afterID, oldest
// first, for Last-Event-ID catch-up.
func (h *Hub) ReplayFrom(projectID uint, afterID uint) ([]Event, error) {
	if h.rdb == nil {
		return nil, nil
	}
	ctx := context.Background()

	items, err := h.rdb.LRange(ctx, streamKey(projectID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(items))
	for _, item := range items {
		var ev Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			continue
		}
		if ev.ID > afterID {
			events = append(events, ev)
		}
	}
	return events, nil
}

func streamKey(projectID uint) string {
	return fmt.Sprintf("activity:stream:%d", projectID)
}

func ParseLastEventID(header string) uint {
	if header == "" {
		return 0
	}
	id, _ := strconv.ParseUint(header, 10, 64)
	return uint(id)
}
