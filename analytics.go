package main

import (
	"log"
	"sync"
	"time"
)

// Analytics event type names as stored in the events table
const (
	EvtSpawn       = "spawn"
	EvtKill        = "kill"
	EvtSessionOpen = "session_open"
	EvtSessionEnd  = "session_end"
)

// AnalyticsEvent is one trackable event
type AnalyticsEvent struct {
	Type      string
	Actor     uint32
	Target    uint32
	Tick      uint32
	Timestamp time.Time
}

// Analytics persists events with a buffered channel and a background
// writer, so tracking from the simulation path never blocks.
type Analytics struct {
	db     *DB
	events chan AnalyticsEvent
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, 1024),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence; full buffer drops the
// event rather than blocking the caller.
func (a *Analytics) Track(evtType string, actor, target, tick uint32) {
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		Actor:     actor,
		Target:    target,
		Tick:      tick,
		Timestamp: time.Now().UTC(),
	}:
	default:
	}
}

// Close flushes pending events and stops the writer
func (a *Analytics) Close() {
	close(a.stop)
	a.wg.Wait()
}

func (a *Analytics) writer() {
	defer a.wg.Done()
	for {
		select {
		case ev := <-a.events:
			a.persist(ev)
		case <-a.stop:
			for {
				select {
				case ev := <-a.events:
					a.persist(ev)
				default:
					return
				}
			}
		}
	}
}

func (a *Analytics) persist(ev AnalyticsEvent) {
	if a.db == nil {
		return
	}
	if err := a.db.InsertEvent(ev.Type, ev.Actor, ev.Target, ev.Tick, ev.Timestamp); err != nil {
		log.Printf("analytics insert: %v", err)
	}
	switch ev.Type {
	case EvtKill:
		if err := a.db.AddKill(ev.Actor); err != nil {
			log.Printf("stats kill: %v", err)
		}
		if err := a.db.AddDeath(ev.Target); err != nil {
			log.Printf("stats death: %v", err)
		}
	}
}
