package events

import (
	"context"
	"sync"
)

// Recorder keeps published events in memory for tests
type Recorder struct {
	mu     sync.Mutex
	Events []Envelope
}

func (r *Recorder) Publish(_ context.Context, subject string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Envelope{Subject: subject, Payload: payload})
	return nil
}

func (r *Recorder) Close() error { return nil }

// Subjects returns the subjects published so far in order
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	subjects := make([]string, len(r.Events))
	for i, e := range r.Events {
		subjects[i] = e.Subject
	}
	return subjects
}
