package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/regional-streaming/internal/queue"
	"github.com/iliyamo/regional-streaming/internal/service"
)

var nopLog = zerolog.Nop()

type recorder struct {
	mu     sync.Mutex
	events []queue.VideoEvent
	fail   bool
}

func (r *recorder) Publish(_ context.Context, ev queue.VideoEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("broker down")
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func assertKind(t *testing.T, err error, want service.Kind) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, want, service.KindOf(err), "error: %v", err)
	}
}
