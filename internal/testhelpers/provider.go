package testhelpers

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoScriptedResponse is returned by FakeProvider when its queue is empty.
var ErrNoScriptedResponse = errors.New("fake provider: no scripted response")

type scripted struct {
	text string
	err  error
}

// FakeProvider is a scripted text provider. Responses are served in the order
// they were queued and every prompt is recorded.
type FakeProvider struct {
	mu       sync.Mutex
	queue    []scripted
	prompts  []string
	strict   []bool
	delay    time.Duration
	fallback func(prompt string) (string, error)
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{}
}

// Reply queues a successful answer
func (f *FakeProvider) Reply(text string) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, scripted{text: text})
	return f
}

// Fail queues a failed call
func (f *FakeProvider) Fail(err error) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, scripted{err: err})
	return f
}

// Otherwise answers every call once the queue is drained
func (f *FakeProvider) Otherwise(fn func(prompt string) (string, error)) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallback = fn
	return f
}

// WithDelay makes every call take at least d
func (f *FakeProvider) WithDelay(d time.Duration) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
	return f
}

func (f *FakeProvider) Complete(ctx context.Context, prompt string, strictJSON bool) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.strict = append(f.strict, strictJSON)
	delay := f.delay
	var next *scripted
	if len(f.queue) > 0 {
		next = &f.queue[0]
		f.queue = f.queue[1:]
	}
	fallback := f.fallback
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	if next != nil {
		return next.text, next.err
	}
	if fallback != nil {
		return fallback(prompt)
	}
	return "", ErrNoScriptedResponse
}

// Calls is the number of Complete invocations so far
func (f *FakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// Prompts returns a copy of every prompt received
func (f *FakeProvider) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// LastPrompt returns the most recent prompt, or "" when never called
func (f *FakeProvider) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// AllStrict reports whether every call asked for strict JSON
func (f *FakeProvider) AllStrict() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.strict {
		if !s {
			return false
		}
	}
	return true
}
