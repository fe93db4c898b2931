// Package query translates user-facing filter and sort state into
// repository query descriptors, debouncing rapid input changes so a burst
// collapses into a single requery.
package query

import (
	"sync"
	"time"

	"github.com/anchorapp/journal/internal/models"
	"github.com/anchorapp/journal/internal/repositories/entries"
)

// DefaultDebounce is the input collapse window.
const DefaultDebounce = 300 * time.Millisecond

// Engine owns the (searchText, tagSet, sort) filter state and the debounce
// timer. Changes arriving within the window cancel the pending timer and
// reschedule, so only the latest state triggers the change callback.
type Engine struct {
	mu       sync.Mutex
	window   time.Duration
	search   string
	tags     []string
	sort     entries.Sort
	timer    *time.Timer
	onChange func(entries.Descriptor)
	closed   bool
}

// NewEngine returns an Engine with the given debounce window; window <= 0
// falls back to DefaultDebounce.
func NewEngine(window time.Duration) *Engine {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Engine{window: window, sort: entries.SortCreatedDesc}
}

// OnChange registers the callback invoked (from the timer goroutine) after
// the debounce window elapses with no further input.
func (e *Engine) OnChange(fn func(entries.Descriptor)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// SetSearchText updates the free-text filter and schedules a requery.
func (e *Engine) SetSearchText(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.search == s {
		return
	}
	e.search = s
	e.scheduleLocked()
}

// SetTags updates the tag filter (normalized on entry) and schedules a
// requery.
func (e *Engine) SetTags(tags []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tags = models.NormalizeTags(tags)
	e.scheduleLocked()
}

// SetSort updates the sort order. Sort changes are deliberate single
// actions, not typed bursts, so they notify immediately.
func (e *Engine) SetSort(s entries.Sort) {
	e.mu.Lock()
	e.sort = s
	fn, d := e.onChange, e.descriptorLocked()
	e.mu.Unlock()
	if fn != nil {
		fn(d)
	}
}

// Descriptor snapshots the current filter state. Limit and offset are left
// zero for the caller to fill in.
func (e *Engine) Descriptor() entries.Descriptor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.descriptorLocked()
}

// Flush cancels any pending timer and fires the callback immediately with
// the current state.
func (e *Engine) Flush() {
	e.mu.Lock()
	e.stopTimerLocked()
	fn, d := e.onChange, e.descriptorLocked()
	e.mu.Unlock()
	if fn != nil {
		fn(d)
	}
}

// Close stops the pending timer; further setters no longer schedule.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.closed = true
}

func (e *Engine) descriptorLocked() entries.Descriptor {
	return entries.Descriptor{
		SearchText: e.search,
		Tags:       append([]string(nil), e.tags...),
		Sort:       e.sort,
	}
}

// scheduleLocked implements the debounce: the latest pending input cancels
// any prior timer before arming a new one.
func (e *Engine) scheduleLocked() {
	if e.closed {
		return
	}
	e.stopTimerLocked()
	e.timer = time.AfterFunc(e.window, func() {
		e.mu.Lock()
		fn, d := e.onChange, e.descriptorLocked()
		e.timer = nil
		e.mu.Unlock()
		if fn != nil {
			fn(d)
		}
	})
}

func (e *Engine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
