package journal

import (
	"context"
	"sync"
)

// defaultHistoryDepth bounds the undo/redo stacks when Options leaves the
// depth zero.
const defaultHistoryDepth = 50

// action is one recorded mutating operation. undo and redo replay through
// the store's persistence paths, never by splicing the visible list.
type action struct {
	undo func(ctx context.Context) error
	redo func(ctx context.Context) error
}

// history is a bounded two-stack undo/redo log. A new mutation clears the
// redo stack; exceeding the depth drops the oldest undoable action.
type history struct {
	mu    sync.Mutex
	depth int
	undos []action
	redos []action
}

func newHistory(depth int) *history {
	if depth <= 0 {
		depth = defaultHistoryDepth
	}
	return &history{depth: depth}
}

func (h *history) push(a action) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undos = append(h.undos, a)
	if len(h.undos) > h.depth {
		h.undos = h.undos[1:]
	}
	h.redos = nil
}

func (h *history) undo(ctx context.Context) (bool, error) {
	h.mu.Lock()
	if len(h.undos) == 0 {
		h.mu.Unlock()
		return false, nil
	}
	a := h.undos[len(h.undos)-1]
	h.undos = h.undos[:len(h.undos)-1]
	h.mu.Unlock()

	if err := a.undo(ctx); err != nil {
		// still applied; keep it undoable so the caller can retry
		h.mu.Lock()
		h.undos = append(h.undos, a)
		h.mu.Unlock()
		return false, err
	}

	h.mu.Lock()
	h.redos = append(h.redos, a)
	h.mu.Unlock()
	return true, nil
}

func (h *history) redo(ctx context.Context) (bool, error) {
	h.mu.Lock()
	if len(h.redos) == 0 {
		h.mu.Unlock()
		return false, nil
	}
	a := h.redos[len(h.redos)-1]
	h.redos = h.redos[:len(h.redos)-1]
	h.mu.Unlock()

	if err := a.redo(ctx); err != nil {
		h.mu.Lock()
		h.redos = append(h.redos, a)
		h.mu.Unlock()
		return false, err
	}

	h.mu.Lock()
	h.undos = append(h.undos, a)
	h.mu.Unlock()
	return true, nil
}

func (h *history) canUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undos) > 0
}

func (h *history) canRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redos) > 0
}
