// Package journal implements the store orchestrator: it owns the in-memory
// visible list of entries, coordinates paginated loads and mutations
// against the repository, classifies bodies on write, and keeps a bounded
// undo/redo history.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anchorapp/journal/internal/classifier"
	"github.com/anchorapp/journal/internal/common"
	"github.com/anchorapp/journal/internal/logging"
	"github.com/anchorapp/journal/internal/models"
	"github.com/anchorapp/journal/internal/query"
	"github.com/anchorapp/journal/internal/repositories/entries"
	"github.com/google/uuid"
)

// State describes the store's current in-flight operation.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSaving
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSaving:
		return "saving"
	case StateErrored:
		return "errored"
	default:
		return "idle"
	}
}

// DefaultPageSize is the visible-list page size when Options leaves it zero.
const DefaultPageSize = 20

// Options tunes a Store.
type Options struct {
	PageSize     int
	HistoryDepth int
}

// Patch carries the fields an Update applies; nil fields are left as-is.
type Patch struct {
	Title  *string
	Body   *string
	Tags   *[]string
	Locked *bool
}

// Store is the public-facing journal API. The visible list is a cache of
// the current filter's pages; durable storage always wins on divergence.
//
// All visible-list mutation happens under the store mutex after repository
// I/O completes, so concurrent readers of Visible never observe partial
// updates. Operations from a single caller are processed in issuance order;
// no ordering is promised across independent concurrent callers.
type Store struct {
	repo   entries.Repository
	cls    classifier.Classifier
	engine *query.Engine
	log    logging.Logger

	pageSize int

	mu      sync.Mutex
	visible []models.Entry
	hasMore bool
	loading bool
	state   State
	lastErr error

	// loadGen invalidates in-flight page loads: Refresh bumps it, and a
	// stale load result arriving afterwards is discarded.
	loadGen uint64

	history *history
}

// NewStore wires the orchestrator. The classifier and engine must be
// non-nil; inject fakes in tests.
func NewStore(repo entries.Repository, cls classifier.Classifier, eng *query.Engine, log logging.Logger, opts Options) *Store {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{
		repo:     repo,
		cls:      cls,
		engine:   eng,
		log:      log.With("component", "journal-store"),
		pageSize: pageSize,
		hasMore:  true,
		history:  newHistory(opts.HistoryDepth),
	}
}

// Engine exposes the store's query engine for filter updates.
func (s *Store) Engine() *query.Engine { return s.engine }

// Visible returns a snapshot of the visible list. Entries are cloned so
// callers cannot alias the store's state.
func (s *Store) Visible() []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Entry, len(s.visible))
	for i, e := range s.visible {
		out[i] = e.Clone()
	}
	return out
}

// HasMorePages reports whether another LoadMore can yield results.
func (s *Store) HasMorePages() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// State returns the store's current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error recorded by the last failed operation, nil after a
// success.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LoadMore fetches the next page of the current filter and appends it to
// the visible list. It is a no-op while a load is in flight or after the
// last page was reached. A page shorter than the page size marks
// exhaustion.
func (s *Store) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.loading || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.state = StateLoading
	gen := s.loadGen
	d := s.engine.Descriptor()
	d.Limit = s.pageSize
	d.Offset = len(s.visible)
	s.mu.Unlock()

	page, err := s.repo.Query(ctx, d)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if gen != s.loadGen {
		// A refresh reset pagination while this page was in flight.
		s.log.Debug(ctx, "discarding stale page", "offset", d.Offset)
		return nil
	}
	if err != nil {
		s.state = StateErrored
		s.lastErr = err
		s.log.Error(ctx, "page load failed", "offset", d.Offset, "error", err)
		return fmt.Errorf("failed to load page: %w", err)
	}

	s.visible = append(s.visible, page...)
	if len(page) < s.pageSize {
		s.hasMore = false
	}
	s.state = StateIdle
	s.lastErr = nil
	s.log.Debug(ctx, "page loaded", "offset", d.Offset, "count", len(page), "hasMore", s.hasMore)
	return nil
}

// Refresh resets pagination to page zero, clears the visible list and
// reloads the first page. Any in-flight LoadMore result is discarded.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loadGen++
	s.visible = nil
	s.hasMore = true
	s.loading = false
	s.mu.Unlock()
	return s.LoadMore(ctx)
}

// Add validates and classifies the input, persists a fresh entry and
// prepends it to the visible list. Nothing becomes visible until the entry
// is durably stored and classified.
func (s *Store) Add(ctx context.Context, title, body string, tags []string) (models.Entry, error) {
	e, err := s.addInternal(ctx, title, body, tags)
	if err != nil {
		return models.Entry{}, err
	}
	s.history.push(action{
		undo: func(ctx context.Context) error {
			_, err := s.deleteInternal(ctx, []string{e.ID})
			return err
		},
		redo: func(ctx context.Context) error {
			return s.restoreInternal(ctx, e)
		},
	})
	return e, nil
}

// Update applies the patch to the durable record, reclassifying the body if
// it changed, then replaces the entry in the visible list (or prepends it
// when it is currently off-page).
func (s *Store) Update(ctx context.Context, id string, patch Patch) (models.Entry, error) {
	before, after, err := s.updateInternal(ctx, id, patch)
	if err != nil {
		return models.Entry{}, err
	}
	s.history.push(action{
		undo: func(ctx context.Context) error {
			return s.restoreInternal(ctx, before)
		},
		redo: func(ctx context.Context) error {
			return s.restoreInternal(ctx, after)
		},
	})
	return after, nil
}

// Delete removes the given entries with one batch repository delete, then
// drops exactly the confirmed-deleted ids from the visible list.
func (s *Store) Delete(ctx context.Context, toDelete []models.Entry) error {
	snapshots := make([]models.Entry, len(toDelete))
	for i, e := range toDelete {
		snapshots[i] = e.Clone()
	}

	confirmed, err := s.deleteInternal(ctx, idsOf(toDelete))
	if err != nil {
		return err
	}

	// keep only the entries that were actually removed
	kept := snapshots[:0]
	for _, e := range snapshots {
		if _, ok := confirmed[e.ID]; ok {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	deleted := append([]models.Entry(nil), kept...)

	s.history.push(action{
		undo: func(ctx context.Context) error {
			// restore oldest-first so prepends land newest-first
			for i := len(deleted) - 1; i >= 0; i-- {
				if err := s.restoreInternal(ctx, deleted[i]); err != nil {
					return err
				}
			}
			return nil
		},
		redo: func(ctx context.Context) error {
			_, err := s.deleteInternal(ctx, idsOf(deleted))
			return err
		},
	})
	return nil
}

// Undo reverts the most recent mutating operation by replaying its inverse
// through the persistence path. It returns false when the history is empty.
func (s *Store) Undo(ctx context.Context) (bool, error) {
	return s.history.undo(ctx)
}

// Redo re-applies the most recently undone operation.
func (s *Store) Redo(ctx context.Context) (bool, error) {
	return s.history.redo(ctx)
}

// CanUndo reports whether an Undo would act.
func (s *Store) CanUndo() bool { return s.history.canUndo() }

// CanRedo reports whether a Redo would act.
func (s *Store) CanRedo() bool { return s.history.canRedo() }

func (s *Store) addInternal(ctx context.Context, title, body string, tags []string) (models.Entry, error) {
	if err := models.ValidateEntryInput(models.EntryInput{Title: title, Body: body, Tags: tags}); err != nil {
		return models.Entry{}, err
	}

	now := time.Now().UTC()
	e := models.Entry{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		UpdatedAt:  now,
		Title:      title,
		Body:       body,
		BodyFormat: models.BodyFormatPlain,
		Tags:       models.NormalizeTags(tags),
		Sentiment:  s.classify(ctx, body),
		Version:    1,
	}

	s.setState(StateSaving)
	if err := s.repo.Upsert(ctx, &e); err != nil {
		s.recordErr(ctx, "add entry", err)
		return models.Entry{}, fmt.Errorf("failed to add entry: %w", err)
	}

	s.mu.Lock()
	s.visible = append([]models.Entry{e.Clone()}, s.visible...)
	s.state = StateIdle
	s.lastErr = nil
	s.mu.Unlock()
	return e, nil
}

func (s *Store) updateInternal(ctx context.Context, id string, patch Patch) (before, after models.Entry, err error) {
	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.recordErr(ctx, "update entry", err)
		return models.Entry{}, models.Entry{}, fmt.Errorf("failed to load entry for update: %w", err)
	}
	before = cur.Clone()

	next := cur.Clone()
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Body != nil && *patch.Body != next.Body {
		next.Body = *patch.Body
		next.Sentiment = s.classify(ctx, next.Body)
	}
	if patch.Tags != nil {
		next.Tags = models.NormalizeTags(*patch.Tags)
	}
	if patch.Locked != nil {
		next.IsLocked = *patch.Locked
	}

	if err := models.ValidateEntryInput(models.EntryInput{Title: next.Title, Body: next.Body, Tags: next.Tags}); err != nil {
		return models.Entry{}, models.Entry{}, err
	}

	next.Version = cur.Version + 1

	s.setState(StateSaving)
	if err := s.repo.Upsert(ctx, &next); err != nil {
		s.recordErr(ctx, "update entry", err)
		return models.Entry{}, models.Entry{}, fmt.Errorf("failed to update entry: %w", err)
	}

	s.replaceVisible(next)
	return before, next, nil
}

// restoreInternal writes a full snapshot back through the repository (the
// same path updates take) and reflects it in the visible list. Used by
// undo/redo.
func (s *Store) restoreInternal(ctx context.Context, snapshot models.Entry) error {
	e := snapshot.Clone()

	// Restoring over a live record is an update, so the version keeps
	// climbing; re-creating a deleted record keeps the snapshot version.
	cur, err := s.repo.GetByID(ctx, e.ID)
	switch {
	case err == nil:
		e.Version = cur.Version + 1
	case errors.Is(err, common.ErrNotFound):
	default:
		s.recordErr(ctx, "restore entry", err)
		return fmt.Errorf("failed to restore entry: %w", err)
	}

	s.setState(StateSaving)
	if err := s.repo.Upsert(ctx, &e); err != nil {
		s.recordErr(ctx, "restore entry", err)
		return fmt.Errorf("failed to restore entry: %w", err)
	}
	s.replaceVisible(e)
	return nil
}

// deleteInternal issues the batch delete and removes confirmed-deleted ids
// from the visible list. It returns the set of ids verified gone.
func (s *Store) deleteInternal(ctx context.Context, ids []string) (map[string]struct{}, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.setState(StateSaving)
	deleted, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		s.recordErr(ctx, "delete entries", err)
		return nil, fmt.Errorf("failed to delete entries: %w", err)
	}

	confirmed := make(map[string]struct{}, len(ids))
	var verifyErr error
	if deleted == int64(len(ids)) {
		for _, id := range ids {
			confirmed[id] = struct{}{}
		}
	} else {
		// fewer rows went than asked: confirm per id before touching the
		// visible list, durable storage wins. Only a definite not-found
		// counts as gone; a read failure leaves the entry visible.
		s.log.Warn(ctx, "partial batch delete", "requested", len(ids), "deleted", deleted)
		for _, id := range ids {
			_, err := s.repo.GetByID(ctx, id)
			switch {
			case err == nil:
				// still present
			case errors.Is(err, common.ErrNotFound):
				confirmed[id] = struct{}{}
			default:
				verifyErr = err
			}
		}
	}

	s.mu.Lock()
	kept := s.visible[:0]
	for _, e := range s.visible {
		if _, gone := confirmed[e.ID]; !gone {
			kept = append(kept, e)
		}
	}
	s.visible = kept
	if verifyErr != nil {
		s.state = StateErrored
		s.lastErr = verifyErr
	} else {
		s.state = StateIdle
		s.lastErr = nil
	}
	s.mu.Unlock()

	if verifyErr != nil {
		s.log.Error(ctx, "delete verification failed", "error", verifyErr)
		return confirmed, fmt.Errorf("failed to verify deletions: %w", verifyErr)
	}
	return confirmed, nil
}

// replaceVisible swaps the entry with a matching id in place, or prepends
// it when the entry is not on a loaded page.
func (s *Store) replaceVisible(e models.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.visible {
		if s.visible[i].ID == e.ID {
			s.visible[i] = e.Clone()
			s.state = StateIdle
			s.lastErr = nil
			return
		}
	}
	s.visible = append([]models.Entry{e.Clone()}, s.visible...)
	s.state = StateIdle
	s.lastErr = nil
}

// classify scores the body. Classifier failures are not fatal: the entry
// saves with an unknown sentiment.
func (s *Store) classify(ctx context.Context, body string) *models.Sentiment {
	score, err := s.cls.Classify(body)
	if err != nil {
		s.log.Warn(ctx, "classification failed, saving without sentiment", "error", err)
		return nil
	}
	return &score
}

func (s *Store) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Store) recordErr(ctx context.Context, op string, err error) {
	s.mu.Lock()
	s.state = StateErrored
	s.lastErr = err
	s.mu.Unlock()
	s.log.Error(ctx, op+" failed", "error", err)
}

func idsOf(es []models.Entry) []string {
	ids := make([]string, len(es))
	for i, e := range es {
		ids[i] = e.ID
	}
	return ids
}
