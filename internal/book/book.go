// Package book implements the recipe store: the in-memory collection, the
// edit buffer, serving rescaling, and mirroring the collection to a slot
// store after every change.
package book

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/recipe"
)

// DefaultKey is the slot the collection is stored under.
const DefaultKey = "recipes"

// Observer receives operation outcomes. metrics.Recorder satisfies it.
type Observer interface {
	Operation(op string, err error)
	PersistFailed()
	Recipes(n int)
}

// Option configures the book.
type Option func(*Book)

// WithKey sets the slot name.
func WithKey(key string) Option {
	return func(b *Book) {
		b.key = key
	}
}

// WithClock sets the time source used to derive new recipe ids.
func WithClock(now func() time.Time) Option {
	return func(b *Book) {
		b.now = now
	}
}

// WithSeed replaces the recipes written to an empty book.
func WithSeed(seed func() []domain.Recipe) Option {
	return func(b *Book) {
		b.seed = seed
	}
}

// WithNotifier sets where persistence warnings are reported.
func WithNotifier(n domain.Notifier) Option {
	return func(b *Book) {
		b.notifier = n
	}
}

// WithObserver attaches an operation observer.
func WithObserver(o Observer) Option {
	return func(b *Book) {
		b.observer = o
	}
}

// Book owns the recipe collection and the edit state. It is safe for
// concurrent use; every mutating call is one read-compute-commit step.
type Book struct {
	mu       sync.RWMutex
	store    domain.SlotStore
	log      *logger.Logger
	key      string
	now      func() time.Time
	seed     func() []domain.Recipe
	notifier domain.Notifier
	observer Observer

	recipes []domain.Recipe
	state   domain.EditState
	lastID  int64
}

// New creates a book over store. Call Load before using it.
func New(store domain.SlotStore, log *logger.Logger, opts ...Option) *Book {
	b := &Book{
		store:   store,
		log:     log,
		key:     DefaultKey,
		now:     time.Now,
		seed:    recipe.Defaults,
		state:   domain.Idle{},
		recipes: []domain.Recipe{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load reads the collection from the store. A missing or empty slot is
// seeded with the default recipes, which are persisted right away. A seed
// that cannot be written is reported as an ErrPersist warning; the seeded
// collection is still in effect.
func (b *Book) Load(ctx context.Context) (err error) {
	defer func() { b.observe("load", err) }()

	payload, err := b.store.Get(ctx, b.key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		payload = nil
	case err != nil:
		return fmt.Errorf("loading recipes: %w", err)
	}

	var loaded []domain.Recipe
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &loaded); err != nil {
			return fmt.Errorf("decoding slot %q: %w", b.key, err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(loaded) > 0 {
		if verr := recipe.ValidateCollection(loaded); verr != nil {
			b.log.Warn("stored recipes break invariants: %v", verr)
		}
		b.recipes = normalize(loaded)
		b.state = domain.Idle{}
		b.log.Info("loaded %d recipes from slot %q", len(loaded), b.key)
		if b.observer != nil {
			b.observer.Recipes(len(b.recipes))
		}
		return nil
	}

	seed := b.seed()
	b.log.Info("slot %q is empty, seeding %d recipes", b.key, len(seed))
	return b.commit(ctx, seed)
}

// Recipes returns a deep copy of the collection in display order.
func (b *Book) Recipes() []domain.Recipe {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return domain.CloneAll(b.recipes)
}

// Get returns a copy of the recipe with the given id.
func (b *Book) Get(id int64) (domain.Recipe, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	idx := domain.IndexOf(b.recipes, id)
	if idx == -1 {
		return domain.Recipe{}, fmt.Errorf("recipe %d: %w", id, domain.ErrNotFound)
	}
	return b.recipes[idx].Clone(), nil
}

// State returns the current edit state. An Editing value carries a copy
// of the buffer.
func (b *Book) State() domain.EditState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ed, ok := b.state.(domain.Editing); ok {
		ed.Buffer = ed.Buffer.Clone()
		return ed
	}
	return domain.Idle{}
}

// Add opens a blank recipe with a fresh id in the edit buffer. The
// collection is untouched until Save. Any previous buffer is discarded.
func (b *Book) Add() domain.Recipe {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := domain.Recipe{
		ID:          b.nextID(),
		Ingredients: []domain.Ingredient{},
		Servings:    domain.MinServings,
	}
	b.state = domain.Editing{Buffer: r, New: true}
	b.log.Debug("editing new recipe %d", r.ID)
	b.observe("add", nil)
	return r.Clone()
}

// Edit copies an existing recipe into the edit buffer.
func (b *Book) Edit(id int64) (domain.Recipe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := domain.IndexOf(b.recipes, id)
	if idx == -1 {
		err := fmt.Errorf("recipe %d: %w", id, domain.ErrNotFound)
		b.observe("edit", err)
		return domain.Recipe{}, err
	}
	buf := b.recipes[idx].Clone()
	b.state = domain.Editing{Buffer: buf}
	b.log.Debug("editing recipe %d (%s)", id, buf.Name)
	b.observe("edit", nil)
	return buf.Clone(), nil
}

// Update applies fn to the edit buffer. The buffer's id cannot be changed.
func (b *Book) Update(fn func(r *domain.Recipe)) (domain.Recipe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ed, ok := b.state.(domain.Editing)
	if !ok {
		return domain.Recipe{}, domain.ErrNotEditing
	}
	buf := ed.Buffer.Clone()
	fn(&buf)
	buf.ID = ed.Buffer.ID
	ed.Buffer = buf
	b.state = ed
	return buf.Clone(), nil
}

// Cancel discards the edit buffer.
func (b *Book) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ed, ok := b.state.(domain.Editing); ok {
		b.log.Debug("discarded edits to recipe %d", ed.Buffer.ID)
	}
	b.state = domain.Idle{}
}

// Save commits the edit buffer. A recipe with the same id is replaced in
// place; otherwise the buffer is appended. Invalid buffers are rejected
// and stay open for correction.
func (b *Book) Save(ctx context.Context) (saved domain.Recipe, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer func() { b.observe("save", err) }()

	ed, ok := b.state.(domain.Editing)
	if !ok {
		return domain.Recipe{}, domain.ErrNotEditing
	}
	if err := recipe.Validate(ed.Buffer); err != nil {
		return domain.Recipe{}, err
	}

	next := domain.CloneAll(b.recipes)
	buf := ed.Buffer.Clone()
	if idx := domain.IndexOf(next, buf.ID); idx >= 0 {
		next[idx] = buf
		b.log.Info("updated recipe %d (%s)", buf.ID, buf.Name)
	} else {
		next = append(next, buf)
		b.log.Info("added recipe %d (%s)", buf.ID, buf.Name)
	}
	b.state = domain.Idle{}
	return buf.Clone(), b.commit(ctx, next)
}

// Delete removes the recipe with the given id. Deleting the recipe that
// is open in the edit buffer also closes the buffer; deleting an unsaved
// draft only discards it. Unknown ids return ErrNotFound and write nothing.
func (b *Book) Delete(ctx context.Context, id int64) (err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer func() { b.observe("delete", err) }()

	draft := false
	if ed, ok := b.state.(domain.Editing); ok && ed.Buffer.ID == id {
		b.state = domain.Idle{}
		draft = ed.New
	}

	idx := domain.IndexOf(b.recipes, id)
	if idx == -1 {
		if draft {
			b.log.Debug("discarded unsaved recipe %d", id)
			return nil
		}
		return fmt.Errorf("recipe %d: %w", id, domain.ErrNotFound)
	}

	next := make([]domain.Recipe, 0, len(b.recipes)-1)
	for _, r := range b.recipes {
		if r.ID != id {
			next = append(next, r.Clone())
		}
	}
	b.log.Info("deleted recipe %d (%s)", id, b.recipes[idx].Name)
	return b.commit(ctx, next)
}

// Rescale sets the recipe's serving count to n and scales every
// ingredient amount by n / current servings.
func (b *Book) Rescale(ctx context.Context, id int64, n int) (scaled domain.Recipe, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer func() { b.observe("rescale", err) }()

	idx := domain.IndexOf(b.recipes, id)
	if idx == -1 {
		return domain.Recipe{}, fmt.Errorf("recipe %d: %w", id, domain.ErrNotFound)
	}
	scaled, err = recipe.Rescale(b.recipes[idx], n)
	if err != nil {
		return domain.Recipe{}, err
	}

	next := domain.CloneAll(b.recipes)
	next[idx] = scaled
	b.log.Info("rescaled recipe %d (%s) from %d to %d servings", id, scaled.Name, b.recipes[idx].Servings, n)
	return scaled.Clone(), b.commit(ctx, next)
}

// Import appends recipes, assigning fresh ids to those without one or
// whose id is already taken. All recipes are validated first; nothing is
// added if any is invalid.
func (b *Book) Import(ctx context.Context, rs []domain.Recipe) (added []domain.Recipe, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer func() { b.observe("import", err) }()

	for i, r := range rs {
		if err := recipe.Validate(r); err != nil {
			return nil, fmt.Errorf("recipe %d (%q): %w", i+1, r.Name, err)
		}
	}

	next := domain.CloneAll(b.recipes)
	for _, r := range rs {
		r = r.Clone()
		if r.ID == 0 || domain.IndexOf(next, r.ID) >= 0 {
			r.ID = b.nextIDIn(next)
		}
		next = append(next, r)
		added = append(added, r.Clone())
	}
	b.log.Info("imported %d recipes", len(added))
	return added, b.commit(ctx, next)
}

// commit installs next as the collection and writes it to the store. The
// in-memory collection stays authoritative when the write fails: the
// failure is logged, reported to the notifier, and returned wrapped in
// ErrPersist. Callers must hold b.mu.
func (b *Book) commit(ctx context.Context, next []domain.Recipe) error {
	b.recipes = normalize(next)
	if b.observer != nil {
		b.observer.Recipes(len(b.recipes))
	}

	payload, err := json.Marshal(b.recipes)
	if err == nil {
		err = b.store.Set(ctx, b.key, payload)
	}
	if err == nil {
		b.log.Debug("persisted %d recipes to slot %q", len(b.recipes), b.key)
		return nil
	}

	b.log.Warn("persisting recipes failed, keeping in-memory copy: %v", err)
	if b.observer != nil {
		b.observer.PersistFailed()
	}
	if b.notifier != nil {
		if nerr := b.notifier.NotifyUrgent(ctx, "Warning: changes were not saved to storage: "+err.Error()); nerr != nil {
			b.log.Error("notify: %v", nerr)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrPersist, err)
}

func (b *Book) observe(op string, err error) {
	if b.observer == nil {
		return
	}
	// A persistence warning still counts as a completed operation.
	if errors.Is(err, domain.ErrPersist) {
		err = nil
	}
	b.observer.Operation(op, err)
}

// nextID derives a unique id from the clock. Callers must hold b.mu.
func (b *Book) nextID() int64 {
	return b.nextIDIn(b.recipes)
}

func (b *Book) nextIDIn(rs []domain.Recipe) int64 {
	id := b.now().UnixMilli()
	if id <= b.lastID {
		id = b.lastID + 1
	}
	for domain.IndexOf(rs, id) >= 0 {
		id++
	}
	b.lastID = id
	return id
}

// normalize replaces nil ingredient lists so the slot always holds arrays.
func normalize(rs []domain.Recipe) []domain.Recipe {
	for i := range rs {
		if rs[i].Ingredients == nil {
			rs[i].Ingredients = []domain.Ingredient{}
		}
	}
	return rs
}

// IsPersistWarning reports whether err only signals a failed write that
// left the in-memory change in place.
func IsPersistWarning(err error) bool {
	return errors.Is(err, domain.ErrPersist)
}
