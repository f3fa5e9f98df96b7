package book

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/recipe"
	"github.com/hammamikhairi/recipebook/internal/storage"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestBook(t *testing.T, opts ...Option) (*Book, *storage.MemoryStore) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	b := New(store, log, opts...)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return b, store
}

func storedRecipes(t *testing.T, store domain.SlotStore) []domain.Recipe {
	t.Helper()
	payload, err := store.Get(context.Background(), DefaultKey)
	if err != nil {
		t.Fatalf("reading slot: %v", err)
	}
	var rs []domain.Recipe
	if err := json.Unmarshal(payload, &rs); err != nil {
		t.Fatalf("decoding slot: %v", err)
	}
	return rs
}

func TestLoadSeedsEmptySlot(t *testing.T) {
	b, store := newTestBook(t)

	if diff := cmp.Diff(recipe.Defaults(), b.Recipes()); diff != "" {
		t.Fatalf("seeded collection (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(recipe.Defaults(), storedRecipes(t, store)); diff != "" {
		t.Fatalf("seed was not persisted (-want +got):\n%s", diff)
	}
	if _, ok := b.State().(domain.Idle); !ok {
		t.Fatalf("expected idle state after load, got %T", b.State())
	}
}

func TestLoadSeedsEmptyArray(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	if err := store.Set(context.Background(), DefaultKey, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	b := New(store, log)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(b.Recipes()) != 5 {
		t.Fatalf("expected 5 seeded recipes, got %d", len(b.Recipes()))
	}
}

func TestLoadExisting(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	payload := `[{"id":42,"name":"Чай","ingredients":null,"instructions":"","servings":1}]`
	if err := store.Set(context.Background(), "custom", []byte(payload)); err != nil {
		t.Fatalf("set: %v", err)
	}

	b := New(store, log, WithKey("custom"))
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := b.Recipes()
	if len(got) != 1 || got[0].ID != 42 {
		t.Fatalf("expected the stored recipe, got %+v", got)
	}
	if got[0].Ingredients == nil {
		t.Fatal("null ingredients should load as an empty list")
	}
}

func TestLoadCorruptSlot(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	if err := store.Set(context.Background(), DefaultKey, []byte(`{not json`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	b := New(store, log)
	if err := b.Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
	// The damaged slot must not be overwritten by the seed.
	got, _ := store.Get(context.Background(), DefaultKey)
	if string(got) != `{not json` {
		t.Fatalf("corrupt slot was overwritten: %s", got)
	}
}

func TestAddThenDeleteLeavesCollection(t *testing.T) {
	b, store := newTestBook(t)
	ctx := context.Background()
	before := b.Recipes()

	draft := b.Add()
	if draft.Servings != 1 || draft.Name != "" || len(draft.Ingredients) != 0 {
		t.Fatalf("unexpected blank recipe %+v", draft)
	}
	if domain.IndexOf(before, draft.ID) != -1 {
		t.Fatal("Add reused an existing id")
	}
	if !domain.DialogOpen(b.State()) {
		t.Fatal("Add should open the edit buffer")
	}

	if err := b.Delete(ctx, draft.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if domain.DialogOpen(b.State()) {
		t.Fatal("deleting the draft should close the buffer")
	}
	if diff := cmp.Diff(before, b.Recipes()); diff != "" {
		t.Fatalf("collection changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(before, storedRecipes(t, store)); diff != "" {
		t.Fatalf("slot changed (-before +after):\n%s", diff)
	}
}

func TestSaveNewAppends(t *testing.T) {
	b, store := newTestBook(t)
	ctx := context.Background()

	draft := b.Add()
	if _, err := b.Update(func(r *domain.Recipe) {
		r.Name = "Сырники"
		r.Servings = 3
		r.Ingredients = append(r.Ingredients, domain.Ingredient{Name: "Творог", Amount: 500, Unit: "г"})
		r.ID = 99 // ignored
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	saved, err := b.Save(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != draft.ID {
		t.Fatalf("Update changed the id: %d -> %d", draft.ID, saved.ID)
	}

	got := b.Recipes()
	if len(got) != 6 {
		t.Fatalf("expected 6 recipes, got %d", len(got))
	}
	if last := got[len(got)-1]; last.Name != "Сырники" || last.ID != draft.ID {
		t.Fatalf("new recipe not appended: %+v", last)
	}
	if len(storedRecipes(t, store)) != 6 {
		t.Fatal("save was not persisted")
	}
	if domain.DialogOpen(b.State()) {
		t.Fatal("save should close the buffer")
	}
}

func TestSaveExistingReplacesInPlace(t *testing.T) {
	b, _ := newTestBook(t)
	ctx := context.Background()
	before := b.Recipes()

	if _, err := b.Edit(3); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := b.Update(func(r *domain.Recipe) { r.Name = "Блинчики" }); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := b.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	after := b.Recipes()
	if len(after) != len(before) {
		t.Fatalf("length changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		want := before[i]
		if want.ID == 3 {
			want.Name = "Блинчики"
		}
		if diff := cmp.Diff(want, after[i]); diff != "" {
			t.Fatalf("position %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestEditIsolatedUntilSave(t *testing.T) {
	b, _ := newTestBook(t)

	if _, err := b.Edit(1); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := b.Update(func(r *domain.Recipe) {
		r.Ingredients[0].Amount = 1
		r.Ingredients = r.Ingredients[:1]
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := b.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Ingredients[0].Amount != 500 || len(stored.Ingredients) != 5 {
		t.Fatalf("buffer edits leaked into the collection: %+v", stored.Ingredients)
	}

	b.Cancel()
	if _, ok := b.State().(domain.Idle); !ok {
		t.Fatal("cancel should return to idle")
	}
	if diff := cmp.Diff(recipe.Defaults(), b.Recipes()); diff != "" {
		t.Fatalf("cancel changed the collection:\n%s", diff)
	}
}

func TestEditUnknown(t *testing.T) {
	b, _ := newTestBook(t)
	if _, err := b.Edit(404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if domain.DialogOpen(b.State()) {
		t.Fatal("failed edit opened the buffer")
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	b, _ := newTestBook(t)
	ctx := context.Background()

	if _, err := b.Save(ctx); !errors.Is(err, domain.ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
	if _, err := b.Update(func(*domain.Recipe) {}); !errors.Is(err, domain.ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing from Update, got %v", err)
	}

	b.Add()
	if _, err := b.Save(ctx); !errors.Is(err, domain.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if !domain.DialogOpen(b.State()) {
		t.Fatal("rejected save should keep the buffer open")
	}
	if len(b.Recipes()) != 5 {
		t.Fatal("rejected save changed the collection")
	}
}

func TestDelete(t *testing.T) {
	b, store := newTestBook(t)
	ctx := context.Background()

	if err := b.Delete(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got := b.Recipes()
	if len(got) != 4 {
		t.Fatalf("expected 4 recipes, got %d", len(got))
	}
	if domain.IndexOf(got, 2) != -1 {
		t.Fatal("recipe 2 still present")
	}
	wantOrder := []int64{1, 3, 4, 5}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("order broken at %d: got %d want %d", i, got[i].ID, id)
		}
	}
	if len(storedRecipes(t, store)) != 4 {
		t.Fatal("delete was not persisted")
	}

	// Unknown id: no change.
	if err := b.Delete(ctx, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(b.Recipes()) != 4 {
		t.Fatal("deleting an unknown id changed the collection")
	}
}

func TestDeleteClosesEditedRecipe(t *testing.T) {
	b, _ := newTestBook(t)
	if _, err := b.Edit(4); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := b.Delete(context.Background(), 4); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if domain.DialogOpen(b.State()) {
		t.Fatal("buffer for a deleted recipe should be closed")
	}
}

func TestRescale(t *testing.T) {
	b, store := newTestBook(t)
	ctx := context.Background()

	scaled, err := b.Rescale(ctx, 1, 8)
	if err != nil {
		t.Fatalf("rescale: %v", err)
	}
	if scaled.Servings != 8 || scaled.Ingredients[0].Amount != 1000 {
		t.Fatalf("expected 8 servings / 1000 g, got %d / %v", scaled.Servings, scaled.Ingredients[0].Amount)
	}

	scaled, err = b.Rescale(ctx, 1, 2)
	if err != nil {
		t.Fatalf("rescale: %v", err)
	}
	if scaled.Ingredients[0].Amount != 250 {
		t.Fatalf("expected 250 g, got %v", scaled.Ingredients[0].Amount)
	}

	stored := storedRecipes(t, store)
	if stored[0].Servings != 2 || stored[0].Ingredients[0].Amount != 250 {
		t.Fatalf("rescale was not persisted: %+v", stored[0])
	}

	if _, err := b.Rescale(ctx, 1, 11); !errors.Is(err, domain.ErrInvalidServings) {
		t.Fatalf("expected ErrInvalidServings, got %v", err)
	}
	if _, err := b.Rescale(ctx, 404, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPersistFailureIsAWarning(t *testing.T) {
	notifier := &recordingNotifier{}
	observer := &countingObserver{}
	b, store := newTestBook(t, WithNotifier(notifier), WithObserver(observer))
	ctx := context.Background()

	store.FailWrites(errors.New("quota exceeded"))

	err := b.Delete(ctx, 1)
	if !IsPersistWarning(err) {
		t.Fatalf("expected persist warning, got %v", err)
	}
	if len(b.Recipes()) != 4 {
		t.Fatal("in-memory state must keep the change when the write fails")
	}
	if len(notifier.urgent) != 1 {
		t.Fatalf("expected one urgent notification, got %d", len(notifier.urgent))
	}
	if observer.persistFailures != 1 {
		t.Fatalf("expected one persist failure, got %d", observer.persistFailures)
	}
	if observer.ops["delete/ok"] != 1 {
		t.Fatalf("delete with a persist warning should count as ok: %v", observer.ops)
	}

	store.FailWrites(nil)
	if _, err := b.Rescale(ctx, 2, 3); err != nil {
		t.Fatalf("rescale after recovery: %v", err)
	}
	if len(storedRecipes(t, store)) != 4 {
		t.Fatal("next successful write should carry the earlier change")
	}
}

func TestSeedPersistFailure(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	store.FailWrites(errors.New("read-only"))

	b := New(store, log)
	err := b.Load(context.Background())
	if !IsPersistWarning(err) {
		t.Fatalf("expected persist warning, got %v", err)
	}
	if len(b.Recipes()) != 5 {
		t.Fatal("seed should be in effect even when it cannot be written")
	}
}

func TestIDsAreUnique(t *testing.T) {
	b, _ := newTestBook(t)
	ctx := context.Background()

	seen := map[int64]bool{}
	for i := 0; i < 3; i++ {
		r := b.Add()
		if seen[r.ID] {
			t.Fatalf("duplicate id %d with a frozen clock", r.ID)
		}
		seen[r.ID] = true
		if _, err := b.Update(func(r *domain.Recipe) { r.Name = "x" }); err != nil {
			t.Fatalf("update: %v", err)
		}
		if _, err := b.Save(ctx); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := recipe.ValidateCollection(b.Recipes()); err != nil {
		t.Fatalf("collection invalid: %v", err)
	}
	if first := b.Recipes()[5].ID; first != fixedNow.UnixMilli() {
		t.Fatalf("expected timestamp-derived id %d, got %d", fixedNow.UnixMilli(), first)
	}
}

func TestImport(t *testing.T) {
	b, store := newTestBook(t)
	ctx := context.Background()

	in := []domain.Recipe{
		{Name: "Чай", Servings: 1},
		{ID: 1, Name: "Другой борщ", Servings: 2}, // id taken
		{ID: 77, Name: "Квас", Servings: 4},
	}
	added, err := b.Import(ctx, in)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(added) != 3 || len(b.Recipes()) != 8 {
		t.Fatalf("expected 3 added / 8 total, got %d / %d", len(added), len(b.Recipes()))
	}
	if added[2].ID != 77 {
		t.Fatalf("free id should be kept, got %d", added[2].ID)
	}
	if err := recipe.ValidateCollection(storedRecipes(t, store)); err != nil {
		t.Fatalf("imported collection invalid: %v", err)
	}

	if _, err := b.Import(ctx, []domain.Recipe{{Name: "", Servings: 1}}); !errors.Is(err, domain.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if len(b.Recipes()) != 8 {
		t.Fatal("rejected import changed the collection")
	}
}

func TestImportRejectsNonFiniteAmounts(t *testing.T) {
	b, store := newTestBook(t)
	ctx := context.Background()

	for _, body := range []string{".nan", ".inf", "-.inf"} {
		rs, err := recipe.Read([]byte("- name: Кисель\n  servings: 2\n  ingredients:\n    - name: Крахмал\n      amount: "+body+"\n      unit: г\n"), recipe.FormatYAML)
		if err != nil {
			t.Fatalf("read %s: %v", body, err)
		}
		if _, err := b.Import(ctx, rs); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("%s: expected ErrInvalidAmount, got %v", body, err)
		}
	}
	if len(b.Recipes()) != 5 {
		t.Fatalf("rejected import changed the collection: %d recipes", len(b.Recipes()))
	}

	// Later writes still reach the store.
	if err := b.Delete(ctx, 2); err != nil {
		t.Fatalf("delete after rejected import: %v", err)
	}
	if got := len(storedRecipes(t, store)); got != 4 {
		t.Fatalf("expected 4 stored recipes, got %d", got)
	}
}

func TestRescaleOverflowCommitsNothing(t *testing.T) {
	b, store := newTestBook(t)
	ctx := context.Background()

	added, err := b.Import(ctx, []domain.Recipe{{
		Name:        "Мешок муки",
		Servings:    1,
		Ingredients: []domain.Ingredient{{Name: "Мука", Amount: 1e308, Unit: "г"}},
	}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	id := added[0].ID

	if _, err := b.Rescale(ctx, id, 10); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	r, err := b.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.Servings != 1 || r.Ingredients[0].Amount != 1e308 {
		t.Fatalf("failed rescale changed the recipe: %+v", r)
	}

	if err := b.Delete(ctx, 1); err != nil {
		t.Fatalf("delete after failed rescale: %v", err)
	}
	if diff := cmp.Diff(b.Recipes(), storedRecipes(t, store)); diff != "" {
		t.Fatalf("memory and slot drifted (-memory +stored):\n%s", diff)
	}
}

func TestLoadCustomSeed(t *testing.T) {
	seed := func() []domain.Recipe {
		return []domain.Recipe{{ID: 9, Name: "Чай", Servings: 1, Ingredients: []domain.Ingredient{}}}
	}
	b, store := newTestBook(t, WithSeed(seed))

	if diff := cmp.Diff(seed(), b.Recipes()); diff != "" {
		t.Fatalf("seeded collection (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(seed(), storedRecipes(t, store)); diff != "" {
		t.Fatalf("persisted seed (-want +got):\n%s", diff)
	}
}

type recordingNotifier struct {
	normal []string
	urgent []string
}

func (n *recordingNotifier) Notify(_ context.Context, msg string) error {
	n.normal = append(n.normal, msg)
	return nil
}

func (n *recordingNotifier) NotifyUrgent(_ context.Context, msg string) error {
	n.urgent = append(n.urgent, msg)
	return nil
}

type countingObserver struct {
	ops             map[string]int
	persistFailures int
	recipes         int
}

func (o *countingObserver) Operation(op string, err error) {
	if o.ops == nil {
		o.ops = map[string]int{}
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	o.ops[op+"/"+outcome]++
}

func (o *countingObserver) PersistFailed() { o.persistFailures++ }
func (o *countingObserver) Recipes(n int)  { o.recipes = n }
