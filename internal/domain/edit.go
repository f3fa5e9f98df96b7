package domain

// EditState is either Idle or Editing. The edit dialog is open exactly when
// the state is Editing, so a dialog without a buffer cannot be expressed.
type EditState interface {
	editState()
}

// Idle means no recipe is being created or modified.
type Idle struct{}

// Editing holds the uncommitted copy of a recipe. New is true when the
// buffer came from Add and its id is not yet in the collection.
type Editing struct {
	Buffer Recipe
	New    bool
}

func (Idle) editState()    {}
func (Editing) editState() {}

// DialogOpen reports whether the edit dialog should be shown for s.
func DialogOpen(s EditState) bool {
	_, ok := s.(Editing)
	return ok
}
