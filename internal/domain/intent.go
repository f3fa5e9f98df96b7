package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentList
	IntentShow
	IntentAdd
	IntentEdit
	IntentSetName
	IntentSetInstructions
	IntentAddIngredient
	IntentDropIngredient
	IntentSetServings // servings of the edit buffer, no rescale
	IntentSave
	IntentCancel
	IntentDelete
	IntentScale // rescale a stored recipe
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentList:
		return "list"
	case IntentShow:
		return "show"
	case IntentAdd:
		return "add"
	case IntentEdit:
		return "edit"
	case IntentSetName:
		return "set_name"
	case IntentSetInstructions:
		return "set_instructions"
	case IntentAddIngredient:
		return "add_ingredient"
	case IntentDropIngredient:
		return "drop_ingredient"
	case IntentSetServings:
		return "set_servings"
	case IntentSave:
		return "save"
	case IntentCancel:
		return "cancel"
	case IntentDelete:
		return "delete"
	case IntentScale:
		return "scale"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action. Args carries positional values
// such as a recipe number or the new serving count; Payload carries free
// text such as a recipe name.
type Intent struct {
	Type    IntentType
	Args    []int
	Payload string
	// Ingredient is set for IntentAddIngredient.
	Ingredient *Ingredient
}
