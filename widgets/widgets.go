package widgets

// DefaultWidth is the display width hint for text inputs, in characters.
const DefaultWidth = 80

// Widget is one interactive input control. Concrete types are *Text and
// *Dropdown; renderers type-switch over them.
type Widget interface {
	Label() string
}

// Text is a free-form text input.
type Text struct {
	Description string
	Width       int
	Value       string
}

func (t *Text) Label() string { return t.Description }

// Dropdown is a single-choice selection control. Options maps display labels
// to values; insertion order carries no meaning.
type Dropdown struct {
	Description string
	Options     map[string]string
	Value       string
	Disabled    bool
}

func (d *Dropdown) Label() string { return d.Description }

// Factory builds widgets. Consumers hold it as an opaque collaborator so a
// frontend can substitute its own widget types.
type Factory interface {
	NewText(description string, width int) *Text
	NewDropdown(description string, options map[string]string) *Dropdown
}

// DefaultFactory builds the plain widget models above.
type DefaultFactory struct{}

func (DefaultFactory) NewText(description string, width int) *Text {
	return &Text{Description: description, Width: width}
}

func (DefaultFactory) NewDropdown(description string, options map[string]string) *Dropdown {
	return &Dropdown{Description: description, Options: options}
}
