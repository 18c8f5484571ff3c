// Package wizard holds the client side of listing generation: the listing
// form state, the single in-flight generation guard and the HTTP client.
package wizard

import "github.com/raine/listing-wizard/internal/listing"

type Mode int

const (
	ModeForm Mode = iota
	ModePreview
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeForm:
		return "form"
	case ModePreview:
		return "preview"
	case ModeEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// State is everything the user sees. Nothing is persisted.
type State struct {
	Title       string
	Description string
	Price       string
	Image       string // Data URI of the uploaded photo
	Mode        Mode
	Generating  bool
}

func (s State) Draft() listing.Draft {
	return listing.Draft{Title: s.Title, Description: s.Description, Price: s.Price}
}

type ActionType int

const (
	SetTitle ActionType = iota
	SetDescription
	SetPrice
	SetAll
	Reset
)

// Action changes the listing fields. Value is used by the single field
// actions, Draft by SetAll.
type Action struct {
	Type  ActionType
	Value string
	Draft *listing.Draft
}

// Reduce applies a to the listing fields of s and returns the new state.
// Unknown actions, and SetAll without a draft, return s unchanged.
func Reduce(s State, a Action) State {
	switch a.Type {
	case SetTitle:
		s.Title = a.Value
	case SetDescription:
		s.Description = a.Value
	case SetPrice:
		s.Price = a.Value
	case SetAll:
		if a.Draft != nil {
			s.Title = a.Draft.Title
			s.Description = a.Draft.Description
			s.Price = a.Draft.Price
		}
	case Reset:
		s.Title, s.Description, s.Price = "", "", ""
	}
	return s
}
