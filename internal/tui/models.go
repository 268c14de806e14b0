package tui

type View int

const (
	ViewHome View = iota
	ViewDetails
	ViewFavorites
	ViewSearch
	ViewSections
)

func (v View) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewDetails:
		return "details"
	case ViewFavorites:
		return "favorites"
	case ViewSearch:
		return "search"
	case ViewSections:
		return "sections"
	default:
		return "unknown"
	}
}
