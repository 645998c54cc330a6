package templates

import (
	"github.com/a-h/templ"

	"github.com/JonMunkholm/nonfiler/internal/core"
)

// SearchData is the state of the search page.
type SearchData struct {
	Mode   core.SearchMode
	Query  string
	Result *core.SearchResult // nil until a search has run
	Alert  templ.Component    // validation or load error
	Loaded bool
}

func searchLabel(m core.SearchMode) string {
	switch m {
	case core.ModeIdentifier:
		return "Enter ID Card Number"
	case core.ModePartialName:
		return "Enter First Name or Last Name:"
	default:
		return "Enter Full Name:"
	}
}

func searchPlaceholder(m core.SearchMode) string {
	if m == core.ModeIdentifier {
		return "Enter the ID number without dashes ('-')"
	}
	return ""
}
