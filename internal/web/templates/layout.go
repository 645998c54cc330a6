// Package templates holds the templ components that make up the pages.
// Run `templ generate` after editing a .templ file.
package templates

// AppTitle is the browser title suffix.
const AppTitle = "PK Non Filer Data"

// Heading is the page heading shown above the navigation.
const Heading = "Pakistan Non-Tax Filer Data Lookup"

// Navigation entries, in display order.
const (
	NavHome    = "home"
	NavSearch  = "search"
	NavSummary = "summary"
	NavAbout   = "about"
)

type navItem struct {
	key, label, href string
}

var navItems = []navItem{
	{NavHome, "Home", "/"},
	{NavSearch, "Search", "/search"},
	{NavSummary, "Summary", "/summary"},
	{NavAbout, "About", "/about"},
}

func pageTitle(title string) string {
	if title == "" {
		return AppTitle
	}
	return title + " | " + AppTitle
}
