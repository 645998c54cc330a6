package core

import "strings"

// SearchResult holds the rows matched by one search.
//
// Performed is false when the query was empty and nothing was searched; a
// performed search with no rows is a normal "no result" outcome.
type SearchResult struct {
	Mode      SearchMode
	Query     string
	Performed bool
	ID        Identifier // parsed query, identifier mode only
	Columns   []string   // header of the searched table; Rows[i].Values follow it
	Rows      []Record
	Count     int
}

// Found reports whether the search ran and matched at least one row.
func (r SearchResult) Found() bool {
	return r.Performed && r.Count > 0
}

// Search filters table by mode and query, returning matches in table order.
//
// Full name and partial name matching are case-sensitive. An empty name query
// is not an error: the result comes back with Performed set to false.
// Identifier queries are validated before any filtering and fail with
// ErrInvalidFormat unless they are exactly 13 digits.
func Search(table *Table, mode SearchMode, query string) (SearchResult, error) {
	if table == nil {
		return SearchResult{}, ErrNotLoaded
	}

	result := SearchResult{Mode: mode, Query: query, Columns: table.Columns()}

	var match func(Record) bool
	switch mode {
	case ModeFullName:
		if query == "" {
			return result, nil
		}
		match = func(r Record) bool { return r.Name == query }

	case ModeIdentifier:
		id, err := ParseIdentifier(query)
		if err != nil {
			return SearchResult{}, err
		}
		result.ID = id
		match = func(r Record) bool { return !r.ID.IsZero() && r.ID == id }

	case ModePartialName:
		if query == "" {
			return result, nil
		}
		match = func(r Record) bool { return strings.Contains(r.Name, query) }

	default:
		return SearchResult{}, ErrUnknownMode
	}

	result.Performed = true
	table.each(func(r Record) bool {
		if match(r) {
			result.Rows = append(result.Rows, r)
		}
		return true
	})
	result.Count = len(result.Rows)

	return result, nil
}
