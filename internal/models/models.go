package models

import (
	"strings"
	"time"
)

// Author represents a publication author as returned by the server.
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Keyword represents a server-extracted keyword attached to a publication.
type Keyword struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Publication is the server-owned publication record. The client treats it
// as an immutable snapshot per fetch; it is never mutated locally, only
// replaced wholesale after a refetch.
type Publication struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Filename   *string   `json:"filename"`
	UploadDate time.Time `json:"upload_date"`
	Journal    *string   `json:"journal,omitempty"`
	Year       *int      `json:"year,omitempty"`
	DOI        *string   `json:"doi,omitempty"`
	Authors    []Author  `json:"authors"`
	Keywords   []Keyword `json:"keywords"`
	UserID     *string   `json:"user_id,omitempty"`
}

// AuthorNames returns the ordered author names joined with commas.
func (p Publication) AuthorNames() string {
	names := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// KeywordNames returns the keyword names joined with commas.
func (p Publication) KeywordNames() string {
	names := make([]string, len(p.Keywords))
	for i, k := range p.Keywords {
		names[i] = k.Name
	}
	return strings.Join(names, ", ")
}

// UserProfile is the authenticated user's account record, owned by the
// session store and read-only everywhere else.
type UserProfile struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
	IsVerified  bool    `json:"is_verified"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
}

// DisplayName returns "First Last" when available, falling back to the email.
func (u UserProfile) DisplayName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 {
		return u.Email
	}
	return strings.Join(parts, " ")
}

// OrderBy is a sort key understood by the publications endpoints.
type OrderBy string

const (
	OrderDateAsc   OrderBy = "date_asc"
	OrderDateDesc  OrderBy = "date_desc"
	OrderTitleAsc  OrderBy = "title_asc"
	OrderTitleDesc OrderBy = "title_desc"

	// OrderDefault is the server's default ordering, most recent first.
	OrderDefault = OrderDateDesc
)

// Valid reports whether o is one of the four supported sort keys.
func (o OrderBy) Valid() bool {
	switch o {
	case OrderDateAsc, OrderDateDesc, OrderTitleAsc, OrderTitleDesc:
		return true
	}
	return false
}

// Dimension returns the sort dimension, "date" or "title".
func (o OrderBy) Dimension() string {
	if s, _, ok := strings.Cut(string(o), "_"); ok {
		return s
	}
	return "date"
}

// Ascending reports whether the sort direction is ascending.
func (o OrderBy) Ascending() bool {
	return strings.HasSuffix(string(o), "_asc")
}

// Toggle returns the sort key produced by clicking the given dimension while
// o is active: the same dimension flips direction, a different dimension
// resets to its default direction (desc for date, asc for title).
func (o OrderBy) Toggle(dimension string) OrderBy {
	if o.Dimension() == dimension {
		if o.Ascending() {
			return OrderBy(dimension + "_desc")
		}
		return OrderBy(dimension + "_asc")
	}
	if dimension == "date" {
		return OrderDateDesc
	}
	return OrderTitleAsc
}

// Query identifies a collection view: free-text search plus sort key.
// Changing either field is a new logical query, not a mutation of the old one.
type Query struct {
	Search  string
	OrderBy OrderBy
}

// Normalized returns q with an empty or invalid sort key replaced by the default.
func (q Query) Normalized() Query {
	if !q.OrderBy.Valid() {
		q.OrderBy = OrderDefault
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Equal compares two queries by value after normalization.
func (q Query) Equal(other Query) bool {
	return q.Normalized() == other.Normalized()
}
