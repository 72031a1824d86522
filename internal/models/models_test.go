package models

import "testing"

func TestOrderBy(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, o := range []OrderBy{OrderDateAsc, OrderDateDesc, OrderTitleAsc, OrderTitleDesc} {
			if !o.Valid() {
				t.Errorf("expected %q to be valid", o)
			}
		}
		if OrderBy("published_asc").Valid() || OrderBy("").Valid() {
			t.Error("expected unknown keys to be invalid")
		}
	})

	t.Run("Toggle", func(t *testing.T) {
		cases := []struct {
			current   OrderBy
			dimension string
			want      OrderBy
		}{
			{OrderDateDesc, "date", OrderDateAsc},
			{OrderDateAsc, "date", OrderDateDesc},
			{OrderTitleAsc, "title", OrderTitleDesc},
			{OrderTitleDesc, "title", OrderTitleAsc},
			{OrderDateDesc, "title", OrderTitleAsc},
			{OrderTitleAsc, "date", OrderDateDesc},
		}

		for _, tc := range cases {
			if got := tc.current.Toggle(tc.dimension); got != tc.want {
				t.Errorf("%q toggled by %q: expected %q, got %q", tc.current, tc.dimension, tc.want, got)
			}
		}
	})
}

func TestQuery(t *testing.T) {
	t.Run("Normalized fills in the default sort", func(t *testing.T) {
		q := Query{Search: "  neural  "}.Normalized()
		if q.OrderBy != OrderDateDesc {
			t.Errorf("expected date_desc, got %q", q.OrderBy)
		}
		if q.Search != "neural" {
			t.Errorf("expected trimmed search, got %q", q.Search)
		}
	})

	t.Run("Equal compares normalized values", func(t *testing.T) {
		a := Query{Search: "neural"}
		b := Query{Search: " neural ", OrderBy: OrderDateDesc}
		if !a.Equal(b) {
			t.Error("expected queries to be equal after normalization")
		}

		c := Query{Search: "neural", OrderBy: OrderTitleAsc}
		if a.Equal(c) {
			t.Error("expected different sorts to differ")
		}
	})
}

func TestUserProfile(t *testing.T) {
	first, last := "Jo", "Doe"

	t.Run("DisplayName joins the name parts", func(t *testing.T) {
		u := UserProfile{Email: "jo@example.com", FirstName: &first, LastName: &last}
		if got := u.DisplayName(); got != "Jo Doe" {
			t.Errorf("expected full name, got %q", got)
		}
	})

	t.Run("DisplayName falls back to the email", func(t *testing.T) {
		u := UserProfile{Email: "jo@example.com"}
		if got := u.DisplayName(); got != "jo@example.com" {
			t.Errorf("expected email fallback, got %q", got)
		}
	})
}
