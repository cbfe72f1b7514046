package rank

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sakif/filmorate/internal/model"
)

// PopularFilter narrows Popular. Nil fields do not filter.
type PopularFilter struct {
	GenreID *int64
	Year    *int
}

func (f PopularFilter) match(film model.Film) bool {
	if f.Year != nil && film.ReleaseDate.Year() != *f.Year {
		return false
	}
	if f.GenreID != nil {
		return slices.ContainsFunc(film.Genres, func(g model.Genre) bool { return g.ID == *f.GenreID })
	}
	return true
}

// Popular returns at most count films matching filter, most liked first.
// films is not modified. A non-positive count yields an empty result.
func Popular(films []model.Film, count int, filter PopularFilter) []model.Film {
	out := []model.Film{}
	if count <= 0 {
		return out
	}
	for _, f := range films {
		if filter.match(f) {
			out = append(out, f)
		}
	}
	ByLikes(out)
	if len(out) > count {
		out = out[:count]
	}
	return out
}

// Director film orderings accepted by SortDirectorFilms.
const (
	SortByYear  = "year"
	SortByLikes = "likes"
)

// SortDirectorFilms orders films in place by sortBy. "year" is ascending
// release date, "likes" is descending like count, and both break ties by
// ascending id. Any other value leaves films as they are.
func SortDirectorFilms(films []model.Film, sortBy string) {
	switch sortBy {
	case SortByYear:
		slices.SortStableFunc(films, func(a, b model.Film) int {
			if c := a.ReleaseDate.Compare(b.ReleaseDate.Time); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
	case SortByLikes:
		ByLikes(films)
	}
}

// SearchField selects what a search query is matched against.
type SearchField string

const (
	FieldTitle    SearchField = "title"
	FieldDirector SearchField = "director"
)

// ErrUnknownField is returned by ParseFields for a token other than
// "title" or "director".
var ErrUnknownField = errors.New("unknown search field")

// ParseFields parses a comma separated field list such as "title,director".
// Blank input selects both fields. Tokens are trimmed and case-insensitive.
func ParseFields(by string) ([]SearchField, error) {
	if strings.TrimSpace(by) == "" {
		return []SearchField{FieldTitle, FieldDirector}, nil
	}

	var fields []SearchField
	for _, token := range strings.Split(by, ",") {
		field := SearchField(strings.ToLower(strings.TrimSpace(token)))
		switch field {
		case FieldTitle, FieldDirector:
			if !slices.Contains(fields, field) {
				fields = append(fields, field)
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, token)
		}
	}
	return fields, nil
}

// Search returns the films whose title or director names (as selected by
// fields) contain query, ignoring case. A blank query matches nothing.
// Results are most liked first.
func Search(films []model.Film, query string, fields []SearchField) []model.Film {
	out := []model.Film{}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return out
	}

	for _, f := range films {
		if matches(f, needle, fields) {
			out = append(out, f)
		}
	}
	ByLikes(out)
	return out
}

func matches(f model.Film, needle string, fields []SearchField) bool {
	for _, field := range fields {
		switch field {
		case FieldTitle:
			if strings.Contains(strings.ToLower(f.Name), needle) {
				return true
			}
		case FieldDirector:
			for _, d := range f.Directors {
				if strings.Contains(strings.ToLower(d.Name), needle) {
					return true
				}
			}
		}
	}
	return false
}
