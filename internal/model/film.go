package model

// Film is a catalog entry.
//
// RELATIONSHIPS:
//   - Mpa:       optional, one of the fixed ratings (G, PG, PG-13, R, NC-17)
//   - Genres:    a set; duplicates are collapsed and the set is returned by ascending id
//   - Directors: an ordered list; order is preserved as submitted
//   - Likes:     ids of users who liked the film (derived, read-only)
type Film struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"        validate:"required"`
	Description string     `json:"description" validate:"max=200"`
	ReleaseDate Date       `json:"releaseDate"`
	Duration    int        `json:"duration"    validate:"gt=0"`
	Mpa         *Mpa       `json:"mpa"`
	Genres      []Genre    `json:"genres"`
	Directors   []Director `json:"directors"`
	Likes       []int64    `json:"likes"`
}

// LikeCount is the popularity measure used by every ranking.
func (f *Film) LikeCount() int {
	return len(f.Likes)
}

// Genre is a shared reference entity (Comedy, Drama, ...).
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Mpa is a content rating classification.
type Mpa struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Director is a shared reference entity managed through /directors.
type Director struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required"`
}
