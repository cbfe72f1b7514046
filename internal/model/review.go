package model

// Review is a user's written opinion about a film.
//
// USEFULNESS:
// Useful is the net score of "useful" minus "not useful" votes cast by
// users. It is maintained by the store together with the vote rows and
// is read-only for clients: create always starts at 0 and update ignores it.
//
// IsPositive and the ids are pointers so that a missing field in the JSON
// body ("isPositive" omitted) can be told apart from an explicit false/0.
type Review struct {
	ID         int64  `json:"reviewId"`
	Content    string `json:"content"    validate:"required"`
	IsPositive *bool  `json:"isPositive" validate:"required"`
	UserID     *int64 `json:"userId"     validate:"required"`
	FilmID     *int64 `json:"filmId"     validate:"required"`
	Useful     int    `json:"useful"`
}

// VoteChange describes what casting or retracting a vote did to a review.
// Delta is the adjustment applied to Review.Useful (0 when nothing changed).
type VoteChange struct {
	Delta int
}

// Changed reports whether the vote altered the stored state.
func (c VoteChange) Changed() bool {
	return c.Delta != 0
}
