package model

// User is a registered member of the catalog.
//
// Friends is derived from the friendships table on read and is never
// written through this struct: friendships change only through the
// dedicated friend endpoints.
type User struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"    validate:"required,email"`
	Login    string  `json:"login"    validate:"required"`
	Name     string  `json:"name"`
	Birthday Date    `json:"birthday"`
	Friends  []int64 `json:"friends"`
}
