package models

// Supply is a named, counted item owned by a single user.
type Supply struct {
	ID     int64  `json:"id" db:"id"`
	UserID int64  `json:"user_id" db:"user_id"`
	Name   string `json:"name" db:"name"`
	Count  int    `json:"count" db:"count"`
}

// SupplyRequest is the body of the create and update supply routes.
type SupplyRequest struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
