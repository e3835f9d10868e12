package models

// StatusResponse is the success payload shared by every mutating route.
type StatusResponse struct {
	Status string `json:"Status"`
}

// ErrorResponse is the failure payload shared by every route.
type ErrorResponse struct {
	Error string `json:"Error"`
}

// MeResponse is returned by GET / for the authenticated caller.
type MeResponse struct {
	Status string      `json:"Status"`
	User   interface{} `json:"user"`
}
