package request

// RegisterRequest is the request body for registering a user
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SimulateRequest is the request body for running a lap
type SimulateRequest struct {
	TeamID  string `json:"teamId"`
	TrackID string `json:"trackId"`
	Save    bool   `json:"save,omitempty"`
}
