package models

// Credentials are forwarded to the portal and never stored.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Empty reports whether either field is missing.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// LoginResponse is the success body of POST /api/login.
type LoginResponse struct {
	Status   string `json:"status"`
	Username string `json:"username"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
