// File: utils/constants.go
package utils

// SessionCookie carries the signed session token between login and query.
const SessionCookie = "session"

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"
