package client

import "fmt"

// AuthError means the credentials were rejected. Shown inline on the login
// form rather than as a failure banner.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ValidationError is raised client-side before any request is dispatched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BackendError carries the backend's payload verbatim for any other non-2xx
// response or transport failure.
type BackendError struct {
	Status  int
	Code    string
	Message string
}

func (e *BackendError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
}
