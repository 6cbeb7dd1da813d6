package model

// Outcome is the result of one orchestrated call: either
// {Success: true, Data} or {Success: false, Error}.
type Outcome[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeeded builds a successful Outcome.
func Succeeded[T any](data T) Outcome[T] {
	return Outcome[T]{Success: true, Data: data}
}

// Failed builds a failed Outcome. An empty message is replaced by GenericErrorMessage
// so a failure always carries a message.
func Failed[T any](msg string) Outcome[T] {
	if msg == "" {
		msg = GenericErrorMessage
	}
	return Outcome[T]{Error: msg}
}

// AuthResult is returned by login and register.
type AuthResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Route   string `json:"route,omitempty"` // landing path after a successful login
}
