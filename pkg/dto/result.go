package dto

// Result is the tagged outcome of a balance mutation. Data is present only on success.
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data,omitempty"`
}

// Ok builds a successful result carrying data.
func Ok[T any](message string, data T) Result[T] {
	return Result[T]{Success: true, Message: message, Data: &data}
}

// Fail builds a failed result without data.
func Fail[T any](message string) Result[T] {
	return Result[T]{Success: false, Message: message}
}
