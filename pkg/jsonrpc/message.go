package jsonrpc

// Version is the only protocol version this package speaks.
const Version = "2.0"

// Error represents a JSON-RPC error object.
type Error struct {
	// Code is a number indicating the error type that occurred
	Code int `json:"code"`
	// Message is a string providing a short description of the error
	Message string `json:"message"`
	// Data is optional additional data about the error
	Data any `json:"data,omitempty"`
}
