package jsonrpc

import (
	"encoding/json"

	"github.com/travelmesh/a2a-go/pkg/errors"
)

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"` // echoes the request id, null when unidentifiable
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse wraps a result value in a success response. A result that
// cannot be marshalled degrades to an internal error response so the caller
// always receives a well-formed envelope.
func NewResponse(id json.RawMessage, result any) Response {
	buf, err := json.Marshal(result)
	if err != nil {
		return NewErrorResponse(id, errors.ErrInternal.WithData(err.Error()))
	}

	return Response{
		JSONRPC: Version,
		ID:      id,
		Result:  buf,
	}
}

// NewErrorResponse wraps an RpcError in an error response.
func NewErrorResponse(id json.RawMessage, e *errors.RpcError) Response {
	if e == nil {
		e = errors.ErrInternal
	}

	return Response{
		JSONRPC: Version,
		ID:      id,
		Error: &Error{
			Code:    e.Code,
			Message: e.Message,
			Data:    e.Data,
		},
	}
}

// Valid reports whether the response is a syntactically valid JSON-RPC 2.0
// response: version marker, an id, and exactly one of result or error.
func (resp *Response) Valid() bool {
	if resp.JSONRPC != Version {
		return false
	}

	if len(resp.ID) == 0 {
		return false
	}

	hasResult := len(resp.Result) != 0
	hasError := resp.Error != nil

	return hasResult != hasError
}

// UnmarshalResult decodes the result payload into out.
func (resp *Response) UnmarshalResult(out any) error {
	return json.Unmarshal(resp.Result, out)
}

// RpcError converts the wire error object back into a *errors.RpcError,
// or nil when the response carries a result.
func (resp *Response) RpcError() *errors.RpcError {
	if resp.Error == nil {
		return nil
	}

	return &errors.RpcError{
		Code:    resp.Error.Code,
		Message: resp.Error.Message,
		Data:    resp.Error.Data,
	}
}
