package jsonrpc

import "encoding/json"

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"` // accepts string | number | null
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewRequest builds a request for the given method. Params are marshalled
// eagerly so an unserialisable payload surfaces before anything hits the
// wire.
func NewRequest(method string, params any, id any) (Request, error) {
	req := Request{
		JSONRPC: Version,
		Method:  method,
	}

	if id != nil {
		buf, err := json.Marshal(id)
		if err != nil {
			return Request{}, err
		}
		req.ID = buf
	}

	if params != nil {
		buf, err := json.Marshal(params)
		if err != nil {
			return Request{}, err
		}
		req.Params = buf
	}

	return req, nil
}

// WellFormed reports whether the envelope satisfies JSON-RPC 2.0: the
// version marker must be exactly "2.0" and a method name must be present.
func (req *Request) WellFormed() bool {
	return req.JSONRPC == Version && req.Method != ""
}
