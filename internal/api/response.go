package api

import (
	"encoding/json"
	"net/http"
)

// Payload is the normalized outcome of a mutating call. Some backends
// answer mutations with an empty body or with text that is not JSON;
// Normalize folds all of those cases into one shape so callers never
// have to guard against a parse failure themselves.
type Payload struct {
	Success bool
	Message string
	// Raw holds the original JSON body when it parsed cleanly, for
	// callers that want to pull extra fields out of it.
	Raw json.RawMessage
}

// Normalize converts a raw response into a Payload. An empty body yields
// a payload derived from the HTTP status alone. A body that fails to
// parse as JSON is treated the same way. A parsed body contributes its
// message field (several common spellings are tried) but success is
// still decided by the status code.
func Normalize(statusCode int, body []byte) Payload {
	ok := statusCode >= 200 && statusCode < 300
	p := Payload{Success: ok}
	if !ok {
		p.Message = http.StatusText(statusCode)
	}
	if len(body) == 0 {
		return p
	}

	var probe json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return p
	}
	p.Raw = probe

	var msg struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(probe, &msg); err == nil {
		switch {
		case msg.Message != "":
			p.Message = msg.Message
		case msg.Error != "":
			p.Message = msg.Error
		case msg.Detail != "":
			p.Message = msg.Detail
		}
	}
	return p
}
