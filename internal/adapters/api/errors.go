package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-2xx answer from the upstream. Code and Message come from
// the {"error": {...}} body when the server sent one.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Data       map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports a 404 answer
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

type errorEnvelope struct {
	Error *struct {
		Message string                 `json:"message"`
		Code    int                    `json:"code"`
		Data    map[string]interface{} `json:"data"`
	} `json:"error"`
}

func parseAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Data = envelope.Error.Data
	}
	return apiErr
}

// endpointLabel collapses a request path into a low-cardinality metric label
// by replacing symbols with placeholders:
// /my/ships/AGENT-1/navigate -> /my/ships/{ship}/navigate
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := 1; i < len(parts); i++ {
		switch parts[i-1] {
		case "ships":
			parts[i] = "{ship}"
		case "systems":
			parts[i] = "{system}"
		case "waypoints":
			parts[i] = "{waypoint}"
		case "contracts":
			parts[i] = "{contract}"
		}
	}
	return "/" + strings.Join(parts, "/")
}
