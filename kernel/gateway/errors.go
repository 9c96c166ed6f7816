package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oliveagle/jsonpath"
	"github.com/pkg/errors"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Detail returns the server-supplied detail of err, or "" when err carries none.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// FastAPI reports handler errors as {"detail": "..."} and validation errors as
// {"detail": [{"loc": [...], "msg": "...", "type": "..."}]}.
var detailPaths = []string{"$.detail", "$.detail[0].msg", "$.message"}

func extractDetail(body []byte) string {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	for _, path := range detailPaths {
		v, err := jsonpath.JsonPathLookup(doc, path)
		if err != nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
