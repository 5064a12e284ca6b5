package server

import (
	"encoding/json"
	"net/http"
)

// Problem types used in the "type" member of error responses.
const (
	ProblemTypeNotFound    = "https://netlab.dev/problems/not-found"
	ProblemTypeBadRequest  = "https://netlab.dev/problems/bad-request"
	ProblemTypeInternal    = "https://netlab.dev/problems/internal-error"
	ProblemTypeRateLimited = "https://netlab.dev/problems/rate-limited"
	ProblemTypeConflict    = "https://netlab.dev/problems/conflict"
	ProblemTypeUnavailable = "https://netlab.dev/problems/unavailable"
)

var problemTypes = map[int]string{
	http.StatusNotFound:            ProblemTypeNotFound,
	http.StatusBadRequest:          ProblemTypeBadRequest,
	http.StatusInternalServerError: ProblemTypeInternal,
	http.StatusTooManyRequests:     ProblemTypeRateLimited,
	http.StatusConflict:            ProblemTypeConflict,
	http.StatusServiceUnavailable:  ProblemTypeUnavailable,
}

// Problem is an RFC 7807 error body. Every non-2xx response from the
// API is written as one.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// WriteProblem writes p as application/problem+json.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// problemFor fills type and title from status. Unknown statuses get
// about:blank as RFC 7807 prescribes.
func problemFor(status int, detail, instance string) Problem {
	typ, ok := problemTypes[status]
	if !ok {
		typ = "about:blank"
	}
	return Problem{
		Type:     typ,
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// Error writes a problem for any status.
func Error(w http.ResponseWriter, status int, detail, instance string) {
	WriteProblem(w, problemFor(status, detail, instance))
}

func NotFound(w http.ResponseWriter, detail, instance string) {
	Error(w, http.StatusNotFound, detail, instance)
}

func BadRequest(w http.ResponseWriter, detail, instance string) {
	Error(w, http.StatusBadRequest, detail, instance)
}

func InternalError(w http.ResponseWriter, detail, instance string) {
	Error(w, http.StatusInternalServerError, detail, instance)
}

func RateLimited(w http.ResponseWriter, detail, instance string) {
	Error(w, http.StatusTooManyRequests, detail, instance)
}

func Conflict(w http.ResponseWriter, detail, instance string) {
	Error(w, http.StatusConflict, detail, instance)
}

func ServiceUnavailable(w http.ResponseWriter, detail, instance string) {
	Error(w, http.StatusServiceUnavailable, detail, instance)
}
