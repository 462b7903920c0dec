package httputil

import (
	"encoding/json"
	"net/http"
)

// RespondJSON marshals data before touching the response, so an encoding
// failure still produces a clean 500.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	write(w, status, "application/json", payload)
}

// Envelope is the success body of the library API: {"message", "data"} for
// reads and writes, {"message", "changes"} for deletes.
type Envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Changes *int64      `json:"changes,omitempty"`
}

// RespondData wraps data in a success envelope
func RespondData(w http.ResponseWriter, status int, data interface{}) {
	RespondJSON(w, status, Envelope{Message: "success", Data: data})
}

// RespondDeleted reports how many rows a delete removed
func RespondDeleted(w http.ResponseWriter, changes int64) {
	RespondJSON(w, http.StatusOK, Envelope{Message: "deleted", Changes: &changes})
}

// Problem is an RFC 7807 body. Code is a stable machine-readable reason
// ("stale_write", "conflict") for clients that branch on it; Extra fields
// are flattened into the top level.
type Problem struct {
	Type   string
	Title  string
	Status int
	Detail string
	Code   string
	Extra  map[string]interface{}
}

func (p Problem) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(p.Extra)+5)
	for k, v := range p.Extra {
		m[k] = v
	}
	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Code != "" {
		m["code"] = p.Code
	}
	return json.Marshal(m)
}

// NewProblem fills Type and Title from the status
func NewProblem(status int, detail string) Problem {
	typ, ok := problemTypes[status]
	if !ok {
		typ = "about:blank"
	}
	return Problem{Type: typ, Title: http.StatusText(status), Status: status, Detail: detail}
}

// RespondError writes a problem+json error
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondProblem(w, NewProblem(status, detail))
}

// RespondErrorWithExtras writes a problem+json error with a code and extra
// top-level fields, such as the id of the conflicting node
func RespondErrorWithExtras(w http.ResponseWriter, status int, code, detail string, extras map[string]interface{}) {
	p := NewProblem(status, detail)
	p.Code = code
	p.Extra = extras
	RespondProblem(w, p)
}

// RespondProblem writes p with its own status
func RespondProblem(w http.ResponseWriter, p Problem) {
	payload, err := json.Marshal(p)
	if err != nil {
		write(w, http.StatusInternalServerError, "text/plain", []byte("internal server error"))
		return
	}
	write(w, p.Status, "application/problem+json", payload)
}

func write(w http.ResponseWriter, status int, contentType string, payload []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

var problemTypes = map[int]string{
	http.StatusBadRequest:            "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.1",
	http.StatusUnauthorized:          "https://datatracker.ietf.org/doc/html/rfc7235#section-3.1",
	http.StatusForbidden:             "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.3",
	http.StatusNotFound:              "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.4",
	http.StatusConflict:              "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.8",
	http.StatusRequestEntityTooLarge: "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.11",
	http.StatusUnsupportedMediaType:  "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.13",
	http.StatusInternalServerError:   "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.1",
	http.StatusBadGateway:            "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.3",
}
