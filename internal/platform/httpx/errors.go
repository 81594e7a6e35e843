package httpx

import "net/http"

// Titles used by handlers when mapping domain errors to problem responses.
const (
	TitleNotFound   = "Not Found"
	TitleConflict   = "Conflict"
	TitleValidation = "Validation Failed"
)

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusNotFound, TitleNotFound, detail)
}

// Conflict writes a 409 problem response.
func Conflict(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusConflict, TitleConflict, detail)
}

// UnprocessableEntity writes a 422 problem response for domain rule violations.
func UnprocessableEntity(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusUnprocessableEntity, TitleValidation, detail)
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusBadRequest, TitleValidation, detail)
}

// Internal writes a 500 problem response without leaking internals.
func Internal(w http.ResponseWriter) {
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
