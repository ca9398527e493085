package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"boardd/pkg/boarderr"
	"boardd/pkg/utils"
)

// isJSONRequest reports whether the client is speaking JSON. Browser form
// posts get 303 redirects instead of JSON bodies.
func isJSONRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/json")
}

// decodePayload fills dst from a JSON body or form fields, depending on
// the request content type. fields maps form field names to string
// pointers for the form path.
func decodePayload(r *http.Request, dst any, fields map[string]*string) error {
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return fmt.Errorf("%w: invalid json", boarderr.ErrValidation)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: bad form", boarderr.ErrValidation)
	}
	for name, p := range fields {
		*p = strings.TrimSpace(r.PostFormValue(name))
	}
	return nil
}

// writeErr maps the error taxonomy onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, boarderr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, boarderr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, boarderr.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, boarderr.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	utils.JSONError(w, status, err.Error())
}

// respond writes JSON, except for browser form posts which get a 303
// redirect back to a board page.
func respond(w http.ResponseWriter, r *http.Request, status int, v any, location string) {
	if r.Method == http.MethodPost && !isJSONRequest(r) {
		http.Redirect(w, r, location, http.StatusSeeOther)
		return
	}
	_ = utils.JSONWrite(w, status, v)
}
