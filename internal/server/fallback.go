package server

import (
	"io"
	"net/http"

	"github.com/balancerbattle/wsfixture/internal/logging"
)

// NotFoundBody is the literal body of every non-upgrade response
const NotFoundBody = "ENOTFOUNDNUBCAKE"

// NotFound answers any request with 404 and NotFoundBody. It does not look
// at the method, path or headers.
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, NotFoundBody)

	logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, http.StatusNotFound)
}
