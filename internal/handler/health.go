package handler

import "net/http"

// HandleHealth answers the root route with a liveness envelope.
//
// HTTP: GET /
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, nil, "Server is good to go")
}
