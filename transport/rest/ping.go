package rest

import "net/http"

func ping(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "pong")
}
