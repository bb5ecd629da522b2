package http

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter mounts the health check, the REST API and the websocket endpoint.
func NewRouter(api *APIHandler, ws *WSHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	api.Register(r)
	r.HandleFunc("/ws", ws.ServeWS)
	return r
}

// WithMiddleware adds panic recovery and combined access logging written to out.
func WithMiddleware(h http.Handler, out io.Writer) http.Handler {
	return handlers.CombinedLoggingHandler(out, handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h))
}
