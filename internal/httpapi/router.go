package httpapi

import (
	"net/http"
	"strings"
)

// NewMux wires the lead callbacks and the event stream. Paths under
// /leads/{id}/ are dispatched by hand; the id is a channel id, never
// empty.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	lh := LeadsHandler{DB: d.DB, Hub: d.Hub}

	mux.HandleFunc("/leads", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  lh.List,
		http.MethodPost: lh.Upsert,
	}))
	mux.HandleFunc("/leads/due", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Due,
	}))
	mux.HandleFunc("/leads/", leadSubrouter(lh))

	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Stats,
	}))

	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	hh := HealthHandler{DB: d.DB}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}

func leadSubrouter(lh LeadsHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/leads/")
		entityID, tail, _ := strings.Cut(rest, "/")
		if entityID == "" {
			WriteError(w, r, http.StatusBadRequest, "missing_id", "lead id is required")
			return
		}

		switch {
		case tail == "" && r.Method == http.MethodGet:
			lh.Get(w, r, entityID)
		case tail == "events" && r.Method == http.MethodPost:
			lh.RecordEvent(w, r, entityID)
		case tail == "events" && r.Method == http.MethodGet:
			lh.ListEvents(w, r, entityID)
		case tail == "notes" && r.Method == http.MethodPost:
			lh.AddNote(w, r, entityID)
		case tail == "asset/begin" && r.Method == http.MethodPost:
			lh.AssetBegin(w, r, entityID)
		case tail == "asset/complete" && r.Method == http.MethodPost:
			lh.AssetComplete(w, r, entityID)
		case tail == "asset/fail" && r.Method == http.MethodPost:
			lh.AssetFail(w, r, entityID)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
}
