package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"boardd/pkg/lifecycle"
	"boardd/pkg/models"
	"boardd/pkg/validation"
)

// DefaultReactionKind is applied when a reaction omits its kind.
const DefaultReactionKind = "like"

// RegisterReactions registers reaction routes on the router.
func RegisterReactions(r *mux.Router, m *lifecycle.Manager) {
	r.HandleFunc("/react", react(m)).Methods(http.MethodPost)
	r.HandleFunc("/thread/{id}/reactions/{postID}", postReactions(m)).Methods(http.MethodGet)
}

func react(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validation.ReactRequest
		err := decodePayload(r, &req, map[string]*string{
			"thread_id": &req.ThreadID,
			"post_id":   &req.PostID,
			"kind":      &req.Kind,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		if req.Kind == "" {
			req.Kind = DefaultReactionKind
		}
		count, err := m.React(r.Context(), &req)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, r, http.StatusOK, map[string]any{
			"thread_id": req.ThreadID,
			"post_id":   req.PostID,
			"kind":      req.Kind,
			"count":     count,
		}, "/thread/"+req.ThreadID)
	}
}

func postReactions(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		counts, err := m.PostReactions(r.Context(), vars["id"], vars["postID"])
		if err != nil {
			writeErr(w, err)
			return
		}
		if counts == nil {
			counts = []models.ReactionCount{}
		}
		respond(w, r, http.StatusOK, map[string]any{"reactions": counts}, "/thread/"+vars["id"])
	}
}
