package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"boardd/pkg/lifecycle"
	"boardd/pkg/models"
	"boardd/pkg/validation"
)

// RegisterThreads registers thread routes on the router.
func RegisterThreads(r *mux.Router, m *lifecycle.Manager) {
	r.HandleFunc("/", listThreads(m)).Methods(http.MethodGet)
	r.HandleFunc("/create-thread", createThread(m)).Methods(http.MethodPost)
	r.HandleFunc("/thread/{id}", getThread(m)).Methods(http.MethodGet)
	r.HandleFunc("/delete-thread", deleteThread(m)).Methods(http.MethodPost)
	r.HandleFunc("/archive-thread", archiveThread(m)).Methods(http.MethodPost)
	r.HandleFunc("/restore-thread", restoreThread(m)).Methods(http.MethodPost)
	r.HandleFunc("/thread/{id}/archive", getArchiveMetadata(m)).Methods(http.MethodGet)
}

func listThreads(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threads, err := m.ThreadList(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		if threads == nil {
			threads = []models.ThreadSummary{}
		}
		respond(w, r, http.StatusOK, map[string]any{"threads": threads}, "/")
	}
}

func createThread(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validation.CreateThreadRequest
		err := decodePayload(r, &req, map[string]*string{
			"thread_name": &req.ThreadName,
			"genre_tag":   &req.GenreTag,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		t, err := m.CreateThread(r.Context(), &req)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, r, http.StatusCreated, map[string]string{"thread_id": t.ThreadID}, "/thread/"+t.ThreadID)
	}
}

func getThread(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		t, err := m.GetThread(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		posts, err := m.ThreadPosts(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if posts == nil {
			posts = []models.Post{}
		}
		respond(w, r, http.StatusOK, map[string]any{
			"thread_id":   t.ThreadID,
			"thread_name": t.ThreadName,
			"genre_tag":   t.GenreTag,
			"archived":    t.DeletionFlag,
			"posts":       posts,
		}, "/thread/"+id)
	}
}

func deleteThread(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ThreadID string `json:"thread_id"`
		}
		if err := decodePayload(r, &req, map[string]*string{"thread_id": &req.ThreadID}); err != nil {
			writeErr(w, err)
			return
		}
		if err := m.DeleteThread(r.Context(), req.ThreadID); err != nil {
			writeErr(w, err)
			return
		}
		respond(w, r, http.StatusOK, map[string]string{"status": "deleted"}, "/")
	}
}

func archiveThread(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ThreadID string `json:"thread_id"`
		}
		if err := decodePayload(r, &req, map[string]*string{"thread_id": &req.ThreadID}); err != nil {
			writeErr(w, err)
			return
		}
		meta, err := m.ArchiveThread(r.Context(), req.ThreadID)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, r, http.StatusOK, meta, "/")
	}
}

func restoreThread(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ThreadID string `json:"thread_id"`
		}
		if err := decodePayload(r, &req, map[string]*string{"thread_id": &req.ThreadID}); err != nil {
			writeErr(w, err)
			return
		}
		if err := m.RestoreThread(r.Context(), req.ThreadID); err != nil {
			writeErr(w, err)
			return
		}
		respond(w, r, http.StatusOK, map[string]string{"status": "restored"}, "/thread/"+req.ThreadID)
	}
}

func getArchiveMetadata(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meta, err := m.GetArchiveMetadata(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, r, http.StatusOK, meta, "/")
	}
}
