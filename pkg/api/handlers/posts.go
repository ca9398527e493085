package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"boardd/pkg/lifecycle"
	"boardd/pkg/validation"
)

// RegisterPosts registers post and user routes on the router.
func RegisterPosts(r *mux.Router, m *lifecycle.Manager) {
	r.HandleFunc("/create-post", createPost(m)).Methods(http.MethodPost)
	r.HandleFunc("/delete-post", deletePost(m)).Methods(http.MethodPost)
	r.HandleFunc("/create-user", createUser(m)).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}/activity", userActivity(m)).Methods(http.MethodGet)
}

func createPost(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validation.CreatePostRequest
		var imageURL string
		err := decodePayload(r, &req, map[string]*string{
			"thread_id": &req.ThreadID,
			"user_id":   &req.UserID,
			"content":   &req.Content,
			"image_url": &imageURL,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		if req.ImageURL == nil && imageURL != "" {
			req.ImageURL = &imageURL
		}
		p, err := m.CreatePost(r.Context(), &req)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, r, http.StatusCreated, p, "/thread/"+p.ThreadID)
	}
}

func deletePost(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PostID   string `json:"post_id"`
			ThreadID string `json:"thread_id"`
		}
		err := decodePayload(r, &req, map[string]*string{
			"post_id":   &req.PostID,
			"thread_id": &req.ThreadID,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := m.DeletePost(r.Context(), req.PostID); err != nil {
			writeErr(w, err)
			return
		}
		respond(w, r, http.StatusOK, map[string]string{"status": "deleted"}, "/thread/"+req.ThreadID)
	}
}

func createUser(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validation.CreateUserRequest
		err := decodePayload(r, &req, map[string]*string{
			"user_id":  &req.UserID,
			"username": &req.Username,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		u, err := m.CreateUser(r.Context(), &req)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, r, http.StatusCreated, u, "/")
	}
}

func userActivity(m *lifecycle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := m.UserActivity(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, r, http.StatusOK, map[string]any{"activity": entries}, "/")
	}
}
