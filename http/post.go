package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chatter/domain"
	"chatter/errs"
)

func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/post", s.requireAuth(s.handleCreatePost)).Methods("POST")
	r.HandleFunc("/post/{id:[0-9]+}", s.handleShowPost).Methods("GET")
	r.HandleFunc("/post/{id:[0-9]+}", s.requireAuth(s.handleUpdatePost)).Methods("PUT")
	r.HandleFunc("/post/{id:[0-9]+}", s.requireAuth(s.handleDeletePost)).Methods("DELETE")
	r.HandleFunc("/post/{id:[0-9]+}/publish", s.requireAuth(s.handlePublishPost)).Methods("POST")
	r.HandleFunc("/post/{id:[0-9]+}/comments", s.handleListComments).Methods("GET")
	r.HandleFunc("/post/{id:[0-9]+}/comments", s.requireAuth(s.handleCreateComment)).Methods("POST")
	r.HandleFunc("/user/{id:[0-9]+}/posts", s.handleListUserPosts).Methods("GET")
	r.HandleFunc("/search", s.handleSearchPosts).Methods("GET")
}

// postResponse decorates a post with its rendered content and the
// category of each tag.
type postResponse struct {
	*domain.Post
	ContentHTML string            `json:"content_html,omitempty"`
	Categories  map[string]string `json:"categories,omitempty"`
}

func newPostResponse(post *domain.Post, withHTML bool) *postResponse {
	resp := &postResponse{Post: post}
	if withHTML {
		resp.ContentHTML = renderMarkdown(post.Content)
	}
	if len(post.Tags) > 0 {
		resp.Categories = make(map[string]string, len(post.Tags))
		for _, tag := range post.Tags {
			resp.Categories[tag] = domain.CategoryForTag(tag)
		}
	}
	return resp
}

// handleCreatePost handles the route "POST /post".
// New posts start as drafts unless published right away.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var post domain.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	user := s.getUserFromContext(r.Context())
	post.AuthorID = user.ID

	if err := s.ps.Create(r.Context(), &post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(newPostResponse(&post, false)); err != nil {
		errs.LogError(r, err)
	}
}

// handleShowPost handles the route "GET /post/:id".
// It returns the post with its rendered content and the first comments,
// and counts the view. Drafts are only visible to their author.
func (s *Server) handleShowPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	post, err := s.ps.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := s.getUserFromContext(r.Context())
	if !post.Published() && (user == nil || user.ID != post.AuthorID) {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "The post does not exist."))
		return
	}
	if err := s.ps.RecordView(r.Context(), post.ID); err != nil {
		errs.LogError(r, err)
	}
	json.NewEncoder(w).Encode(newPostResponse(post, true))
}

// handleUpdatePost handles the route "PUT /post/:id".
// Only the author may edit, and a published post can not go back to draft.
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	existing, err := s.ps.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := s.getUserFromContext(r.Context())
	if existing.AuthorID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this post."))
		return
	}

	var post domain.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	post.ID = existing.ID
	post.AuthorID = existing.AuthorID
	post.CreatedAt = existing.CreatedAt

	if err := s.ps.Update(r.Context(), &post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(newPostResponse(&post, false))
}

// handlePublishPost handles the route "POST /post/:id/publish".
func (s *Server) handlePublishPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	user := s.getUserFromContext(r.Context())
	post, err := s.ps.Publish(r.Context(), id, user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(post)
}

// handleDeletePost handles the route "DELETE /post/:id".
// It soft-deletes the post and removes its cover images.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	post, err := s.ps.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := s.getUserFromContext(r.Context())
	if post.AuthorID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this post."))
		return
	}
	if err := s.ps.Delete(r.Context(), post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.is.DeleteAll(domain.OwnerTypePost, post.ID); err != nil {
		errs.LogError(r, err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListComments handles the route "GET /post/:id/comments".
// Without a limit it returns all comments in insertion order.
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}
	comments, err := s.cs.ByPost(r.Context(), id, limit)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(comments)
}

// handleCreateComment handles the route "POST /post/:id/comments".
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	var comment domain.Comment
	if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	comment.PostID = id
	user := s.getUserFromContext(r.Context())
	comment.AuthorID = user.ID

	if err := s.cs.Create(r.Context(), &comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&comment); err != nil {
		errs.LogError(r, err)
	}
}

// handleListUserPosts handles the route "GET /user/:id/posts".
// Authors see their own drafts, everyone else only published posts.
func (s *Server) handleListUserPosts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	user := s.getUserFromContext(r.Context())
	includeDrafts := user != nil && user.ID == id
	posts, err := s.ps.ByAuthor(r.Context(), id, includeDrafts)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(posts)
}

// handleSearchPosts handles the route "GET /search?q=".
func (s *Server) handleSearchPosts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}
	posts, err := s.ps.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(posts)
}
