package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chatter/errs"
)

func (s *Server) registerLikeRoutes(r *mux.Router) {
	r.HandleFunc("/post/{id:[0-9]+}/like", s.requireAuth(s.handleCreateLike)).Methods("POST")
	r.HandleFunc("/post/{id:[0-9]+}/like", s.requireAuth(s.handleDeleteLike)).Methods("DELETE")
}

// handleCreateLike handles the route "POST /post/:id/like".
// Liking a post the user already likes is a no-op, so the handler always
// responds with the resulting like count.
func (s *Server) handleCreateLike(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	user := s.getUserFromContext(r.Context())
	if err := s.ls.Like(r.Context(), user.ID, postID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.returnLikeCount(w, r, postID)
}

// handleDeleteLike handles the route "DELETE /post/:id/like".
func (s *Server) handleDeleteLike(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	user := s.getUserFromContext(r.Context())
	if err := s.ls.Unlike(r.Context(), user.ID, postID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.returnLikeCount(w, r, postID)
}

func (s *Server) returnLikeCount(w http.ResponseWriter, r *http.Request, postID int) {
	count, err := s.ls.Count(r.Context(), postID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]int{"like_count": count})
}
