package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chatter/errs"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/follow/{followed_id:[0-9]+}", s.requireAuth(s.handleCreateFollow)).Methods("POST")
	r.HandleFunc("/unfollow/{followed_id:[0-9]+}", s.requireAuth(s.handleDeleteFollow)).Methods("DELETE")
	r.HandleFunc("/user/{id:[0-9]+}/following", s.handleListFollowing).Methods("GET")
}

// handleCreateFollow handles the route "POST /follow/:followed_id".
// It makes the signed-in user follow the user with the given ID.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	followedID, err := strconv.Atoi(mux.Vars(r)["followed_id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	user := s.getUserFromContext(r.Context())
	follow, err := s.fs.Follow(r.Context(), user.ID, followedID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(follow); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeleteFollow handles the route "DELETE /unfollow/:followed_id".
// It makes the signed-in user unfollow the user with the given ID.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	followedID, err := strconv.Atoi(mux.Vars(r)["followed_id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	user := s.getUserFromContext(r.Context())
	if err := s.fs.Unfollow(r.Context(), user.ID, followedID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListFollowing handles the route "GET /user/:id/following".
// It returns the IDs of all users the given user follows.
func (s *Server) handleListFollowing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	following, err := s.fs.Following(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if following == nil {
		following = []int{}
	}
	json.NewEncoder(w).Encode(map[string][]int{"following": following})
}
