package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chatter/errs"
)

func (s *Server) registerUserRoutes(r *mux.Router) {
	r.HandleFunc("/user/{id:[0-9]+}", s.handleShowUser).Methods("GET")
	r.HandleFunc("/user/interests", s.requireAuth(s.handleSetInterests)).Methods("PUT")
}

// handleShowUser handles the route "GET /user/:id".
// It returns a user's public profile, follow counters included. For a
// signed-in viewer it also says whether they follow this user.
func (s *Server) handleShowUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	user, err := s.us.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	isFollowing := false
	if viewer := s.getUserFromContext(r.Context()); viewer != nil && viewer.ID != user.ID {
		isFollowing, err = s.fs.IsFollowing(r.Context(), viewer.ID, user.ID)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}

	response := struct {
		ID             int      `json:"id"`
		Name           string   `json:"name"`
		Bio            string   `json:"bio"`
		Avatar         string   `json:"avatar"`
		Interests      []string `json:"interests"`
		FollowerCount  int      `json:"follower_count"`
		FollowingCount int      `json:"following_count"`
		IsFollowing    bool     `json:"is_following"`
	}{
		ID:             user.ID,
		Name:           user.Name,
		Bio:            user.Bio,
		Avatar:         user.Avatar,
		Interests:      user.Interests,
		FollowerCount:  user.FollowerCount,
		FollowingCount: user.FollowingCount,
		IsFollowing:    isFollowing,
	}
	json.NewEncoder(w).Encode(&response)
}

// handleSetInterests handles the route "PUT /user/interests".
// It replaces the signed-in user's interest tags, which drive the
// personalized feed.
func (s *Server) handleSetInterests(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Interests []string `json:"interests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	user := s.getUserFromContext(r.Context())
	if err := s.us.SetInterests(r.Context(), user.ID, body.Interests); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	updated, err := s.us.ByID(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(updated)
}
