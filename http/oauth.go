package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/oauth2"

	"chatter/domain"
	"chatter/errs"
)

const githubProvider = "github"

func (s *Server) registerOAuthRoutes(r *mux.Router) {
	r.HandleFunc("/oauth/github", s.handleGithubLogin).Methods("GET")
	r.HandleFunc("/oauth/github/callback", s.handleGithubCallback).Methods("GET")
}

// handleGithubLogin handles the route "GET /oauth/github".
// It sends the user to Github's consent page.
func (s *Server) handleGithubLogin(w http.ResponseWriter, r *http.Request) {
	url := s.github.AuthCodeURL("state", oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusFound)
}

// handleGithubCallback handles the route "GET /oauth/github/callback".
// It exchanges the authorization code, asks Github who the user is, and
// signs in the matching local account, creating one on first contact.
func (s *Server) handleGithubCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Missing authorization code."))
		return
	}
	token, err := s.github.Exchange(r.Context(), code)
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "The Github authorization could not be completed."))
		return
	}

	ghUser, err := fetchGithubUser(r, token)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// An existing link signs the user straight in.
	if existing, err := s.os.ByProviderUserID(r.Context(), githubProvider, ghUser.ID); err == nil {
		user, err := s.us.ByID(r.Context(), existing.UserID)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		if err := s.signIn(w, r.Context(), user); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		http.Redirect(w, r, s.clientURL, http.StatusFound)
		return
	}

	// First contact: create a local account without a password and link it.
	user := &domain.User{
		Name:             ghUser.Login,
		Email:            ghUser.Email,
		Avatar:           ghUser.AvatarURL,
		NoPasswordNeeded: true,
	}
	if err := s.us.Create(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	oauth := &domain.OAuth{
		UserID:         user.ID,
		Provider:       githubProvider,
		ProviderUserID: ghUser.ID,
		AccessToken:    token.AccessToken,
	}
	if err := s.os.Create(r.Context(), oauth); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.signIn(w, r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, s.clientURL, http.StatusFound)
}

type githubUser struct {
	ID        string
	Login     string
	Email     string
	AvatarURL string
}

// fetchGithubUser asks the Github API for the profile behind a token.
func fetchGithubUser(r *http.Request, token *oauth2.Token) (*githubUser, error) {
	client := oauth2.NewClient(r.Context(), oauth2.StaticTokenSource(token))
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errs.Errorf(errs.EUNAUTHORIZED, "Github did not accept the access token.")
	}
	var payload struct {
		ID        json.Number `json:"id"`
		Login     string      `json:"login"`
		Email     string      `json:"email"`
		AvatarURL string      `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &githubUser{
		ID:        payload.ID.String(),
		Login:     payload.Login,
		Email:     payload.Email,
		AvatarURL: payload.AvatarURL,
	}, nil
}
