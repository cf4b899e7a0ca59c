package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chatter/domain"
	"chatter/errs"
)

func (s *Server) registerImageRoutes(r *mux.Router) {
	// Upload the authed user's avatar.
	r.HandleFunc("/user/avatar", s.requireAuth(s.handleUploadAvatar)).Methods("POST")

	// Upload the cover image for an existing post.
	r.HandleFunc("/post/{id:[0-9]+}/cover", s.requireAuth(s.handleUploadPostCover)).Methods("POST")

	// Serve stored image files.
	r.PathPrefix("/" + domain.ImagesBaseDir + "/").Handler(
		http.StripPrefix("/"+domain.ImagesBaseDir+"/",
			http.FileServer(http.Dir("./"+domain.ImagesBaseDir))))
}

// handleUploadAvatar handles the route "POST /user/avatar".
// It reads an uploaded image, stores it on disk and updates the user's
// avatar path in the database. On success, it deletes the user's previous
// avatar from disk and returns the updated user.
func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	img, err := parseImageUpload(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	defer img.File.Close()

	user := s.getUserFromContext(r.Context())
	img.OwnerType = domain.OwnerTypeUser
	img.OwnerID = user.ID

	if err := s.is.Create(img); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user.Avatar = img.Path()
	if err := s.us.Update(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Delete any previous avatar images of the user.
	if err := s.deleteStaleImages(domain.OwnerTypeUser, user.ID, img.Filename); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(user); err != nil {
		errs.LogError(r, err)
	}
}

// handleUploadPostCover handles the route "POST /post/:id/cover".
// It stores the uploaded image as the cover of the post, replacing any
// previous cover. Only the post's author may do this.
func (s *Server) handleUploadPostCover(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	post, err := s.ps.ByID(r.Context(), postID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := s.getUserFromContext(r.Context())
	if post.AuthorID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this post."))
		return
	}

	img, err := parseImageUpload(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	defer img.File.Close()

	img.OwnerType = domain.OwnerTypePost
	img.OwnerID = post.ID

	if err := s.is.Create(img); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	post.CoverImage = img.Path()
	if err := s.ps.Update(r.Context(), post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := s.deleteStaleImages(domain.OwnerTypePost, post.ID, img.Filename); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(post); err != nil {
		errs.LogError(r, err)
	}
}

// parseImageUpload reads the "image" field of a multipart form into an
// Image object. The caller must close the returned file.
func parseImageUpload(r *http.Request) (*domain.Image, error) {
	if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
		return nil, errs.Errorf(errs.EINVALID, errs.ErrorMessage(err))
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return nil, errs.Errorf(errs.EINVALID, "No image provided.")
	}
	header := files[0]
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &domain.Image{
		File:     file,
		Filename: header.Filename,
		Size:     header.Size,
	}, nil
}

// deleteStaleImages removes all images of the owner except keep.
func (s *Server) deleteStaleImages(ownerType string, ownerID int, keep string) error {
	images, err := s.is.ByOwner(ownerType, ownerID)
	if err != nil {
		return err
	}
	for _, old := range images {
		if old.Filename == keep {
			continue
		}
		if err := s.is.Delete(&old); err != nil {
			return err
		}
	}
	return nil
}
