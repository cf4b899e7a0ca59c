package domain

import (
	"fmt"
	"mime/multipart"
	"net/url"
)

const (
	// OwnerTypePost expresses that an Image is the cover of a Post.
	OwnerTypePost = "post"
	// OwnerTypeUser expresses that an Image is the avatar of a User.
	OwnerTypeUser = "user"
	// ImagesBaseDir determines the general storage location of uploaded images.
	ImagesBaseDir = "images"
	// MaxUploadSize determines the maximum filesize of an image to be uploaded.
	MaxUploadSize int64 = 5 << 20 // 5 Megabyte
)

// Image represents an image to be uploaded. Images are only stored as files
// in the filesystem and have no dedicated table in the database. An Image
// always belongs to an owner, either a Post (cover image) or a User (avatar),
// depending on OwnerType. The exact record it belongs to is determined by
// OwnerID, resolved through the location of the file in the filesystem:
// the cover of the Post with ID 2 lives under images/post/2/unique_name.png,
// the avatar of the User with ID 1 under images/user/1/unique_name.jpeg.
type Image struct {
	URL         string         `json:"url"`
	OwnerType   string         `json:"-"`
	OwnerID     int            `json:"-"`
	File        multipart.File `json:"-"`
	Filename    string         `json:"-"`
	Extension   string         `json:"-"`
	ContentType string         `json:"-"`
	Size        int64          `json:"-"`
}

// ImageService is a set of methods to manipulate and work with the Image
// model and respective image files.
type ImageService interface {
	Create(image *Image) error
	ByOwner(ownerType string, ownerID int) ([]Image, error)
	Delete(i *Image) error
	DeleteAll(ownerType string, ownerID int) error
}

// Path returns the path of an image stored in the filesystem.
func (i *Image) Path() string {
	temp := url.URL{
		Path: "/" + i.RelativePath(),
	}
	return temp.String()
}

// RelativePath returns the relative path to an image stored in the filesystem.
func (i *Image) RelativePath() string {
	return fmt.Sprintf("%v/%v/%v/%v", ImagesBaseDir, i.OwnerType, i.OwnerID, i.Filename)
}
