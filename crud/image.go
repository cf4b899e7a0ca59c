package crud

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"chatter/domain"
	"chatter/errs"
)

// ImageService manages image files for post covers and user avatars.
// Images only live in the filesystem, there is no database table behind
// them. It implements the domain.ImageService interface.
type ImageService struct {
	imageValidator
}

// imageValidator runs validations on incoming Image data.
// On success, it passes the data on to imageCrud.
// Otherwise, it returns the error of the validation that has failed.
type imageValidator struct {
	imageCrud
}

// imageCrud reads and writes image files in the filesystem.
type imageCrud struct{}

// NewImageService returns an instance of ImageService.
func NewImageService() *ImageService {
	return &ImageService{
		imageValidator{
			imageCrud{},
		},
	}
}

// Ensure the ImageService struct properly implements the domain.ImageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ImageService = &ImageService{}

// Create runs validations needed for storing a new image file.
func (iv *imageValidator) Create(img *domain.Image) error {
	err := runImageValFns(img,
		iv.ownerTypeValid,
		iv.extensionValid,
		iv.contentTypeValid,
		iv.contentTypeExtensionMatch,
		iv.belowMaxSize,
		iv.fileNameUnique)
	if err != nil {
		return err
	}
	return iv.imageCrud.Create(img)
}

// Delete runs validations needed for deleting an image file.
func (iv *imageValidator) Delete(img *domain.Image) error {
	if err := runImageValFns(img, iv.ownerTypeValid); err != nil {
		return err
	}
	return iv.imageCrud.Delete(img)
}

// runImageValFns runs any number of functions of type imageValFn on the
// passed in Image object. If none of them returns an error, it returns nil.
// Otherwise, it returns the respective error.
func runImageValFns(img *domain.Image, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

// A imageValFn is any function that takes in a pointer to a domain.Image
// object and returns an error.
type imageValFn func(img *domain.Image) error

// ownerTypeValid makes sure the image belongs to either a post or a user.
func (iv *imageValidator) ownerTypeValid(img *domain.Image) error {
	if img.OwnerType != domain.OwnerTypePost && img.OwnerType != domain.OwnerTypeUser {
		return errs.Errorf(errs.EINVALID, "Invalid image owner type.")
	}
	return nil
}

// extensionValid makes sure the file extension is jpg, jpeg or png.
func (iv *imageValidator) extensionValid(img *domain.Image) error {
	img.Extension = strings.ToLower(filepath.Ext(img.Filename))
	switch img.Extension {
	case ".jpg", ".jpeg", ".png":
		return nil
	}
	return errs.Errorf(errs.EINVALID, "Only jpg, jpeg and png images are allowed.")
}

// contentTypeValid makes sure the sniffed content type is an image type.
func (iv *imageValidator) contentTypeValid(img *domain.Image) error {
	buf := make([]byte, 512)
	n, err := img.File.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	img.ContentType = http.DetectContentType(buf[:n])
	if _, err := img.File.Seek(0, io.SeekStart); err != nil {
		return err
	}
	switch img.ContentType {
	case "image/jpeg", "image/png":
		return nil
	}
	return errs.Errorf(errs.EINVALID, "The file is not a jpeg or png image.")
}

// contentTypeExtensionMatch makes sure the extension doesn't lie about
// the content.
func (iv *imageValidator) contentTypeExtensionMatch(img *domain.Image) error {
	ext := strings.TrimPrefix(img.Extension, ".")
	if ext == "jpg" {
		ext = "jpeg"
	}
	if img.ContentType != "image/"+ext {
		return errs.Errorf(errs.EINVALID, "The file extension does not match its content.")
	}
	return nil
}

// belowMaxSize makes sure the file does not exceed the upload limit.
func (iv *imageValidator) belowMaxSize(img *domain.Image) error {
	if img.Size > domain.MaxUploadSize {
		return errs.Errorf(errs.EINVALID, "The image must be smaller than 5 MB.")
	}
	return nil
}

// fileNameUnique replaces the uploaded filename with a unique one so that
// repeated uploads never overwrite each other.
func (iv *imageValidator) fileNameUnique(img *domain.Image) error {
	img.Filename = strconv.FormatInt(time.Now().UnixNano(), 10) + img.Extension
	return nil
}

// Create stores the image file under the directory of its owner.
func (ic *imageCrud) Create(img *domain.Image) error {
	dir := imageDir(img.OwnerType, img.OwnerID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(dir, img.Filename))
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, img.File); err != nil {
		return err
	}
	img.URL = img.Path()
	return nil
}

// ByOwner lists the images stored for one owner.
func (ic *imageCrud) ByOwner(ownerType string, ownerID int) ([]domain.Image, error) {
	paths, err := filepath.Glob(filepath.Join(imageDir(ownerType, ownerID), "*"))
	if err != nil {
		return nil, err
	}
	images := make([]domain.Image, len(paths))
	for i, path := range paths {
		images[i] = domain.Image{
			OwnerType: ownerType,
			OwnerID:   ownerID,
			Filename:  filepath.Base(path),
		}
		images[i].URL = images[i].Path()
	}
	return images, nil
}

// Delete removes a single image file.
func (ic *imageCrud) Delete(img *domain.Image) error {
	return os.Remove(img.RelativePath())
}

// DeleteAll removes the image directory of an owner, e.g. when the owner
// gets deleted.
func (ic *imageCrud) DeleteAll(ownerType string, ownerID int) error {
	return os.RemoveAll(imageDir(ownerType, ownerID))
}

func imageDir(ownerType string, ownerID int) string {
	return fmt.Sprintf("%s/%s/%d", domain.ImagesBaseDir, ownerType, ownerID)
}
