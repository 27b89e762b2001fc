package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"quill/internal/config"
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MediaMaxUploadSizeMB bounds a single image upload.
	MediaMaxUploadSizeMB = 10

	// thumbMaxSize is the bounding box for generated thumbnails.
	thumbMaxSize = 320

	webpQuality = 70
)

// postsDir is the media subdirectory post images live under. Stored paths
// are relative to the media root, e.g. "posts/cat.png".
const postsDir = "posts"

// SaveImageInput carries one uploaded image file.
type SaveImageInput struct {
	Filename string
	Content  []byte
}

// MediaService stores post images on disk under the media root and renders
// WebP thumbnails next to them.
type MediaService struct {
	mediaRoot string
}

// NewMediaService returns a new MediaService rooted at cfg.MediaRoot.
func NewMediaService(cfg *config.Config) *MediaService {
	root := "media"
	if cfg != nil && cfg.MediaRoot != "" {
		root = cfg.MediaRoot
	}
	return &MediaService{mediaRoot: root}
}

// SaveImage validates the upload and writes it under the media root keeping
// the original filename, suffixed only on collision. Returns the stored
// path relative to the media root.
func (s *MediaService) SaveImage(ctx context.Context, in SaveImageInput) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > MediaMaxUploadSizeMB*1024*1024 {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", MediaMaxUploadSizeMB))
	}

	detected := http.DetectContentType(in.Content)
	if !strings.HasPrefix(detected, "image/") {
		return "", models.NewValidationError("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return "", models.NewValidationError("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	dir := filepath.Join(s.mediaRoot, postsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", models.NewInternalError(err)
	}

	name := sanitizeFilename(in.Filename)
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); err == nil {
		name = dedupeFilename(name)
		dest = filepath.Join(dir, name)
	}

	if err := os.WriteFile(dest, in.Content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}

	if err := s.writeThumbnail(dir, name, decoded); err != nil {
		// The original is already stored; a failed thumbnail only costs
		// bandwidth on the feed pages.
		middleware.Logger.WarnContext(ctx, "thumbnail generation failed",
			"filename", name, "error", err)
	}

	return filepath.ToSlash(filepath.Join(postsDir, name)), nil
}

// ThumbnailPath returns the media-relative thumbnail path for a stored
// image path, or "" when the path is not a post image.
func (s *MediaService) ThumbnailPath(stored string) string {
	name, ok := strings.CutPrefix(stored, postsDir+"/")
	if !ok {
		return ""
	}
	return postsDir + "/thumbs/" + thumbName(name)
}

// Open returns the on-disk location for a stored media-relative path. Paths
// escaping the media root are rejected.
func (s *MediaService) Open(stored string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(stored))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", models.NewValidationError("Invalid media path")
	}
	full := filepath.Join(s.mediaRoot, clean)
	if _, err := os.Stat(full); err != nil {
		return "", models.NewNotFoundError("Media", stored)
	}
	return full, nil
}

func (s *MediaService) writeThumbnail(dir, name string, img image.Image) error {
	thumbDir := filepath.Join(dir, "thumbs")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return err
	}

	small := resizeToFit(img, thumbMaxSize)
	var buf bytes.Buffer
	if err := webp.Encode(&buf, small, &webp.Options{Quality: webpQuality}); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(thumbDir, thumbName(name)), buf.Bytes(), 0o644)
}

// resizeToFit scales img down so both dimensions fit maxSize, preserving
// aspect ratio. Images already small enough pass through re-encoded only.
func resizeToFit(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSize && h <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(w)
	if h > w {
		scale = float64(maxSize) / float64(h)
	}
	dw, dh := int(float64(w)*scale), int(float64(h)*scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

func thumbName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".webp"
}

// sanitizeFilename strips any path components from an uploaded filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(filepath.FromSlash(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	return name
}

// dedupeFilename inserts a short random tag before the extension, the same
// way uploads that clash are renamed rather than overwritten.
func dedupeFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%s%s", base, uuid.NewString()[:8], ext)
}
