package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register webp decoding
)

// Normalized output dimensions. Every stored image is center-cropped to
// this frame and re-encoded as JPEG, so assets have bounded size and
// consistent presentation regardless of what was uploaded.
const (
	TargetWidth  = 600
	TargetHeight = 450
	jpegQuality  = 85
)

// ErrRejected marks an upload refused before any storage write (bad type or
// too large). Callers surface these as 4xx.
var ErrRejected = errors.New("upload rejected")

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Pipeline validates, normalizes and stores uploaded project images.
type Pipeline struct {
	store   Store
	maxSize int64
}

func NewPipeline(store Store, maxSize int64) *Pipeline {
	return &Pipeline{store: store, maxSize: maxSize}
}

// Validate checks extension, declared MIME type and size without touching
// storage. Both the extension and the MIME type must be in the allowed
// image set.
func (p *Pipeline) Validate(file *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %s: extension %q is not an allowed image type", ErrRejected, file.Filename, ext)
	}

	mimeType := strings.ToLower(file.Header.Get("Content-Type"))
	if !allowedMIMETypes[mimeType] {
		return fmt.Errorf("%w: %s: content type %q is not an allowed image type", ErrRejected, file.Filename, mimeType)
	}

	if file.Size > p.maxSize {
		return fmt.Errorf("%w: %s: file exceeds the %d byte limit", ErrRejected, file.Filename, p.maxSize)
	}

	return nil
}

// Process validates, resizes and stores one uploaded image, returning its
// stable reference.
func (p *Pipeline) Process(file *multipart.FileHeader) (string, error) {
	if err := p.Validate(file); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", file.Filename, err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %s: not a decodable image", ErrRejected, file.Filename)
	}

	normalized := imaging.Fill(img, TargetWidth, TargetHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, normalized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", file.Filename, err)
	}

	name := uuid.NewString() + ".jpg"
	ref, err := p.store.Save(name, &buf)
	if err != nil {
		return "", err
	}

	return ref, nil
}

// ProcessBatch runs files through the pipeline in submission order. The
// first failure aborts the batch; references already stored by earlier
// files are not cleaned up (at-least-once storage contract).
func (p *Pipeline) ProcessBatch(files []*multipart.FileHeader) ([]string, error) {
	refs := []string{}
	for _, file := range files {
		ref, err := p.Process(file)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
