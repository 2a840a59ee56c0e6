package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"authhub/internal/apperr"
	"authhub/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

type FileStore interface {
	// Store writes the upload under directory and returns its record, not yet persisted.
	Store(ctx context.Context, r io.Reader, directory string) (*models.File, error)
	Open(directory, name string) (*os.File, error)
}

// ImageStore keeps profile images on local disk, re-encoded as bounded JPEG.
type ImageStore struct {
	maxBytes int64
	maxPx    int
	quality  int
	log      *zap.Logger
}

func NewImageStore(maxBytes int64, maxPx int, log *zap.Logger) *ImageStore {
	return &ImageStore{maxBytes: maxBytes, maxPx: maxPx, quality: 85, log: log.Named("file-store")}
}

func (s *ImageStore) Store(ctx context.Context, r io.Reader, directory string) (*models.File, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperr.BadRequest("File exceeds the maximum size of %d bytes", s.maxBytes)
	}
	if len(data) == 0 {
		return nil, apperr.BadRequest("File is empty")
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, apperr.BadRequest("Unsupported file type %s, expected an image", mtype.String())
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to decode image")
	}
	img = s.downscale(img)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, apperr.Wrap(err, "Failed to encode image")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, apperr.Wrap(err, "Failed to prepare upload directory")
	}

	name := ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String() + ".jpg"
	if err := os.WriteFile(filepath.Join(directory, name), out.Bytes(), 0o644); err != nil {
		return nil, apperr.Wrap(err, "Failed to save file")
	}

	s.log.Info("stored image",
		zap.String("name", name),
		zap.String("source_type", mtype.String()),
		zap.Int("bytes", out.Len()),
	)
	return &models.File{
		Name:      name,
		Directory: directory,
		MimeType:  "image/jpeg",
		Size:      int64(out.Len()),
	}, nil
}

// Open rejects names that would escape directory.
func (s *ImageStore) Open(directory, name string) (*os.File, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, apperr.NotFound("File", "name", name)
	}
	f, err := os.Open(filepath.Join(directory, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("File", "name", name)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

func (s *ImageStore) downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if s.maxPx <= 0 || (w <= s.maxPx && h <= s.maxPx) {
		return img
	}

	if w >= h {
		h = h * s.maxPx / w
		w = s.maxPx
	} else {
		w = w * s.maxPx / h
		h = s.maxPx
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
