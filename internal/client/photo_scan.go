package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"
	"sync"

	"github.com/foodai/foodai-web/internal/analysis"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxPreviewSize bounds the longer side of a preview image in pixels.
const MaxPreviewSize = 512

// MaxPhotoBytes is the largest upload PhotoScan accepts.
const MaxPhotoBytes = 10 << 20

// MaxPhotoPixels bounds width*height so a small file cannot declare an image
// too big to decode.
const MaxPhotoPixels = 40_000_000

var (
	ErrNotImage      = errors.New("file is not an image")
	ErrPhotoTooLarge = errors.New("image is too large")
	ErrNoPhoto       = errors.New("no image selected")
)

// Photo is a selected image and its preview.
type Photo struct {
	Data     []byte
	MIMEType string
	// Preview is a JPEG data URL no larger than MaxPreviewSize on either side.
	Preview string
}

// PhotoScan holds one selected photo and the analysis run on it. Selecting a
// photo starts nothing; Analyze does the work.
type PhotoScan struct {
	FormState

	analyzer analysis.Analyzer
	mu       sync.Mutex
	photo    *Photo
	result   *analysis.Result
}

func NewPhotoScan(analyzer analysis.Analyzer) *PhotoScan {
	return &PhotoScan{analyzer: analyzer}
}

// Select validates data as an image and builds its preview. Any previous
// photo and result are discarded. It fails with ErrInFlight while an
// analysis is running.
func (s *PhotoScan) Select(data []byte) (*Photo, error) {
	if status, _ := s.Status(); status == StatusInFlight {
		return nil, ErrInFlight
	}
	if len(data) == 0 {
		return nil, ErrNoPhoto
	}
	if len(data) > MaxPhotoBytes {
		return nil, ErrPhotoTooLarge
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}

	preview, err := previewDataURL(data)
	if err != nil {
		return nil, err
	}

	photo := &Photo{Data: data, MIMEType: mtype.String(), Preview: preview}

	s.mu.Lock()
	s.photo = photo
	s.result = nil
	s.mu.Unlock()
	s.settle(StatusIdle, "")

	return photo, nil
}

// Clear drops the selected photo and any result. It fails with ErrInFlight
// while an analysis is running.
func (s *PhotoScan) Clear() error {
	if status, _ := s.Status(); status == StatusInFlight {
		return ErrInFlight
	}
	s.mu.Lock()
	s.photo = nil
	s.result = nil
	s.mu.Unlock()
	s.settle(StatusIdle, "")
	return nil
}

// Analyze runs the analyzer on the selected photo.
func (s *PhotoScan) Analyze(ctx context.Context) (*analysis.Result, error) {
	s.mu.Lock()
	photo := s.photo
	s.mu.Unlock()
	if photo == nil {
		return nil, ErrNoPhoto
	}

	if err := s.begin(); err != nil {
		return nil, err
	}

	res, err := s.analyzer.Analyze(ctx, photo.Data, photo.MIMEType)
	if err != nil {
		s.fail("Analysis failed. Please try again.")
		return nil, err
	}

	s.mu.Lock()
	if s.photo == photo {
		s.result = res
	}
	s.mu.Unlock()
	s.succeed("Analysis complete")
	return res, nil
}

// Result returns the last analysis, or nil.
func (s *PhotoScan) Result() *analysis.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func previewDataURL(data []byte) (string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("%w: empty dimensions", ErrNotImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPhotoPixels {
		return "", fmt.Errorf("%w: %dx%d", ErrPhotoTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaleDown(img, MaxPreviewSize), &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// scaleDown fits img within bound x bound keeping its aspect ratio. Smaller
// images are returned unchanged.
func scaleDown(img image.Image, bound int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= bound && h <= bound {
		return img
	}

	newW, newH := bound, bound
	if w > h {
		newH = h * bound / w
	} else {
		newW = w * bound / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
