// Package intake validates and normalizes a submission before estimation.
package intake

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"resalelens/server/internal/models"
)

const (
	MinImageSide   = 100
	MaxImagePixels = 10_000_000
)

var (
	ErrDescriptionRequired = errors.New("description is required")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrUnsupportedImage    = errors.New("unsupported image format")
)

// DescriptionPrompt is shown when the description is missing
const DescriptionPrompt = "상품 설명을 입력해주세요. 더 자세한 설명일수록 정확한 분석이 가능합니다."

var supportedMIME = []string{"image/jpeg", "image/png"}

type ImageInfo struct {
	Width  int
	Height int
	MIME   string
}

// ValidateImage checks resolution bounds and returns a human readable reason on rejection
func ValidateImage(width, height int) (bool, string) {
	if width < MinImageSide || height < MinImageSide {
		return false, "이미지 해상도가 너무 낮습니다."
	}
	if width*height > MaxImagePixels {
		return false, "이미지 크기가 너무 큽니다."
	}
	return true, ""
}

// Inspect sniffs the format and reads the header dimensions without decoding pixels
func Inspect(data []byte) (*ImageInfo, error) {
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), supportedMIME...) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}

	return &ImageInfo{Width: cfg.Width, Height: cfg.Height, MIME: mt.String()}, nil
}

// Normalize builds an ItemSubmission. A rejected image is dropped and reported as a notice.
func Normalize(description, category string, img []byte) (*models.ItemSubmission, []models.Notice, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, nil, ErrDescriptionRequired
	}

	c, ok := models.ParseCategory(category)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	sub := &models.ItemSubmission{
		Description: description,
		Category:    c,
	}
	if len(img) == 0 {
		return sub, nil, nil
	}

	var notices []models.Notice
	info, err := Inspect(img)
	if err != nil {
		notices = append(notices, models.Notice{
			Field:   "image",
			Message: "이미지를 불러올 수 없어 텍스트만으로 분석합니다.",
		})
		return sub, notices, nil
	}

	if ok, reason := ValidateImage(info.Width, info.Height); !ok {
		notices = append(notices, models.Notice{
			Field:   "image",
			Message: reason + " 이미지를 제외하고 텍스트만으로 분석합니다.",
		})
		return sub, notices, nil
	}

	sub.Image = img
	sub.ImageMIME = info.MIME
	return sub, notices, nil
}
