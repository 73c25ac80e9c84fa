package photoengine

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1600
	thumbWidth    = 480
	jpegQuality   = 82
	maxUploadSize = 25 << 20 // 25MB
	uploadsSubdir = "uploads"
)

// ProcessedImage is what the upload pipeline hands back to the store:
// relative URLs into the uploads area plus display dimensions. The store
// records these paths; it never touches the pixels again.
type ProcessedImage struct {
	Src    string `json:"src"`
	Thumb  string `json:"thumb"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// scaleToWidth resizes img down to the given width, preserving aspect.
// Images already narrow enough pass through untouched.
func scaleToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= width {
		return img
	}
	newH := h * width / w
	dst := image.NewRGBA(image.Rect(0, 0, width, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe
// slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return Slugify(base)
}

// ensureUniqueFilename appends a counter until the candidate neither exists
// in the target directory nor under the thumbs subdirectory.
func ensureUniqueFilename(dir, filename string) string {
	base := strings.TrimSuffix(filename, ".jpg")
	candidate := filename
	for counter := 1; ; counter++ {
		_, errMain := os.Stat(filepath.Join(dir, candidate))
		_, errThumb := os.Stat(filepath.Join(dir, "thumbs", candidate))
		if os.IsNotExist(errMain) && os.IsNotExist(errThumb) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter+1)
	}
}

// SaveUpload runs the full upload pipeline for one image: decode, resize to
// the display width, encode JPEG, derive a thumbnail, and write both under
// publicDir/uploads/<subdir>. Returns the site-relative URLs and the
// display dimensions.
func SaveUpload(publicDir, subdir string, src io.Reader, originalName string) (ProcessedImage, error) {
	decoded, _, err := image.Decode(src)
	if err != nil {
		return ProcessedImage{}, fmt.Errorf("decode image: %w: %w", err, ErrValidation)
	}

	display := scaleToWidth(decoded, maxImageWidth)
	data, err := encodeJPEG(display)
	if err != nil {
		return ProcessedImage{}, err
	}
	thumbData, err := encodeJPEG(scaleToWidth(decoded, thumbWidth))
	if err != nil {
		return ProcessedImage{}, err
	}

	dir := filepath.Join(publicDir, uploadsSubdir, subdir)
	if err := os.MkdirAll(filepath.Join(dir, "thumbs"), 0o755); err != nil {
		return ProcessedImage{}, fmt.Errorf("create uploads dir: %w", err)
	}

	name := slugifyFilename(originalName)
	if name == "" {
		name = "image"
	}
	filename := ensureUniqueFilename(dir, name+".jpg")

	if err := saveRaw(filepath.Join(dir, filename), data); err != nil {
		return ProcessedImage{}, err
	}
	if err := saveRaw(filepath.Join(dir, "thumbs", filename), thumbData); err != nil {
		return ProcessedImage{}, err
	}

	rel := func(parts ...string) string {
		return "/" + path.Join(append([]string{uploadsSubdir, subdir}, parts...)...)
	}
	return ProcessedImage{
		Src:    rel(filename),
		Thumb:  rel("thumbs", filename),
		Width:  display.Bounds().Dx(),
		Height: display.Bounds().Dy(),
	}, nil
}
