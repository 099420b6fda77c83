package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nfnt/resize"
)

// DefaultMaxWidth is the width screenshots are scaled down to
const DefaultMaxWidth = 1280

// Writer stores page screenshots taken when a job fails
type Writer struct {
	Dir      string
	MaxWidth uint

	now func() time.Time
}

// New creates a writer for dir. A zero maxWidth means DefaultMaxWidth.
func New(dir string, maxWidth uint) *Writer {
	if maxWidth == 0 {
		maxWidth = DefaultMaxWidth
	}
	return &Writer{Dir: dir, MaxWidth: maxWidth, now: time.Now}
}

// Save decodes a PNG screenshot, downscales it to MaxWidth keeping the
// aspect ratio and writes it under Dir. It returns the written path.
func (w *Writer) Save(data []byte, name string) (string, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode screenshot: %w", err)
	}
	return w.SaveImage(img, name)
}

// SaveImage writes img like Save
func (w *Writer) SaveImage(img image.Image, name string) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	img = Downscale(img, w.MaxWidth)

	now := time.Now
	if w.now != nil {
		now = w.now
	}
	f, path, err := w.create(now(), slug(name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return path, nil
}

// create opens a new file named after the time and slug. Names are never
// reused: a clash within the same millisecond gets a numeric suffix.
func (w *Writer) create(t time.Time, name string) (*os.File, string, error) {
	base := t.Format("20060102-150405.000") + "-" + name
	for i := 1; i <= maxSuffix; i++ {
		file := base + ".png"
		if i > 1 {
			file = fmt.Sprintf("%s-%d.png", base, i)
		}
		path := filepath.Join(w.Dir, file)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("snapshot name %s: too many files with the same name", base)
}

// Downscale shrinks img to maxWidth. Narrower images are returned as is.
func Downscale(img image.Image, maxWidth uint) image.Image {
	bounds := img.Bounds()
	if maxWidth == 0 || bounds.Dx() <= int(maxWidth) {
		return img
	}
	aspectRatio := float64(bounds.Dy()) / float64(bounds.Dx())
	height := uint(float64(maxWidth) * aspectRatio)
	if height == 0 {
		height = 1
	}
	return resize.Resize(maxWidth, height, img, resize.Lanczos3)
}

const maxSuffix = 100

// letters and digits of any script are kept, everything else becomes a dash
var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func slug(s string) string {
	s = unsafeChars.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if r := []rune(s); len(r) > 40 {
		s = strings.TrimRight(string(r[:40]), "-")
	}
	if s == "" {
		return "page"
	}
	return s
}
