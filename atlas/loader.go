package atlas

import (
	"errors"
	"fmt"
	stdimage "image"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gogpu/g2d/internal/image"
)

// Loader returns the image stored under a name. Loaders report a missing
// name with an error wrapping ErrNotFound.
type Loader func(name string) (stdimage.Image, error)

// extensions are tried in order when a name has none of its own.
var extensions = []string{".png", ".gif", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// DirLoader loads images from a directory. A name is tried as given and
// then with each supported extension appended, so "ship" finds "ship.png".
// PNG, GIF, JPEG, BMP, TIFF and WebP are decoded.
func DirLoader(dir string) Loader {
	return func(name string) (stdimage.Image, error) {
		base := filepath.Join(dir, filepath.FromSlash(name))
		candidates := []string{base}
		for _, ext := range extensions {
			candidates = append(candidates, base+ext)
		}
		for _, path := range candidates {
			st, err := os.Stat(path)
			if errors.Is(err, fs.ErrNotExist) || (err == nil && st.IsDir()) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("atlas: %q: %w", name, err)
			}
			img, err := image.LoadFile(path)
			if err != nil {
				return nil, fmt.Errorf("atlas: %q: %w", name, err)
			}
			return img, nil
		}
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, name, dir)
	}
}

// MapLoader serves images from memory.
func MapLoader(images map[string]stdimage.Image) Loader {
	return func(name string) (stdimage.Image, error) {
		img, ok := images[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return img, nil
	}
}
