package composite

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/tauraamui/duocam/pkg/log"
	"github.com/tauraamui/xerror"
)

var fs = afero.NewOsFs()

// Timestamp is the clock used for naming and labelling captures.
var Timestamp = time.Now

// FileName is unique per millisecond: two captures in the same
// millisecond produce the same name.
func FileName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%d.png", prefix, t.UnixMilli())
}

type Exporter struct {
	Directory string
	Prefix    string
}

// Export encodes img as PNG into the exporter's directory and returns
// the path written. An existing file with the same name is never
// overwritten.
func (e Exporter) Export(img image.Image, at time.Time) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", xerror.New("refusing to export an empty image")
	}

	if err := fs.MkdirAll(e.Directory, os.ModeDir|os.ModePerm); err != nil {
		return "", xerror.Errorf("unable to create capture directory %s: %w", e.Directory, err)
	}

	path := filepath.Join(e.Directory, FileName(e.Prefix, at))
	file, err := fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", xerror.Errorf("unable to create capture file %s: %w", path, err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		if rmErr := fs.Remove(path); rmErr != nil {
			log.Warn("Unable to remove partial capture %s: %v", path, rmErr)
		}
		return "", xerror.Errorf("unable to encode capture as PNG: %w", err)
	}

	if err := file.Close(); err != nil {
		return "", xerror.Errorf("unable to finish writing capture %s: %w", path, err)
	}

	log.Info("Saved capture to %s", path)
	return path, nil
}
