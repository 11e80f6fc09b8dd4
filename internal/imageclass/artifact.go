package imageclass

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ecoguard/ecoguard-go/internal/errors"
)

// imageTimeLayout is the fixed, sortable, filesystem-safe encoding of a
// batch timestamp used to name camera-trap captures.
const imageTimeLayout = "2006-01-02_15-04-05"

// ImageFileName returns the camera-trap capture name for a batch timestamp.
func ImageFileName(ts time.Time) string {
	return ts.Format(imageTimeLayout) + ".jpg"
}

// ArtifactPath returns the expected location of the capture for a zone and
// timestamp: <root>/<zone>/<YYYY-MM-DD_HH-MM-SS>.jpg.
func ArtifactPath(root, zone string, ts time.Time) string {
	return filepath.Join(root, zone, ImageFileName(ts))
}

// LookupArtifact resolves the capture path for a zone and timestamp and
// verifies the file exists. A missing capture returns a not-found error;
// callers treat that as an expected outcome, not a failure.
func LookupArtifact(root, zone string, ts time.Time) (string, error) {
	path := ArtifactPath(root, zone, ts)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(fmt.Errorf("image not found: %s", path)).
				Component("imageclass").
				Category(errors.CategoryNotFound).
				Context("zone", zone).
				Build()
		}
		return "", errors.New(fmt.Errorf("stat image: %w", err)).
			Component("imageclass").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	if info.IsDir() {
		return "", errors.Newf("image path %s is a directory", path).
			Component("imageclass").
			Category(errors.CategoryFileIO).
			Build()
	}
	return path, nil
}
