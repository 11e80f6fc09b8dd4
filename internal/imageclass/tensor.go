package imageclass

import (
	"fmt"
	"image"
	_ "image/jpeg" // camera traps produce JPEG captures
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/ecoguard/ecoguard-go/internal/errors"
)

// LoadImageTensor decodes the image at path, scales it to size x size, and
// returns a float32 slice in NHWC order with shape (1, size, size, 3) and
// values normalized to the 0-1 range the model was trained with.
func LoadImageTensor(path string, size int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("opening image: %w", err)).
			Component("imageclass").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.New(fmt.Errorf("decoding image: %w", err)).
			Component("imageclass").
			Category(errors.CategoryImageDecode).
			Context("path", path).
			Build()
	}

	// Scale to the model input resolution.
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	// NHWC with batch=1: length = 1 * size * size * 3
	out := make([]float32, 1*size*size*3)

	// iterate rows (y) then columns (x) so memory layout matches NHWC
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r32, g32, b32, _ := scaled.At(x, y).RGBA()
			// Convert 16-bit color to 8-bit
			r := float32(r32 >> 8)
			g := float32(g32 >> 8)
			b := float32(b32 >> 8)

			base := ((y * size) + x) * 3
			out[base+0] = r / 255.0
			out[base+1] = g / 255.0
			out[base+2] = b / 255.0
		}
	}

	return out, nil
}
