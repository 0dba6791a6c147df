package classify

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
)

// loadImage reads an image file, downscaling it to maxWidth when it is wider.
// Formats the decoder does not know are sent untouched.
func loadImage(path string, maxWidth int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	if maxWidth <= 0 {
		return data, nil
	}

	return shrinkImage(data, maxWidth), nil
}

func shrinkImage(data []byte, maxWidth int) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	if img.Bounds().Dx() <= maxWidth {
		return data
	}

	scaled := resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 85}); err != nil {
		return data
	}
	return buf.Bytes()
}
