package scoring

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/JaimeStill/glimpse/internal/failure"
)

// Decode decodes b as an image in any registered format.
func Decode(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, failure.New(failure.Decode, "decode image", err)
	}
	return img, nil
}

// Tensor resizes img to width x height with a bilinear (triangle) filter and
// returns its RGB channels normalized to [0,1], laid out per layout.
func Tensor(img image.Image, width, height int, layout Layout) ([]float32, error) {
	if width < 1 || height < 1 {
		return nil, failure.New(failure.Model, "build tensor", fmt.Errorf("invalid size %dx%d", width, height))
	}

	resized := resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	bounds := resized.Bounds()
	plane := width * height
	data := make([]float32, 3*plane)

	for y := range height {
		for x := range width {
			px := color.NRGBAModel.Convert(resized.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			channels := [3]float32{
				float32(px.R) / 255.0,
				float32(px.G) / 255.0,
				float32(px.B) / 255.0,
			}

			for c, v := range channels {
				switch layout {
				case NCHW:
					data[c*plane+y*width+x] = v
				default:
					data[(y*width+x)*3+c] = v
				}
			}
		}
	}

	return data, nil
}
