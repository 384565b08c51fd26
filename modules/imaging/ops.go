package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// CompressThreshold is the payload size above which a compressed
	// rendition is produced.
	CompressThreshold = 500 * 1024

	// MaxDimension caps the width and height of compressed renditions.
	MaxDimension = 4096

	jpegQuality    = 85
	watermarkAlpha = 102 // 40% opacity
	watermarkPad   = 10
)

// ThumbnailSizes lists the thumbnail bounding boxes, smallest first.
var ThumbnailSizes = []int{150, 300, 600}

func decodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// probeDimensions reads the image header without decoding pixel data.
func probeDimensions(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to probe image: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// needsCompression reports whether the original exceeds the size or
// dimension limits.
func needsCompression(size, width, height int) bool {
	return size > CompressThreshold || width > MaxDimension || height > MaxDimension
}

// fitWithin scales (width, height) to fit inside maxW x maxH keeping
// the aspect ratio. It never scales up.
func fitWithin(width, height, maxW, maxH int) (int, int) {
	if width <= maxW && height <= maxH {
		return width, height
	}
	scaleW := float64(maxW) / float64(width)
	scaleH := float64(maxH) / float64(height)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	w := int(float64(width) * scale)
	h := int(float64(height) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// resize renders img at the given size using Catmull-Rom interpolation.
func resize(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// applyWatermark stamps text in the bottom-right corner at 40% opacity.
func applyWatermark(img *image.RGBA, text string) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: watermarkAlpha}),
		Face: basicfont.Face7x13,
	}
	bounds := img.Bounds()
	textWidth := d.MeasureString(text).Ceil()
	x := bounds.Max.X - textWidth - watermarkPad
	if x < bounds.Min.X {
		x = bounds.Min.X
	}
	y := bounds.Max.Y - watermarkPad
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

// encodeImage serializes img in the derivative format for the source
// format: PNG sources stay PNG to keep transparency, everything else
// becomes JPEG.
func encodeImage(img image.Image, sourceFormat string) ([]byte, string, error) {
	var buf bytes.Buffer
	if sourceFormat == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("failed to encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
