package irrigation

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/stat"

	"punogaria/internal/models"
)

// Sky heuristic tuning, on the 8-bit HSV scale.
const (
	SkyRegionFraction = 0.3

	clearMinBrightness  = 180.0
	clearMaxSaturation  = 60.0
	cloudyMinBrightness = 100.0
	cloudyMaxSaturation = 100.0
)

var errEmptySkyRegion = errors.New("image too small for a sky region")

// DecodeImage decodes a camera payload. The format name is returned too.
func DecodeImage(payload []byte) (image.Image, string, error) {
	if len(payload) == 0 {
		return nil, "", errors.New("empty image payload")
	}
	img, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// SkyRegionStats computes mean hue, saturation and brightness over the top
// rows of img.
func SkyRegionStats(img image.Image) (models.SkyStats, error) {
	b := img.Bounds()
	rows := int(float64(b.Dy()) * SkyRegionFraction)
	if rows <= 0 || b.Dx() <= 0 {
		return models.SkyStats{}, errEmptySkyRegion
	}

	n := rows * b.Dx()
	hs := make([]float64, 0, n)
	ss := make([]float64, 0, n)
	vs := make([]float64, 0, n)
	for y := b.Min.Y; y < b.Min.Y+rows; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			h, s, v := rgbToHSV(c.R, c.G, c.B)
			hs = append(hs, h)
			ss = append(ss, s)
			vs = append(vs, v)
		}
	}

	return models.SkyStats{
		Brightness: stat.Mean(vs, nil),
		Saturation: stat.Mean(ss, nil),
		Hue:        stat.Mean(hs, nil),
	}, nil
}

// ClassifyStats applies the ordered brightness/saturation rule.
func ClassifyStats(st models.SkyStats) models.SkyCondition {
	switch {
	case st.Brightness > clearMinBrightness && st.Saturation < clearMaxSaturation:
		return models.SkyClear
	case st.Brightness > cloudyMinBrightness && st.Saturation < cloudyMaxSaturation:
		return models.SkyCloudy
	default:
		return models.SkyOvercast
	}
}

// ClassifyImage decodes payload and classifies its sky region.
func ClassifyImage(payload []byte) (models.SkyCondition, models.SkyStats, error) {
	img, _, err := DecodeImage(payload)
	if err != nil {
		return models.SkyUnknown, models.SkyStats{}, err
	}
	st, err := SkyRegionStats(img)
	if err != nil {
		return models.SkyUnknown, models.SkyStats{}, err
	}
	return ClassifyStats(st), st, nil
}

// rgbToHSV converts 8-bit RGB to 8-bit HSV: H in [0,180), S and V in [0,255].
func rgbToHSV(r8, g8, b8 uint8) (h, s, v float64) {
	r, g, b := float64(r8), float64(g8), float64(b8)
	v = math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	delta := v - lo
	if v > 0 {
		s = math.Round(255 * delta / v)
	}
	if delta == 0 {
		return 0, s, v
	}
	switch v {
	case r:
		h = 60 * (g - b) / delta
	case g:
		h = 120 + 60*(b-r)/delta
	default:
		h = 240 + 60*(r-g)/delta
	}
	if h < 0 {
		h += 360
	}
	return math.Round(h / 2), s, v
}
