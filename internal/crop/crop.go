// Package crop implements the geometry behind the image-crop dialog:
// inferring missing output dimensions from an aspect ratio and validating a
// crop rectangle against the source image bounds. Pixel work stays with the
// host toolkit; this package only decides whether a crop is legal.
package crop

import (
	"errors"
	"fmt"
	"math"
)

// Rect is a crop rectangle in image pixel coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Spec describes the requested crop output. Zero values mean "unspecified".
type Spec struct {
	// Width and Height of the desired output. Either may be zero when
	// Aspect is set; the missing one is inferred.
	Width  int
	Height int

	// Aspect is width/height. Zero means unconstrained.
	Aspect float64

	// MinWidth and MinHeight bound the smallest acceptable crop.
	MinWidth  int
	MinHeight int
}

var (
	ErrEmptyRect     = errors.New("crop rectangle is empty")
	ErrOutOfBounds   = errors.New("crop rectangle exceeds image bounds")
	ErrBelowMinimum  = errors.New("crop rectangle is below the minimum size")
	ErrNoDimensions  = errors.New("at least one dimension or an aspect ratio is required")
	ErrInvalidAspect = errors.New("aspect ratio must be positive")
	ErrUnknownBounds = errors.New("image dimensions are not known")
)

// InferDimensions resolves the output size from a partially specified spec.
// When only one dimension is given and an aspect is set, the other is
// computed; when both dimensions are given they win over the aspect; when
// only the aspect is given the source bounds are fitted to it.
func InferDimensions(spec Spec, srcW, srcH int) (w, h int, err error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, ErrUnknownBounds
	}
	if spec.Aspect < 0 {
		return 0, 0, ErrInvalidAspect
	}

	switch {
	case spec.Width > 0 && spec.Height > 0:
		return spec.Width, spec.Height, nil

	case spec.Width > 0 && spec.Aspect > 0:
		return spec.Width, int(math.Round(float64(spec.Width) / spec.Aspect)), nil

	case spec.Height > 0 && spec.Aspect > 0:
		return int(math.Round(float64(spec.Height) * spec.Aspect)), spec.Height, nil

	case spec.Width > 0:
		// Height unconstrained: keep the source's proportions.
		return spec.Width, int(math.Round(float64(spec.Width) * float64(srcH) / float64(srcW))), nil

	case spec.Height > 0:
		return int(math.Round(float64(spec.Height) * float64(srcW) / float64(srcH))), spec.Height, nil

	case spec.Aspect > 0:
		// Largest rect of the requested aspect that fits the source.
		w = srcW
		h = int(math.Round(float64(srcW) / spec.Aspect))
		if h > srcH {
			h = srcH
			w = int(math.Round(float64(srcH) * spec.Aspect))
		}
		return w, h, nil
	}

	return 0, 0, ErrNoDimensions
}

// Validate checks a crop rectangle against the image bounds and the
// minimum size the Spec requires.
func Validate(r Rect, srcW, srcH int, spec Spec) error {
	if srcW <= 0 || srcH <= 0 {
		return ErrUnknownBounds
	}
	if r.Width <= 0 || r.Height <= 0 {
		return ErrEmptyRect
	}
	if r.X < 0 || r.Y < 0 || r.X+r.Width > srcW || r.Y+r.Height > srcH {
		return fmt.Errorf("%w: rect %dx%d@%d,%d image %dx%d", ErrOutOfBounds, r.Width, r.Height, r.X, r.Y, srcW, srcH)
	}
	if r.Width < spec.MinWidth || r.Height < spec.MinHeight {
		return fmt.Errorf("%w: rect %dx%d minimum %dx%d", ErrBelowMinimum, r.Width, r.Height, spec.MinWidth, spec.MinHeight)
	}
	return nil
}

// Clamp moves and shrinks the rectangle as needed so it fits inside the
// image bounds. The result is always valid for Validate with a zero-minimum
// spec, provided the image has positive dimensions.
func Clamp(r Rect, srcW, srcH int) Rect {
	if r.Width > srcW {
		r.Width = srcW
	}
	if r.Height > srcH {
		r.Height = srcH
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.X+r.Width > srcW {
		r.X = srcW - r.Width
	}
	if r.Y+r.Height > srcH {
		r.Y = srcH - r.Height
	}
	return r
}

// Centered returns a rectangle of the given size centered in the image,
// clamped to the bounds.
func Centered(w, h, srcW, srcH int) Rect {
	return Clamp(Rect{
		X:      (srcW - w) / 2,
		Y:      (srcH - h) / 2,
		Width:  w,
		Height: h,
	}, srcW, srcH)
}
