package resize

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Interpolator names accepted by Lookup.
const (
	NearestNeighbor = "nearest"
	ApproxBiLinear  = "approx-bilinear"
	BiLinear        = "bilinear"
	CatmullRom      = "catmull-rom"
)

var interpolators = map[string]draw.Interpolator{
	NearestNeighbor: draw.NearestNeighbor,
	ApproxBiLinear:  draw.ApproxBiLinear,
	BiLinear:        draw.BiLinear,
	CatmullRom:      draw.CatmullRom,
}

// Lookup returns the interpolator registered under name.
func Lookup(name string) (draw.Interpolator, error) {
	if ip, ok := interpolators[name]; ok {
		return ip, nil
	}
	return nil, fmt.Errorf("unknown interpolator %q", name)
}

// Square scales src to an n x n gray image.
// Kernel interpolators widen their support when downscaling, so shrinking
// averages over the covered source pixels instead of point sampling.
func Square(src *image.Gray, n int, ip draw.Interpolator) *image.Gray {
	if ip == nil {
		ip = draw.BiLinear
	}
	dist := image.NewGray(image.Rect(0, 0, n, n))
	ip.Scale(dist, dist.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dist
}
