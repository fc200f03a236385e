package luma

import (
	"image"
	"image/color"
)

// Fixed-point ITU-R 601-2 luma weights scaled by 1<<16.
// https://github.com/python-pillow/Pillow/blob/main/src/libImaging/Convert.c
const (
	yr    = 19595
	yg    = 38470
	yb    = 7471
	round = 0x8000
)

// ColorToLumaBatch converts pixels into 8-bit luminance values.
// Alpha is ignored; channels are taken non-premultiplied.
func ColorToLumaBatch(pixels []color.Color, l []uint8) {
	for i, pixel := range pixels {
		c := color.NRGBAModel.Convert(pixel).(color.NRGBA)
		l[i] = luma(c.R, c.G, c.B)
	}
}

func luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*yr + uint32(g)*yg + uint32(b)*yb + round) >> 16)
}

// ToGray returns a single-channel copy of src anchored at the origin.
func ToGray(src image.Image) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))

	switch s := src.(type) {
	case *image.Gray:
		for y := range height {
			off := s.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+width], s.Pix[off:off+width])
		}
	case *image.NRGBA:
		for y := range height {
			off := s.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			row := dst.Pix[y*dst.Stride : y*dst.Stride+width]
			for x := range row {
				p := s.Pix[off+4*x : off+4*x+4 : off+4*x+4]
				row[x] = luma(p[0], p[1], p[2])
			}
		}
	case *image.RGBA:
		for y := range height {
			off := s.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			row := dst.Pix[y*dst.Stride : y*dst.Stride+width]
			for x := range row {
				p := s.Pix[off+4*x : off+4*x+4 : off+4*x+4]
				row[x] = luma(unpremultiply(p[0], p[1], p[2], p[3]))
			}
		}
	case *image.YCbCr:
		for y := range height {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+width]
			for x := range row {
				yi := s.YOffset(bounds.Min.X+x, bounds.Min.Y+y)
				ci := s.COffset(bounds.Min.X+x, bounds.Min.Y+y)
				row[x] = luma(color.YCbCrToRGB(s.Y[yi], s.Cb[ci], s.Cr[ci]))
			}
		}
	default:
		pixels := make([]color.Color, width)
		for y := range height {
			for x := range width {
				pixels[x] = src.At(bounds.Min.X+x, bounds.Min.Y+y)
			}
			ColorToLumaBatch(pixels, dst.Pix[y*dst.Stride:y*dst.Stride+width])
		}
	}
	return dst
}

// unpremultiply mirrors color.NRGBAModel for an 8-bit premultiplied pixel.
func unpremultiply(r, g, b, a uint8) (uint8, uint8, uint8) {
	switch a {
	case 0xff:
		return r, g, b
	case 0:
		return 0, 0, 0
	}
	a16 := uint32(a) * 0x101
	un := func(c uint8) uint8 {
		return uint8((uint32(c) * 0x101 * 0xffff / a16) >> 8)
	}
	return un(r), un(g), un(b)
}
