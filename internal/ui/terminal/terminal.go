package terminal

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"

	// Registered decoders for avatar images
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/BourgeoisBear/rasterm"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ImageMode is the image protocol the terminal understands
type ImageMode int

const (
	ModeNone ImageMode = iota
	ModeKitty
	ModeIterm
	ModeSixel
)

// AvatarImageID is the Kitty image id used for the author avatar so it can
// be deleted without touching anything else on screen.
const AvatarImageID uint32 = 4242

// AvatarSize is the longest side of a drawn avatar, in pixels
const AvatarSize = 160

// String returns a human-readable name for the mode
func (m ImageMode) String() string {
	switch m {
	case ModeKitty:
		return "Kitty"
	case ModeIterm:
		return "iTerm2"
	case ModeSixel:
		return "Sixel"
	default:
		return "None"
	}
}

// DetectMode checks which image protocol the terminal supports
func DetectMode() ImageMode {
	if rasterm.IsKittyCapable() {
		return ModeKitty
	}
	if rasterm.IsItermCapable() {
		return ModeIterm
	}
	if capable, _ := rasterm.IsSixelCapable(); capable {
		return ModeSixel
	}
	return ModeNone
}

// Decode reads a PNG, JPEG, GIF or WebP image
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Thumbnail scales img so its longest side is at most size pixels.
// Smaller images are returned unchanged.
func Thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size || w == 0 || h == 0 {
		return img
	}

	if w >= h {
		h = max(1, h*size/w)
		w = size
	} else {
		w = max(1, w*size/h)
		h = size
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

func toPaletted(img image.Image) *image.Paletted {
	bounds := img.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.Draw(paletted, bounds, img, bounds.Min, draw.Src)
	return paletted
}

// Render encodes img for the terminal. It returns an empty string when the
// terminal has no image support.
func Render(img image.Image, mode ImageMode) (string, error) {
	var buf bytes.Buffer
	var err error

	switch mode {
	case ModeKitty:
		err = rasterm.KittyWriteImage(&buf, img, rasterm.KittyImgOpts{ImageId: AvatarImageID})
	case ModeIterm:
		err = rasterm.ItermWriteImage(&buf, img)
	case ModeSixel:
		err = rasterm.SixelWriteImage(&buf, toPaletted(img))
	default:
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("render %s image: %w", mode, err)
	}
	return buf.String(), nil
}

// Clear returns the escape sequence that removes a drawn avatar
func Clear(mode ImageMode) string {
	switch mode {
	case ModeKitty:
		return fmt.Sprintf("\x1b_Ga=d,i=%d\x1b\\", AvatarImageID)
	case ModeIterm, ModeSixel:
		// Images live in the cell grid, so clear below the title bar
		return "\x1b[2;1H\x1b[J"
	default:
		return ""
	}
}
