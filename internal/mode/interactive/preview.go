// ABOUTME: Half-block terminal preview of an attached image, fitted to a cell box
// ABOUTME: Each cell shows two pixel rows: background is the top pixel, foreground the bottom

package interactive

import (
	"bytes"
	"fmt"
	goimage "image"
	"strings"

	// Register decoders for the formats the transcoder accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// renderPreview decodes data and renders it into at most cols x rows cells.
// Returns nil when the image cannot be decoded or the box is empty.
func renderPreview(data []byte, cols, rows int) []string {
	if len(data) == 0 || cols <= 0 || rows <= 0 {
		return nil
	}
	img, _, err := goimage.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return halfBlocks(img, cols, rows)
}

// halfBlocks scales img into a cols x (2*rows) pixel box, keeping aspect
// ratio, and emits one ANSI line per pair of pixel rows.
func halfBlocks(img goimage.Image, cols, rows int) []string {
	b := img.Bounds()
	w, h := fitBox(b.Dx(), b.Dy(), cols, rows*2)
	if w == 0 || h == 0 {
		return nil
	}

	var src goimage.Image = img
	if w != b.Dx() || h != b.Dy() {
		dst := goimage.NewRGBA(goimage.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		src = dst
	}
	origin := src.Bounds().Min

	lines := make([]string, 0, (h+1)/2)
	for y := 0; y < h; y += 2 {
		var sb strings.Builder
		for x := range w {
			tr, tg, tb := rgb8(src, origin.X+x, origin.Y+y)
			var br, bg, bb uint8
			if y+1 < h {
				br, bg, bb = rgb8(src, origin.X+x, origin.Y+y+1)
			}
			fmt.Fprintf(&sb, "\x1b[48;2;%d;%d;%dm\x1b[38;2;%d;%d;%dm▄", tr, tg, tb, br, bg, bb)
		}
		sb.WriteString("\x1b[0m")
		lines = append(lines, sb.String())
	}
	return lines
}

// fitBox shrinks w x h to fit maxW x maxH without enlarging.
func fitBox(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w > maxW {
		h = max(h*maxW/w, 1)
		w = maxW
	}
	if h > maxH {
		w = max(w*maxH/h, 1)
		h = maxH
	}
	return w, h
}

func rgb8(img goimage.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
