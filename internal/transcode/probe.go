// ABOUTME: Header-only image probing: MIME sniffing and pixel dimensions without decoding
// ABOUTME: Parses PNG, JPEG, GIF, WebP, and BMP headers; bounds decode cost before it happens

package transcode

import (
	"encoding/binary"
	"fmt"
)

// Header is what the first bytes of an image reveal.
type Header struct {
	MIME   string
	Width  int
	Height int
}

// Pixels returns Width*Height.
func (h Header) Pixels() int64 {
	return int64(h.Width) * int64(h.Height)
}

// SniffMIME returns the MIME type implied by the magic bytes of data, or
// "application/octet-stream" when unrecognized.
func SniffMIME(data []byte) string {
	switch {
	case len(data) >= 4 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G':
		return "image/png"
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	case len(data) >= 3 && data[0] == 'G' && data[1] == 'I' && data[2] == 'F':
		return "image/gif"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return "image/bmp"
	}
	return "application/octet-stream"
}

// Probe sniffs the format and reads dimensions from the header.
func Probe(data []byte) (Header, error) {
	h := Header{MIME: SniffMIME(data)}
	var err error
	switch h.MIME {
	case "image/png":
		h.Width, h.Height, err = pngSize(data)
	case "image/jpeg":
		h.Width, h.Height, err = jpegSize(data)
	case "image/gif":
		h.Width, h.Height, err = gifSize(data)
	case "image/webp":
		h.Width, h.Height, err = webpSize(data)
	case "image/bmp":
		h.Width, h.Height, err = bmpSize(data)
	default:
		err = fmt.Errorf("unrecognized image format")
	}
	return h, err
}

// pngSize reads the IHDR chunk: width at 16, height at 20, big-endian.
func pngSize(data []byte) (int, int, error) {
	if len(data) < 24 {
		return 0, 0, fmt.Errorf("PNG data too short for IHDR")
	}
	return int(binary.BigEndian.Uint32(data[16:20])), int(binary.BigEndian.Uint32(data[20:24])), nil
}

// jpegSize walks segments until a SOF0-SOF2 marker.
func jpegSize(data []byte) (int, int, error) {
	i := 2
	for i+3 < len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker >= 0xC0 && marker <= 0xC2 {
			if i+9 > len(data) {
				return 0, 0, fmt.Errorf("JPEG SOF truncated")
			}
			h := int(binary.BigEndian.Uint16(data[i+5 : i+7]))
			w := int(binary.BigEndian.Uint16(data[i+7 : i+9]))
			return w, h, nil
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if segLen < 2 {
			break
		}
		i += 2 + segLen
	}
	return 0, 0, fmt.Errorf("JPEG SOF marker not found")
}

// gifSize reads the logical screen descriptor, little-endian.
func gifSize(data []byte) (int, int, error) {
	if len(data) < 10 {
		return 0, 0, fmt.Errorf("GIF data too short for header")
	}
	return int(binary.LittleEndian.Uint16(data[6:8])), int(binary.LittleEndian.Uint16(data[8:10])), nil
}

// webpSize handles the VP8, VP8L, and VP8X chunk layouts.
func webpSize(data []byte) (int, int, error) {
	if len(data) < 16 {
		return 0, 0, fmt.Errorf("WebP data too short")
	}
	switch chunk := string(data[12:16]); chunk {
	case "VP8 ":
		if len(data) < 30 {
			return 0, 0, fmt.Errorf("WebP VP8 data too short")
		}
		w := int(binary.LittleEndian.Uint16(data[26:28])) & 0x3FFF
		h := int(binary.LittleEndian.Uint16(data[28:30])) & 0x3FFF
		return w, h, nil
	case "VP8L":
		if len(data) < 25 {
			return 0, 0, fmt.Errorf("WebP VP8L data too short")
		}
		bits := binary.LittleEndian.Uint32(data[21:25])
		return int(bits&0x3FFF) + 1, int((bits>>14)&0x3FFF) + 1, nil
	case "VP8X":
		if len(data) < 30 {
			return 0, 0, fmt.Errorf("WebP VP8X data too short")
		}
		w := int(data[24]) | int(data[25])<<8 | int(data[26])<<16 + 1
		h := int(data[27]) | int(data[28])<<8 | int(data[29])<<16 + 1
		return w, h, nil
	default:
		return 0, 0, fmt.Errorf("unknown WebP chunk: %s", chunk)
	}
}

// bmpSize reads BITMAPINFOHEADER width and height; height is negative for
// top-down bitmaps.
func bmpSize(data []byte) (int, int, error) {
	if len(data) < 26 {
		return 0, 0, fmt.Errorf("BMP data too short for info header")
	}
	w := int(int32(binary.LittleEndian.Uint32(data[18:22])))
	h := int(int32(binary.LittleEndian.Uint32(data[22:26])))
	if h < 0 {
		h = -h
	}
	return w, h, nil
}
