package validation

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"regexp"
	"strconv"
	"strings"

	_ "golang.org/x/image/webp"
)

// Icon payload bounds
const (
	MaxIconBytes         = 2 << 20
	MaxIconBase64Length  = (MaxIconBytes + 2) / 3 * 4
	MaxIconDataURLLength = MaxIconBase64Length + 64
	MaxIconDimension     = 5000
)

var (
	ErrIconFormat     = errors.New("icon must be a base64 data URL of type png, jpeg, gif, webp or svg+xml")
	ErrIconTooLarge   = errors.New("icon exceeds 2MB")
	ErrIconDecode     = errors.New("icon could not be decoded")
	ErrIconDimensions = fmt.Errorf("icon dimensions exceed %dx%d pixels", MaxIconDimension, MaxIconDimension)
	ErrIconUnsafeSVG  = errors.New("svg icon contains scripts or event handlers")
)

var dataURLPattern = regexp.MustCompile(`^data:image/(png|jpeg|gif|webp|svg\+xml);base64,([A-Za-z0-9+/]+={0,2})$`)

// IsDataURL reports whether s looks like a data URL
func IsDataURL(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "data:")
}

// ValidateIconDataURL checks type, size and decoded pixel dimensions of an
// inline icon. Raster images are fully decoded; header values are not trusted.
func ValidateIconDataURL(s string) error {
	if len(s) > MaxIconDataURLLength {
		return ErrIconTooLarge
	}
	m := dataURLPattern.FindStringSubmatch(s)
	if m == nil {
		return ErrIconFormat
	}
	subtype, payload := m[1], m[2]
	if len(payload) > MaxIconBase64Length {
		return ErrIconTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ErrIconDecode
	}
	if len(data) > MaxIconBytes {
		return ErrIconTooLarge
	}

	if subtype == "svg+xml" {
		return checkSVG(data)
	}
	return checkRaster(data, subtype)
}

func checkRaster(data []byte, subtype string) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ErrIconDecode
	}
	if format != subtype {
		return fmt.Errorf("%w: declared %s but content is %s", ErrIconFormat, subtype, format)
	}
	// reject oversized headers before allocating pixel buffers
	if cfg.Width > MaxIconDimension || cfg.Height > MaxIconDimension {
		return ErrIconDimensions
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ErrIconDecode
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return ErrIconDecode
	}
	if b.Dx() > MaxIconDimension || b.Dy() > MaxIconDimension {
		return ErrIconDimensions
	}
	return nil
}

func checkSVG(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ErrIconDecode
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		name := strings.ToLower(start.Name.Local)
		if name == "script" || name == "foreignobject" {
			return ErrIconUnsafeSVG
		}
		for _, attr := range start.Attr {
			attrName := strings.ToLower(attr.Name.Local)
			if strings.HasPrefix(attrName, "on") || jsSchemePattern.MatchString(attr.Value) {
				return ErrIconUnsafeSVG
			}
		}

		if !sawRoot {
			if name != "svg" {
				return ErrIconDecode
			}
			sawRoot = true
			w, h := svgSize(start)
			if w > MaxIconDimension || h > MaxIconDimension {
				return ErrIconDimensions
			}
		}
	}

	if !sawRoot {
		return ErrIconDecode
	}
	return nil
}

// svgSize reads width/height, falling back to the viewBox
func svgSize(root xml.StartElement) (float64, float64) {
	var width, height float64
	var viewBox string
	for _, attr := range root.Attr {
		switch strings.ToLower(attr.Name.Local) {
		case "width":
			width = parseLength(attr.Value)
		case "height":
			height = parseLength(attr.Value)
		case "viewbox":
			viewBox = attr.Value
		}
	}
	if (width == 0 || height == 0) && viewBox != "" {
		parts := strings.Fields(strings.ReplaceAll(viewBox, ",", " "))
		if len(parts) == 4 {
			if width == 0 {
				width = parseLength(parts[2])
			}
			if height == 0 {
				height = parseLength(parts[3])
			}
		}
	}
	return width, height
}

func parseLength(v string) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
