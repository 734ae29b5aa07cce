package entity

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ImageType is an image format accepted for uploads and served by the CDN.
type ImageType uint8

const (
	ImagePNG ImageType = iota
	ImageJPG
	ImageGIF
	ImageWEBP
)

var ErrUnsupportedImageType = errors.New("unsupported image type")

var mimeTypes = map[ImageType]string{
	ImagePNG:  "image/png",
	ImageJPG:  "image/jpeg",
	ImageGIF:  "image/gif",
	ImageWEBP: "image/webp",
}

var extensions = map[ImageType]string{
	ImagePNG:  ".png",
	ImageJPG:  ".jpg",
	ImageGIF:  ".gif",
	ImageWEBP: ".webp",
}

func (t ImageType) MIME() (string, bool) {
	m, ok := mimeTypes[t]
	return m, ok
}

func (t ImageType) String() string {
	if m, ok := mimeTypes[t]; ok {
		return m
	}
	return "ImageType(" + strconv.Itoa(int(t)) + ")"
}

// dataURI encodes blob as a base64 data URI of the given type.
func dataURI(blob []byte, t ImageType) (string, error) {
	mime, ok := t.MIME()
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnsupportedImageType, t)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(blob), nil
}

// CDNURL builds a URL for an asset hosted on the Discord CDN. path has no
// extension, e.g. "emojis/<id>". An empty string is returned if format is not
// one of allowed.
func CDNURL(allowed []ImageType, path string, format ImageType, size uint16, preferAnimated, animated bool) string {
	if !containsImageType(allowed, format) {
		return ""
	}

	var ext string
	if animated && (preferAnimated || format == ImageGIF) {
		ext = extensions[ImageGIF]
	} else if e, ok := extensions[format]; ok {
		ext = e
	} else {
		return ""
	}

	return discordgo.EndpointCDN + path + ext + sizeQuery(size)
}

func containsImageType(types []ImageType, t ImageType) bool {
	for _, i := range types {
		if i == t {
			return true
		}
	}
	return false
}

// sizeQuery only honours sizes the CDN accepts: powers of two from 16 to 4096.
func sizeQuery(size uint16) string {
	if size >= 16 && size <= 4096 && size&(size-1) == 0 {
		return "?size=" + strconv.Itoa(int(size))
	}
	return ""
}
