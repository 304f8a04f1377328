////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package profile

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/caffeinepub/vibechat/composer"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	// Registers the WebP decoder with image.Decode
	_ "golang.org/x/image/webp"
)

// MaxPictureSize is the largest profile picture accepted.
const MaxPictureSize = 5 << 20

// MaxPictureDimension bounds both sides of a stored profile picture. Larger
// pictures are scaled down, keeping their aspect ratio.
const MaxPictureDimension = 512

const jpegQuality = 90

var allowedPictureTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// User-facing picture errors.
var (
	ErrInvalidPicture = errors.New(
		"Please select a valid image file (JPEG, PNG, or WebP)")
	ErrPictureTooLarge = errors.New("Image size must be less than 5MB")
)

// ValidatePicture checks the picture's type and size.
func ValidatePicture(f composer.File) error {
	if !allowedPictureTypes[f.Type] {
		jww.DEBUG.Printf("[PROFILE] %s has unsupported type %q", f.Name, f.Type)
		return ErrInvalidPicture
	}
	if f.Size > MaxPictureSize {
		return ErrPictureTooLarge
	}
	return nil
}

// readPicture validates the picture, reads it and scales it down to at most
// MaxPictureDimension on each side.
func readPicture(f composer.File) ([]byte, error) {
	if err := ValidatePicture(f); err != nil {
		return nil, err
	}

	r, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", f.Name)
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, MaxPictureSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", f.Name)
	}
	if len(data) > MaxPictureSize {
		return nil, ErrPictureTooLarge
	}

	return Thumbnail(data)
}

// Thumbnail returns the image scaled down to fit MaxPictureDimension. Images
// that already fit are returned unchanged. PNG stays PNG; everything else is
// encoded as JPEG.
func Thumbnail(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		jww.DEBUG.Printf("[PROFILE] Failed to decode picture: %+v", err)
		return nil, ErrInvalidPicture
	}

	bounds := img.Bounds()
	if bounds.Dx() <= MaxPictureDimension && bounds.Dy() <= MaxPictureDimension {
		return data, nil
	}

	scaled := resize.Thumbnail(MaxPictureDimension, MaxPictureDimension, img,
		resize.Lanczos3)
	jww.DEBUG.Printf("[PROFILE] Scaled %s picture from %dx%d to %dx%d", format,
		bounds.Dx(), bounds.Dy(), scaled.Bounds().Dx(), scaled.Bounds().Dy())

	var buf bytes.Buffer
	if format == "png" {
		err = png.Encode(&buf, scaled)
	} else {
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode picture")
	}
	return buf.Bytes(), nil
}
