////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package composer

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/caffeinepub/vibechat/remote"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// MaxFileSize is the largest attachment accepted.
const MaxFileSize = 50 << 20

// Media types accepted as attachments.
var (
	allowedImageTypes = []string{
		"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"}
	allowedVideoTypes = []string{
		"video/mp4", "video/webm", "video/quicktime", "video/x-msvideo"}
)

// User-facing file errors.
var (
	ErrUnsupportedFiles = errors.New("Only images and videos are supported")
	ErrInvalidMedia     = errors.New("Please select a valid image or video file")
	ErrFileTooLarge     = errors.New("File size must be less than 50MB")
	ErrFileRead         = errors.New("Failed to read file")
)

// File is an attachment picked by the user. Its content is read only when the
// message is submitted.
type File struct {
	Name string

	// Type is the MIME type, e.g. "image/png".
	Type string

	Size int64
	Open func() (io.ReadCloser, error)
}

// FileFromBytes returns a File over in-memory content.
func FileFromBytes(name, mimeType string, data []byte) File {
	return File{
		Name: name,
		Type: mimeType,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FileFromPath returns a File for the file on disk. The MIME type comes from
// the extension, or from the first bytes when the extension is unknown.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, errors.Wrapf(err, "failed to stat %s", path)
	}
	if info.IsDir() {
		return File{}, errors.Errorf("%s is a directory", path)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType, err = sniff(path)
		if err != nil {
			return File{}, err
		}
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	return File{
		Name: filepath.Base(path),
		Type: mimeType,
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", errors.Wrapf(err, "failed to read %s", path)
	}
	return http.DetectContentType(head[:n]), nil
}

// IsImage returns true for image/* files.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.Type, "image/")
}

// IsVideo returns true for video/* files.
func (f File) IsVideo() bool {
	return strings.HasPrefix(f.Type, "video/")
}

// AttachmentType returns how the file is shown once sent.
func (f File) AttachmentType() remote.AttachmentType {
	if f.IsImage() {
		return remote.Photo
	}
	return remote.Video
}

// Validate checks the file's type against the accepted media types and its
// size against MaxFileSize.
func (f File) Validate() error {
	if !contains(allowedImageTypes, f.Type) && !contains(allowedVideoTypes, f.Type) {
		jww.DEBUG.Printf("[COMPOSER] %s has unsupported type %q", f.Name, f.Type)
		return ErrInvalidMedia
	}
	if f.Size > MaxFileSize {
		jww.DEBUG.Printf("[COMPOSER] %s is %d bytes", f.Name, f.Size)
		return ErrFileTooLarge
	}
	return nil
}

// ReadBytes validates the file and reads its content.
func (f File) ReadBytes() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	r, err := f.Open()
	if err != nil {
		jww.ERROR.Printf("[COMPOSER] Failed to open %s: %+v", f.Name, err)
		return nil, ErrFileRead
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		jww.ERROR.Printf("[COMPOSER] Failed to read %s: %+v", f.Name, err)
		return nil, ErrFileRead
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
