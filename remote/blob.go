////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package remote

import (
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// ProgressCallback receives the upload progress of a Blob as a percentage in
// the range [0, 100].
type ProgressCallback func(percentage int)

// Blob is a content-addressed reference to externally stored binary content.
// A Blob created from bytes is local until a transport uploads it and resolves
// its direct URL; a Blob received from the backend is already resolved.
type Blob struct {
	hash       string
	data       []byte
	url        string
	onProgress ProgressCallback
	mux        sync.RWMutex
}

// FromBytes wraps the bytes in a local Blob addressed by their BLAKE2b-256
// digest.
func FromBytes(data []byte) *Blob {
	sum := blake2b.Sum256(data)
	return &Blob{
		hash: hex.EncodeToString(sum[:]),
		data: data,
	}
}

// FromURL returns a resolved Blob that points at an existing URL.
func FromURL(url string) *Blob {
	return &Blob{url: url}
}

// WithUploadProgress returns a copy of the Blob that reports upload progress
// to the callback.
func (b *Blob) WithUploadProgress(cb ProgressCallback) *Blob {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return &Blob{
		hash:       b.hash,
		data:       b.data,
		url:        b.url,
		onProgress: cb,
	}
}

// Hash returns the hex content address, or an empty string for Blobs created
// from a URL.
func (b *Blob) Hash() string {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return b.hash
}

// Bytes returns the local content of the Blob. It is nil once the Blob was
// received from the backend.
func (b *Blob) Bytes() []byte {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return b.data
}

// Size returns the length of the local content.
func (b *Blob) Size() int {
	return len(b.Bytes())
}

// DirectURL returns the URL the content can be fetched from. It is empty until
// the Blob has been uploaded.
func (b *Blob) DirectURL() string {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return b.url
}

// NeedsUpload returns true for local Blobs that have not been resolved.
func (b *Blob) NeedsUpload() bool {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return b.url == "" && b.hash != ""
}

// Resolve records the URL the Blob was uploaded to.
func (b *Blob) Resolve(url string) {
	b.mux.Lock()
	b.url = url
	b.mux.Unlock()
}

// ReportProgress forwards the percentage to the upload-progress callback, if
// any. Values are clamped to [0, 100].
func (b *Blob) ReportProgress(percentage int) {
	b.mux.RLock()
	cb := b.onProgress
	b.mux.RUnlock()

	if cb == nil {
		return
	}
	if percentage < 0 {
		percentage = 0
	} else if percentage > 100 {
		percentage = 100
	}
	cb(percentage)
}

// blobDisk is the wire form of a Blob.
type blobDisk struct {
	Hash string `json:"hash,omitempty"`
	URL  string `json:"url"`
}

// MarshalJSON encodes the Blob as its content address and direct URL. Local
// content is never serialized.
func (b *Blob) MarshalJSON() ([]byte, error) {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return json.Marshal(blobDisk{Hash: b.hash, URL: b.url})
}

// UnmarshalJSON decodes a Blob received from the backend.
func (b *Blob) UnmarshalJSON(data []byte) error {
	var disk blobDisk
	if err := json.Unmarshal(data, &disk); err != nil {
		return errors.Wrap(err, "failed to decode blob reference")
	}
	b.mux.Lock()
	b.hash, b.url = disk.Hash, disk.URL
	b.mux.Unlock()
	return nil
}

// uploadLocalBlobs calls upload on each attachment blob that still needs one,
// in order.
func uploadLocalBlobs(attachments []Attachment, upload func(*Blob) error) error {
	for i, a := range attachments {
		if a.Blob == nil || !a.Blob.NeedsUpload() {
			continue
		}
		if err := upload(a.Blob); err != nil {
			return errors.WithMessagef(err, "failed to upload attachment %d", i)
		}
	}
	return nil
}
