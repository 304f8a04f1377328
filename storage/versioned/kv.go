////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package versioned stores versioned, timestamped objects in an ekv
// key-value store under hierarchical prefixes.
package versioned

import (
	"fmt"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/ekv"
)

// PrefixSeparator separates the elements of a KV prefix.
const PrefixSeparator = "/"

// MakeIdentityPrefix creates a string prefix to scope preferences to a single
// caller identity.
func MakeIdentityPrefix(identity string) string {
	return fmt.Sprintf("Identity:%s", identity)
}

// KV stores versioned data on top of an ekv.KeyValue.
type KV struct {
	data   ekv.KeyValue
	prefix string
}

// NewKV creates a versioned key/value store backed by something implementing
// ekv.KeyValue.
func NewKV(data ekv.KeyValue) *KV {
	return &KV{data: data}
}

// Get returns the object stored at the key and version. Use Exists on the
// returned error to distinguish a missing key from a storage failure.
func (v *KV) Get(key string, version uint64) (*Object, error) {
	key = v.makeKey(key, version)
	jww.TRACE.Printf("get %p with key %v", v.data, key)

	result := &Object{}
	if err := v.data.Get(key, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Set upserts the object under the key. The object's Version is part of the
// storage key.
func (v *KV) Set(key string, object *Object) error {
	if object == nil {
		return errors.Errorf("cannot store nil object at key %q", key)
	}
	key = v.makeKey(key, object.Version)
	jww.TRACE.Printf("set %p with key %v", v.data, key)
	return v.data.Set(key, object)
}

// Delete removes the object stored at the key and version.
func (v *KV) Delete(key string, version uint64) error {
	key = v.makeKey(key, version)
	jww.TRACE.Printf("delete %p with key %v", v.data, key)
	return v.data.Delete(key)
}

// Prefix returns a new KV sharing the same backing store with the prefix
// appended.
func (v *KV) Prefix(prefix string) *KV {
	return &KV{
		data:   v.data,
		prefix: v.prefix + prefix + PrefixSeparator,
	}
}

// IsMemStore reports whether the KV is backed by an in-memory store, whose
// contents are lost when the process exits.
func (v *KV) IsMemStore() bool {
	_, success := v.data.(*ekv.Memstore)
	return success
}

// GetFullKey returns the key with all prefixes and the version appended.
func (v *KV) GetFullKey(key string, version uint64) string {
	return v.makeKey(key, version)
}

func (v *KV) makeKey(key string, version uint64) string {
	return fmt.Sprintf("%s%s_%d", v.prefix, key, version)
}

// Exists returns false if the error indicates the element doesn't exist.
func (v *KV) Exists(err error) bool {
	return ekv.Exists(err)
}
