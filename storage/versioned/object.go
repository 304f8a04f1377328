////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package versioned

import (
	"encoding/json"
	"time"

	jww "github.com/spf13/jwalterweatherman"
)

// Object is used by KV to keep track of versioning and time of storage.
type Object struct {
	// Used to pick the storage key; bump it when Data's layout changes
	Version uint64

	// Set when this object is written
	Timestamp time.Time

	// Serialized version of original object
	Data []byte
}

// Unmarshal deserializes an Object from a byte slice. It's used to make these
// storable in an ekv.KeyValue.
func (v *Object) Unmarshal(data []byte) error {
	return json.Unmarshal(data, v)
}

// Marshal serializes an Object into a byte slice. It's used to make these
// storable in an ekv.KeyValue.
func (v *Object) Marshal() []byte {
	d, err := json.Marshal(v)
	// Object only has simple exported fields
	if err != nil {
		jww.FATAL.Panicf("Could not marshal versioned object: %+v", err)
	}
	return d
}
