////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"encoding/json"

	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/storage/versioned"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/ekv"
	"gitlab.com/xx_network/primitives/netTime"
)

const (
	offlinePrefix         = "offline"
	offlineBackendKey     = "backend"
	offlineBackendVersion = 0
)

// offlineStore keeps the in-memory backend of offline runs in the session,
// so that conversations and messages outlive a single command.
type offlineStore struct {
	kv *versioned.KV
}

func newOfflineStore(kv ekv.KeyValue) *offlineStore {
	return &offlineStore{kv: versioned.NewKV(kv).Prefix(offlinePrefix)}
}

// load returns the stored backend, or an empty one on the first run.
func (s *offlineStore) load() (*remote.Memory, error) {
	backend := remote.NewMemory()
	obj, err := s.kv.Get(offlineBackendKey, offlineBackendVersion)
	if err != nil {
		if !s.kv.Exists(err) {
			jww.INFO.Printf("[OFFLINE] No stored backend, starting empty")
			return backend, nil
		}
		return nil, errors.WithMessage(err, "failed to load offline backend")
	}
	if err = json.Unmarshal(obj.Data, backend); err != nil {
		return nil, err
	}
	return backend, nil
}

// save stores the backend, replacing the previous copy.
func (s *offlineStore) save(backend *remote.Memory) error {
	data, err := json.Marshal(backend)
	if err != nil {
		return errors.Wrap(err, "failed to encode offline backend")
	}
	obj := &versioned.Object{
		Version:   offlineBackendVersion,
		Timestamp: netTime.Now(),
		Data:      data,
	}
	if err = s.kv.Set(offlineBackendKey, obj); err != nil {
		return errors.WithMessage(err, "failed to store offline backend")
	}
	jww.DEBUG.Printf("[OFFLINE] Stored backend (%d bytes)", len(data))
	return nil
}
