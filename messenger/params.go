////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package messenger

import (
	"encoding/json"
	"time"

	"github.com/caffeinepub/vibechat/query"
	"github.com/caffeinepub/vibechat/timeline"
)

// Params contains the tunable parameters of a Messenger.
type Params struct {
	// Query configures the shared cache.
	Query query.Params

	// Timeline configures every timeline the Messenger opens.
	Timeline timeline.Params
}

// paramsDisk is the JSON form of Params. Durations are in milliseconds.
type paramsDisk struct {
	StaleTimeMS    int64 `json:"staleTimeMs"`
	PollIntervalMS int64 `json:"pollIntervalMs"`
}

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{
		Query:    query.DefaultParams(),
		Timeline: timeline.DefaultParams(),
	}
}

// GetParameters returns the default Params, or override with the given JSON
// parameters. Fields missing from the JSON keep their defaults.
func GetParameters(params string) (Params, error) {
	p := DefaultParams()
	if len(params) > 0 {
		if err := json.Unmarshal([]byte(params), &p); err != nil {
			return Params{}, err
		}
	}
	return p, nil
}

// MarshalJSON adheres to the json.Marshaler interface.
func (p Params) MarshalJSON() ([]byte, error) {
	return json.Marshal(paramsDisk{
		StaleTimeMS:    p.Query.StaleTime.Milliseconds(),
		PollIntervalMS: p.Timeline.PollInterval.Milliseconds(),
	})
}

// UnmarshalJSON adheres to the json.Unmarshaler interface.
func (p *Params) UnmarshalJSON(data []byte) error {
	disk := paramsDisk{
		StaleTimeMS:    p.Query.StaleTime.Milliseconds(),
		PollIntervalMS: p.Timeline.PollInterval.Milliseconds(),
	}
	if err := json.Unmarshal(data, &disk); err != nil {
		return err
	}

	p.Query.StaleTime = time.Duration(disk.StaleTimeMS) * time.Millisecond
	p.Timeline.PollInterval =
		time.Duration(disk.PollIntervalMS) * time.Millisecond
	return nil
}
