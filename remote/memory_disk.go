////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package remote

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// memoryDisk is the stored form of a Memory backend.
type memoryDisk struct {
	Conversations []conversationDisk       `json:"conversations"`
	Profiles      map[Identity]UserProfile `json:"profiles"`
	Blobs         map[string][]byte        `json:"blobs"`
}

type conversationDisk struct {
	ID           string     `json:"id"`
	Participants []Identity `json:"participants"`
	Messages     []Message  `json:"messages"`
}

// MarshalJSON encodes every conversation, profile and blob of the backend,
// conversations in creation order.
func (m *Memory) MarshalJSON() ([]byte, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()

	disk := memoryDisk{
		Conversations: make([]conversationDisk, 0, len(m.order)),
		Profiles:      m.profiles,
		Blobs:         m.blobs,
	}
	for _, id := range m.order {
		c := m.conversations[id]
		cd := conversationDisk{ID: id, Messages: c.messages}
		for p := range c.participants {
			cd.Participants = append(cd.Participants, p)
		}
		disk.Conversations = append(disk.Conversations, cd)
	}
	return json.Marshal(disk)
}

// UnmarshalJSON replaces the backend's contents with the encoded ones.
func (m *Memory) UnmarshalJSON(data []byte) error {
	var disk memoryDisk
	if err := json.Unmarshal(data, &disk); err != nil {
		return errors.Wrap(err, "failed to decode memory backend")
	}

	m.mux.Lock()
	defer m.mux.Unlock()
	m.conversations = make(map[string]*memoryConversation, len(disk.Conversations))
	m.order = make([]string, 0, len(disk.Conversations))
	for _, cd := range disk.Conversations {
		c := &memoryConversation{
			participants: make(map[Identity]struct{}, len(cd.Participants)),
			messages:     cd.Messages,
		}
		for _, p := range cd.Participants {
			c.participants[p] = struct{}{}
		}
		m.conversations[cd.ID] = c
		m.order = append(m.order, cd.ID)
	}

	m.profiles = disk.Profiles
	if m.profiles == nil {
		m.profiles = make(map[Identity]UserProfile)
	}
	m.blobs = disk.Blobs
	if m.blobs == nil {
		m.blobs = make(map[string][]byte)
	}
	return nil
}
