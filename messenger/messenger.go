////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package messenger assembles the client: one query cache shared by the
// conversation list, timelines, composers, profiles, contacts and the social
// features of a single caller.
package messenger

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/caffeinepub/vibechat/composer"
	"github.com/caffeinepub/vibechat/contacts"
	"github.com/caffeinepub/vibechat/conversation"
	"github.com/caffeinepub/vibechat/event"
	"github.com/caffeinepub/vibechat/profile"
	"github.com/caffeinepub/vibechat/query"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/settings"
	"github.com/caffeinepub/vibechat/share"
	"github.com/caffeinepub/vibechat/social"
	"github.com/caffeinepub/vibechat/stoppable"
	"github.com/caffeinepub/vibechat/timeline"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/ekv"
)

// Config holds what a Messenger is built from.
type Config struct {
	// API is the backend, authenticated as Caller.
	API    remote.API
	Caller remote.Identity

	// Storage keeps the device settings. Nil keeps them in memory.
	Storage ekv.KeyValue

	// SocialDir is where follows and reactions are stored. Empty disables
	// the social features.
	SocialDir string

	// Opener opens share links. Nil disables sharing.
	Opener share.Opener

	Params Params
}

// Draft is a message to send with Send.
type Draft struct {
	Text            string
	Files           []composer.File
	ShareToWhatsApp bool
}

// Messenger is the client of one caller.
type Messenger struct {
	caller  remote.Identity
	api     remote.API
	opener  share.Opener
	params  Params
	cache   *query.Cache
	backend query.Backend
	ready   uint32

	list     *conversation.List
	creator  *conversation.Creator
	profiles *profile.Manager
	contacts *contacts.Sync
	settings *settings.Store
	social   *social.Client
	stub     *social.LocalStub
	events   *event.Manager

	stoppers *stoppable.Multi
}

// New builds a Messenger and starts its event service. Backend queries stay
// disabled until SetReady is called.
func New(cfg Config) (*Messenger, error) {
	if cfg.API == nil {
		return nil, errors.New("messenger needs a backend API")
	}

	m := &Messenger{
		caller:   cfg.Caller,
		api:      cfg.API,
		opener:   cfg.Opener,
		params:   cfg.Params,
		cache:    query.NewCache(cfg.Params.Query),
		events:   event.NewManager(),
		stoppers: stoppable.NewMulti("Messenger"),
	}
	m.backend = query.Backend{Cache: m.cache, API: cfg.API, Ready: m.Ready}

	storage := cfg.Storage
	if storage == nil {
		storage = ekv.MakeMemstore()
	}

	m.list = conversation.NewList(m.backend, m.caller)
	m.creator = conversation.NewCreator(cfg.API, m.cache)
	m.profiles = profile.NewManager(m.backend, m.caller)
	m.contacts = contacts.NewSync(cfg.API)
	m.settings = settings.NewStore(storage, m.caller)

	if cfg.SocialDir != "" {
		stub, err := social.OpenLocalStub(cfg.SocialDir, m.caller)
		if err != nil {
			return nil, err
		}
		m.stub = stub
		m.social = social.NewClient(stub, m.cache)
	}

	m.stoppers.Add(m.events.Service())
	jww.INFO.Printf("[MESSENGER] Started for %s", m.caller)
	return m, nil
}

// Caller returns the identity the Messenger acts as.
func (m *Messenger) Caller() remote.Identity { return m.caller }

// Cache returns the shared query cache.
func (m *Messenger) Cache() *query.Cache { return m.cache }

// Backend returns the query builder for backend calls.
func (m *Messenger) Backend() query.Backend { return m.backend }

// Conversations returns the conversation list.
func (m *Messenger) Conversations() *conversation.List { return m.list }

// Profiles returns the profile manager.
func (m *Messenger) Profiles() *profile.Manager { return m.profiles }

// Settings returns the device settings.
func (m *Messenger) Settings() *settings.Store { return m.settings }

// Events returns the event manager.
func (m *Messenger) Events() *event.Manager { return m.events }

// Social returns the social client, or nil when it is disabled.
func (m *Messenger) Social() *social.Client { return m.social }

// Ready reports whether the backend session is established.
func (m *Messenger) Ready() bool {
	return atomic.LoadUint32(&m.ready) == 1
}

// SetReady marks the backend session as established and refetches every
// mounted backend query.
func (m *Messenger) SetReady() {
	if !atomic.CompareAndSwapUint32(&m.ready, 0, 1) {
		return
	}
	m.cache.Revalidate(query.RemoteReady)
	m.events.Report(event.Info, event.Session, "Ready", m.caller.String())
}

// Timeline returns an unmounted timeline of the conversation.
func (m *Messenger) Timeline(conversationID string,
	render timeline.RenderFunc) *timeline.Timeline {
	return timeline.New(m.backend, m.caller, conversationID,
		m.params.Timeline, render)
}

// Composer returns an empty composer for the conversation.
func (m *Messenger) Composer(conversationID string) *composer.Composer {
	return composer.New(m.api, m.cache, m.caller, conversationID, m.opener)
}

// CreateConversation starts a conversation with the participant.
func (m *Messenger) CreateConversation(ctx context.Context,
	participant string) (string, error) {
	id, err := m.creator.Create(ctx, participant)
	if err != nil {
		m.events.Report(event.Warn, event.Conversation, "CreateFailed",
			err.Error())
		return "", err
	}
	m.events.Report(event.Info, event.Conversation, "Created", id)
	return id, nil
}

// Send composes and sends one message to the conversation.
func (m *Messenger) Send(ctx context.Context, conversationID string, d Draft,
	progress composer.ProgressCallback) (composer.Result, error) {
	c := m.Composer(conversationID)
	c.SetText(d.Text)
	c.SetShareToWhatsApp(d.ShareToWhatsApp)
	c.OnProgress(progress)
	if err := c.AddFiles(d.Files...); err != nil {
		return composer.Result{}, err
	}

	result, err := c.Submit(ctx)
	if err != nil {
		m.events.Report(event.Warn, event.Message, "SendFailed", err.Error())
		return result, err
	}
	if result.Sent {
		m.events.Report(event.Info, event.Message, "Sent",
			fmt.Sprintf("%s (%d attachments)", conversationID, len(d.Files)))
	}
	return result, nil
}

// SaveProfile saves the caller's profile.
func (m *Messenger) SaveProfile(ctx context.Context, d profile.Draft) error {
	if err := m.profiles.Save(ctx, d); err != nil {
		m.events.Report(event.Warn, event.Profile, "SaveFailed", err.Error())
		return err
	}
	m.events.Report(event.Info, event.Profile, "Saved", m.caller.String())
	return nil
}

// MatchContacts finds the registered users among the phone numbers.
func (m *Messenger) MatchContacts(ctx context.Context,
	numbers []string) (contacts.Result, error) {
	result, err := m.contacts.Match(ctx, numbers)
	if err != nil {
		m.events.Report(event.Warn, event.Contacts, "MatchFailed", err.Error())
		return result, err
	}
	m.events.Report(event.Info, event.Contacts, "Matched",
		fmt.Sprintf("%d found, %d not found", len(result.Matched),
			result.NotFound))
	return result, nil
}

// Close stops the event service and closes the social store.
func (m *Messenger) Close() error {
	err := m.stoppers.Close()
	if m.stub != nil {
		if closeErr := m.stub.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "failed to close social store")
		}
	}
	jww.INFO.Printf("[MESSENGER] Closed for %s", m.caller)
	return err
}
