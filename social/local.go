////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package social

import (
	"context"
	"sort"

	"github.com/caffeinepub/vibechat/emoji"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/userError"
	"github.com/oklog/ulid/v2"
	c "github.com/ostafen/clover/v2"
	d "github.com/ostafen/clover/v2/document"
	q "github.com/ostafen/clover/v2/query"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

const (
	followsCollection = "follows"
	likesCollection   = "likes"

	fieldSeq      = "seq"
	fieldFollower = "follower"
	fieldFollowee = "followee"
	fieldMessage  = "messageId"
	fieldUser     = "user"
	fieldReaction = "reaction"
)

// Errors returned by LocalStub.
var (
	ErrFollowSelf = userError.New(userError.Validation,
		"You cannot follow yourself")
	ErrSignedOut = userError.New(userError.Unauthorized,
		"Please sign in to follow users and react to messages")
)

// LocalStub is a Backend kept in a clover document store on the device.
type LocalStub struct {
	db     *c.DB
	caller remote.Identity
}

// OpenLocalStub opens or creates the store in the directory.
func OpenLocalStub(dir string, caller remote.Identity) (*LocalStub, error) {
	db, err := c.Open(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open social store at %s", dir)
	}

	s, err := NewLocalStub(db, caller)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewLocalStub returns a LocalStub on an open database, creating its
// collections if needed.
func NewLocalStub(db *c.DB, caller remote.Identity) (*LocalStub, error) {
	for _, name := range []string{followsCollection, likesCollection} {
		exists, err := db.HasCollection(name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to look up collection %s", name)
		}
		if exists {
			continue
		}
		if err = db.CreateCollection(name); err != nil {
			return nil, errors.Wrapf(err, "failed to create collection %s", name)
		}
		jww.DEBUG.Printf("[SOCIAL] Created collection %s", name)
	}
	return &LocalStub{db: db, caller: caller}, nil
}

// Close closes the underlying database.
func (s *LocalStub) Close() error {
	return s.db.Close()
}

func (s *LocalStub) authorize() error {
	if s.caller.IsAnonymous() {
		return ErrSignedOut
	}
	return nil
}

func (s *LocalStub) followQuery(target remote.Identity) *q.Query {
	return q.NewQuery(followsCollection).Where(
		q.Field(fieldFollower).Eq(s.caller.String()).
			And(q.Field(fieldFollowee).Eq(target.String())))
}

// Follow records that the caller follows the target.
func (s *LocalStub) Follow(ctx context.Context, target remote.Identity) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if target == s.caller {
		return ErrFollowSelf
	}

	following, err := s.IsFollowing(ctx, target)
	if err != nil || following {
		return err
	}

	doc := d.NewDocument()
	doc.Set(fieldSeq, ulid.Make().String())
	doc.Set(fieldFollower, s.caller.String())
	doc.Set(fieldFollowee, target.String())
	if _, err = s.db.InsertOne(followsCollection, doc); err != nil {
		return errors.Wrapf(err, "failed to follow %s", target)
	}
	jww.INFO.Printf("[SOCIAL] %s follows %s", s.caller, target)
	return nil
}

// Unfollow removes the follow of the target, if any.
func (s *LocalStub) Unfollow(_ context.Context, target remote.Identity) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := s.db.Delete(s.followQuery(target)); err != nil {
		return errors.Wrapf(err, "failed to unfollow %s", target)
	}
	jww.INFO.Printf("[SOCIAL] %s unfollowed %s", s.caller, target)
	return nil
}

// IsFollowing returns true if the caller follows the target.
func (s *LocalStub) IsFollowing(_ context.Context, target remote.Identity) (bool, error) {
	if err := s.authorize(); err != nil {
		return false, err
	}
	exists, err := s.db.Exists(s.followQuery(target))
	if err != nil {
		return false, errors.Wrapf(err, "failed to look up follow of %s", target)
	}
	return exists, nil
}

// Following returns the identities the caller follows, oldest first.
func (s *LocalStub) Following(context.Context) ([]remote.Identity, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}

	docs, err := s.db.FindAll(q.NewQuery(followsCollection).Where(
		q.Field(fieldFollower).Eq(s.caller.String())))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list follows")
	}
	sortBySeq(docs)

	following := make([]remote.Identity, 0, len(docs))
	for _, doc := range docs {
		following = append(following, remote.Identity(stringField(doc, fieldFollowee)))
	}
	return following, nil
}

// Followers is always empty: follows made on other devices are not visible
// here.
func (s *LocalStub) Followers(context.Context) ([]remote.Identity, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	return []remote.Identity{}, nil
}

func (s *LocalStub) likeQuery(messageID string) *q.Query {
	return q.NewQuery(likesCollection).Where(
		q.Field(fieldMessage).Eq(messageID).
			And(q.Field(fieldUser).Eq(s.caller.String())))
}

// Like sets the caller's reaction to the message.
func (s *LocalStub) Like(_ context.Context, messageID, reaction string) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := emoji.ValidateReaction(reaction); err != nil {
		return userError.New(userError.Validation, err.Error())
	}

	if err := s.db.Delete(s.likeQuery(messageID)); err != nil {
		return errors.Wrapf(err, "failed to replace reaction to %s", messageID)
	}

	doc := d.NewDocument()
	doc.Set(fieldSeq, ulid.Make().String())
	doc.Set(fieldMessage, messageID)
	doc.Set(fieldUser, s.caller.String())
	doc.Set(fieldReaction, reaction)
	if _, err := s.db.InsertOne(likesCollection, doc); err != nil {
		return errors.Wrapf(err, "failed to react to %s", messageID)
	}
	jww.INFO.Printf("[SOCIAL] %s reacted %s to %s", s.caller, reaction,
		messageID)
	return nil
}

// Unlike removes the caller's reaction to the message.
func (s *LocalStub) Unlike(_ context.Context, messageID string) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := s.db.Delete(s.likeQuery(messageID)); err != nil {
		return errors.Wrapf(err, "failed to remove reaction to %s", messageID)
	}
	return nil
}

// Likes returns the reactions to the message, oldest first.
func (s *LocalStub) Likes(_ context.Context, messageID string) ([]Like, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}

	docs, err := s.db.FindAll(q.NewQuery(likesCollection).Where(
		q.Field(fieldMessage).Eq(messageID)))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list reactions to %s", messageID)
	}
	sortBySeq(docs)

	likes := make([]Like, 0, len(docs))
	for _, doc := range docs {
		likes = append(likes, Like{
			User:     remote.Identity(stringField(doc, fieldUser)),
			Reaction: stringField(doc, fieldReaction),
		})
	}
	return likes, nil
}

// sortBySeq orders documents by their ULID, which sorts by creation time.
func sortBySeq(docs []*d.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return stringField(docs[i], fieldSeq) < stringField(docs[j], fieldSeq)
	})
}

func stringField(doc *d.Document, field string) string {
	s, _ := doc.Get(field).(string)
	return s
}
