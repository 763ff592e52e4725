package services

import (
	"math/rand"
	"testing"
	"time"

	"quillpress/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactLikeLikeDislike(t *testing.T) {
	f := newFixture(t)
	c := f.post(t, f.alice, nil, "react to me")

	res, err := f.reactions.React(f.ctx, c.ID, f.bob.ID, true)
	require.NoError(t, err)
	assert.Equal(t, ReactionCreated, res.Action)
	assert.Equal(t, 1, res.Comment.LikesCount)
	assert.Equal(t, 0, res.Comment.DislikesCount)

	res, err = f.reactions.React(f.ctx, c.ID, f.bob.ID, true)
	require.NoError(t, err)
	assert.Equal(t, ReactionRemoved, res.Action)
	assert.Equal(t, 0, res.Comment.LikesCount)

	res, err = f.reactions.React(f.ctx, c.ID, f.bob.ID, false)
	require.NoError(t, err)
	assert.Equal(t, ReactionCreated, res.Action)
	assert.Equal(t, 0, res.Comment.LikesCount)
	assert.Equal(t, 1, res.Comment.DislikesCount)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Reactions.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Reactions.WithLabelValues("removed")))
}

func TestReactFlipRespectsCooldown(t *testing.T) {
	f := newFixture(t)
	c := f.post(t, f.alice, nil, "flip")

	_, err := f.reactions.React(f.ctx, c.ID, f.bob.ID, true)
	require.NoError(t, err)

	f.clock.Advance(30 * time.Second)
	_, err = f.reactions.React(f.ctx, c.ID, f.bob.ID, false)
	require.Error(t, err)
	assert.Equal(t, KindRateLimited, KindOf(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReactionLimited))

	got := f.reload(t, c.ID)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 0, got.DislikesCount)

	f.clock.Advance(31 * time.Second)
	res, err := f.reactions.React(f.ctx, c.ID, f.bob.ID, false)
	require.NoError(t, err)
	assert.Equal(t, ReactionUpdated, res.Action)
	assert.Equal(t, 0, res.Comment.LikesCount)
	assert.Equal(t, 1, res.Comment.DislikesCount)

	// The flip restarted the cooldown.
	f.clock.Advance(10 * time.Second)
	_, err = f.reactions.React(f.ctx, c.ID, f.bob.ID, true)
	assert.Equal(t, KindRateLimited, KindOf(err))

	// Removal is never throttled.
	res, err = f.reactions.React(f.ctx, c.ID, f.bob.ID, false)
	require.NoError(t, err)
	assert.Equal(t, ReactionRemoved, res.Action)
}

func TestReactOwnComment(t *testing.T) {
	f := newFixture(t)
	c := f.post(t, f.alice, nil, "self")

	res, err := f.reactions.React(f.ctx, c.ID, f.alice.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Comment.LikesCount)
}

func TestReactMissingComment(t *testing.T) {
	f := newFixture(t)

	_, err := f.reactions.React(f.ctx, 9999, f.alice.ID, true)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestReactionCooldownDefault(t *testing.T) {
	f := newFixture(t)
	s := NewReactionService(f.db, Options{Now: f.clock.Now})
	assert.Equal(t, DefaultReactionCooldown, s.cooldown)

	s = NewReactionService(f.db, Options{ReactionCooldown: -1, Now: f.clock.Now})
	c := f.post(t, f.alice, nil, "no cooldown")
	_, err := s.React(f.ctx, c.ID, f.bob.ID, true)
	require.NoError(t, err)
	res, err := s.React(f.ctx, c.ID, f.bob.ID, false)
	require.NoError(t, err)
	assert.Equal(t, ReactionUpdated, res.Action)
}

// Counters must equal the ledger after any interleaving of reactions and flags.
func TestCountersFollowLedgers(t *testing.T) {
	f := newFixture(t)
	users := []*models.User{f.alice, f.bob, f.admin, f.user(t, "carol", models.RoleUser)}
	comments := []*models.Comment{
		f.post(t, f.alice, nil, "one"),
		f.post(t, f.bob, nil, "two"),
	}
	comments = append(comments, f.post(t, nil, comments[0], "three"))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		f.clock.Advance(time.Duration(rng.Intn(90)) * time.Second)
		u := users[rng.Intn(len(users))]
		c := comments[rng.Intn(len(comments))]

		var err error
		switch rng.Intn(4) {
		case 0:
			_, err = f.reactions.React(f.ctx, c.ID, u.ID, true)
		case 1:
			_, err = f.reactions.React(f.ctx, c.ID, u.ID, false)
		case 2:
			_, err = f.flags.Flag(f.ctx, c.ID, u.ID, models.FlagReasons[rng.Intn(len(models.FlagReasons))], "")
		case 3:
			err = f.flags.Unflag(f.ctx, c.ID, u.ID)
		}
		if err != nil {
			kind := KindOf(err)
			require.Contains(t, []Kind{KindRateLimited, KindDuplicate, KindNotFound}, kind, err.Error())
		}
		f.requireCountersMatchLedgers(t)
	}
}
