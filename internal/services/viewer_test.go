package services

import (
	"testing"

	"quillpress/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewerState(t *testing.T) {
	f := newFixture(t)
	a := f.post(t, f.alice, nil, "a")
	b := f.post(t, f.alice, nil, "b")
	c := f.post(t, f.alice, nil, "c")

	_, err := f.reactions.React(f.ctx, a.ID, f.bob.ID, true)
	require.NoError(t, err)
	_, err = f.reactions.React(f.ctx, b.ID, f.bob.ID, false)
	require.NoError(t, err)
	_, err = f.flags.Flag(f.ctx, c.ID, f.bob.ID, models.FlagSpam, "")
	require.NoError(t, err)
	_, err = f.reactions.React(f.ctx, c.ID, f.admin.ID, true)
	require.NoError(t, err)

	ids := []uint{a.ID, b.ID, c.ID}
	state, err := f.viewer.State(f.ctx, f.bob.ID, ids)
	require.NoError(t, err)
	assert.Equal(t, "like", state.Reaction(a.ID))
	assert.Equal(t, "dislike", state.Reaction(b.ID))
	assert.Equal(t, "", state.Reaction(c.ID))
	assert.True(t, state.HasFlagged(c.ID))
	assert.False(t, state.HasFlagged(a.ID))

	anon, err := f.viewer.State(f.ctx, 0, ids)
	require.NoError(t, err)
	assert.Equal(t, "", anon.Reaction(a.ID))
	assert.False(t, anon.HasFlagged(c.ID))

	var none *ViewerState
	assert.Equal(t, "", none.Reaction(a.ID))
	assert.False(t, none.HasFlagged(a.ID))
}
