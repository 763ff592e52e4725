package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.CommentCreated("anonymous", "approved")
	m.Reaction("created")
	m.Reaction("created")
	m.Reaction("removed")
	m.ReactionCooldown()
	m.Flag("flagged")
	m.Moderated("rejected")
	m.CommentsRemoved(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommentsCreated.WithLabelValues("anonymous", "approved")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Reactions.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reactions.WithLabelValues("removed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReactionLimited))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Flags.WithLabelValues("flagged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Moderation.WithLabelValues("rejected")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CommentsDeleted))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CommentCreated("user", "pending")
		m.Reaction("created")
		m.Flag("flagged")
		m.Moderated("approved")
		m.CommentsRemoved(1)
		m.ReactionCooldown()
	})
}
