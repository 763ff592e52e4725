// Package metrics exposes Prometheus counters for comment engagement and moderation.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	CommentsCreated *prometheus.CounterVec
	CommentsDeleted prometheus.Counter
	Reactions       *prometheus.CounterVec
	ReactionLimited prometheus.Counter
	Flags           *prometheus.CounterVec
	Moderation      *prometheus.CounterVec
}

// New builds the counters and registers them on registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		CommentsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quillpress_comments_created_total",
				Help: "Comments created, partitioned by author kind and initial status.",
			},
			[]string{"author", "status"},
		),
		CommentsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quillpress_comments_deleted_total",
			Help: "Comments removed, including replies removed with their parent.",
		}),
		Reactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quillpress_comment_reactions_total",
				Help: "Reaction ledger mutations partitioned by action (created, updated, removed).",
			},
			[]string{"action"},
		),
		ReactionLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quillpress_comment_reaction_cooldown_rejections_total",
			Help: "Reaction flips rejected by the cooldown.",
		}),
		Flags: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quillpress_comment_flags_total",
				Help: "Flag ledger mutations partitioned by action (flagged, unflagged, resolved).",
			},
			[]string{"action"},
		),
		Moderation: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quillpress_comment_moderation_total",
				Help: "Admin status changes partitioned by target status.",
			},
			[]string{"status"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.CommentsCreated, m.CommentsDeleted, m.Reactions, m.ReactionLimited, m.Flags, m.Moderation,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register comment metrics: %w", err)
		}
	}
	return m, nil
}

// The helpers below are nil-safe so services can run without metrics.

func (m *Metrics) CommentCreated(author, status string) {
	if m != nil {
		m.CommentsCreated.WithLabelValues(author, status).Inc()
	}
}

func (m *Metrics) CommentsRemoved(n int) {
	if m != nil {
		m.CommentsDeleted.Add(float64(n))
	}
}

func (m *Metrics) Reaction(action string) {
	if m != nil {
		m.Reactions.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) ReactionCooldown() {
	if m != nil {
		m.ReactionLimited.Inc()
	}
}

func (m *Metrics) Flag(action string) {
	if m != nil {
		m.Flags.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) Moderated(status string) {
	if m != nil {
		m.Moderation.WithLabelValues(status).Inc()
	}
}
