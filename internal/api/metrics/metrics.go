// Package metrics defines the business Prometheus metrics of the voting API.
// HTTP request metrics come from the echoprometheus middleware; the counters
// here track what those requests did.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voting"

// ── Users ─────────────────────────────────────────────────────────────────────

// RegistrationsTotal counts successful registrations.
// Label:
//   - usertype: "admin" or "client"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered users, by usertype.",
	},
	[]string{"usertype"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Votes ─────────────────────────────────────────────────────────────────────

var VotesCastTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "Total number of votes recorded.",
	},
)

// VotesRejectedTotal counts refused vote attempts.
// Label:
//   - reason: "already_voted", "admin", "not_found" or "error"
var VotesRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_rejected_total",
		Help:      "Total number of rejected vote attempts, by reason.",
	},
	[]string{"reason"},
)

// ── Candidates ────────────────────────────────────────────────────────────────

// CandidateChangesTotal counts admin changes to candidates.
// Label:
//   - action: "create", "update" or "delete"
var CandidateChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidate_changes_total",
		Help:      "Total number of candidate changes, by action.",
	},
	[]string{"action"},
)

// ImageUploadsTotal counts candidate image upload outcomes.
// Label:
//   - result: "accepted", "invalid_type", "too_large", "too_many", "rate_limited"
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of candidate image uploads, by result.",
	},
	[]string{"result"},
)
