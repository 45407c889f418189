package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		updatesTotal,
		usersRegisteredTotal,
		submissionsTotal,
		deliveriesTotal,
	)
}

const (
	OutcomeHandled = "handled"
	OutcomeDropped = "dropped"
	OutcomePanic   = "panic"

	DeliveryAdminNotice = "admin_notice"
	DeliveryBroadcast   = "broadcast"
)

var (
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtor_updates_total",
			Help: "Incoming Telegram updates per bot and outcome.",
		},
		[]string{"bot", "outcome"},
	)

	usersRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "realtor_users_registered_total",
			Help: "Total number of new users registered.",
		},
	)

	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtor_submissions_total",
			Help: "Completed requests per table and whether the row was stored.",
		},
		[]string{"table", "stored"},
	)

	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtor_deliveries_total",
			Help: "Outgoing fan-out messages per kind and result.",
		},
		[]string{"kind", "delivered"},
	)
)

func IncUpdate(bot, outcome string) {
	updatesTotal.WithLabelValues(norm(bot), norm(outcome)).Inc()
}

func IncUsersRegistered() {
	usersRegisteredTotal.Inc()
}

func IncSubmission(table string, stored bool) {
	submissionsTotal.WithLabelValues(table, strconv.FormatBool(stored)).Inc()
}

func AddDeliveries(kind string, delivered, total int) {
	deliveriesTotal.WithLabelValues(norm(kind), "true").Add(float64(delivered))
	deliveriesTotal.WithLabelValues(norm(kind), "false").Add(float64(total - delivered))
}
