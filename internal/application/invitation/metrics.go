package invitation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var invitationEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ma_invitation_events_total",
	Help: "Transiciones del ciclo de vida de invitaciones (created, accepted, cancelled, rejected).",
}, []string{"event"})
