package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the directory replica.
type Metrics struct {
	ProfilesCreated      prometheus.Counter
	PrivateDataStored    prometheus.Counter
	RolesAssigned        prometheus.Counter
	AssignmentsRejected  prometheus.Counter
	RecordsReplicatedIn  prometheus.Counter
	RecordsReplicatedOut prometheus.Counter
	RequestLatency       *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProfilesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_profiles_created_total",
			Help: "Total number of public profile records accepted locally",
		}),
		PrivateDataStored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_private_data_stored_total",
			Help: "Total number of private profile records accepted locally",
		}),
		RolesAssigned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_roles_assigned_total",
			Help: "Total number of role assignment records accepted locally",
		}),
		AssignmentsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_assignments_rejected_total",
			Help: "Total number of role assignments denied by admission control",
		}),
		RecordsReplicatedIn: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_records_replicated_in_total",
			Help: "Total number of foreign records accepted from peers",
		}),
		RecordsReplicatedOut: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_records_replicated_out_total",
			Help: "Total number of local records published to peers",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "directory_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func (m *Metrics) IncrementProfilesCreated() {
	if m != nil {
		m.ProfilesCreated.Inc()
	}
}

func (m *Metrics) IncrementPrivateDataStored() {
	if m != nil {
		m.PrivateDataStored.Inc()
	}
}

func (m *Metrics) IncrementRolesAssigned() {
	if m != nil {
		m.RolesAssigned.Inc()
	}
}

func (m *Metrics) IncrementAssignmentsRejected() {
	if m != nil {
		m.AssignmentsRejected.Inc()
	}
}

func (m *Metrics) IncrementRecordsReplicatedIn() {
	if m != nil {
		m.RecordsReplicatedIn.Inc()
	}
}

func (m *Metrics) IncrementRecordsReplicatedOut() {
	if m != nil {
		m.RecordsReplicatedOut.Inc()
	}
}
