package models

// Status is a node in an entity's directed status graph.
type Status string

// Report lifecycle. RESCUED and REJECTED are terminal.
const (
	ReportPending   Status = "PENDING"
	ReportVerified  Status = "VERIFIED"
	ReportOnProcess Status = "ON_PROCESS"
	ReportRescued   Status = "RESCUED"
	ReportRejected  Status = "REJECTED"
)

// Adoption lifecycle. COMPLETED, REJECTED, and CANCELLED are terminal and
// reachable from any non-terminal state.
const (
	AdoptionPending   Status = "PENDING"
	AdoptionInterview Status = "INTERVIEW"
	AdoptionApproved  Status = "APPROVED"
	AdoptionCompleted Status = "COMPLETED"
	AdoptionRejected  Status = "REJECTED"
	AdoptionCancelled Status = "CANCELLED"
)

// EntityType names the case kinds the status engine operates on.
type EntityType string

const (
	EntityReport   EntityType = "report"
	EntityAdoption EntityType = "adoption"
)

// Graph encodes the legal edges of a status state machine. A status absent
// from the map, or mapped to an empty slice, is terminal (absorbing).
type Graph map[Status][]Status

// ReportTransitions: PENDING -> VERIFIED -> ON_PROCESS -> RESCUED, with
// REJECTED as the dead end off PENDING.
var ReportTransitions = Graph{
	ReportPending:   {ReportVerified, ReportRejected},
	ReportVerified:  {ReportOnProcess},
	ReportOnProcess: {ReportRescued},
}

// AdoptionTransitions: the happy path PENDING -> INTERVIEW -> APPROVED ->
// COMPLETED; REJECTED and CANCELLED short-circuit from any non-terminal state.
var AdoptionTransitions = Graph{
	AdoptionPending:   {AdoptionInterview, AdoptionRejected, AdoptionCancelled},
	AdoptionInterview: {AdoptionApproved, AdoptionRejected, AdoptionCancelled},
	AdoptionApproved:  {AdoptionCompleted, AdoptionRejected, AdoptionCancelled},
}

// GraphFor returns the transition graph for an entity type.
func GraphFor(entity EntityType) (Graph, bool) {
	switch entity {
	case EntityReport:
		return ReportTransitions, true
	case EntityAdoption:
		return AdoptionTransitions, true
	}
	return nil, false
}

// CanTransition reports whether from -> to is a legal edge.
func (g Graph) CanTransition(from, to Status) bool {
	for _, next := range g[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no edge leaves the status.
func (g Graph) IsTerminal(s Status) bool {
	return len(g[s]) == 0
}

// Known reports whether s appears anywhere in the graph, as a source or a
// target.
func (g Graph) Known(s Status) bool {
	if _, ok := g[s]; ok {
		return true
	}
	for _, targets := range g {
		for _, t := range targets {
			if t == s {
				return true
			}
		}
	}
	return false
}

// statusLabels maps statuses to the human-readable labels shown in-app.
// Report and adoption share PENDING/REJECTED keys; the wording works for both.
var statusLabels = map[Status]string{
	ReportPending:     "Menunggu Verifikasi",
	ReportVerified:    "Terverifikasi",
	ReportOnProcess:   "Dalam Penanganan",
	ReportRescued:     "Berhasil Diselamatkan",
	ReportRejected:    "Ditolak",
	AdoptionInterview: "Tahap Wawancara",
	AdoptionApproved:  "Disetujui",
	AdoptionCompleted: "Adopsi Selesai",
	AdoptionCancelled: "Dibatalkan",
}

// Label returns the display label for a status, falling back to the raw
// value for anything unmapped.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}
