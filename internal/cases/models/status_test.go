package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
)

func TestReportGraph(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{ReportPending, ReportVerified, true},
		{ReportPending, ReportRejected, true},
		{ReportVerified, ReportOnProcess, true},
		{ReportOnProcess, ReportRescued, true},
		{ReportPending, ReportRescued, false},
		{ReportVerified, ReportPending, false},
		{ReportRescued, ReportOnProcess, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, ReportTransitions.CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestAdoptionGraph(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{AdoptionPending, AdoptionInterview, true},
		{AdoptionPending, AdoptionRejected, true},
		{AdoptionPending, AdoptionCancelled, true},
		{AdoptionInterview, AdoptionApproved, true},
		{AdoptionApproved, AdoptionCompleted, true},
		{AdoptionPending, AdoptionCompleted, false},
		{AdoptionCompleted, AdoptionPending, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, AdoptionTransitions.CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []Status{ReportRescued, ReportRejected} {
		assert.Truef(t, ReportTransitions.IsTerminal(s), "%s should be terminal", s)
	}
	for _, s := range []Status{AdoptionCompleted, AdoptionRejected, AdoptionCancelled} {
		assert.Truef(t, AdoptionTransitions.IsTerminal(s), "%s should be terminal", s)
	}
	assert.False(t, ReportTransitions.IsTerminal(ReportPending))
	assert.False(t, AdoptionTransitions.IsTerminal(AdoptionInterview))
}

func TestTerminalTransitionRejected(t *testing.T) {
	report := &Report{Status: ReportRescued}
	err := report.CanTransitionTo(ReportOnProcess)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	adoption := &Adoption{Status: AdoptionCancelled}
	err = adoption.CanTransitionTo(AdoptionInterview)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Menunggu Verifikasi", ReportPending.Label())
	assert.Equal(t, "Terverifikasi", ReportVerified.Label())
	assert.Equal(t, "Berhasil Diselamatkan", ReportRescued.Label())
	assert.Equal(t, "Adopsi Selesai", AdoptionCompleted.Label())
	// Unknown statuses fall back to the raw value.
	assert.Equal(t, "WHATEVER", Status("WHATEVER").Label())
}

func TestGraphFor(t *testing.T) {
	g, ok := GraphFor(EntityReport)
	require.True(t, ok)
	assert.True(t, g.Known(ReportVerified))

	g, ok = GraphFor(EntityAdoption)
	require.True(t, ok)
	assert.True(t, g.Known(AdoptionInterview))

	_, ok = GraphFor(EntityType("campaign"))
	assert.False(t, ok)
}
