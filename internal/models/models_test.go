package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnrollmentTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{EnrollmentStatusActive, EnrollmentStatusCompleted, true},
		{EnrollmentStatusActive, EnrollmentStatusSuspended, true},
		{EnrollmentStatusSuspended, EnrollmentStatusActive, true},
		{EnrollmentStatusSuspended, EnrollmentStatusCompleted, false},
		{EnrollmentStatusCompleted, EnrollmentStatusActive, false},
		{EnrollmentStatusDropped, EnrollmentStatusActive, false},
	}

	for _, tc := range cases {
		e := Enrollment{Status: tc.from}
		require.Equalf(t, tc.allowed, e.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	require.True(t, Enrollment{Status: EnrollmentStatusDropped}.IsTerminal())
	require.False(t, Enrollment{Status: EnrollmentStatusActive}.IsTerminal())

	require.True(t, Enrollment{Status: EnrollmentStatusActive}.AcceptsRecords())
	require.True(t, Enrollment{Status: EnrollmentStatusCompleted}.AcceptsRecords())
	require.False(t, Enrollment{Status: EnrollmentStatusSuspended}.AcceptsRecords())
	require.False(t, Enrollment{Status: EnrollmentStatusDropped}.AcceptsRecords())
}

func TestPaymentTransitions(t *testing.T) {
	require.True(t, Payment{Status: PaymentStatusPending}.CanTransitionTo(PaymentStatusCompleted))
	require.True(t, Payment{Status: PaymentStatusFailed}.CanTransitionTo(PaymentStatusPending))
	require.True(t, Payment{Status: PaymentStatusCompleted}.CanTransitionTo(PaymentStatusRefunded))
	require.False(t, Payment{Status: PaymentStatusRefunded}.CanTransitionTo(PaymentStatusPending))
	require.False(t, Payment{Status: PaymentStatusPending}.CanTransitionTo(PaymentStatusRefunded))
	require.False(t, IsValidPaymentStatus("settled"))
}

func TestScorePercentage(t *testing.T) {
	require.InDelta(t, 85.0, Score{Value: 17, MaxValue: 20}.Percentage(), 0.001)
	require.Zero(t, Score{Value: 10}.Percentage())
}

func TestSessionActive(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Hour)}
	require.True(t, s.Active(now))

	revoked := now
	s.RevokedAt = &revoked
	require.False(t, s.Active(now))

	require.False(t, Session{ExpiresAt: now.Add(-time.Minute)}.Active(now))
}

func TestCourseCapacity(t *testing.T) {
	c := Course{Capacity: 2, Status: CourseStatusPublished}
	require.True(t, c.IsPublished())
	require.True(t, c.HasCapacity(1))
	require.False(t, c.HasCapacity(2))
	require.True(t, Course{}.HasCapacity(500))
}

func TestStudentNumberFor(t *testing.T) {
	joined := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "STU2026000042", StudentNumberFor(joined, 42))
}
