package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTeacherStateOf(t *testing.T) {
	cases := []struct {
		name          string
		status        Status
		isVerified    bool
		hasActiveCode bool
		want          TeacherState
	}{
		{"pending with no code", StatusPending, false, false, TeacherPendingApproval},
		{"pending with active code", StatusPending, false, true, TeacherAwaitingRedemption},
		{"verified", StatusActive, true, false, TeacherVerified},
		{"verified with stale code", StatusActive, true, true, TeacherVerified},
		{"rejected", StatusInactive, false, false, TeacherRejected},
		{"rejected trumps active code", StatusInactive, false, true, TeacherRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &User{Status: tc.status, IsVerified: tc.isVerified}
			assert.Equal(t, tc.want, TeacherStateOf(u, tc.hasActiveCode))
		})
	}
}

func TestAccessCodeState(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("Should be active before expiry", func(t *testing.T) {
		a := &AccessCode{ExpiresAt: now.Add(time.Hour)}
		assert.Equal(t, AccessCodeActive, a.State(now))
	})

	t.Run("Should be expired at and after the deadline", func(t *testing.T) {
		a := &AccessCode{ExpiresAt: now}
		assert.Equal(t, AccessCodeExpired, a.State(now))
		assert.Equal(t, AccessCodeExpired, a.State(now.Add(time.Minute)))
	})

	t.Run("Should report redeemed even when also expired", func(t *testing.T) {
		used := now.Add(-time.Hour)
		a := &AccessCode{IsUsed: true, UsedAt: &used, ExpiresAt: now.Add(-time.Minute)}
		assert.Equal(t, AccessCodeRedeemed, a.State(now))
	})
}
