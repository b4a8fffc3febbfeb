package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEventStatusTransitions(t *testing.T) {
	require.True(t, EventStatusDraft.CanTransitionTo(EventStatusPlanning))
	require.True(t, EventStatusPlanning.CanTransitionTo(EventStatusActive))
	require.True(t, EventStatusActive.CanTransitionTo(EventStatusCompleted))
	require.True(t, EventStatusDraft.CanTransitionTo(EventStatusCanceled))
	require.True(t, EventStatusActive.CanTransitionTo(EventStatusCanceled))

	require.False(t, EventStatusDraft.CanTransitionTo(EventStatusActive))
	require.False(t, EventStatusActive.CanTransitionTo(EventStatusPlanning))
	require.False(t, EventStatusCompleted.CanTransitionTo(EventStatusCanceled))
	require.False(t, EventStatusCanceled.CanTransitionTo(EventStatusDraft))
}

func TestOfferStatusTransitions(t *testing.T) {
	require.True(t, OfferDraft.CanTransitionTo(OfferSent))
	require.False(t, OfferDraft.CanTransitionTo(OfferAccepted))
	require.True(t, OfferSent.CanTransitionTo(OfferAcceptedByClient))
	require.True(t, OfferRevised.CanTransitionTo(OfferRevised))
	require.False(t, OfferAccepted.CanTransitionTo(OfferDeclined))
	require.False(t, OfferLocked.CanTransitionTo(OfferAccepted))
	require.False(t, OfferSent.CanTransitionTo(OfferLocked))

	require.True(t, OfferAcceptedByClient.IsAccepted())
	require.False(t, OfferRejectedByClient.IsAccepted())
	require.True(t, OfferRejectedByClient.IsDecision())
	require.False(t, OfferWithdrawn.IsDecision())
}

func TestResolvedNeedID(t *testing.T) {
	direct, viaInvitation := uuid.New(), uuid.New()

	o := EventOffer{NeedID: &direct, InvitationNeedID: &viaInvitation}
	require.Equal(t, direct, *o.ResolvedNeedID())

	o.NeedID = nil
	require.Equal(t, viaInvitation, *o.ResolvedNeedID())

	o.InvitationNeedID = nil
	require.Nil(t, o.ResolvedNeedID())
}

func TestAssignmentRank(t *testing.T) {
	require.Less(t, AssignmentShortlisted.Rank(), AssignmentSelected.Rank())
	require.Less(t, AssignmentSelected.Rank(), AssignmentConfirmedPreContract.Rank())
	require.Zero(t, AssignmentStatus("SIGNED").Rank())
}

func TestInvitationExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	require.False(t, (&EventInvitation{}).Expired(now))
	require.True(t, (&EventInvitation{ReplyDeadline: &past}).Expired(now))
}
