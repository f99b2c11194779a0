package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name: "valid request",
			req:  testRequest("user-1", KindNewMatch, PriorityNormal),
		},
		{
			name:    "missing target user",
			req:     Request{Kind: KindNewMatch, Priority: PriorityNormal},
			wantErr: ErrMissingTargetUser,
		},
		{
			name:    "unknown kind",
			req:     Request{TargetUserID: "user-1", Kind: "party_invite", Priority: PriorityNormal},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "priority out of range",
			req:     Request{TargetUserID: "user-1", Kind: KindTest, Priority: Priority(42)},
			wantErr: ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.req.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestKindMaxRetries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want int
	}{
		{KindSessionReminder, 5},
		{KindConnectionRequest, 3},
		{KindNewMatch, 3},
		{KindPatternLearned, 2},
		{KindSessionInvite, 1},
		{KindWorkshopAnnouncement, 1},
		{KindUrgentAnnouncement, 1},
		{KindTest, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.kind.MaxRetries())
		})
	}
}

func TestKindInitialRetryDelay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5*time.Second, KindSessionInvite.InitialRetryDelay())
	assert.Equal(t, 5*time.Second, KindUrgentAnnouncement.InitialRetryDelay())
	assert.Equal(t, time.Minute, KindSessionReminder.InitialRetryDelay())
	assert.Equal(t, time.Minute, KindNewMatch.InitialRetryDelay())
}

func TestRequestIsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()

	req := testRequest("user-1", KindSessionReminder, PriorityNormal)
	assert.False(t, req.IsExpired(now), "no expiry set")

	past := now.Add(-time.Minute)
	req.ExpiresAt = &past
	assert.True(t, req.IsExpired(now))

	future := now.Add(time.Minute)
	req.ExpiresAt = &future
	assert.False(t, req.IsExpired(now))
}

func TestRequestNormalized(t *testing.T) {
	t.Parallel()

	req := testRequest("user-1", KindTest, PriorityNormal)
	got := req.normalized()

	require.NotEmpty(t, got.ID)
	require.False(t, got.CreatedAt.IsZero())

	// Existing values survive normalization.
	again := got.normalized()
	assert.Equal(t, got.ID, again.ID)
	assert.Equal(t, got.CreatedAt, again.CreatedAt)
}

func TestPriorityString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "low", PriorityLow.String())
	assert.Equal(t, "normal", PriorityNormal.String())
	assert.Equal(t, "high", PriorityHigh.String())
	assert.Equal(t, "critical", PriorityCritical.String())
	assert.Equal(t, "unknown", Priority(99).String())
}
