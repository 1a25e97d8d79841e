package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geo-tutor/api/internal/tutor"
)

func TestMemory_SessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	s, err := m.InsertSession(ctx, "Find angle x.", 40)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.CreatedAt.IsZero())

	got, err := m.GetSessionByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	got, err = m.GetSessionByID(ctx, "urn:uuid:"+s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = m.GetSessionByID(ctx, "missing")
	assert.ErrorIs(t, err, tutor.ErrSessionNotFound)
	assert.Equal(t, 1, m.SessionCount())
}

func TestMemory_Submissions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	s, err := m.InsertSession(ctx, "Find angle x.", 40)
	require.NoError(t, err)

	_, err = m.InsertSubmission(ctx, tutor.Submission{SessionID: "missing", UserAnswer: "1"})
	assert.Error(t, err)

	for _, ans := range []string{"30", "40"} {
		_, err := m.InsertSubmission(ctx, tutor.Submission{SessionID: s.ID, UserAnswer: ans, IsCorrect: ans == "40"})
		require.NoError(t, err)
	}

	subs, err := m.ListSubmissions(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "30", subs[0].UserAnswer)
	assert.True(t, subs[1].IsCorrect)
	assert.NotEqual(t, subs[0].ID, subs[1].ID)
}
