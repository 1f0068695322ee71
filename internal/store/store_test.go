package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestAppendAndRecent(t *testing.T) {
	st := testStore(t)
	repo := st.AttemptRepo()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, AttemptData{
		QuestionID:      "counter-01",
		Score:           68,
		StructuralEqual: false,
		DiffCount:       1,
		VisualRatio:     0.6,
	}))
	require.NoError(t, repo.Append(ctx, AttemptData{
		QuestionID:      "counter-01",
		Score:           100,
		StructuralEqual: true,
		DiffCount:       0,
		VisualRatio:     1.0,
	}))

	attempts, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	for _, a := range attempts {
		require.NotEmpty(t, a.ID)
		require.Equal(t, "counter-01", a.QuestionID)
		require.False(t, a.CreatedAt.IsZero())
	}
}

func TestRecentLimit(t *testing.T) {
	st := testStore(t)
	repo := st.AttemptRepo()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, AttemptData{QuestionID: "q", Score: i * 10}))
	}

	attempts, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, attempts, 3)

	// Non-positive limit falls back to the default.
	attempts, err = repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, attempts, 5)
}

func TestBestScore(t *testing.T) {
	st := testStore(t)
	repo := st.AttemptRepo()
	ctx := context.Background()

	best, err := repo.BestScore(ctx, "unseen")
	require.NoError(t, err)
	require.Equal(t, 0, best)

	require.NoError(t, repo.Append(ctx, AttemptData{QuestionID: "q1", Score: 42}))
	require.NoError(t, repo.Append(ctx, AttemptData{QuestionID: "q1", Score: 87}))
	require.NoError(t, repo.Append(ctx, AttemptData{QuestionID: "q2", Score: 95}))

	best, err = repo.BestScore(ctx, "q1")
	require.NoError(t, err)
	require.Equal(t, 87, best)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.AttemptRepo().Append(context.Background(), AttemptData{QuestionID: "q", Score: 1}))
	require.NoError(t, st.Close())

	// Reopening against the same file must not disturb existing rows.
	st, err = Open(path)
	require.NoError(t, err)
	defer st.Close()
	attempts, err := st.AttemptRepo().Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
}
