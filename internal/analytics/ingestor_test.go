package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/store"
	"github.com/tribehive/ai-orchestrator/internal/store/model"
	"github.com/tribehive/ai-orchestrator/internal/store/sqlite"
)

func newTestRepo(t *testing.T) store.Repository {
	t.Helper()
	repo, err := sqlite.NewSQLiteStorage(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func logEntry(status string) *model.ProcessingLog {
	return &model.ProcessingLog{
		ID:         uuid.NewString(),
		RequestID:  uuid.NewString(),
		Feature:    "MATCHING",
		ModelID:    "openai/gpt-4o-mini",
		Status:     status,
		DurationMS: 120,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestIngestor_FlushesOnStop(t *testing.T) {
	repo := newTestRepo(t)
	ing := NewIngestor(zap.NewNop(), repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ing.Start(ctx)

	ing.Record(logEntry("COMPLETED"))
	ing.Record(logEntry("FAILED"))
	ing.Stop()

	entries, err := repo.Logs().Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestIngestor_RecordAfterStopIsDropped(t *testing.T) {
	repo := newTestRepo(t)
	ing := NewIngestor(zap.NewNop(), repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ing.Start(ctx)

	ing.Record(logEntry("COMPLETED"))
	ing.Stop()

	assert.NotPanics(t, func() {
		ing.Record(logEntry("FAILED"))
		ing.Stop()
	})

	entries, err := repo.Logs().Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestService_RecentActivityClampsLimit(t *testing.T) {
	repo := newTestRepo(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Logs().Insert(context.Background(), logEntry("COMPLETED")))
	}

	svc := NewService(repo)

	entries, err := svc.RecentActivity(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = svc.RecentActivity(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
