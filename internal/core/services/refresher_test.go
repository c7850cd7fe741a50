package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/pkg/schema"
)

func TestCatalogRefresher_RefreshesOnInterval(t *testing.T) {
	provider := &stubProvider{models: []schema.ProviderModel{
		providerModel("acme/alpha", 8000),
	}}
	registry := newTestRegistry(t, provider)
	require.NoError(t, registry.Refresh(context.Background()))

	provider.models = append(provider.models, providerModel("acme/beta", 16000))

	refresher := NewCatalogRefresher(registry, zap.NewNop(), 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	refresher.Start(ctx)

	assert.Eventually(t, func() bool {
		return len(registry.List(context.Background())) == 2
	}, 2*time.Second, 10*time.Millisecond)

	refresher.Stop()
}
