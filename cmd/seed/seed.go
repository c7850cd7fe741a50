package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/adapters/cache/memory"
	"github.com/tribehive/ai-orchestrator/internal/cli"
	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/services/prompt"
	"github.com/tribehive/ai-orchestrator/internal/store/sqlite"
)

// Seeds the canonical default prompt templates for every feature, so a fresh
// database serves requests without waiting for lazy creation.
func main() {
	dsn := flag.String("db", "orchestrator.db", "sqlite database path")
	flag.Parse()

	repo, err := sqlite.NewSQLiteStorage(*dsn, zap.NewNop())
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	renderer := prompt.NewRenderer(repo, memory.New(), zap.NewNop(), 10*time.Minute)
	ctx := context.Background()

	summary := map[string]any{}
	for _, feature := range domain.Features() {
		if err := renderer.EnsureDefaults(ctx, feature); err != nil {
			log.Fatalf("seeding %s failed: %v", feature, err)
		}

		templates, err := repo.Templates().List(ctx, string(feature), "", true)
		if err != nil {
			log.Fatal(err)
		}
		ids := make([]string, 0, len(templates))
		for _, tmpl := range templates {
			ids = append(ids, fmt.Sprintf("%s:%s", tmpl.Category, tmpl.ID))
		}
		summary[string(feature)] = ids
		fmt.Printf("%s seeded %s (%d templates)\n", cli.CheckMark(), feature, len(templates))
	}

	fmt.Println()
	cli.PrettyPrint(summary)
}
