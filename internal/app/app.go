package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jmoellers/insightdeck/internal/config"
	"github.com/jmoellers/insightdeck/internal/core"
	db "github.com/jmoellers/insightdeck/internal/core/database"
	"github.com/jmoellers/insightdeck/internal/core/llm"
	"github.com/jmoellers/insightdeck/internal/core/workflow"
	"github.com/jmoellers/insightdeck/internal/guide"
	"github.com/jmoellers/insightdeck/internal/history"
	"github.com/jmoellers/insightdeck/internal/services"
)

// App owns every long-lived component: the database client, the local
// history cache and the HTTP server.
type App struct {
	DBClient core.DbClient
	History  *history.Cache
	Server   *Server

	localStore *history.LocalStore
}

func NewApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Database initialized and ready.")

	localStore, err := history.OpenLocal(cfg.HistoryCacheDir)
	if err != nil {
		return nil, err
	}
	cache, err := history.NewCache(localStore, dbClient, cfg.HistorySyncEvery)
	if err != nil {
		return nil, err
	}
	log.Info("History cache initialized and ready.")

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, err
	}

	runner := workflow.New(cfg.SuperglueEndpoint, cfg.SuperglueAPIKey)

	authService := services.NewAuthService(dbClient, cfg.JWTSecret, cfg.MagicLinkTTL)
	queryService := services.NewQueryService()
	mcpService := services.NewMCPService(runner)
	solutionGenerator := guide.NewGenerator(llmProvider)

	server := NewServer(cfg, serverDeps{
		db:        dbClient,
		cache:     cache,
		auth:      authService,
		queries:   queryService,
		mcp:       mcpService,
		solutions: solutionGenerator,
		log:       log,
	})

	return &App{
		DBClient:   dbClient,
		History:    cache,
		Server:     server,
		localStore: localStore,
	}, nil
}

func (a *App) Close() {
	if a.History != nil {
		a.History.Flush()
	}
	if a.localStore != nil {
		_ = a.localStore.Close()
	}
	if closer, ok := a.DBClient.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
