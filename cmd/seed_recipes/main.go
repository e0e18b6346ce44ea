package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/cuistot/backend/config"
	"github.com/pageza/cuistot/backend/internal/database"
	"github.com/pageza/cuistot/backend/internal/logger"
	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/types"
)

var classics = []string{
	"Tarte aux pommes",
	"Bœuf bourguignon",
	"Ratatouille",
	"Quiche lorraine",
	"Blanquette de veau",
	"Gratin dauphinois",
	"Soupe à l'oignon",
	"Crème brûlée",
	"Coq au vin",
	"Pot-au-feu",
	"Salade niçoise",
	"Tartiflette",
}

func main() {
	email := flag.String("email", "demo@cuistot.local", "Email of the demo author")
	password := flag.String("password", "cuistot-demo", "Password of the demo author")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	author, err := demoUser(ctx, service.NewAuthService(db, cfg.JWTSecret), *email, *password)
	if err != nil {
		log.Fatal("failed to create demo user", zap.Error(err))
	}

	recipes := service.NewRecipeService(db, log)
	prompts := service.NewPrompter(cfg.LLM.Language, nil)
	resolver := service.NewRecipeResolver(recipes, service.NewLLMService(cfg.LLM, log), prompts, nil, log)
	uc := &types.UserContext{UserID: author.ID}

	var seeded, failed int
	for _, name := range classics {
		start := time.Now()
		recipe, err := resolver.ResolveRecipe(ctx, name, uc)
		if err != nil {
			failed++
			log.Warn("failed to seed recipe", zap.String("name", name), zap.Error(err))
			continue
		}
		seeded++
		log.Info("recipe ready",
			zap.String("name", name),
			zap.String("title", recipe.Title),
			zap.Duration("duration", time.Since(start)),
		)
	}
	log.Info("seeding finished", zap.Int("seeded", seeded), zap.Int("failed", failed))
}

// demoUser registers the seeding author, or logs in when it already exists
func demoUser(ctx context.Context, auth *service.AuthService, email, password string) (*models.User, error) {
	user, err := auth.Register(ctx, &types.RegisterRequest{
		Username:     "cuistot",
		Email:        email,
		Password:     password,
		Confirmation: password,
	})
	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		return auth.Login(ctx, email, password)
	}
	return user, err
}
