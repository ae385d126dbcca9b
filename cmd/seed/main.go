package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pribylovaa/go-news-portal/internal/config"
	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/service"
	npmongo "github.com/pribylovaa/go-news-portal/internal/storage/mongo"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const (
	adminName     = "Admin"
	adminEmail    = "admin@news.com"
	adminPassword = "admin123"
)

func main() {
	var (
		configPath string
		demo       bool
	)
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.BoolVar(&demo, "demo", false, "create demo articles authored by the admin")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := npmongo.New(dbCtx, cfg)
	dbCancel()
	if err != nil {
		log.Error("mongo_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if cerr := store.Close(context.Background()); cerr != nil {
			log.Warn("mongo_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	svc := service.New(store, *cfg)

	admin, err := svc.EnsureAdmin(ctx, service.RegisterInput{
		Name:     adminName,
		Email:    adminEmail,
		Password: adminPassword,
	})
	if err != nil {
		log.Error("admin_seed_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("admin_seeded", slog.String("user_id", admin.ID), slog.String("email", admin.Email))

	if !demo {
		return
	}

	created := 0
	for _, in := range demoArticles() {
		a, err := svc.CreateArticle(ctx, admin.ID, in)
		if err != nil {
			log.Warn("demo_article_failed", slog.String("title", in.Title), slog.String("err", err.Error()))
			continue
		}

		created++
		log.Debug("demo_article_created", slog.String("slug", a.Slug), slog.String("status", string(a.Status)))
	}

	log.Info("demo_seeded", slog.Int("articles", created))
}

func demoArticles() []service.ArticleInput {
	return []service.ArticleInput{
		{
			Title:      "Tech Giants Announce Revolutionary AI Features for 2026",
			Content:    "<p>Major technology companies unveiled their latest artificial intelligence innovations at the annual tech summit this week.</p>",
			Summary:    "Major tech companies reveal groundbreaking AI innovations that promise to transform digital interactions.",
			Category:   "technology",
			Tags:       "AI,technology,innovation,machine learning",
			Status:     models.StatusPublished,
			IsFeatured: true,
		},
		{
			Title:      "Global Markets Rally After Economic Policy Announcement",
			Content:    "<p>Stock markets around the world surged today following a coordinated economic policy announcement from major central banks.</p>",
			Summary:    "Stock markets worldwide see significant gains following coordinated central bank policy announcements.",
			Category:   "business",
			Tags:       "markets,economy,stocks,finance",
			Status:     models.StatusPublished,
			IsFeatured: true,
		},
		{
			Title:    "Scientists Discover New Method for Clean Energy Production",
			Content:  "<p>A team of researchers has announced a breakthrough in clean energy production that could reshape the renewable energy sector.</p>",
			Summary:  "Researchers achieve a breakthrough in solar energy conversion efficiency.",
			Category: "science",
			Tags:     "energy,science,climate",
			Status:   models.StatusPublished,
		},
		{
			Title:    "Championship Finals Draw Record Viewership",
			Content:  "<p>The championship finals attracted the largest audience in the history of the league.</p>",
			Summary:  "Record-breaking audience tunes in for the championship finals.",
			Category: "sports",
			Tags:     "sports,championship",
			Status:   models.StatusPublished,
		},
		{
			Title:    "Draft: Upcoming Product Launch Preview",
			Content:  "<p>This article previews the upcoming product launch scheduled for next month.</p>",
			Summary:  "Preview of upcoming product launch.",
			Category: "technology",
			Tags:     "product,launch,preview",
			Status:   models.StatusDraft,
		},
	}
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
