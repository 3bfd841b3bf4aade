package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meridian/internal/auth"
	"meridian/internal/autopublish"
	"meridian/internal/catalog"
	"meridian/internal/config"
	"meridian/internal/db"
	"meridian/internal/event"
	"meridian/internal/health"
	httpx "meridian/internal/http"
	"meridian/internal/ideas"
	"meridian/internal/job"
	"meridian/internal/render"
	"meridian/internal/rotation"
)

const (
	storageWarnBytes = 5 << 30
	storageCritBytes = 2 << 30
	stuckJobAfter    = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal(err)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal(err)
	}

	sequencer, err := rotation.NewSequencer(cat, &rotation.Repo{DB: gdb})
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(cfg.ArtifactDir, 0o755); err != nil {
		log.Fatal(err)
	}
	artifacts := &render.DirStore{Root: cfg.ArtifactDir}

	hub := event.NewHub()
	registry, err := job.NewRegistry(&job.Repo{DB: gdb}, hub, artifacts)
	if err != nil {
		log.Fatal(err)
	}

	renderer := &render.HTTPRenderer{BaseURL: cfg.RenderURL}
	publisher := &render.HTTPPublisher{BaseURL: cfg.PublishURL, TokenPath: cfg.PublishTokenPath}
	runner := render.NewRunner(registry, renderer, cfg.RenderConcurrency)

	anchors := make([]ideas.Anchor, 0, len(cfg.PublishTimes))
	for _, t := range cfg.PublishTimes {
		a, err := ideas.ParseAnchor(t)
		if err != nil {
			log.Fatal(err)
		}
		anchors = append(anchors, a)
	}

	ideaStore := &ideas.Repo{DB: gdb}
	bank := ideas.NewBank(cat, ideaStore)
	generator := ideas.NewGenerator(bank, cat, &render.HTTPIdeaSource{BaseURL: cfg.RenderURL})
	scheduler := ideas.NewScheduler(ideaStore, bank, cfg.Timezone, anchors)

	monitor := health.NewMonitor(&health.Repo{DB: gdb},
		health.StorageCheck(artifacts, storageWarnBytes, storageCritBytes),
		health.JobsCheck(registry, stuckJobAfter),
		health.CredentialCheck(publisher),
		health.AutopublishCheck(scheduler, bank, generator, cfg.IdeaTarget),
	)

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	r := httpx.NewRouter(httpx.Deps{
		Config:    cfg,
		DB:        gdb,
		JWT:       jwtSvc,
		Catalog:   cat,
		Sequencer: sequencer,
		Registry:  registry,
		Hub:       hub,
		Runner:    runner,
		Publisher: publisher,
		Bank:      bank,
		Generator: generator,
		Scheduler: scheduler,
		Monitor:   monitor,
	})

	ctx, cancel := context.WithCancel(context.Background())

	worker := &autopublish.Worker{
		Scheduler: scheduler,
		Bank:      bank,
		Sequencer: sequencer,
		Registry:  registry,
		Runner:    runner,
		Publisher: publisher,
		Loc:       cfg.Timezone,
		Anchors:   anchors,
	}
	go worker.Run(ctx)

	// periodic health runs
	go func() {
		ticker := time.NewTicker(cfg.HealthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := monitor.Run(ctx); err != nil {
					log.Printf("health run error: %v\n", err)
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s\n", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
