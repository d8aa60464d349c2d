package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"internationally/internal/api"
	"internationally/internal/cache"
	"internationally/internal/config"
	"internationally/internal/core"
	"internationally/internal/listings"
	"internationally/internal/places"
	"internationally/internal/store"
)

func main() {
	config.LoadConfig()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	ingestFlag := flag.String("ingest", "", "Ingest the given knowledge-base file and exit")
	flag.Parse()

	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	llmService, err := core.NewLLMService(config.AppConfig.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize LLM service: %v", err)
	}
	defer llmService.Close()

	if *ingestFlag != "" {
		log.Printf("Ingesting knowledge base from %s...", *ingestFlag)
		numIngested, err := dbStore.IngestKnowledgeBase(*ingestFlag, llmService.GetEmbedding)
		if err != nil {
			log.Fatalf("Knowledge base ingestion failed: %v", err)
		}
		log.Printf("Ingestion complete. Stored %d chunks. Exiting.", numIngested)
		os.Exit(0)
	}

	ragService, err := core.NewRAGService(dbStore, llmService)
	if err != nil {
		log.Fatalf("Failed to initialize RAG service: %v", err)
	}

	// Redis is optional; without it external lookups just skip the cache.
	var lookupCache *cache.Cache
	if config.AppConfig.RedisAddr != "" {
		lookupCache, err = cache.New(config.AppConfig.RedisAddr)
		if err != nil {
			log.Printf("Redis unavailable, continuing without lookup cache: %v", err)
			lookupCache = nil
		} else {
			defer lookupCache.Close()
		}
	}

	placesClient := places.NewClient(config.AppConfig.GoogleMapsAPIKey)
	listingsClient := listings.NewClient(config.AppConfig.ZillowAPIKey)

	advisor := core.NewAdvisorService(dbStore, llmService, ragService, placesClient, listingsClient, lookupCache)

	apiHandler := api.NewAPIHandler(dbStore, advisor)
	legacyHandler := api.NewLegacyHandler(advisor)
	router := api.NewRouter(apiHandler, legacyHandler)

	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
