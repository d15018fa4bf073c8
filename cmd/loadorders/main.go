package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"order-analytics/config"
	"order-analytics/internal/broker"
	"order-analytics/internal/ingest"
	"order-analytics/internal/store"
	"order-analytics/internal/util"
)

func main() {
	filePath := flag.String("file", "orders.json", "Path to the order feed JSON file")
	flag.Parse()

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	if _, err := os.Stat(*filePath); err != nil {
		fmt.Fprintf(os.Stderr, "Order feed not found: %s\n", *filePath)
		os.Exit(1)
	}

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	loader := ingest.NewLoader(db, cfg.Ingest.BatchSize)

	ctx := context.Background()
	fmt.Printf("Loading orders from %s\n", *filePath)

	result, err := loader.LoadFile(ctx, *filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Import finished: created=%d updated=%d total=%d\n",
		result.Created, result.Updated, result.Total)

	// Best effort: downstream consumers invalidate their caches off this.
	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicIngest)
	defer producer.Close()

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := broker.NewEventPublisher(producer).PublishOrdersIngested(publishCtx, "cli", result); err != nil {
		log.Printf("Failed to publish OrdersIngested event: %v", err)
	}
}
