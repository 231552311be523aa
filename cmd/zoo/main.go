package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"has-many-polymorphic/internal/config"
	"has-many-polymorphic/internal/database"
	"has-many-polymorphic/internal/logger"
	"has-many-polymorphic/internal/repository"
	"has-many-polymorphic/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	zooName := flag.String("zoo", "", "only print the zoo with this name")
	flag.Parse()

	// Load environment variables from .env file in development
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set up logging
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stderr)
	logger.SetLevel(cfg.LogLevel)

	opts := &database.Options{
		LogLevel:     gormlogger.Warn,
		MaxOpenConns: cfg.DatabaseMaxOpenConns,
	}
	if cfg.LogLevel == "debug" {
		opts.LogLevel = gormlogger.Info
	}

	// Initialize database (runs migrations)
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, opts)
	if err != nil {
		logrus.Fatal("Failed to initialize database:", err)
	}

	ctx := context.Background()
	_, animals, err := database.Setup(ctx, db, validator.New())
	if err != nil {
		logrus.Fatal("Failed to set up zoo animals:", err)
	}

	zoos := repository.NewZooRepository(db)
	svc := service.NewZooService(zoos, repository.NewAnimalRepository(db), animals, validator.New())

	if *zooName != "" {
		zoo, err := zoos.GetByName(*zooName)
		if err != nil {
			logrus.Fatalf("Failed to find zoo %q: %v", *zooName, err)
		}
		if err := printZoo(ctx, svc, zoo.ID); err != nil {
			logrus.Fatal(err)
		}
		return
	}

	for page := 1; ; page++ {
		list, err := svc.ListZoos(page, 100)
		if err != nil {
			logrus.Fatal("Failed to list zoos:", err)
		}
		for _, zoo := range list.Zoos {
			if err := printZoo(ctx, svc, zoo.ID); err != nil {
				logrus.Fatal(err)
			}
		}
		if int64(page*list.PageSize) >= list.Total {
			break
		}
	}
}

func printZoo(ctx context.Context, svc *service.ZooService, id uuid.UUID) error {
	resp, err := svc.ListAnimals(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list animals of zoo %s: %w", id, err)
	}
	fmt.Printf("%s (%d animals)\n", resp.Zoo.Name, resp.Total)
	for _, animal := range resp.Animals {
		fmt.Printf("  %-8s %s\n", animal.Type, animal.Name)
	}
	return nil
}
