package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"has-many-polymorphic/internal/config"
	"has-many-polymorphic/internal/database"
	"has-many-polymorphic/internal/database/models"
	apperrors "has-many-polymorphic/internal/errors"
	"has-many-polymorphic/internal/repository"
	"has-many-polymorphic/internal/service"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Simple structures that directly match the seed file
type ZooData struct {
	Name    string   `yaml:"name"`
	City    string   `yaml:"city"`
	Bears   []string `yaml:"bears,omitempty"`
	Birds   []string `yaml:"birds,omitempty"`
	Monkeys []string `yaml:"monkeys,omitempty"`
}

type AnimalData struct {
	Kind     string  `yaml:"kind"`
	Name     string  `yaml:"name"`
	Species  string  `yaml:"species,omitempty"`
	Type     string  `yaml:"type,omitempty"`
	Wingspan float64 `yaml:"wingspan,omitempty"`
	Troop    string  `yaml:"troop,omitempty"`
}

// File structure
type SeedFile struct {
	Animals []AnimalData `yaml:"animals"`
	Zoos    []ZooData    `yaml:"zoos"`
}

func main() {
	log.Println("🚀 Loading zoo data from YAML...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.SeedFile == "" {
		log.Fatal(apperrors.ErrSeedFileNotDefined)
	}

	// Connect to database with retry (for dockerized Postgres startup)
	db, err := connectWithRetry(cfg.DatabaseDriver, cfg.DatabaseURL, 60, time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	_, animals, err := database.Setup(ctx, db, validator.New())
	if err != nil {
		log.Fatalf("Failed to set up zoo animals: %v", err)
	}
	zooRepo := repository.NewZooRepository(db)
	animalRepo := repository.NewAnimalRepository(db)
	svc := service.NewZooService(zooRepo, animalRepo, animals, validator.New())

	seed, err := loadSeedFile(cfg.SeedFile)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}
	if err := loadZooData(ctx, svc, animalRepo, zooRepo, seed); err != nil {
		log.Fatalf("Failed to load zoo data: %v", err)
	}

	log.Println("✅ Zoo data loaded successfully!")
}

// connectWithRetry attempts to initialize the DB with retries to wait for database readiness.
func connectWithRetry(driver, dsn string, maxAttempts int, delay time.Duration) (*gorm.DB, error) {
	// Suppress GORM logs including SQL queries and "record not found"
	opts := &database.Options{
		LogLevel: logger.Silent,
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := database.Initialize(driver, dsn, opts)
		if err == nil {
			return db, nil
		}
		// Only log every 10 attempts to reduce noise
		if attempt%10 == 0 || attempt == maxAttempts {
			log.Printf("Database not ready (%d/%d): %v", attempt, maxAttempts, err)
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("database not ready after %d attempts", maxAttempts)
}

func loadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &seed, nil
}

// loadZooData creates missing animals and zoos, then links each zoo to the
// animals it lists. Running it twice creates nothing new.
func loadZooData(ctx context.Context, svc *service.ZooService, animalRepo repository.AnimalRepositoryInterface, zooRepo repository.ZooRepositoryInterface, seed *SeedFile) error {
	animalsCreated := 0
	for _, a := range seed.Animals {
		_, err := svc.CreateAnimal(&service.CreateAnimalRequest{
			Kind:     models.AnimalKind(a.Kind),
			Name:     a.Name,
			Species:  a.Species,
			Type:     a.Type,
			Wingspan: a.Wingspan,
			Troop:    a.Troop,
		})
		switch {
		case err == nil:
			animalsCreated++
		case errors.Is(err, apperrors.ErrAnimalExists):
			log.Printf("  %s %s already exists", a.Kind, a.Name)
		default:
			return fmt.Errorf("animal %s: %w", a.Name, err)
		}
	}
	log.Printf("📦 Animals: %d created, %d in file", animalsCreated, len(seed.Animals))

	zoosCreated := 0
	var linksCreated int64
	for _, z := range seed.Zoos {
		_, err := svc.CreateZoo(&service.CreateZooRequest{Name: z.Name, City: z.City})
		switch {
		case err == nil:
			zoosCreated++
		case errors.Is(err, apperrors.ErrZooExists):
			log.Printf("  zoo %s already exists", z.Name)
		default:
			return fmt.Errorf("zoo %s: %w", z.Name, err)
		}

		zoo, err := zooRepo.GetByName(z.Name)
		if err != nil {
			return fmt.Errorf("zoo %s: %w", z.Name, err)
		}

		var refs []service.AnimalRef
		for kind, names := range map[models.AnimalKind][]string{
			models.AnimalKindBear:   z.Bears,
			models.AnimalKindBird:   z.Birds,
			models.AnimalKindMonkey: z.Monkeys,
		} {
			for _, name := range names {
				animal, err := animalRepo.GetByName(kind, name)
				if err != nil {
					return fmt.Errorf("zoo %s lists unknown %s %q: %w", z.Name, kind, name, err)
				}
				refs = append(refs, service.AnimalRef{Kind: kind, ID: animal.GetID()})
			}
		}
		if len(refs) == 0 {
			continue
		}

		created, err := svc.AddAnimals(ctx, zoo.ID, &service.AddAnimalsRequest{Animals: refs})
		if err != nil {
			return fmt.Errorf("zoo %s: %w", z.Name, err)
		}
		linksCreated += created
	}
	log.Printf("🏛️ Zoos: %d created, %d links added", zoosCreated, linksCreated)
	return nil
}
