// Command migrate performs the one-shot legacy-user → brand data migration.
// Safe to re-run: users that already own a brand are skipped.
package main

import (
	"fmt"
	"os"

	"github.com/suteetoe/storelocator/internal/migration"
	"github.com/suteetoe/storelocator/internal/model"
	"github.com/suteetoe/storelocator/pkg/config"
	"github.com/suteetoe/storelocator/pkg/database"
	"github.com/suteetoe/storelocator/pkg/logger"
)

func main() {
	// config.Load picks up the .env file itself.
	conf, err := config.Load("locator")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()

	db, err := database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database")
	}

	if err := database.MigrateModels(db,
		&model.Brand{},
		&model.BrandMember{},
		&model.Place{},
	); err != nil {
		log.Fatal("Failed to migrate database models")
	}

	result, err := migration.MigrateToBrands(db, log)
	if err != nil {
		log.Fatal("Migration failed: " + err.Error())
	}

	fmt.Printf("Users processed: %d\n", result.UsersProcessed)
	fmt.Printf("Brands created:  %d\n", result.BrandsCreated)
	fmt.Printf("Places updated:  %d\n", result.PlacesUpdated)
	if len(result.Errors) > 0 {
		fmt.Printf("Errors:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
		os.Exit(1)
	}
}
