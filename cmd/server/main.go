package main

import (
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/suteetoe/storelocator/internal/handler"
	"github.com/suteetoe/storelocator/internal/middleware"
	"github.com/suteetoe/storelocator/internal/model"
	"github.com/suteetoe/storelocator/pkg/config"
	"github.com/suteetoe/storelocator/pkg/database"
	"github.com/suteetoe/storelocator/pkg/jwtutil"
	"github.com/suteetoe/storelocator/pkg/logger"
	"github.com/suteetoe/storelocator/pkg/metrics"
)

func main() {
	// config.Load picks up the .env file itself.
	conf, err := config.Load("locator")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
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
	log.Info("Configuration loaded", conf.LogConfig()...)

	// Initialize database connection; the pool is owned here and handed to
	// the handlers that need it.
	db, err := database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database")
	}

	if err := database.MigrateModels(db,
		&model.APIKey{},
		&model.Brand{},
		&model.BrandMember{},
		&model.Place{},
	); err != nil {
		log.Fatal("Failed to migrate database models")
	}

	// JWT utility for validating provider-issued session tokens
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	httpMetrics := metrics.NewHTTPMetrics(conf.ServiceName)

	apiKeys := handler.NewAPIKeyHandler(db)
	places := handler.NewPlaceHandler(db, &conf.Geo)
	brands := handler.NewBrandHandler(db)
	members := handler.NewMemberHandler(db)
	brandPlaces := handler.NewBrandPlaceHandler(db, &conf.Geo)

	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	// Public routes
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))
	e.GET("/places/user", places.ListByUser)

	dualAuth := middleware.DualAuthMiddleware(db, jwt)

	keyGroup := e.Group("/api-keys", dualAuth)
	keyGroup.GET("", apiKeys.Get)
	keyGroup.POST("", apiKeys.Generate)
	keyGroup.DELETE("", apiKeys.Delete)

	placeGroup := e.Group("/places", dualAuth)
	placeGroup.GET("/near", places.Near)
	placeGroup.POST("", places.Create)
	placeGroup.DELETE("", places.Delete)

	brandGroup := e.Group("/brands", dualAuth)
	brandGroup.GET("", brands.List)
	brandGroup.POST("", brands.Create)
	brandGroup.GET("/:id", brands.Get)
	brandGroup.PUT("/:id", brands.Update)
	brandGroup.DELETE("/:id", brands.Delete)
	brandGroup.GET("/:id/members", members.List)
	brandGroup.POST("/:id/members", members.Add)
	brandGroup.PUT("/:id/members/:userId", members.UpdateRole)
	brandGroup.DELETE("/:id/members/:userId", members.Remove)
	brandGroup.GET("/:id/places/near", brandPlaces.Near)
	brandGroup.POST("/:id/places", brandPlaces.Create)

	log.Info("Starting storelocator on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}
