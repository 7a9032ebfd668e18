// Command seed creates missing tables and loads the sample catalog. Running it
// again is safe: rows are matched by slug (variants by product, size and colour).
package main

import (
	"bengaliboutique_server/config"
	"bengaliboutique_server/database"
	"bengaliboutique_server/services"
	"bengaliboutique_server/structs"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	tokenRole := flag.String("token", "", "also print a development access token for this role (user or admin)")
	skipSchema := flag.Bool("skip-schema", false, "do not create missing tables")
	flag.Parse()

	envErr := godotenv.Load()
	cfg := config.GetConfig()
	logger := config.InitializeLogger()
	if envErr != nil {
		logger.Warn("No .env file found or error loading .env file, proceeding with system environment variables")
	}

	if err := database.Initialize(); err != nil {
		logger.Fatal("Failed to initialize database", gecho.Field("error", err))
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db := database.GetInstance()
	if !*skipSchema {
		if err := db.CreateSchema(ctx); err != nil {
			logger.Fatal("Failed to create schema", gecho.Field("error", err))
		}
	}

	report, err := database.Seed(ctx, db, database.SampleCatalog())
	if err != nil {
		logger.Fatal("Failed to seed database", gecho.Field("error", err))
	}
	logger.Info("Sample data added successfully",
		gecho.Field("categories", report.Categories),
		gecho.Field("products", report.Products),
		gecho.Field("variants", report.Variants),
	)

	if *tokenRole != "" {
		if err := printToken(cfg, logger, *tokenRole); err != nil {
			logger.Error("Failed to issue token", gecho.Field("error", err))
			os.Exit(1)
		}
	}
}

func printToken(cfg *structs.Config, logger *gecho.Logger, role string) error {
	if role != structs.RoleUser && role != structs.RoleAdmin {
		return fmt.Errorf("unknown role %q", role)
	}
	token, err := services.NewAuthService(cfg, logger).
		GenerateAccessToken(uuid.New(), "dev-"+role, role+"@bengaliboutique.com", role)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
