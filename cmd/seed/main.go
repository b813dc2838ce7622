package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/catalog"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/storage"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

func main() {
	yes := flag.Bool("y", false, "import without asking for confirmation")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: seed [-y] <catalog.xlsx | s3://bucket/key.xlsx>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	source := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("Reading catalog workbook: %s\n", source)
	reader, err := openSource(ctx, cfg, source)
	if err != nil {
		log.Fatal("Failed to open catalog source:", err)
	}
	result, err := catalog.Read(reader)
	reader.Close()
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", result.Rows)
	fmt.Printf("  Products: %d\n", len(result.Products))
	fmt.Printf("  Skipped rows: %d\n", result.Skipped)

	if len(result.Products) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	catalogRepo := repository.NewCatalogRepository(db.GetDB())
	created, err := catalogRepo.UpsertProducts(result.Products)
	if err != nil {
		log.Fatal("Failed to import products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("  Created: %d\n", created)
	fmt.Printf("  Updated: %d\n", len(result.Products)-created)
}

// openSource opens a local file, or an S3 object when source is an s3:// URL
func openSource(ctx context.Context, cfg *config.Config, source string) (io.ReadCloser, error) {
	if !storage.IsObjectURL(source) {
		if !strings.HasSuffix(strings.ToLower(source), ".xlsx") {
			fmt.Fprintln(os.Stderr, "warning: source does not have an .xlsx extension")
		}
		return os.Open(source)
	}

	bucket, key, err := storage.ParseObjectURL(source)
	if err != nil {
		return nil, err
	}
	s3 := storage.NewS3Storage(ctx, storage.S3Options{
		Region:          cfg.S3.Region,
		Bucket:          bucket,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Endpoint:        cfg.S3.Endpoint,
	})
	return s3.Open(ctx, key)
}
