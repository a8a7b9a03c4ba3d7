package main

import (
	"fmt"
	"log"

	"certikid/internal/billing"
	"certikid/internal/compose"
	"certikid/internal/config"
	"certikid/internal/handler"
	"certikid/internal/invoice"
	"certikid/internal/match"
	"certikid/internal/pdftext"
	"certikid/internal/repository/postgres"
	"certikid/internal/router"
	"certikid/internal/service"
	s3storage "certikid/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	productRepo := postgres.NewProductRepo(db)
	certRepo := postgres.NewCertificateRepo(db)
	checkpointRepo := postgres.NewCheckpointRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize the pipeline. The fetch gate is shared by everything that
	// talks to the billing API.
	gate := billing.NewGate(cfg.Billing.MinFetchInterval())
	source := billing.NewClient(&cfg.Billing, gate)
	converter := pdftext.NewConverter()
	extractor := invoice.NewExtractor(cfg.Billing.SellerTaxID)
	matcher := match.NewMatcher(productRepo)
	composer := compose.NewComposer(cfg.Template.Path, cfg.Template.FallbackWarrantyMonths)

	// Initialize services
	certSvc := service.NewCertificateService(
		source, converter, extractor, matcher, composer,
		certRepo, s3Client, cfg.S3.Bucket, cfg.Billing.Series,
	)
	discoverySvc := service.NewDiscoveryService(certSvc, checkpointRepo, service.DiscoveryConfig{
		MaxAttempts:   cfg.Discovery.MaxAttempts,
		NotFoundLimit: cfg.Discovery.NotFoundLimit,
	})

	// Initialize handlers
	certH := handler.NewCertificateHandler(certSvc, certRepo, s3Client, cfg.S3.Bucket, cfg.S3.PresignExpiry)
	discoveryH := handler.NewDiscoveryHandler(discoverySvc, checkpointRepo)
	productH := handler.NewProductHandler(productRepo)
	healthH := handler.NewHealthHandler(db, cfg.Template.Path)

	// Setup router
	r := router.Setup(certH, discoveryH, productH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
