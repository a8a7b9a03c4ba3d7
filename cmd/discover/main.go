// Command discover runs one sequential discovery pass from the persisted
// checkpoint: it probes consecutive invoice numbers, generates certificates
// for the ones that exist, and advances the checkpoint past them.
// Usage: go run ./cmd/discover [-max N]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"certikid/internal/billing"
	"certikid/internal/compose"
	"certikid/internal/config"
	"certikid/internal/invoice"
	"certikid/internal/match"
	"certikid/internal/pdftext"
	"certikid/internal/repository/postgres"
	"certikid/internal/service"
	s3storage "certikid/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	maxAttempts := flag.Int("max", 0, "maximum invoice numbers to probe (0 = configured default)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("initializing S3 client: %w", err)
	}

	productRepo := postgres.NewProductRepo(db)
	certRepo := postgres.NewCertificateRepo(db)
	checkpointRepo := postgres.NewCheckpointRepo(db)

	gate := billing.NewGate(cfg.Billing.MinFetchInterval())
	source := billing.NewClient(&cfg.Billing, gate)
	extractor := invoice.NewExtractor(cfg.Billing.SellerTaxID)
	matcher := match.NewMatcher(productRepo)
	composer := compose.NewComposer(cfg.Template.Path, cfg.Template.FallbackWarrantyMonths)

	certSvc := service.NewCertificateService(
		source, pdftext.NewConverter(), extractor, matcher, composer,
		certRepo, s3Client, cfg.S3.Bucket, cfg.Billing.Series,
	)
	discoverySvc := service.NewDiscoveryService(certSvc, checkpointRepo, service.DiscoveryConfig{
		MaxAttempts:   cfg.Discovery.MaxAttempts,
		NotFoundLimit: cfg.Discovery.NotFoundLimit,
	})

	run, err := discoverySvc.Run(context.Background(), *maxAttempts)
	if err != nil {
		return err
	}

	log.Printf("Discovery complete: attempted=%d existed=%d generated=%d skipped=%d notFound=%d checkpoint=%s",
		run.Attempted, run.Existed, run.Generated, run.SkippedNoActiveProducts, run.NotFound, run.Checkpoint)
	for _, e := range run.Errors {
		log.Printf("WARN: %s", e)
	}
	return nil
}
