package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"

	"certikid/internal/domain"
	"certikid/internal/invoice"
	"certikid/internal/port"
)

// DiscoveryConfig holds settings for the sequential discovery driver.
type DiscoveryConfig struct {
	MaxAttempts   int
	NotFoundLimit int
}

// DiscoveryService probes consecutive invoice numbers after the persisted
// checkpoint and runs the certificate pipeline for each one that exists.
// Attempts are strictly sequential: the consecutive-not-found counter and the
// checkpoint-advancement rule both depend on total ordering.
type DiscoveryService struct {
	certs      *CertificateService
	checkpoint port.CheckpointStore
	cfg        DiscoveryConfig

	// mu serializes runs; the shared fetch gate is not safe for concurrent
	// discovery loops.
	mu sync.Mutex
}

// NewDiscoveryService creates a DiscoveryService.
func NewDiscoveryService(certs *CertificateService, checkpoint port.CheckpointStore, cfg DiscoveryConfig) *DiscoveryService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 50
	}
	if cfg.NotFoundLimit <= 0 {
		cfg.NotFoundLimit = 2
	}
	return &DiscoveryService{certs: certs, checkpoint: checkpoint, cfg: cfg}
}

// Run executes one discovery pass. maxAttempts overrides the configured
// bound when positive. The checkpoint advances only past invoices confirmed
// to exist and is persisted only when it moved. The run terminates early
// after NotFoundLimit consecutive not-found outcomes; other failures are
// collected per attempt and do not stop the loop.
func (s *DiscoveryService) Run(ctx context.Context, maxAttempts int) (*domain.DiscoveryRun, error) {
	if !s.mu.TryLock() {
		return nil, domain.ErrDiscoveryRunning
	}
	defer s.mu.Unlock()

	start, err := s.loadCheckpoint(ctx)
	if err != nil {
		return nil, err
	}

	startNumber, err := strconv.Atoi(start.Number)
	if err != nil {
		return nil, fmt.Errorf("%w: checkpoint number %q is not numeric", domain.ErrInvalidIdentifier, start.Number)
	}

	if maxAttempts <= 0 {
		maxAttempts = s.cfg.MaxAttempts
	}

	run := &domain.DiscoveryRun{
		StartIdentifier:         start.String(),
		MaxAttempts:             maxAttempts,
		ConsecutiveNotFoundStop: s.cfg.NotFoundLimit,
		Errors:                  []string{},
		GeneratedCertificates:   []string{},
	}

	log.Printf("discoveryService: starting at %s (maxAttempts=%d, notFoundLimit=%d)",
		start, maxAttempts, s.cfg.NotFoundLimit)

	confirmed := start
	notFoundStreak := 0

loop:
	for i := 1; i <= maxAttempts; i++ {
		candidate := invoice.Identifier{
			Series: start.Series,
			Number: strconv.Itoa(startNumber + i),
		}

		run.Attempted++
		result, err := s.certs.Generate(ctx, candidate)
		switch {
		case err == nil:
			run.Existed++
			notFoundStreak = 0
			confirmed = candidate
			if result.Generated {
				run.Generated++
				run.GeneratedCertificates = append(run.GeneratedCertificates,
					result.Certificate.OutputPath)
			} else {
				run.SkippedNoActiveProducts++
			}

		case errors.Is(err, domain.ErrInvoiceNotFound):
			run.NotFound++
			notFoundStreak++
			if notFoundStreak >= s.cfg.NotFoundLimit {
				log.Printf("discoveryService: %d consecutive not-found at %s, stopping",
					notFoundStreak, candidate)
				break loop
			}

		default:
			notFoundStreak = 0
			run.Errors = append(run.Errors, fmt.Sprintf("%s: %v", candidate, err))
			log.Printf("discoveryService: attempt %s failed: %v", candidate, err)
		}
	}

	run.Checkpoint = confirmed.String()
	if confirmed != start {
		if err := s.checkpoint.Set(ctx, confirmed.String()); err != nil {
			return nil, fmt.Errorf("discoveryService: saving checkpoint %s: %w", confirmed, err)
		}
	}

	log.Printf("discoveryService: done, attempted=%d existed=%d generated=%d skipped=%d notFound=%d errors=%d",
		run.Attempted, run.Existed, run.Generated, run.SkippedNoActiveProducts, run.NotFound, len(run.Errors))

	return run, nil
}

// loadCheckpoint reads and validates the persisted starting identifier.
// An absent or unparseable checkpoint is a validation error: discovery never
// guesses a starting point.
func (s *DiscoveryService) loadCheckpoint(ctx context.Context) (invoice.Identifier, error) {
	raw, err := s.checkpoint.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return invoice.Identifier{}, domain.ErrNoCheckpoint
		}
		return invoice.Identifier{}, fmt.Errorf("discoveryService: reading checkpoint: %w", err)
	}
	if raw == "" {
		return invoice.Identifier{}, domain.ErrNoCheckpoint
	}

	id, err := invoice.ParseIdentifier(raw)
	if err != nil {
		return invoice.Identifier{}, err
	}
	return id, nil
}
