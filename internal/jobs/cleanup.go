package jobs

import (
	"log"
	"time"

	"github.com/seatlink/seatlink-backend/internal/services"
)

// CleanupJob periodically sweeps expired OTP challenges and stale
// rate-limit records. Expiry is re-checked on every read, so the sweep
// only bounds storage growth; skipping it never breaks correctness.
type CleanupJob struct {
	otps     *services.OTPStore
	limiter  *services.RateLimiter
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupJob creates the housekeeping job
func NewCleanupJob(otps *services.OTPStore, limiter *services.RateLimiter) *CleanupJob {
	return &CleanupJob{
		otps:     otps,
		limiter:  limiter,
		interval: 10 * time.Minute,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (j *CleanupJob) Start() {
	log.Println("Starting cleanup job...")
	go j.run()
}

// Stop halts the sweep
func (j *CleanupJob) Stop() {
	log.Println("Stopping cleanup job...")
	close(j.stopCh)
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopCh:
			return
		}
	}
}

func (j *CleanupJob) sweep() {
	if err := j.otps.SweepExpired(); err != nil {
		log.Printf("Failed to sweep expired OTP challenges: %v", err)
	}
	// Rate-limit records idle for a day carry no useful state
	if err := j.limiter.SweepStale(24 * time.Hour); err != nil {
		log.Printf("Failed to sweep stale rate-limit records: %v", err)
	}
}
