package janitor

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/config"
)

// Purger expires idle sessions and reports which ones it dropped.
// The in-memory store implements it; with Redis the key TTL already does
// the expiry and purger is nil.
type Purger interface {
	Purge(now time.Time) []string
}

// Janitor periodically removes expired sessions and the media and output
// files they left on disk.
type Janitor struct {
	cron    *cron.Cron
	cfg     config.JanitorConfig
	storage config.StorageConfig
	purger  Purger
	cleanup func(sessionID string)
}

func New(cfg config.JanitorConfig, storage config.StorageConfig, purger Purger, cleanup func(sessionID string)) *Janitor {
	return &Janitor{
		cron:    cron.New(),
		cfg:     cfg,
		storage: storage,
		purger:  purger,
		cleanup: cleanup,
	}
}

// Start schedules the sweep and begins running it
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.cfg.Schedule, j.Sweep); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the schedule; a running sweep finishes on its own
func (j *Janitor) Stop() {
	j.cron.Stop()
}

// Sweep expires idle sessions and removes orphaned files older than the
// configured age. Exported so tests and operators can trigger it directly.
func (j *Janitor) Sweep() {
	now := time.Now()

	if j.purger != nil {
		for _, id := range j.purger.Purge(now) {
			log.Printf("[janitor] expired session %s", id)
			j.cleanup(id)
		}
	}

	maxAge := time.Duration(j.cfg.MaxAgeHours) * time.Hour
	j.sweepMediaDirs(now, maxAge)
	j.sweepOutputs(now, maxAge)
}

func (j *Janitor) sweepMediaDirs(now time.Time, maxAge time.Duration) {
	entries, err := os.ReadDir(j.storage.MediaDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			dir := filepath.Join(j.storage.MediaDir, e.Name())
			if err := os.RemoveAll(dir); err != nil {
				log.Printf("[janitor] remove %s: %v", dir, err)
			} else {
				log.Printf("[janitor] removed stale media dir %s", e.Name())
			}
		}
	}
}

func (j *Janitor) sweepOutputs(now time.Time, maxAge time.Duration) {
	entries, err := os.ReadDir(j.storage.OutputDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".mp4") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			file := filepath.Join(j.storage.OutputDir, e.Name())
			if err := os.Remove(file); err != nil {
				log.Printf("[janitor] remove %s: %v", file, err)
			} else {
				log.Printf("[janitor] removed stale output %s", e.Name())
			}
		}
	}
}
