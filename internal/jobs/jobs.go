package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/plugin"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/store"
)

// StartJobs starts the background job scheduler. Returns the scheduler
// so callers can stop it on shutdown.
func StartJobs(syncInterval int, service *plugin.Service, st *store.Store) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	startRegistrySyncJob(s, syncInterval, service, st)

	log.Println("Starting background job scheduler...")
	s.StartAsync()
	return s
}

func startRegistrySyncJob(s *gocron.Scheduler, interval int, service *plugin.Service, st *store.Store) {
	if interval == 0 {
		log.Println("Registry sync interval is 0, scheduled sync is disabled.")
		return
	}

	jobId := "registry-sync"
	log.Printf("Scheduling job: '%s' to run every %d minutes.", jobId, interval)

	_, err := s.Every(interval).Minutes().Do(func() {
		log.Println("Scheduler is triggering job:", jobId)
		if err := plugin.SyncRegistry(context.Background(), service, st); err != nil {
			log.Printf("Scheduled job '%s' failed: %v", jobId, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", jobId, err)
	}
}
