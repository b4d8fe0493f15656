package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/okhomenko/staysync/app/database"
	"github.com/okhomenko/staysync/app/sync"
)

type SyncApartmentTask struct {
	Task
	Apartment   database.Apartment
	syncService *sync.Service
}

func NewSyncApartmentTask(apartment database.Apartment, syncService *sync.Service) *SyncApartmentTask {
	return &SyncApartmentTask{
		Task:        NewTask(TaskTypeSyncApartment, apartment.Name),
		Apartment:   apartment,
		syncService: syncService,
	}
}

func (t *SyncApartmentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result := t.syncService.SyncApartment(ctx, &t.Apartment)

	if len(result.Errors) > 0 {
		return fmt.Errorf("sync finished with %d feed error(s): %s", len(result.Errors), result.Errors[0])
	}

	slog.Info("Task completed",
		"type", "SyncApartment",
		"property", t.ApartmentName,
		"duration", t.GetDuration(),
		"added", len(result.Added),
		"updated", result.Updated,
		"skipped_duplicates", result.SkippedDuplicate,
		"cancelled", result.Cancelled,
		"failed", len(result.Failed))

	return nil
}
