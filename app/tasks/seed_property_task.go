package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/okhomenko/staysync/app/database"
	"github.com/okhomenko/staysync/app/property"
)

// SeedPropertyTask materializes one YAML property config as database
// rows. The config file is the source of truth for apartments it
// declares: an apartment is matched by config name and updated in
// place, and its feed list is upserted by (apartment, source).
type SeedPropertyTask struct {
	Task
	Config        *property.Config
	apartmentRepo database.ApartmentRepository
}

func NewSeedPropertyTask(config *property.Config, apartmentRepo database.ApartmentRepository) *SeedPropertyTask {
	return &SeedPropertyTask{
		Task:          NewTask(TaskTypeSeedProperty, config.DisplayName),
		Config:        config,
		apartmentRepo: apartmentRepo,
	}
}

func (t *SeedPropertyTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	apartment, err := t.apartmentRepo.GetByConfigName(ctx, t.Config.Name)
	if err != nil {
		return fmt.Errorf("failed to look up apartment by config name: %w", err)
	}

	if apartment == nil {
		configName := t.Config.Name
		apartment = &database.Apartment{ConfigName: &configName}
	}

	apartment.Name = t.Config.DisplayName
	apartment.Address = t.Config.Address
	apartment.Beds = t.Config.Beds
	apartment.MaxGuests = t.Config.MaxGuests
	apartment.Description = t.Config.Description
	apartment.CheckInTime = t.Config.CheckInTime
	apartment.CheckOutTime = t.Config.CheckOutTime
	apartment.CleaningFee = t.Config.CleaningFee
	apartment.DailyRental = t.Config.DailyRental
	apartment.Active = t.Config.Active

	if apartment.ID == "" {
		err = t.apartmentRepo.CreateApartment(ctx, apartment)
	} else {
		err = t.apartmentRepo.UpdateApartment(ctx, apartment)
	}
	if err != nil {
		slog.Error("Task failed", "type", "SeedProperty", "property", t.ApartmentName, "error", err)
		return fmt.Errorf("failed to sync property config to database: %w", err)
	}

	for _, feed := range t.Config.Feeds {
		err := t.apartmentRepo.UpsertFeed(ctx, &database.ApartmentFeed{
			ApartmentID: apartment.ID,
			Source:      feed.Source,
			URL:         feed.URL,
			Enabled:     feed.Enabled,
		})
		if err != nil {
			slog.Error("Task failed", "type", "SeedProperty", "property", t.ApartmentName, "source", feed.Source, "error", err)
			return fmt.Errorf("failed to sync property feed to database: %w", err)
		}
	}

	slog.Info("Task completed",
		"type", "SeedProperty",
		"property", t.ApartmentName,
		"feeds", len(t.Config.Feeds),
		"duration", t.GetDuration())

	return nil
}
