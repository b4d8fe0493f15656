package api

import (
	"github.com/okhomenko/staysync/app/booking"
	"github.com/okhomenko/staysync/app/database"
	"github.com/okhomenko/staysync/app/ical"
	"github.com/okhomenko/staysync/app/property"
	"github.com/okhomenko/staysync/app/sync"
	"github.com/okhomenko/staysync/app/tasks"
)

type Handler struct {
	configCache     *property.ConfigCache
	apartmentRepo   database.ApartmentRepository
	reservationRepo database.ReservationRepository
	cleaningRepo    database.CleaningRepository
	syncLogRepo     database.SyncLogRepository
	syncService     *sync.Service
	validator       *booking.Validator
	parser          *ical.Parser
	scheduler       tasks.TaskSchedulerInterface
}

type apartmentRequest struct {
	Name         string   `json:"name" binding:"required"`
	Address      string   `json:"address"`
	Beds         int      `json:"beds"`
	MaxGuests    int      `json:"max_guests"`
	Description  string   `json:"description"`
	CheckInTime  string   `json:"check_in_time"`
	CheckOutTime string   `json:"check_out_time"`
	CleaningFee  *float64 `json:"cleaning_fee"`
	DailyRental  bool     `json:"daily_rental"`
	Active       *bool    `json:"active"`
}

type feedRequest struct {
	Source  string `json:"source"`
	URL     string `json:"url" binding:"required"`
	Enabled *bool  `json:"enabled"`
}

type validateURLRequest struct {
	URL string `json:"url" binding:"required"`
}

type reservationRequest struct {
	ApartmentID string `json:"apartment_id" binding:"required"`
	GuestName   string `json:"guest_name" binding:"required"`
	GuestEmail  string `json:"guest_email"`
	GuestPhone  string `json:"guest_phone"`
	GuestsCount int    `json:"guests_count"`
	CheckIn     string `json:"check_in" binding:"required"`
	CheckOut    string `json:"check_out" binding:"required"`
	Notes       string `json:"notes"`
}

type cleaningSessionRequest struct {
	ApartmentID   string  `json:"apartment_id" binding:"required"`
	ReservationID *string `json:"reservation_id"`
	CleanerID     *string `json:"cleaner_id"`
	ScheduledDate string  `json:"scheduled_date" binding:"required"`
	Notes         string  `json:"notes"`
}

type cleaningSessionUpdateRequest struct {
	Status        *string `json:"status"`
	CleanerID     *string `json:"cleaner_id"`
	ScheduledDate *string `json:"scheduled_date"`
	Notes         *string `json:"notes"`
}
