package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/hostelhub/hostel-backend/internal/access"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/sirupsen/logrus"
)

// BookingService couples the booking lifecycle to room availability. Every
// write that touches both a booking and its room runs in one store transaction.
type BookingService struct {
	store       database.Store
	maxDuration int
	logger      *logrus.Logger
}

// NewBookingService creates a new booking service. maxDuration caps the stay in
// months; zero disables the cap.
func NewBookingService(store database.Store, maxDuration int, logger *logrus.Logger) *BookingService {
	return &BookingService{
		store:       store,
		maxDuration: maxDuration,
		logger:      logger,
	}
}

// Create books an available room for the calling tenant. The room is held
// (occupied) from the moment the booking is placed.
func (s *BookingService) Create(ctx context.Context, caller access.Caller, req models.CreateBookingRequest) (*models.BookingView, error) {
	if err := access.Check(caller, access.OpCreateBooking); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if s.maxDuration > 0 && req.Duration > s.maxDuration {
		return nil, apperror.Validation(fmt.Sprintf("duration cannot exceed %d months", s.maxDuration))
	}
	checkIn, err := query.ParseTime(req.CheckInDate)
	if err != nil {
		return nil, err
	}

	var (
		booking *models.Booking
		room    *models.Room
	)
	err = s.store.InTx(ctx, func(tx database.Store) error {
		var err error
		room, err = tx.Rooms().GetByIDForUpdate(ctx, req.RoomID)
		if err != nil {
			return storeError(err, "room")
		}
		if room.Status != models.RoomStatusAvailable {
			return apperror.InvalidState(msgRoomUnavailable)
		}

		booking = &models.Booking{
			ID:            uuid.New().String(),
			RoomID:        room.ID,
			TenantID:      caller.ID,
			CheckInDate:   checkIn,
			Duration:      req.Duration,
			Status:        models.BookingStatusPending,
			PaymentStatus: models.PaymentStatusPending,
			TotalAmount:   totalAmount(room.Price, req.Duration),
		}
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return storeError(err, "booking")
		}

		room.Status = models.RoomStatusOccupied
		return storeError(tx.Rooms().UpdateStatus(ctx, room.ID, models.RoomStatusOccupied), "room")
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"room_id":    room.ID,
		"tenant_id":  caller.ID,
		"total":      booking.TotalAmount,
	}).Info("Booking created")

	views, err := s.hydrate(ctx, []models.Booking{*booking})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns one page of all bookings
func (s *BookingService) List(ctx context.Context, caller access.Caller, filter models.BookingFilter) (*ListResult[models.BookingView], error) {
	if err := access.Check(caller, access.OpListBookings); err != nil {
		return nil, err
	}
	filter.Sort, filter.Page = listDefaults(filter.Sort, filter.Page, query.ByCreatedAtDesc)

	bookings, err := s.store.Bookings().List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "booking")
	}
	total, err := s.store.Bookings().Count(ctx, filter)
	if err != nil {
		return nil, storeError(err, "booking")
	}
	views, err := s.hydrate(ctx, bookings)
	if err != nil {
		return nil, err
	}

	return &ListResult[models.BookingView]{Items: views, Total: total, Page: *filter.Page}, nil
}

// ListMine returns every booking of the calling tenant, newest first
func (s *BookingService) ListMine(ctx context.Context, caller access.Caller) ([]models.BookingView, error) {
	if err := access.Check(caller, access.OpListMyBookings); err != nil {
		return nil, err
	}
	bookings, err := s.store.Bookings().List(ctx, models.BookingFilter{TenantID: caller.ID, Sort: query.ByCreatedAtDesc})
	if err != nil {
		return nil, storeError(err, "booking")
	}
	return s.hydrate(ctx, bookings)
}

// Get returns a booking visible to the caller
func (s *BookingService) Get(ctx context.Context, caller access.Caller, id string) (*models.BookingView, error) {
	if err := access.Check(caller, access.OpReadBooking); err != nil {
		return nil, err
	}
	booking, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "booking")
	}
	if err := access.CheckOwner(caller, access.OpReadBooking, booking.TenantID); err != nil {
		return nil, err
	}

	views, err := s.hydrate(ctx, []models.Booking{*booking})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update changes the status or payment status of a booking. Moving into
// cancelled or completed releases the room in the same transaction. Tenants may
// only cancel their own pending bookings.
func (s *BookingService) Update(ctx context.Context, caller access.Caller, id string, req models.UpdateBookingRequest) (*models.BookingView, error) {
	if err := access.Check(caller, access.OpUpdateBooking); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	var (
		booking *models.Booking
		from    models.BookingStatus
	)
	err := s.store.InTx(ctx, func(tx database.Store) error {
		var err error
		booking, err = tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return storeError(err, "booking")
		}
		if err := access.CheckOwner(caller, access.OpUpdateBooking, booking.TenantID); err != nil {
			return err
		}

		from = booking.Status
		to := from
		if req.Status != nil {
			to = models.BookingStatus(*req.Status)
		}

		if !caller.IsMatron() {
			if req.PaymentStatus != nil || (to != from && !(from == models.BookingStatusPending && to == models.BookingStatusCancelled)) {
				return apperror.Forbidden("tenants can only cancel a pending booking")
			}
		}

		if to != from {
			if !models.CanTransition(from, to) {
				return apperror.InvalidTransition(fmt.Sprintf("cannot change booking status from %s to %s", from, to))
			}
			booking.Status = to
			if to.ReleasesRoom() {
				if err := releaseRoom(ctx, tx, booking); err != nil {
					return err
				}
			}
		}
		if req.PaymentStatus != nil {
			booking.PaymentStatus = models.PaymentStatus(*req.PaymentStatus)
		}

		return storeError(tx.Bookings().Update(ctx, booking), "booking")
	})
	if err != nil {
		return nil, err
	}

	if booking.Status != from {
		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"room_id":    booking.RoomID,
			"from":       from,
			"to":         booking.Status,
			"user_id":    caller.ID,
		}).Info("Booking status changed")
	}

	views, err := s.hydrate(ctx, []models.Booking{*booking})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete removes a booking and returns its room to available
func (s *BookingService) Delete(ctx context.Context, caller access.Caller, id string) (*models.Booking, error) {
	if err := access.Check(caller, access.OpDeleteBooking); err != nil {
		return nil, err
	}

	var booking *models.Booking
	err := s.store.InTx(ctx, func(tx database.Store) error {
		var err error
		booking, err = tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return storeError(err, "booking")
		}
		if err := releaseRoom(ctx, tx, booking); err != nil {
			return err
		}
		return storeError(tx.Bookings().Delete(ctx, booking.ID), "booking")
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"booking_id": booking.ID, "room_id": booking.RoomID}).Info("Booking deleted")
	return booking, nil
}

// releaseRoom makes the booking's room available again unless a different
// active booking still holds it
func releaseRoom(ctx context.Context, tx database.Store, booking *models.Booking) error {
	active, err := tx.Bookings().List(ctx, models.BookingFilter{RoomID: booking.RoomID, ActiveOnly: true})
	if err != nil {
		return storeError(err, "booking")
	}
	for _, other := range active {
		if other.ID != booking.ID {
			return nil
		}
	}

	err = tx.Rooms().UpdateStatus(ctx, booking.RoomID, models.RoomStatusAvailable)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return storeError(err, "room")
	}
	return nil
}

func (s *BookingService) hydrate(ctx context.Context, bookings []models.Booking) ([]models.BookingView, error) {
	tenantIDs := make([]string, 0, len(bookings))
	roomIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		tenantIDs = append(tenantIDs, b.TenantID)
		roomIDs = append(roomIDs, b.RoomID)
	}

	users, err := loadUsers(ctx, s.store, tenantIDs)
	if err != nil {
		return nil, err
	}
	rooms, err := loadRooms(ctx, s.store, roomIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.BookingView, len(bookings))
	for i, b := range bookings {
		views[i] = models.BookingView{
			Booking: b,
			Tenant:  users[b.TenantID].Summary(),
			Room:    rooms[b.RoomID],
		}
	}
	return views, nil
}

// totalAmount is the monthly price times the stay, rounded to cents
func totalAmount(price float64, months int) float64 {
	return math.Round(price*float64(months)*100) / 100
}

