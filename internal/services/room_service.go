package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hostelhub/hostel-backend/internal/access"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/hostelhub/hostel-backend/internal/storage"
	"github.com/sirupsen/logrus"
)

// RoomService manages the room catalogue
type RoomService struct {
	store  database.Store
	files  storage.FileStore
	logger *logrus.Logger
}

// NewRoomService creates a new room service
func NewRoomService(store database.Store, files storage.FileStore, logger *logrus.Logger) *RoomService {
	return &RoomService{
		store:  store,
		files:  files,
		logger: logger,
	}
}

// List returns one page of rooms matching filter
func (s *RoomService) List(ctx context.Context, caller access.Caller, filter models.RoomFilter) (*ListResult[models.Room], error) {
	if err := access.Check(caller, access.OpListRooms); err != nil {
		return nil, err
	}
	filter.Sort, filter.Page = listDefaults(filter.Sort, filter.Page, query.ByCreatedAtDesc)

	rooms, err := s.store.Rooms().List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "room")
	}
	total, err := s.store.Rooms().Count(ctx, filter)
	if err != nil {
		return nil, storeError(err, "room")
	}

	return &ListResult[models.Room]{Items: rooms, Total: total, Page: *filter.Page}, nil
}

// Get returns a single room
func (s *RoomService) Get(ctx context.Context, caller access.Caller, id string) (*models.Room, error) {
	if err := access.Check(caller, access.OpReadRoom); err != nil {
		return nil, err
	}
	room, err := s.store.Rooms().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "room")
	}
	return room, nil
}

// Create adds a room. images holds stored upload references; without any the
// room gets the placeholder image.
func (s *RoomService) Create(ctx context.Context, caller access.Caller, req models.CreateRoomRequest, images []string) (*models.Room, error) {
	if err := access.Check(caller, access.OpCreateRoom); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	room := &models.Room{
		ID:          uuid.New().String(),
		RoomNumber:  strings.TrimSpace(req.RoomNumber),
		Capacity:    1,
		Status:      models.RoomStatusAvailable,
		Amenities:   models.NormalizeList(req.Amenities),
		Images:      images,
		Description: req.Description,
	}
	if req.Floor != nil {
		room.Floor = *req.Floor
	}
	if req.Price != nil {
		room.Price = *req.Price
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Status != "" {
		room.Status = models.RoomStatus(req.Status)
	}
	if len(room.Images) == 0 {
		room.Images = []string{models.DefaultRoomImage}
	}

	if err := s.store.Rooms().Create(ctx, room); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperror.Conflict("room number " + room.RoomNumber + " already exists")
		}
		return nil, storeError(err, "room")
	}

	s.logger.WithFields(logrus.Fields{"room_id": room.ID, "room_number": room.RoomNumber}).Info("Room created")
	return room, nil
}

// Update edits a room. The status of a room held by an active booking cannot change.
func (s *RoomService) Update(ctx context.Context, caller access.Caller, id string, req models.UpdateRoomRequest, images []string) (*models.Room, error) {
	if err := access.Check(caller, access.OpUpdateRoom); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	var (
		room    *models.Room
		removed []string
	)
	err := s.store.InTx(ctx, func(tx database.Store) error {
		var err error
		room, err = tx.Rooms().GetByIDForUpdate(ctx, id)
		if err != nil {
			return storeError(err, "room")
		}

		if req.Status != nil && models.RoomStatus(*req.Status) != room.Status {
			held, err := hasActiveBooking(ctx, tx, room.ID)
			if err != nil {
				return err
			}
			if held {
				return apperror.InvalidState("cannot change the status of a room with an active booking")
			}
			room.Status = models.RoomStatus(*req.Status)
		}

		if req.RoomNumber != nil {
			room.RoomNumber = strings.TrimSpace(*req.RoomNumber)
		}
		if req.Floor != nil {
			room.Floor = *req.Floor
		}
		if req.Capacity != nil {
			room.Capacity = *req.Capacity
		}
		if req.Price != nil {
			room.Price = *req.Price
		}
		if req.Amenities != nil {
			room.Amenities = models.NormalizeList(req.Amenities)
		}
		if req.Description != nil {
			room.Description = *req.Description
		}
		room.Images, removed = mergeImages(room.Images, images, req.KeepExistingImages, models.DefaultRoomImage)

		if err := tx.Rooms().Update(ctx, room); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return apperror.Conflict("room number " + room.RoomNumber + " already exists")
			}
			return storeError(err, "room")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	discardImages(ctx, s.files, s.logger, removed)
	return room, nil
}

// Delete removes a room that no active booking holds
func (s *RoomService) Delete(ctx context.Context, caller access.Caller, id string) error {
	if err := access.Check(caller, access.OpDeleteRoom); err != nil {
		return err
	}

	var room *models.Room
	err := s.store.InTx(ctx, func(tx database.Store) error {
		var err error
		room, err = tx.Rooms().GetByIDForUpdate(ctx, id)
		if err != nil {
			return storeError(err, "room")
		}

		held, err := hasActiveBooking(ctx, tx, room.ID)
		if err != nil {
			return err
		}
		if held {
			return apperror.InvalidState("cannot delete a room with an active booking")
		}

		return storeError(tx.Rooms().Delete(ctx, room.ID), "room")
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"room_id": room.ID, "room_number": room.RoomNumber}).Info("Room deleted")
	discardImages(ctx, s.files, s.logger, withoutPlaceholder(room.Images, models.DefaultRoomImage))
	return nil
}

func hasActiveBooking(ctx context.Context, store database.Store, roomID string) (bool, error) {
	n, err := store.Bookings().Count(ctx, models.BookingFilter{RoomID: roomID, ActiveOnly: true})
	if err != nil {
		return false, storeError(err, "booking")
	}
	return n > 0, nil
}

func withoutPlaceholder(refs []string, placeholder string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref != placeholder {
			out = append(out, ref)
		}
	}
	return out
}
