package services

import (
	"context"
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

// AdvertisementService manages the classified ads board
type AdvertisementService struct {
	store  database.Store
	files  storage.FileStore
	logger *logrus.Logger
}

// NewAdvertisementService creates a new advertisement service
func NewAdvertisementService(store database.Store, files storage.FileStore, logger *logrus.Logger) *AdvertisementService {
	return &AdvertisementService{
		store:  store,
		files:  files,
		logger: logger,
	}
}

// Create posts an advertisement owned by the caller
func (s *AdvertisementService) Create(ctx context.Context, caller access.Caller, req models.CreateAdvertisementRequest, images []string) (*models.AdvertisementView, error) {
	if err := access.Check(caller, access.OpCreateAdvertisement); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	ad := &models.Advertisement{
		ID:          uuid.New().String(),
		UserID:      caller.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Category:    strings.TrimSpace(req.Category),
		Images:      images,
		ContactInfo: strings.TrimSpace(req.ContactInfo),
	}
	if err := s.store.Advertisements().Create(ctx, ad); err != nil {
		return nil, storeError(err, "advertisement")
	}

	s.logger.WithFields(logrus.Fields{"advertisement_id": ad.ID, "user_id": caller.ID}).Info("Advertisement posted")
	return s.view(ctx, ad)
}

// List returns one page of advertisements
func (s *AdvertisementService) List(ctx context.Context, caller access.Caller, filter models.AdvertisementFilter) (*ListResult[models.AdvertisementView], error) {
	if err := access.Check(caller, access.OpListAdvertisements); err != nil {
		return nil, err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, apperror.Validation("minPrice cannot be greater than maxPrice")
	}
	filter.Sort, filter.Page = listDefaults(filter.Sort, filter.Page, query.ByCreatedAtDesc)

	ads, err := s.store.Advertisements().List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "advertisement")
	}
	total, err := s.store.Advertisements().Count(ctx, filter)
	if err != nil {
		return nil, storeError(err, "advertisement")
	}
	views, err := s.hydrate(ctx, ads)
	if err != nil {
		return nil, err
	}

	return &ListResult[models.AdvertisementView]{Items: views, Total: total, Page: *filter.Page}, nil
}

// ListMine returns every advertisement posted by the caller
func (s *AdvertisementService) ListMine(ctx context.Context, caller access.Caller) ([]models.AdvertisementView, error) {
	if err := access.Check(caller, access.OpListMyAdvertisements); err != nil {
		return nil, err
	}
	ads, err := s.store.Advertisements().List(ctx, models.AdvertisementFilter{UserID: caller.ID, Sort: query.ByCreatedAtDesc})
	if err != nil {
		return nil, storeError(err, "advertisement")
	}
	return s.hydrate(ctx, ads)
}

// Get returns a single advertisement
func (s *AdvertisementService) Get(ctx context.Context, caller access.Caller, id string) (*models.AdvertisementView, error) {
	if err := access.Check(caller, access.OpReadAdvertisement); err != nil {
		return nil, err
	}
	ad, err := s.store.Advertisements().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "advertisement")
	}
	return s.view(ctx, ad)
}

// Update edits an advertisement owned by the caller. Matrons may edit any advertisement.
func (s *AdvertisementService) Update(ctx context.Context, caller access.Caller, id string, req models.UpdateAdvertisementRequest, images []string) (*models.AdvertisementView, error) {
	if err := access.Check(caller, access.OpUpdateAdvertisement); err != nil {
		return nil, err
	}

	ad, err := s.store.Advertisements().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "advertisement")
	}
	if err := access.CheckOwner(caller, access.OpUpdateAdvertisement, ad.UserID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	if req.Title != nil {
		ad.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		ad.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		ad.Price = req.Price
	}
	if req.Category != nil {
		ad.Category = strings.TrimSpace(*req.Category)
	}
	if req.ContactInfo != nil {
		ad.ContactInfo = strings.TrimSpace(*req.ContactInfo)
	}

	var removed []string
	ad.Images, removed = mergeImages(ad.Images, images, req.KeepExistingImages, "")

	if err := s.store.Advertisements().Update(ctx, ad); err != nil {
		return nil, storeError(err, "advertisement")
	}

	discardImages(ctx, s.files, s.logger, removed)
	return s.view(ctx, ad)
}

// Delete removes an advertisement. Its owner or any matron may delete it.
func (s *AdvertisementService) Delete(ctx context.Context, caller access.Caller, id string) error {
	if err := access.Check(caller, access.OpDeleteAdvertisement); err != nil {
		return err
	}

	ad, err := s.store.Advertisements().GetByID(ctx, id)
	if err != nil {
		return storeError(err, "advertisement")
	}
	if err := access.CheckOwner(caller, access.OpDeleteAdvertisement, ad.UserID); err != nil {
		return err
	}

	if err := s.store.Advertisements().Delete(ctx, ad.ID); err != nil {
		return storeError(err, "advertisement")
	}

	s.logger.WithFields(logrus.Fields{
		"advertisement_id": ad.ID,
		"owner_id":         ad.UserID,
		"deleted_by":       caller.ID,
	}).Info("Advertisement deleted")

	discardImages(ctx, s.files, s.logger, ad.Images)
	return nil
}

func (s *AdvertisementService) view(ctx context.Context, ad *models.Advertisement) (*models.AdvertisementView, error) {
	views, err := s.hydrate(ctx, []models.Advertisement{*ad})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *AdvertisementService) hydrate(ctx context.Context, ads []models.Advertisement) ([]models.AdvertisementView, error) {
	ids := make([]string, 0, len(ads))
	for _, ad := range ads {
		ids = append(ids, ad.UserID)
	}

	users, err := loadUsers(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.AdvertisementView, len(ads))
	for i, ad := range ads {
		views[i] = models.AdvertisementView{
			Advertisement: ad,
			User:          users[ad.UserID].NameOnly(),
		}
	}
	return views, nil
}
