package services

import (
	"context"

	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/hostelhub/hostel-backend/internal/storage"
	"github.com/sirupsen/logrus"
)

// ListResult is one page of a listing together with the size of the whole result set
type ListResult[T any] struct {
	Items []T
	Total int
	Page  query.Page
}

// Pagination returns the neighbouring page links for the result
func (r *ListResult[T]) Pagination() query.Pagination {
	return query.Paginate(r.Page, r.Total)
}

// listDefaults fills in the default sort and first page
func listDefaults(sort []query.SortField, page *query.Page, fallback []query.SortField) ([]query.SortField, *query.Page) {
	if len(sort) == 0 {
		sort = fallback
	}
	if page == nil {
		p := query.ParsePage("", "")
		page = &p
	}
	return sort, page
}

func loadUsers(ctx context.Context, store database.Store, ids []string) (map[string]*models.User, error) {
	if len(ids) == 0 {
		return map[string]*models.User{}, nil
	}
	users, err := store.Users().GetByIDs(ctx, unique(ids))
	if err != nil {
		return nil, storeError(err, "user")
	}
	return users, nil
}

func loadRooms(ctx context.Context, store database.Store, ids []string) (map[string]*models.Room, error) {
	if len(ids) == 0 {
		return map[string]*models.Room{}, nil
	}
	rooms, err := store.Rooms().GetByIDs(ctx, unique(ids))
	if err != nil {
		return nil, storeError(err, "room")
	}
	return rooms, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// mergeImages applies an update's uploads to the stored images. Uploads are
// appended unless keep is false, in which case they replace the stored set.
// The placeholder image is dropped once real uploads exist. removed lists the
// references that are no longer used.
func mergeImages(current, uploads []string, keep *bool, placeholder string) (merged, removed []string) {
	if len(uploads) == 0 {
		return current, nil
	}

	if keep == nil || *keep {
		merged = make([]string, 0, len(current)+len(uploads))
		for _, ref := range current {
			if ref != placeholder {
				merged = append(merged, ref)
			}
		}
		return append(merged, uploads...), nil
	}

	for _, ref := range current {
		if ref != placeholder {
			removed = append(removed, ref)
		}
	}
	return append([]string(nil), uploads...), removed
}

// discardImages deletes stored uploads that no record references any more
func discardImages(ctx context.Context, files storage.FileStore, logger *logrus.Logger, refs []string) {
	if files == nil {
		return
	}
	for _, ref := range refs {
		if err := files.Delete(ctx, ref); err != nil {
			logger.WithError(err).WithField("ref", ref).Warn("Failed to delete stored image")
		}
	}
}
