// Package memstore provides an in-memory database.Store. It backs the
// DATABASE_DRIVER=memory mode and the service and handler tests.
//
// Transactions run under the store's write lock against a cloned state that
// replaces the committed state only when the transaction function succeeds.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/query"
)

type state struct {
	users          map[string]models.User
	rooms          map[string]models.Room
	bookings       map[string]models.Booking
	complaints     map[string]models.Complaint
	visitors       map[string]models.Visitor
	advertisements map[string]models.Advertisement
	auditLogs      []models.AuditLog

	// seq records insertion order; it breaks ties when sorting
	seq  map[string]uint64
	next uint64
}

func newState() *state {
	return &state{
		users:          map[string]models.User{},
		rooms:          map[string]models.Room{},
		bookings:       map[string]models.Booking{},
		complaints:     map[string]models.Complaint{},
		visitors:       map[string]models.Visitor{},
		advertisements: map[string]models.Advertisement{},
		seq:            map[string]uint64{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.rooms {
		c.rooms[k] = cloneRoom(v)
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.complaints {
		c.complaints[k] = cloneComplaint(v)
	}
	for k, v := range s.visitors {
		c.visitors[k] = cloneVisitor(v)
	}
	for k, v := range s.advertisements {
		c.advertisements[k] = cloneAdvertisement(v)
	}
	c.auditLogs = append([]models.AuditLog(nil), s.auditLogs...)
	for k, v := range s.seq {
		c.seq[k] = v
	}
	c.next = s.next
	return c
}

func (s *state) track(id string) {
	if _, ok := s.seq[id]; ok {
		return
	}
	s.next++
	s.seq[id] = s.next
}

type shared struct {
	mu    sync.RWMutex
	state *state
}

// Store implements database.Store in memory
type Store struct {
	db  *shared
	tx  *state
	now func() time.Time
}

var _ database.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{db: &shared{state: newState()}, now: time.Now}
}

// WithClock returns a store sharing the same data that stamps records using now
func (s *Store) WithClock(now func() time.Time) *Store {
	return &Store{db: s.db, tx: s.tx, now: now}
}

func (s *Store) Users() database.UserRepository { return &userRepository{s} }
func (s *Store) Rooms() database.RoomRepository { return &roomRepository{s} }
func (s *Store) Bookings() database.BookingRepository { return &bookingRepository{s} }
func (s *Store) Complaints() database.ComplaintRepository { return &complaintRepository{s} }
func (s *Store) Visitors() database.VisitorRepository { return &visitorRepository{s} }
func (s *Store) Advertisements() database.AdvertisementRepository { return &advertisementRepository{s} }
func (s *Store) AuditLogs() database.AuditLogRepository { return &auditLogRepository{s} }

// InTx serializes fn with every other writer and discards its changes on error
func (s *Store) InTx(ctx context.Context, fn func(tx database.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	working := s.db.state.clone()
	if err := fn(&Store{db: s.db, tx: working, now: s.now}); err != nil {
		return err
	}
	s.db.state = working
	return nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

func (s *Store) read(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return fn(s.db.state)
}

func (s *Store) write(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.state)
}

func (s *Store) stamp(created, updated *time.Time) {
	now := s.now()
	if created != nil && created.IsZero() {
		*created = now
	}
	*updated = now
}

// order sorts items by fields, then by insertion order
func order[T any](st *state, items []T, fields []query.SortField, id func(T) string, value func(T, string) any) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, f := range fields {
			c, ok := query.Compare(value(items[i], f.Field), value(items[j], f.Field))
			if !ok || c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return st.seq[id(items[i])] < st.seq[id(items[j])]
	})
}

func paginate[T any](items []T, p *query.Page) []T {
	if p == nil {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneStrings(v []string) []string {
	if v == nil {
		return nil
	}
	return append([]string{}, v...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneRoom(r models.Room) models.Room {
	r.Amenities = cloneStrings(r.Amenities)
	r.Images = cloneStrings(r.Images)
	return r
}

func cloneComplaint(c models.Complaint) models.Complaint {
	c.Images = cloneStrings(c.Images)
	c.ResolvedAt = cloneTime(c.ResolvedAt)
	return c
}

func cloneVisitor(v models.Visitor) models.Visitor {
	v.ActualCheckOutTime = cloneTime(v.ActualCheckOutTime)
	return v
}

func cloneAdvertisement(a models.Advertisement) models.Advertisement {
	a.Images = cloneStrings(a.Images)
	if a.Price != nil {
		p := *a.Price
		a.Price = &p
	}
	return a
}
