package memstore

import (
	"context"
	"sort"

	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/models"
)

type userRepository struct{ s *Store }

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.users[user.ID]; ok {
			return database.ErrDuplicate
		}
		for _, u := range st.users {
			if u.Email == user.Email {
				return database.ErrDuplicate
			}
		}
		r.s.stamp(&user.CreatedAt, &user.UpdatedAt)
		st.users[user.ID] = *user
		st.track(user.ID)
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var out *models.User
	err := r.s.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return database.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.s.read(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return database.ErrNotFound
	})
	return out, err
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	err := r.s.read(func(st *state) error {
		for _, id := range ids {
			if u, ok := st.users[id]; ok {
				out[id] = &u
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	users := []models.User{}
	err := r.s.read(func(st *state) error {
		for _, u := range st.users {
			if filter.Role == "" || u.Role == filter.Role {
				users = append(users, u)
			}
		}
		sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
		return nil
	})
	return users, err
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.s.write(func(st *state) error {
		existing, ok := st.users[user.ID]
		if !ok {
			return database.ErrNotFound
		}
		for id, u := range st.users {
			if id != user.ID && u.Email == user.Email {
				return database.ErrDuplicate
			}
		}
		existing.Name = user.Name
		existing.Email = user.Email
		existing.Phone = user.Phone
		existing.PasswordHash = user.PasswordHash
		r.s.stamp(nil, &existing.UpdatedAt)
		user.UpdatedAt = existing.UpdatedAt
		st.users[user.ID] = existing
		return nil
	})
}

type roomRepository struct{ s *Store }

func roomValue(r models.Room, field string) any {
	switch field {
	case "roomNumber":
		return r.RoomNumber
	case "floor":
		return float64(r.Floor)
	case "capacity":
		return float64(r.Capacity)
	case "price":
		return r.Price
	case "status":
		return string(r.Status)
	case "createdAt":
		return r.CreatedAt
	case "updatedAt":
		return r.UpdatedAt
	}
	return nil
}

func (r *roomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.rooms[room.ID]; ok {
			return database.ErrDuplicate
		}
		for _, existing := range st.rooms {
			if existing.RoomNumber == room.RoomNumber {
				return database.ErrDuplicate
			}
		}
		r.s.stamp(&room.CreatedAt, &room.UpdatedAt)
		st.rooms[room.ID] = cloneRoom(*room)
		st.track(room.ID)
		return nil
	})
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	var out *models.Room
	err := r.s.read(func(st *state) error {
		room, ok := st.rooms[id]
		if !ok {
			return database.ErrNotFound
		}
		room = cloneRoom(room)
		out = &room
		return nil
	})
	return out, err
}

// GetByIDForUpdate needs no lock of its own; transactions already hold the store lock
func (r *roomRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Room, error) {
	return r.GetByID(ctx, id)
}

func (r *roomRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Room, error) {
	out := make(map[string]*models.Room, len(ids))
	err := r.s.read(func(st *state) error {
		for _, id := range ids {
			if room, ok := st.rooms[id]; ok {
				room = cloneRoom(room)
				out[id] = &room
			}
		}
		return nil
	})
	return out, err
}

func (r *roomRepository) match(filter models.RoomFilter, room models.Room) bool {
	for _, cond := range filter.Conditions {
		if !cond.Match(roomValue(room, cond.Field)) {
			return false
		}
	}
	return true
}

func (r *roomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	rooms := []models.Room{}
	err := r.s.read(func(st *state) error {
		for _, room := range st.rooms {
			if r.match(filter, room) {
				rooms = append(rooms, cloneRoom(room))
			}
		}
		order(st, rooms, filter.Sort, func(r models.Room) string { return r.ID }, roomValue)
		return nil
	})
	return paginate(rooms, filter.Page), err
}

func (r *roomRepository) Count(ctx context.Context, filter models.RoomFilter) (int, error) {
	n := 0
	err := r.s.read(func(st *state) error {
		for _, room := range st.rooms {
			if r.match(filter, room) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *roomRepository) Update(ctx context.Context, room *models.Room) error {
	return r.s.write(func(st *state) error {
		existing, ok := st.rooms[room.ID]
		if !ok {
			return database.ErrNotFound
		}
		for id, other := range st.rooms {
			if id != room.ID && other.RoomNumber == room.RoomNumber {
				return database.ErrDuplicate
			}
		}
		room.CreatedAt = existing.CreatedAt
		r.s.stamp(nil, &room.UpdatedAt)
		st.rooms[room.ID] = cloneRoom(*room)
		return nil
	})
}

func (r *roomRepository) UpdateStatus(ctx context.Context, id string, status models.RoomStatus) error {
	return r.s.write(func(st *state) error {
		room, ok := st.rooms[id]
		if !ok {
			return database.ErrNotFound
		}
		room.Status = status
		r.s.stamp(nil, &room.UpdatedAt)
		st.rooms[id] = room
		return nil
	})
}

// Delete removes the room and, like the foreign keys in the SQL schema, its bookings and complaints
func (r *roomRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.rooms[id]; !ok {
			return database.ErrNotFound
		}
		delete(st.rooms, id)
		for bid, b := range st.bookings {
			if b.RoomID == id {
				delete(st.bookings, bid)
			}
		}
		for cid, c := range st.complaints {
			if c.RoomID == id {
				delete(st.complaints, cid)
			}
		}
		return nil
	})
}

type bookingRepository struct{ s *Store }

func bookingValue(b models.Booking, field string) any {
	switch field {
	case "createdAt":
		return b.CreatedAt
	case "checkInDate":
		return b.CheckInDate
	case "duration":
		return float64(b.Duration)
	case "totalAmount":
		return b.TotalAmount
	case "status":
		return string(b.Status)
	}
	return nil
}

func bookingMatches(filter models.BookingFilter, b models.Booking) bool {
	if filter.Status != "" && b.Status != filter.Status {
		return false
	}
	if filter.RoomID != "" && b.RoomID != filter.RoomID {
		return false
	}
	if filter.TenantID != "" && b.TenantID != filter.TenantID {
		return false
	}
	if filter.ActiveOnly && !b.Status.IsActive() {
		return false
	}
	return true
}

// holdsRoom reports whether another active booking already holds roomID
func holdsRoom(st *state, roomID, exceptID string) bool {
	for id, b := range st.bookings {
		if id != exceptID && b.RoomID == roomID && b.Status.IsActive() {
			return true
		}
	}
	return false
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.bookings[booking.ID]; ok {
			return database.ErrDuplicate
		}
		if booking.Status.IsActive() && holdsRoom(st, booking.RoomID, booking.ID) {
			return database.ErrRoomHeld
		}
		r.s.stamp(&booking.CreatedAt, &booking.UpdatedAt)
		st.bookings[booking.ID] = *booking
		st.track(booking.ID)
		return nil
	})
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var out *models.Booking
	err := r.s.read(func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return database.ErrNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *bookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.s.read(func(st *state) error {
		for _, b := range st.bookings {
			if bookingMatches(filter, b) {
				bookings = append(bookings, b)
			}
		}
		order(st, bookings, filter.Sort, func(b models.Booking) string { return b.ID }, bookingValue)
		return nil
	})
	return paginate(bookings, filter.Page), err
}

func (r *bookingRepository) Count(ctx context.Context, filter models.BookingFilter) (int, error) {
	n := 0
	err := r.s.read(func(st *state) error {
		for _, b := range st.bookings {
			if bookingMatches(filter, b) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *bookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	return r.s.write(func(st *state) error {
		existing, ok := st.bookings[booking.ID]
		if !ok {
			return database.ErrNotFound
		}
		if booking.Status.IsActive() && holdsRoom(st, existing.RoomID, booking.ID) {
			return database.ErrRoomHeld
		}
		existing.Status = booking.Status
		existing.PaymentStatus = booking.PaymentStatus
		r.s.stamp(nil, &existing.UpdatedAt)
		booking.UpdatedAt = existing.UpdatedAt
		st.bookings[booking.ID] = existing
		return nil
	})
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.bookings[id]; !ok {
			return database.ErrNotFound
		}
		delete(st.bookings, id)
		return nil
	})
}

type complaintRepository struct{ s *Store }

func complaintValue(c models.Complaint, field string) any {
	switch field {
	case "createdAt":
		return c.CreatedAt
	case "status":
		return string(c.Status)
	case "category":
		return string(c.Category)
	case "resolvedAt":
		if c.ResolvedAt != nil {
			return *c.ResolvedAt
		}
	}
	return nil
}

func complaintMatches(filter models.ComplaintFilter, c models.Complaint) bool {
	if filter.Status != "" && c.Status != filter.Status {
		return false
	}
	if filter.Category != "" && c.Category != filter.Category {
		return false
	}
	if filter.TenantID != "" && c.TenantID != filter.TenantID {
		return false
	}
	return true
}

func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.complaints[complaint.ID]; ok {
			return database.ErrDuplicate
		}
		r.s.stamp(&complaint.CreatedAt, &complaint.UpdatedAt)
		st.complaints[complaint.ID] = cloneComplaint(*complaint)
		st.track(complaint.ID)
		return nil
	})
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	var out *models.Complaint
	err := r.s.read(func(st *state) error {
		c, ok := st.complaints[id]
		if !ok {
			return database.ErrNotFound
		}
		c = cloneComplaint(c)
		out = &c
		return nil
	})
	return out, err
}

func (r *complaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	complaints := []models.Complaint{}
	err := r.s.read(func(st *state) error {
		for _, c := range st.complaints {
			if complaintMatches(filter, c) {
				complaints = append(complaints, cloneComplaint(c))
			}
		}
		order(st, complaints, filter.Sort, func(c models.Complaint) string { return c.ID }, complaintValue)
		return nil
	})
	return paginate(complaints, filter.Page), err
}

func (r *complaintRepository) Count(ctx context.Context, filter models.ComplaintFilter) (int, error) {
	n := 0
	err := r.s.read(func(st *state) error {
		for _, c := range st.complaints {
			if complaintMatches(filter, c) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *complaintRepository) Update(ctx context.Context, complaint *models.Complaint) error {
	return r.s.write(func(st *state) error {
		existing, ok := st.complaints[complaint.ID]
		if !ok {
			return database.ErrNotFound
		}
		existing.Category = complaint.Category
		existing.Status = complaint.Status
		existing.Resolution = complaint.Resolution
		existing.ResolvedAt = cloneTime(complaint.ResolvedAt)
		r.s.stamp(nil, &existing.UpdatedAt)
		complaint.UpdatedAt = existing.UpdatedAt
		st.complaints[complaint.ID] = existing
		return nil
	})
}

type visitorRepository struct{ s *Store }

func visitorValue(v models.Visitor, field string) any {
	switch field {
	case "checkInTime":
		return v.CheckInTime
	case "expectedCheckOutTime":
		return v.ExpectedCheckOutTime
	case "name":
		return v.Name
	case "status":
		return string(v.Status)
	case "createdAt":
		return v.CreatedAt
	}
	return nil
}

func visitorMatches(filter models.VisitorFilter, v models.Visitor) bool {
	if filter.Status != "" && v.Status != filter.Status {
		return false
	}
	if filter.TenantID != "" && v.TenantID != filter.TenantID {
		return false
	}
	if filter.From != nil && v.CheckInTime.Before(*filter.From) {
		return false
	}
	if filter.To != nil && v.CheckInTime.After(*filter.To) {
		return false
	}
	if filter.OverdueAt != nil && !(v.Status == models.VisitorStatusCheckedIn && v.ExpectedCheckOutTime.Before(*filter.OverdueAt)) {
		return false
	}
	return true
}

func (r *visitorRepository) Create(ctx context.Context, visitor *models.Visitor) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.visitors[visitor.ID]; ok {
			return database.ErrDuplicate
		}
		r.s.stamp(&visitor.CreatedAt, &visitor.UpdatedAt)
		st.visitors[visitor.ID] = cloneVisitor(*visitor)
		st.track(visitor.ID)
		return nil
	})
}

func (r *visitorRepository) GetByID(ctx context.Context, id string) (*models.Visitor, error) {
	var out *models.Visitor
	err := r.s.read(func(st *state) error {
		v, ok := st.visitors[id]
		if !ok {
			return database.ErrNotFound
		}
		v = cloneVisitor(v)
		out = &v
		return nil
	})
	return out, err
}

func (r *visitorRepository) List(ctx context.Context, filter models.VisitorFilter) ([]models.Visitor, error) {
	visitors := []models.Visitor{}
	err := r.s.read(func(st *state) error {
		for _, v := range st.visitors {
			if visitorMatches(filter, v) {
				visitors = append(visitors, cloneVisitor(v))
			}
		}
		order(st, visitors, filter.Sort, func(v models.Visitor) string { return v.ID }, visitorValue)
		return nil
	})
	return paginate(visitors, filter.Page), err
}

func (r *visitorRepository) Count(ctx context.Context, filter models.VisitorFilter) (int, error) {
	n := 0
	err := r.s.read(func(st *state) error {
		for _, v := range st.visitors {
			if visitorMatches(filter, v) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *visitorRepository) Update(ctx context.Context, visitor *models.Visitor) error {
	return r.s.write(func(st *state) error {
		existing, ok := st.visitors[visitor.ID]
		if !ok {
			return database.ErrNotFound
		}
		existing.Status = visitor.Status
		existing.ActualCheckOutTime = cloneTime(visitor.ActualCheckOutTime)
		existing.ExpectedCheckOutTime = visitor.ExpectedCheckOutTime
		r.s.stamp(nil, &existing.UpdatedAt)
		visitor.UpdatedAt = existing.UpdatedAt
		st.visitors[visitor.ID] = existing
		return nil
	})
}

type advertisementRepository struct{ s *Store }

func advertisementValue(a models.Advertisement, field string) any {
	switch field {
	case "createdAt":
		return a.CreatedAt
	case "title":
		return a.Title
	case "category":
		return a.Category
	case "price":
		if a.Price != nil {
			return *a.Price
		}
	}
	return nil
}

func advertisementMatches(filter models.AdvertisementFilter, a models.Advertisement) bool {
	if filter.Category != "" && a.Category != filter.Category {
		return false
	}
	if filter.UserID != "" && a.UserID != filter.UserID {
		return false
	}
	// SQL comparisons against a NULL price never hold
	if filter.MinPrice != nil && (a.Price == nil || *a.Price < *filter.MinPrice) {
		return false
	}
	if filter.MaxPrice != nil && (a.Price == nil || *a.Price > *filter.MaxPrice) {
		return false
	}
	return true
}

func (r *advertisementRepository) Create(ctx context.Context, ad *models.Advertisement) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.advertisements[ad.ID]; ok {
			return database.ErrDuplicate
		}
		r.s.stamp(&ad.CreatedAt, &ad.UpdatedAt)
		st.advertisements[ad.ID] = cloneAdvertisement(*ad)
		st.track(ad.ID)
		return nil
	})
}

func (r *advertisementRepository) GetByID(ctx context.Context, id string) (*models.Advertisement, error) {
	var out *models.Advertisement
	err := r.s.read(func(st *state) error {
		a, ok := st.advertisements[id]
		if !ok {
			return database.ErrNotFound
		}
		a = cloneAdvertisement(a)
		out = &a
		return nil
	})
	return out, err
}

func (r *advertisementRepository) List(ctx context.Context, filter models.AdvertisementFilter) ([]models.Advertisement, error) {
	ads := []models.Advertisement{}
	err := r.s.read(func(st *state) error {
		for _, a := range st.advertisements {
			if advertisementMatches(filter, a) {
				ads = append(ads, cloneAdvertisement(a))
			}
		}
		order(st, ads, filter.Sort, func(a models.Advertisement) string { return a.ID }, advertisementValue)
		return nil
	})
	return paginate(ads, filter.Page), err
}

func (r *advertisementRepository) Count(ctx context.Context, filter models.AdvertisementFilter) (int, error) {
	n := 0
	err := r.s.read(func(st *state) error {
		for _, a := range st.advertisements {
			if advertisementMatches(filter, a) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *advertisementRepository) Update(ctx context.Context, ad *models.Advertisement) error {
	return r.s.write(func(st *state) error {
		existing, ok := st.advertisements[ad.ID]
		if !ok {
			return database.ErrNotFound
		}
		ad.CreatedAt = existing.CreatedAt
		ad.UserID = existing.UserID
		r.s.stamp(nil, &ad.UpdatedAt)
		st.advertisements[ad.ID] = cloneAdvertisement(*ad)
		return nil
	})
}

func (r *advertisementRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.advertisements[id]; !ok {
			return database.ErrNotFound
		}
		delete(st.advertisements, id)
		return nil
	})
}

type auditLogRepository struct{ s *Store }

func (r *auditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	return r.s.write(func(st *state) error {
		if log.CreatedAt.IsZero() {
			log.CreatedAt = r.s.now()
		}
		st.auditLogs = append(st.auditLogs, *log)
		return nil
	})
}

func (r *auditLogRepository) Count(ctx context.Context, filter models.AuditLogFilter) (int, error) {
	n := 0
	err := r.s.read(func(st *state) error {
		for _, l := range st.auditLogs {
			if filter.Action != "" && l.Action != filter.Action {
				continue
			}
			if filter.EntityID != "" && (l.EntityID == nil || *l.EntityID != filter.EntityID) {
				continue
			}
			if filter.IPAddress != "" && l.IPAddress != filter.IPAddress {
				continue
			}
			if !filter.Since.IsZero() && l.CreatedAt.Before(filter.Since) {
				continue
			}
			n++
		}
		return nil
	})
	return n, err
}
