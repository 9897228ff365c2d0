// Package access decides whether a caller may perform an operation.
//
// The guard is a pure function of the caller, the operation and, for
// ownership-gated operations, the owner of the target. It never loads data;
// callers load the target between Check and CheckOwner so that a missing
// target yields NotFound before ownership is evaluated.
package access

import (
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/models"
)

// Caller identifies the principal making a request. The zero value is anonymous.
type Caller struct {
	ID   string
	Role models.Role
}

// Authenticated reports whether the caller carries an identity
func (c Caller) Authenticated() bool {
	return c.ID != ""
}

// IsMatron reports whether the caller manages the facility
func (c Caller) IsMatron() bool {
	return c.Role == models.RoleMatron
}

// Operation names a guarded action
type Operation string

const (
	OpListRooms  Operation = "room.list"
	OpReadRoom   Operation = "room.read"
	OpCreateRoom Operation = "room.create"
	OpUpdateRoom Operation = "room.update"
	OpDeleteRoom Operation = "room.delete"

	OpCreateBooking  Operation = "booking.create"
	OpListBookings   Operation = "booking.list"
	OpListMyBookings Operation = "booking.list_mine"
	OpReadBooking    Operation = "booking.read"
	OpUpdateBooking  Operation = "booking.update"
	OpDeleteBooking  Operation = "booking.delete"

	OpCreateComplaint  Operation = "complaint.create"
	OpListComplaints   Operation = "complaint.list"
	OpListMyComplaints Operation = "complaint.list_mine"
	OpReadComplaint    Operation = "complaint.read"
	OpUpdateComplaint  Operation = "complaint.update"

	OpCreateVisitor       Operation = "visitor.create"
	OpListVisitors        Operation = "visitor.list"
	OpListOverdueVisitors Operation = "visitor.list_overdue"
	OpListTenantVisitors  Operation = "visitor.list_tenant"
	OpReadVisitor         Operation = "visitor.read"
	OpCheckoutVisitor     Operation = "visitor.checkout"

	OpCreateAdvertisement  Operation = "advertisement.create"
	OpListAdvertisements   Operation = "advertisement.list"
	OpListMyAdvertisements Operation = "advertisement.list_mine"
	OpReadAdvertisement    Operation = "advertisement.read"
	OpUpdateAdvertisement  Operation = "advertisement.update"
	OpDeleteAdvertisement  Operation = "advertisement.delete"

	OpReadProfile    Operation = "user.read_self"
	OpUpdateProfile  Operation = "user.update_self"
	OpChangePassword Operation = "user.change_password"
	OpListTenants    Operation = "user.list_tenants"
)

type policy struct {
	public bool
	roles  []models.Role
	owned  bool
}

var (
	matronOnly = []models.Role{models.RoleMatron}
	tenantOnly = []models.Role{models.RoleTenant}
)

var policies = map[Operation]policy{
	OpListRooms:  {public: true},
	OpReadRoom:   {public: true},
	OpCreateRoom: {roles: matronOnly},
	OpUpdateRoom: {roles: matronOnly},
	OpDeleteRoom: {roles: matronOnly},

	OpCreateBooking:  {roles: tenantOnly},
	OpListBookings:   {roles: matronOnly},
	OpListMyBookings: {roles: tenantOnly},
	OpReadBooking:    {owned: true},
	OpUpdateBooking:  {owned: true},
	OpDeleteBooking:  {roles: matronOnly},

	OpCreateComplaint:  {roles: tenantOnly},
	OpListComplaints:   {roles: matronOnly},
	OpListMyComplaints: {roles: tenantOnly},
	OpReadComplaint:    {owned: true},
	OpUpdateComplaint:  {roles: matronOnly},

	OpCreateVisitor:       {roles: matronOnly},
	OpListVisitors:        {roles: matronOnly},
	OpListOverdueVisitors: {roles: matronOnly},
	OpListTenantVisitors:  {owned: true},
	OpReadVisitor:         {owned: true},
	OpCheckoutVisitor:     {roles: matronOnly},

	OpCreateAdvertisement:  {},
	OpListAdvertisements:   {},
	OpListMyAdvertisements: {},
	OpReadAdvertisement:    {public: true},
	OpUpdateAdvertisement:  {owned: true},
	OpDeleteAdvertisement:  {owned: true},

	OpReadProfile:    {},
	OpUpdateProfile:  {},
	OpChangePassword: {},
	OpListTenants:    {roles: matronOnly},
}

// Check applies the authentication and role rules for op. Unknown operations are denied.
func Check(caller Caller, op Operation) error {
	p, ok := policies[op]
	if !ok {
		return apperror.Forbidden("operation not permitted")
	}
	if p.public {
		return nil
	}
	if !caller.Authenticated() {
		return apperror.Unauthenticated("authentication required")
	}
	if len(p.roles) > 0 && !hasRole(caller.Role, p.roles) {
		return apperror.Forbidden("role " + string(caller.Role) + " is not allowed to perform this action")
	}
	return nil
}

// CheckOwner applies the ownership rule for op once the target has been loaded.
// Matrons pass every ownership check. Operations without an ownership rule pass.
func CheckOwner(caller Caller, op Operation, ownerID string) error {
	if !policies[op].owned {
		return nil
	}
	if caller.IsMatron() {
		return nil
	}
	if caller.Authenticated() && caller.ID == ownerID {
		return nil
	}
	return apperror.Forbidden("not authorized to access this resource")
}

func hasRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
