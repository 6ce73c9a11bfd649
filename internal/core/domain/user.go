package domain

// AccessType is the access tier assigned to a console user.
type AccessType string

const (
	AccessSuperAdmin AccessType = "super_admin"
	AccessAdmin      AccessType = "admin"
	AccessManager    AccessType = "manager"
	AccessStaff      AccessType = "staff"
	AccessUser       AccessType = "user"
)

// ParseAccessType normalises a role name from the upstream API into an
// AccessType. Unknown or empty input maps to AccessUser, the least
// privileged tier. A malformed payload must never grant access.
func ParseAccessType(s string) AccessType {
	switch AccessType(s) {
	case AccessSuperAdmin, AccessAdmin, AccessManager, AccessStaff, AccessUser:
		return AccessType(s)
	default:
		return AccessUser
	}
}

// User models the authenticated operator. It is built from the upstream
// login/registration metadata and intentionally carries no secret fields, so
// a serialised user can never leak credentials.
type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	AccessType  AccessType `json:"access_type"`
	Permissions []string   `json:"permissions,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
}

// HasPermission reports whether the user holds the named permission string.
func (u *User) HasPermission(p string) bool {
	if u == nil {
		return false
	}
	for _, have := range u.Permissions {
		if have == p {
			return true
		}
	}
	return false
}
