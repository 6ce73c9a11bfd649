package domain

// AccessRule is a declarative capability requirement attached to routes and
// UI actions. A zero rule allows any authenticated user.
type AccessRule struct {
	// Roles, when non-empty, requires the user's AccessType to be a member.
	Roles []AccessType
	// Permission, when non-empty, requires membership in the user's
	// permission set.
	Permission string
}

// Allows evaluates the rule against a user. It is a pure membership check:
// no role hierarchy, no inference, no mutation of either argument.
//
//   - nil user always denies.
//   - Roles set: AccessType must be in the set.
//   - Permission set: the string must be in the user's permissions.
//   - Both set: both must pass.
//   - Neither set: any authenticated user passes.
func (r AccessRule) Allows(u *User) bool {
	if u == nil {
		return false
	}
	if len(r.Roles) > 0 {
		ok := false
		for _, role := range r.Roles {
			if u.AccessType == role {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if r.Permission != "" && !u.HasPermission(r.Permission) {
		return false
	}
	return true
}
