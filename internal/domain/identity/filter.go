package identity

import "strings"

// FilterUsers narrows users to those whose full name or email contains query,
// case-insensitively, optionally restricted to one role. The input order is
// preserved and an empty query with no role returns the slice unchanged.
func FilterUsers(users []*User, query, role string) []*User {
	if query == "" && role == "" {
		return users
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]*User, 0, len(users))
	for _, u := range users {
		if role != "" && u.Role != role {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(u.FullName), q) &&
			!strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		out = append(out, u)
	}
	return out
}
