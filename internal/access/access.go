// Package access holds the role/ownership rules for conversations. Every
// caller (REST, realtime, services) goes through these predicates so the
// rules cannot drift between routes.
package access

import (
	"github.com/yungbote/deskchat-backend/internal/data/repos"
	types "github.com/yungbote/deskchat-backend/internal/domain"
)

func CanCreate(p types.Principal) bool {
	return p.Role == types.RoleClient
}

func CanAssign(p types.Principal) bool {
	return p.Role == types.RoleAttendant || p.Role == types.RoleAdmin
}

func isAssigned(p types.Principal, c *types.Conversation) bool {
	return c.AttendantID != nil && *c.AttendantID == p.ID
}

// CanView: client sees own; attendant sees pending or assigned-to-self; admin sees all.
func CanView(p types.Principal, c *types.Conversation) bool {
	if c == nil {
		return false
	}
	switch p.Role {
	case types.RoleAdmin:
		return true
	case types.RoleClient:
		return c.ClientID == p.ID
	case types.RoleAttendant:
		return c.Status == types.StatusPending || isAssigned(p, c)
	}
	return false
}

func CanClose(p types.Principal, c *types.Conversation) bool {
	if c == nil {
		return false
	}
	switch p.Role {
	case types.RoleAdmin:
		return true
	case types.RoleClient:
		return c.ClientID == p.ID
	case types.RoleAttendant:
		return isAssigned(p, c)
	}
	return false
}

// Decision is the outcome of a write check. Denied means the principal
// has no right to the conversation; Blocked means they do, but its
// current status forbids the write.
type Decision int

const (
	Allowed Decision = iota
	Denied
	Blocked
)

// CanAppend: client writes only into own active conversation; attendant
// only into a conversation assigned to them, whatever its status; admin always.
func CanAppend(p types.Principal, c *types.Conversation) Decision {
	if c == nil {
		return Denied
	}
	switch p.Role {
	case types.RoleAdmin:
		return Allowed
	case types.RoleClient:
		if c.ClientID != p.ID {
			return Denied
		}
		if c.Status != types.StatusActive {
			return Blocked
		}
		return Allowed
	case types.RoleAttendant:
		if isAssigned(p, c) {
			return Allowed
		}
		return Denied
	}
	return Denied
}

// ListFilter renders the CanView rule as a repository filter.
func ListFilter(p types.Principal) (repos.ConversationFilter, bool) {
	switch p.Role {
	case types.RoleAdmin:
		return repos.ConversationFilter{}, true
	case types.RoleClient:
		id := p.ID
		return repos.ConversationFilter{ClientID: &id}, true
	case types.RoleAttendant:
		id := p.ID
		return repos.ConversationFilter{PendingOrAttendantID: &id}, true
	}
	return repos.ConversationFilter{}, false
}
