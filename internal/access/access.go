// Package access holds the authorization table for the comment API.
package access

import "quillpress/internal/models"

type Role string
type Action string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
)

const (
	ActionListComments  Action = "comment:list"
	ActionReadComment   Action = "comment:read"
	ActionRecent        Action = "comment:recent"
	ActionCreateComment Action = "comment:create"
	ActionUpdateComment Action = "comment:update"
	ActionDeleteComment Action = "comment:delete"
	ActionReact         Action = "comment:react"
	ActionFlag          Action = "comment:flag"
	ActionModerate      Action = "comment:moderate"
	ActionViewQueue     Action = "moderation:view"
	ActionResolveFlag   Action = "flag:resolve"
	ActionNotifications Action = "notification:read"
)

// table lists, per action, the roles allowed to reach the handler. Ownership of
// a specific comment is checked again by the comment service.
var table = map[Action][]Role{
	ActionListComments:  {RoleAnonymous, RoleUser, RoleAdmin},
	ActionReadComment:   {RoleAnonymous, RoleUser, RoleAdmin},
	ActionRecent:        {RoleAnonymous, RoleUser, RoleAdmin},
	ActionCreateComment: {RoleAnonymous, RoleUser, RoleAdmin},
	ActionUpdateComment: {RoleUser, RoleAdmin},
	ActionDeleteComment: {RoleUser, RoleAdmin},
	ActionReact:         {RoleUser, RoleAdmin},
	ActionFlag:          {RoleUser, RoleAdmin},
	ActionNotifications: {RoleUser, RoleAdmin},
	ActionModerate:      {RoleAdmin},
	ActionViewQueue:     {RoleAdmin},
	ActionResolveFlag:   {RoleAdmin},
}

func Can(role Role, action Action) bool {
	for _, allowed := range table[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// RequiresLogin reports whether anonymous callers are turned away, which the
// gateway answers with 401 rather than 403.
func RequiresLogin(action Action) bool {
	return !Can(RoleAnonymous, action)
}

func RoleOf(user *models.User) Role {
	switch {
	case user == nil:
		return RoleAnonymous
	case user.IsAdmin():
		return RoleAdmin
	default:
		return RoleUser
	}
}
