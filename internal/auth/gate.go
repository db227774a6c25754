// Package auth is the authorization gate: one table mapping (role, action) to
// a minimum privilege, consulted by every mutating handler before an actor
// message is sent. Denial is a typed error, never a silent no-op.
package auth

import (
	"minbar-hub/internal/models"
	"minbar-hub/internal/utils"

	"github.com/google/uuid"
)

// Action names an operation a caller can attempt against the core.
type Action string

const (
	ActionBrowseApproved  Action = "browse_approved"
	ActionViewPostDetail  Action = "view_post_detail"
	ActionCreatePost      Action = "create_post"
	ActionComment         Action = "comment"
	ActionViewOwnProfile  Action = "view_own_profile"
	ActionViewModeration  Action = "view_moderation_queue"
	ActionApprovePost     Action = "approve_post"
	ActionRejectPost      Action = "reject_post"
	ActionDeleteAnyPost   Action = "delete_any_post"
	ActionListUsers       Action = "list_users"
	ActionSoftDeleteUser  Action = "soft_delete_user"
	ActionRestoreUser     Action = "restore_user"
	ActionUpdateRole      Action = "update_role"
	ActionViewCredentials Action = "view_credentials"
)

// Privilege ranks. Anonymous callers rank below every role.
const (
	rankAnonymous = iota
	rankUser
	rankAdmin
	rankSuperAdmin
)

func roleRank(role models.UserRole) int {
	switch role {
	case models.RoleUser:
		return rankUser
	case models.RoleAdmin:
		return rankAdmin
	case models.RoleSuperAdmin:
		return rankSuperAdmin
	}
	return rankAnonymous
}

// minimumRank is the policy table. Keeping it as data rather than scattered
// conditionals makes the policy auditable and testable on its own.
var minimumRank = map[Action]int{
	ActionBrowseApproved:  rankAnonymous,
	ActionViewPostDetail:  rankAnonymous,
	ActionCreatePost:      rankUser,
	ActionComment:         rankUser,
	ActionViewOwnProfile:  rankUser,
	ActionViewModeration:  rankAdmin,
	ActionApprovePost:     rankAdmin,
	ActionRejectPost:      rankAdmin,
	ActionDeleteAnyPost:   rankAdmin,
	ActionListUsers:       rankAdmin,
	ActionSoftDeleteUser:  rankAdmin,
	ActionRestoreUser:     rankAdmin,
	ActionUpdateRole:      rankSuperAdmin,
	ActionViewCredentials: rankSuperAdmin,
}

// Check decides whether the acting identity may perform the action. A nil
// actor is an anonymous caller. Returns nil when allowed.
func Check(actor *models.User, action Action) *utils.AppError {
	required, known := minimumRank[action]
	if !known {
		return utils.NewDeniedError("unknown action " + string(action))
	}

	rank := rankAnonymous
	if actor != nil {
		rank = roleRank(actor.Role)
	}

	if rank < required {
		if actor == nil {
			return utils.NewDeniedError("authentication required for " + string(action))
		}
		return utils.NewDeniedError(string(actor.Role) + " may not " + string(action))
	}
	return nil
}

// CheckPostDelete allows moderators to delete any post and authors to delete
// their own, in any status.
func CheckPostDelete(actor *models.User, authorID uuid.UUID) *utils.AppError {
	if actor == nil {
		return utils.NewDeniedError("authentication required for delete_post")
	}
	if actor.Role.CanModerate() || actor.ID == authorID {
		return nil
	}
	return utils.NewDeniedError(string(actor.Role) + " may not delete another user's post")
}

// CheckRoleTarget guards account mutations against targeting a super admin.
// The surface never offered those controls; an API must refuse them outright.
func CheckRoleTarget(target *models.User) *utils.AppError {
	if target != nil && target.Role == models.RoleSuperAdmin {
		return utils.NewDeniedError("the super admin account cannot be modified")
	}
	return nil
}
