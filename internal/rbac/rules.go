package rbac

const (
	PermNotesView      = "notes:view"
	PermNotesUpload    = "notes:upload"
	PermNotesDeleteOwn = "notes:delete-own"
	PermNotesDeleteAny = "notes:delete-any"
	PermNotesReview    = "notes:review"
	PermMockGenerate   = "mock:generate"
	PermTokensViewOwn  = "tokens:view-own"
	PermTokensViewAll  = "tokens:view-all"
	PermTokensRedeem   = "tokens:redeem"
	PermRolesRequest   = "roles:request"
	PermRolesReview    = "roles:review"
	PermChangePassword = "user:change_password"
)

var studentPerms = []string{
	PermNotesView,
	PermNotesUpload,
	PermNotesDeleteOwn,
	PermMockGenerate,
	PermTokensViewOwn,
	PermTokensRedeem,
	PermRolesRequest,
	PermChangePassword,
}

// RolePermissions is the default policy. Teachers get everything a student
// can do plus review and moderation.
var RolePermissions = map[string][]string{
	"student": studentPerms,
	"teacher": append(append([]string{}, studentPerms...),
		PermNotesReview,
		PermNotesDeleteAny,
		PermTokensViewAll,
	),
	"admin": {"*"},
}
