package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/mind-engage/studyhub/internal/accounts"
	authmw "github.com/mind-engage/studyhub/internal/auth/middleware"
	"github.com/mind-engage/studyhub/internal/logger"
	"github.com/mind-engage/studyhub/internal/roles"
)

type RoleService interface {
	DefaultStudent(ctx context.Context, uid string) error
	Submit(ctx context.Context, uid, username, target, reason string) (roles.Request, error)
	Pending(ctx context.Context) ([]roles.Request, error)
	Approve(ctx context.Context, uid, role string) (string, error)
	Reject(ctx context.Context, uid string) error
}

var okResp = map[string]bool{"ok": true}

func roleErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roles.ErrBadTarget), errors.Is(err, accounts.ErrInvalidRole):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, roles.ErrNotFound), errors.Is(err, accounts.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, accounts.ErrLastAdmin):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// POST /roles/default-student
func DefaultStudentHandler(svc RoleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DefaultStudent(r.Context(), authmw.SubjectFromContext(r.Context())); err != nil {
			roleErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, okResp)
	}
}

type roleRequestReq struct {
	TargetRole string `json:"target_role" validate:"required,oneof=teacher admin"`
	Reason     string `json:"reason" validate:"max=500"`
}

// POST /roles/request
func RequestRoleHandler(svc RoleService, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roleRequestReq
		if !decodeAndValidate(w, r, &req) {
			return
		}
		uid := authmw.SubjectFromContext(r.Context())
		if _, err := svc.Submit(r.Context(), uid, authmw.NameFromContext(r.Context()), req.TargetRole, req.Reason); err != nil {
			roleErr(w, err)
			return
		}
		log.Info("role requested", "uid", uid, "target_role", req.TargetRole)
		respondJSON(w, http.StatusOK, okResp)
	}
}

// GET /roles/pending
func PendingRolesHandler(svc RoleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Pending(r.Context())
		if err != nil {
			roleErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

type approveRoleReq struct {
	UID  string `json:"uid" validate:"required,notblank"`
	Role string `json:"role" validate:"omitempty,oneof=student teacher admin"`
}

// POST /roles/approve
func ApproveRoleHandler(svc RoleService, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req approveRoleReq
		if !decodeAndValidate(w, r, &req) {
			return
		}
		role, err := svc.Approve(r.Context(), req.UID, req.Role)
		if err != nil {
			roleErr(w, err)
			return
		}
		log.Info("role approved", "uid", req.UID, "role", role, "by", authmw.SubjectFromContext(r.Context()))
		respondJSON(w, http.StatusOK, okResp)
	}
}

type rejectRoleReq struct {
	UID string `json:"uid" validate:"required,notblank"`
}

// POST /roles/reject
func RejectRoleHandler(svc RoleService, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rejectRoleReq
		if !decodeAndValidate(w, r, &req) {
			return
		}
		if err := svc.Reject(r.Context(), req.UID); err != nil {
			roleErr(w, err)
			return
		}
		log.Info("role request rejected", "uid", req.UID)
		respondJSON(w, http.StatusOK, okResp)
	}
}
