package http

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authmw "github.com/mind-engage/studyhub/internal/auth/middleware"
	"github.com/mind-engage/studyhub/internal/logger"
	"github.com/mind-engage/studyhub/internal/notes"
	"github.com/mind-engage/studyhub/internal/paper"
	"github.com/mind-engage/studyhub/internal/rbac"
)

// Deps are the services the HTTP surface is built from.
type Deps struct {
	Log      *logger.Logger
	Auth     *authmw.AuthService
	Accounts AccountStore
	Roles    authmw.RoleLookup
	// AllowClaimFallback trusts the token's role for subjects missing from
	// the accounts table (offline mode).
	AllowClaimFallback bool

	Notes    *notes.Service
	Tokens   TokenStore
	RoleReqs RoleService

	Papers paper.Generator
	Bank   fs.FS

	CORSOrigins       []string
	UploadMaxBytes    int64
	TokensPerApproval int
	LeaderboardLimit  int
	RequestTimeout    time.Duration
}

func (d Deps) base() chi.Router {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

func (d Deps) authed(r chi.Router) {
	r.Use(authmw.JWTMiddleware(d.Auth))
	r.Use(authmw.AttachRoleFromDB(d.Roles, d.AllowClaimFallback, d.Log))
}

// NewRouter builds the main API.
func NewRouter(d Deps) chi.Router {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	r := d.base()

	r.Post("/auth/signup", SignupHandler(d.Accounts, d.Auth, d.Log))
	r.Post("/auth/login", LoginHandler(d.Accounts, d.Auth, d.Log))
	r.Route("/uploads", func(ur chi.Router) { MountUploads(ur, d.Notes) })

	r.Group(func(pr chi.Router) {
		d.authed(pr)

		pr.Get("/auth/me", MeHandler(d.Accounts))
		pr.With(rbac.Require(rbac.PermChangePassword)).
			Post("/users/change-password", ChangePasswordHandler(d.Accounts))

		// notes
		pr.With(rbac.Require(rbac.PermNotesView)).Get("/api/notes", ListNotesHandler(d.Notes.Store))
		pr.With(rbac.Require(rbac.PermNotesUpload)).Get("/api/notes/mine", MyNotesHandler(d.Notes.Store))
		pr.With(rbac.Require(rbac.PermNotesUpload)).
			Post("/api/upload", UploadNoteHandler(d.Notes, d.UploadMaxBytes, d.Log))
		pr.With(rbac.RequireAny(rbac.PermNotesDeleteOwn, rbac.PermNotesDeleteAny)).
			Delete("/api/notes/{id}", DeleteNoteHandler(d.Notes))

		// teacher verification
		pr.Route("/api/teacher", func(tr chi.Router) {
			tr.Use(rbac.Require(rbac.PermNotesReview))
			tr.Get("/pending-notes", PendingNotesHandler(d.Notes.Store))
			tr.Get("/stats", ReviewStatsHandler(d.Notes))
			tr.Post("/approve/{id}", ApproveNoteHandler(d.Notes.Store, d.TokensPerApproval, d.Log))
			tr.Post("/reject/{id}", RejectNoteHandler(d.Notes.Store, d.Log))
		})

		// tokens
		pr.With(rbac.RequireAny(rbac.PermTokensViewOwn, rbac.PermTokensViewAll)).
			Get("/api/user/tokens/{studentName}", TokenBalanceHandler(d.Tokens))
		pr.With(rbac.RequireAny(rbac.PermTokensViewOwn, rbac.PermTokensViewAll)).
			Get("/api/user/tokens/{studentName}/history", TokenHistoryHandler(d.Tokens))
		pr.With(rbac.RequireAny(rbac.PermTokensViewOwn, rbac.PermTokensViewAll)).
			Get("/api/users/tokens", LeaderboardHandler(d.Tokens, d.LeaderboardLimit))
		pr.With(rbac.Require(rbac.PermTokensRedeem)).
			Post("/api/user/redeem", RedeemHandler(d.Tokens, d.Log))
		pr.Get("/api/rewards/catalog", CatalogHandler(d.Tokens))

		// mock papers
		pr.With(rbac.Require(rbac.PermMockGenerate)).Get("/api/mock", MockPaperHandler(d.Papers, d.Log))
		pr.With(rbac.Require(rbac.PermMockGenerate)).Get("/api/mock/subjects", MockSubjectsHandler(d.Bank))
	})
	return r
}

// NewRolesRouter builds the role management API served by rolesd.
func NewRolesRouter(d Deps) chi.Router {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	r := d.base()
	r.Route("/roles", func(rr chi.Router) {
		d.authed(rr)
		rr.Post("/default-student", DefaultStudentHandler(d.RoleReqs))
		rr.With(rbac.Require(rbac.PermRolesRequest)).Post("/request", RequestRoleHandler(d.RoleReqs, d.Log))

		rr.Group(func(ar chi.Router) {
			ar.Use(rbac.Require(rbac.PermRolesReview))
			ar.Get("/pending", PendingRolesHandler(d.RoleReqs))
			ar.Post("/approve", ApproveRoleHandler(d.RoleReqs, d.Log))
			ar.Post("/reject", RejectRoleHandler(d.RoleReqs, d.Log))
		})
	})
	return r
}
