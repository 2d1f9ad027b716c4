package httpapi

import (
	"context"
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"netopscore/internal/analysis"
	"netopscore/internal/auth"
	"netopscore/internal/blobstore"
	"netopscore/internal/documents"
	"netopscore/internal/domain"
	"netopscore/internal/foldertree"
	custommw "netopscore/internal/middleware"
	"netopscore/internal/projects"
	"netopscore/internal/summary"
	"netopscore/internal/topology"
)

// Deps bundles every service the HTTP surface calls into. One instance
// is built once in cmd/netopscore and threaded through New.
type Deps struct {
	DB  *sql.DB
	Blobs *blobstore.Store

	JWT          *auth.JWTService
	Passwords    *auth.PasswordService
	LoginLimiter *custommw.LoginRateLimiter

	Projects  *projects.Service
	Folders   *foldertree.Service
	Documents *documents.Service
	Analysis  *analysis.Controller
	Topology  *topology.Service
	Summary   *summary.Service

	MaxDeviceImageBytes int64
	Development         bool

	Log zerolog.Logger
}

// middlewares returns the base chain applied to every request:
// request-id propagation, production-mode flagging, then bearer auth.
func (d Deps) middlewares() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		custommw.RequestID(),
		custommw.ProductionMode(!d.Development),
		requestLogger(d.Log),
		custommw.Auth(d.JWT),
	}
}

// projectRole resolves username's membership role in projectID, used by
// custommw.RequireRole gates across every project-scoped route.
func (d Deps) projectRole(ctx context.Context, projectID, username string) (domain.Role, error) {
	m, err := d.Projects.GetMember(ctx, projectID, username)
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

func (d Deps) requireRead() echo.MiddlewareFunc {
	return custommw.RequireRole(d.projectRole, domain.Role.CanRead)
}

func (d Deps) requireUpload() echo.MiddlewareFunc {
	return custommw.RequireRole(d.projectRole, domain.Role.CanUpload)
}

func (d Deps) requireManageSettings() echo.MiddlewareFunc {
	return custommw.RequireRole(d.projectRole, domain.Role.CanManageProjectSettings)
}

func (d Deps) requireManageUsers() echo.MiddlewareFunc {
	return custommw.RequireRole(d.projectRole, domain.Role.CanManageUsers)
}

func (d Deps) requireDeleteDevice() echo.MiddlewareFunc {
	return custommw.RequireRole(d.projectRole, domain.Role.CanDeleteDevice)
}
