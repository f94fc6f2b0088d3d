package handler

import (
	"net/http"
	"strconv"
	"time"

	"ecshop/internal/config"
	"ecshop/internal/domain/model"
	"ecshop/internal/middleware"
	"ecshop/internal/repository"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin（ADMINのみ）
type AdminHandler struct {
	imports *usecase.CatalogImportUsecase
	audits  *usecase.AuditLogUsecase
}

// DI
func NewAdminHandler(imports *usecase.CatalogImportUsecase, audits *usecase.AuditLogUsecase) *AdminHandler {
	return &AdminHandler{imports: imports, audits: audits}
}

type ImportRequest struct {
	// ファイルパスかhttp(s)のURL
	Source string `json:"source" validate:"required,max=1024"`
	Async  bool   `json:"async"`
}

type ImportErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type ImportAcceptedResponse struct {
	TaskID string `json:"task_id"`
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/imports", h.importFeed)
	g.GET("/audit-logs", h.listAuditLogs)
}

func (h *AdminHandler) importFeed(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ImportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	in := usecase.ImportInput{Source: req.Source, ActorUserID: adminID}

	if req.Async {
		id, err := h.imports.ImportAsync(c.Request().Context(), in)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusAccepted, ImportAcceptedResponse{TaskID: id})
	}

	out, err := h.imports.Import(c.Request().Context(), in)
	if err != nil {
		if ie, ok := usecase.AsImportError(err); ok {
			msg := ie.Error()
			if ie.Kind == usecase.ImportUnknown {
				msg = ie.Kind.Describe()
			}
			return c.JSON(ie.Kind.Status(), ImportErrorResponse{Error: msg, Kind: string(ie.Kind)})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /admin/audit-logs?action=&resource_type=&resource_id=&actor_user_id=&since=&limit=&offset=
func (h *AdminHandler) listAuditLogs(c echo.Context) error {
	f := repository.AuditLogFilter{
		Action:       model.AuditAction(c.QueryParam("action")),
		ResourceType: model.AuditResourceType(c.QueryParam("resource_type")),
	}

	ints := map[string]*int64{"resource_id": &f.ResourceID, "actor_user_id": &f.ActorUserID}
	for name, dst := range ints {
		v := c.QueryParam(name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		}
		*dst = n
	}
	if v := c.QueryParam("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid since"})
		}
		f.Since = t
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		f.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		f.Offset = n
	}

	out, err := h.audits.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
