package consultation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/auth"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/i18n"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/pkg/pagination"
)

type Handler struct {
	svc         *Service
	defaultLang i18n.Lang
}

func NewHandler(svc *Service, defaultLang i18n.Lang) *Handler {
	return &Handler{svc: svc, defaultLang: defaultLang}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/consultations", h.Create, auth.RequireRole(auth.RolePatient))
	api.GET("/consultations", h.List)
	api.GET("/consultations/:id", h.Get)
	api.PUT("/consultations/:id", h.Update)
	api.DELETE("/consultations/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))

	api.PUT("/consultations/:id/assign", h.Assign, auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
	api.PUT("/consultations/:id/status", h.UpdateStatus, auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
	api.POST("/consultations/:id/comments", h.AddComment)
	api.GET("/consultations/:id/comments", h.ListComments)
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func actorFrom(c echo.Context) (auth.Actor, error) {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return auth.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return actor, nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cons, err := h.svc.Create(c.Request().Context(), actor, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, cons)
}

func (h *Handler) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForActor(c.Request().Context(), actor, c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	lang := i18n.Resolve(c, h.defaultLang)
	d, err := h.svc.GetDetail(c.Request().Context(), actor, id, lang)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

type assignRequest struct {
	DoctorID uuid.UUID `json:"doctor_id"`
}

func (h *Handler) Assign(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in assignRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if in.DoctorID == uuid.Nil {
		// doctors claiming for themselves may omit the body
		in.DoctorID = actor.ID
	}
	cons, err := h.svc.Assign(c.Request().Context(), actor, id, in.DoctorID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cons)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in statusRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cons, err := h.svc.UpdateStatus(c.Request().Context(), actor, id, in.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cons)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) AddComment(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in commentRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cm, err := h.svc.AddComment(c.Request().Context(), actor, id, in.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, cm)
}

func (h *Handler) ListComments(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetDetail(c.Request().Context(), actor, id, i18n.Resolve(c, h.defaultLang))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d.Comments)
}

func (h *Handler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cons, err := h.svc.UpdateFields(c.Request().Context(), actor, id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cons)
}

func (h *Handler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
