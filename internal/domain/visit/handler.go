package visit

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/visitflow/visitflow/internal/platform/auth"
	"github.com/visitflow/visitflow/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	clinical := api.Group("", auth.RequireRole("admin", "manager", "doctor", "nurse", "registrar"))
	clinical.GET("/visits", h.ListVisits)
	clinical.GET("/visits/:id", h.GetVisit)
	clinical.GET("/admissions", h.ListAdmissions)
	clinical.GET("/admissions/:id", h.GetAdmission)
	clinical.GET("/admissions/:id/vitals", h.ListVitalSigns)

	intake := api.Group("", auth.RequireRole("admin", "manager", "doctor", "registrar"))
	intake.POST("/visits", h.CreateVisit)
	intake.POST("/admissions", h.CreateAdmission)

	staff := api.Group("", auth.RequireRole("admin", "manager", "doctor", "nurse"))
	staff.PATCH("/visits/:id/status", h.UpdateVisitStatus)
	staff.PATCH("/admissions/:id/status", h.UpdateAdmissionStatus)

	doctor := api.Group("", auth.RequireRole("admin", "doctor"))
	doctor.PUT("/visits/:id", h.UpdateVisitDetails)
	doctor.PUT("/visits/:id/orders", h.SaveVisitOrders)
	doctor.PUT("/admissions/:id/orders", h.SaveAdmissionOrders)
	doctor.POST("/visits/:id/sign-note", h.SignVisitNote)
	doctor.POST("/visits/:id/sign-diagnosis", h.SignVisitDiagnosis)
	doctor.POST("/admissions/:id/sign-diagnosis", h.SignAdmissionDiagnosis)
	doctor.POST("/admissions/:id/discharge", h.SignDischarge)

	nursing := api.Group("", auth.RequireRole("admin", "doctor", "nurse"))
	nursing.POST("/admissions/:id/tasks", h.AddNursingTask)

	// Task completion and vitals entry belong to the nursing staff
	nurseOnly := api.Group("", auth.RequireRole("nurse"))
	nurseOnly.POST("/admissions/:id/tasks/:taskId/toggle", h.ToggleNursingTask)
	nurseOnly.POST("/admissions/:id/vitals", h.RecordVitalSigns)
}

// httpError maps the engine's error taxonomy onto status codes.
func httpError(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Msg)
	}
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return echo.NewHTTPError(http.StatusConflict, pe.Msg)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// -- Visits --

func (h *Handler) CreateVisit(c echo.Context) error {
	var v Visit
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateVisit(c.Request().Context(), &v); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	v, err := h.svc.GetVisit(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "visit not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListVisits(c echo.Context) error {
	pg := pagination.FromContext(c)
	visits, total, err := h.svc.ListVisits(c.Request().Context(), VisitStatus(c.QueryParam("status")), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateVisitStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Status VisitStatus `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.UpdateVisitStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) UpdateVisitDetails(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		DoctorID  *uuid.UUID `json:"doctor_id"`
		Symptoms  *string    `json:"symptoms"`
		Diagnosis *string    `json:"diagnosis"`
		Note      *string    `json:"clinical_note"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.UpdateVisitDetails(c.Request().Context(), id, body.DoctorID, body.Symptoms, body.Diagnosis, body.Note)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

type ordersBody struct {
	ClinicalOrders []OrderLineInput        `json:"clinical_orders"`
	Prescription   []PrescriptionLineInput `json:"prescription"`
}

func (h *Handler) SaveVisitOrders(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body ordersBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.UserNameFromContext(c.Request().Context())
	result, err := h.svc.SaveVisitOrders(c.Request().Context(), id, body.ClinicalOrders, body.Prescription, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) SignVisitNote(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.SignVisitNote(c.Request().Context(), id, body.Text)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) SignVisitDiagnosis(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.SignVisitDiagnosis(c.Request().Context(), id, body.Text)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// -- Admissions --

func (h *Handler) CreateAdmission(c echo.Context) error {
	var a Admission
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateAdmission(c.Request().Context(), &a); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAdmission(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.GetAdmission(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "admission not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAdmissions(c echo.Context) error {
	pg := pagination.FromContext(c)
	admissions, total, err := h.svc.ListAdmissions(c.Request().Context(), AdmissionStatus(c.QueryParam("status")), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(admissions, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAdmissionStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Status AdmissionStatus `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.UpdateAdmissionStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) SaveAdmissionOrders(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body ordersBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.UserNameFromContext(c.Request().Context())
	result, err := h.svc.SaveAdmissionOrders(c.Request().Context(), id, body.ClinicalOrders, body.Prescription, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) SignAdmissionDiagnosis(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.SignAdmissionDiagnosis(c.Request().Context(), id, body.Text)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) SignDischarge(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Summary string `json:"summary"`
		Confirm bool   `json:"confirm"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.UserNameFromContext(c.Request().Context())
	a, err := h.svc.SignDischarge(c.Request().Context(), id, body.Summary, ConfirmFlag(body.Confirm), actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// -- Nursing --

func (h *Handler) AddNursingTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Description string     `json:"description"`
		ScheduledAt *time.Time `json:"scheduled_at"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	scheduledAt := time.Time{}
	if body.ScheduledAt != nil {
		scheduledAt = *body.ScheduledAt
	}
	actor := auth.UserNameFromContext(c.Request().Context())
	t, err := h.svc.AddNursingTask(c.Request().Context(), id, body.Description, scheduledAt, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) ToggleNursingTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "taskId")
	if err != nil {
		return err
	}
	actor := auth.UserNameFromContext(c.Request().Context())
	t, err := h.svc.ToggleNursingTask(c.Request().Context(), id, taskID, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) RecordVitalSigns(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var rec VitalSignRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.UserNameFromContext(c.Request().Context())
	if err := h.svc.RecordVitalSigns(c.Request().Context(), id, &rec, actor); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListVitalSigns(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	records, err := h.svc.ListVitalSigns(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}
