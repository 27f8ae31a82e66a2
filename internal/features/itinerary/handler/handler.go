package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"trip-stitcher/internal/core/logger"
	"trip-stitcher/internal/features/itinerary/domain"
	"trip-stitcher/internal/features/itinerary/ports"
	"trip-stitcher/internal/features/itinerary/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ItineraryHandler handles HTTP requests for itineraries.
type ItineraryHandler struct {
	service  ports.ItineraryService
	validate *validator.Validate
}

// NewItineraryHandler creates a new ItineraryHandler.
func NewItineraryHandler(service ports.ItineraryService) *ItineraryHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ItineraryHandler{
		service:  service,
		validate: v,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
	// Fields lists the request fields that failed validation.
	Fields []string `json:"fields,omitempty"`
}

// CoordinatesRequest is a WGS84 position.
type CoordinatesRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// LocationRequest is a place reference. Either id or label is required.
type LocationRequest struct {
	ID          string              `json:"id" validate:"required_without=Label"`
	Label       string              `json:"label" validate:"required_without=ID"`
	Address     string              `json:"address"`
	Coordinates *CoordinatesRequest `json:"coordinates" validate:"omitempty"`
}

// SegmentRequest is one segment of an edited itinerary.
type SegmentRequest struct {
	ID                    string          `json:"id"`
	Kind                  string          `json:"kind" validate:"required,oneof=FLIGHT TRANSFER HOTEL ACTIVITY OTHER"`
	StartLocation         LocationRequest `json:"start_location" validate:"required"`
	EndLocation           LocationRequest `json:"end_location" validate:"required"`
	StartTime             time.Time       `json:"start_time" validate:"required"`
	EndTime               time.Time       `json:"end_time" validate:"required,gtefield=StartTime"`
	Provenance            string          `json:"provenance" validate:"omitempty,oneof=IMPORTED SYNTHESIZED"`
	Confidence            float64         `json:"confidence" validate:"gte=0,lte=1"`
	ConfirmationReference string          `json:"confirmation_reference"`
}

// ReplaceSegmentsRequest is the request body for PUT /itineraries/{id}/segments.
type ReplaceSegmentsRequest struct {
	Segments []SegmentRequest `json:"segments" validate:"required,min=1,dive"`
}

// ImportRequest is the request body for POST /itineraries/{id}/imports.
type ImportRequest struct {
	DocumentURL  string `json:"document_url" validate:"required,url"`
	DocumentType string `json:"document_type" validate:"required,oneof=pdf email html image"`
}

// GetItinerary godoc
// @Summary Get an itinerary
// @Description Returns the stored, repaired segment sequence and its diagnostics
// @Tags itineraries
// @Produce json
// @Param id path string true "Itinerary ID"
// @Success 200 {object} domain.Itinerary
// @Failure 404 {object} ErrorResponse
// @Router /itineraries/{id} [get]
func (h *ItineraryHandler) GetItinerary(c *fiber.Ctx) error {
	itinerary, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(itinerary)
}

// DeleteItinerary godoc
// @Summary Delete an itinerary
// @Tags itineraries
// @Param id path string true "Itinerary ID"
// @Success 204
// @Failure 409 {object} ErrorResponse
// @Router /itineraries/{id} [delete]
func (h *ItineraryHandler) DeleteItinerary(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReplaceSegments godoc
// @Summary Replace the segments of an itinerary
// @Description Stores the edited segment list and repairs continuity gaps
// @Tags itineraries
// @Accept json
// @Produce json
// @Param id path string true "Itinerary ID"
// @Param body body ReplaceSegmentsRequest true "Segments"
// @Success 200 {object} domain.RepairResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /itineraries/{id}/segments [put]
func (h *ItineraryHandler) ReplaceSegments(c *fiber.Ctx) error {
	var req ReplaceSegmentsRequest
	if ok, err := h.parse(c, &req); !ok {
		return err
	}

	segments := lo.Map(req.Segments, func(s SegmentRequest, _ int) domain.Segment { return s.toDomain() })
	result, err := h.service.ReplaceSegments(c.UserContext(), c.Params("id"), segments)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

// RepairItinerary godoc
// @Summary Re-run continuity repair
// @Tags itineraries
// @Produce json
// @Param id path string true "Itinerary ID"
// @Success 200 {object} domain.RepairResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /itineraries/{id}/repair [post]
func (h *ItineraryHandler) RepairItinerary(c *fiber.Ctx) error {
	result, err := h.service.Repair(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

// ImportDocument godoc
// @Summary Import segments from a travel document
// @Description Extracts segments from the document, merges them and repairs the itinerary
// @Tags itineraries
// @Accept json
// @Produce json
// @Param id path string true "Itinerary ID"
// @Param body body ImportRequest true "Document reference"
// @Success 200 {object} domain.RepairResult
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /itineraries/{id}/imports [post]
func (h *ItineraryHandler) ImportDocument(c *fiber.Ctx) error {
	var req ImportRequest
	if ok, err := h.parse(c, &req); !ok {
		return err
	}

	doc := domain.SourceDocument{URL: req.DocumentURL, Type: domain.DocumentType(req.DocumentType)}
	result, err := h.service.Import(c.UserContext(), c.Params("id"), doc)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

// ExportCalendar godoc
// @Summary Export an itinerary as iCalendar
// @Tags itineraries
// @Produce text/calendar
// @Param id path string true "Itinerary ID"
// @Success 200 {string} string
// @Failure 404 {object} ErrorResponse
// @Router /itineraries/{id}/calendar.ics [get]
func (h *ItineraryHandler) ExportCalendar(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := h.service.ExportCalendar(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.ics"`, id))
	return c.Send(data)
}

// parse decodes and validates the body. When ok is false the error response
// has already been written and err is the result of writing it.
func (h *ItineraryHandler) parse(c *fiber.Ctx, req interface{}) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   rayID(c),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return false, c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: "validation failed",
				RayID:   rayID(c),
				Fields: lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
					return fmt.Sprintf("%s: %s", fieldPath(fe), fe.Tag())
				}),
			})
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}
	return true, nil
}

// fail maps service errors to HTTP responses.
func (h *ItineraryHandler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var malformed *domain.MalformedSegmentError
	switch {
	case errors.Is(err, service.ErrItineraryNotFound):
		status, message = fiber.StatusNotFound, "itinerary not found"
	case errors.Is(err, service.ErrItineraryLocked):
		status, message = fiber.StatusConflict, "itinerary is being updated, retry later"
	case errors.Is(err, service.ErrNoSegments):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrImportsDisabled):
		status, message = fiber.StatusServiceUnavailable, "document imports are disabled"
	case errors.Is(err, service.ErrExtractionFailed):
		status, message = fiber.StatusBadGateway, "document extraction failed"
	case errors.As(err, &malformed):
		status, message = fiber.StatusUnprocessableEntity, malformed.Error()
	}

	if status >= fiber.StatusInternalServerError {
		logger.ForRequest(c.Params("id"), rayID(c)).Error("Itinerary request failed", zap.Error(err))
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: message,
		RayID:   rayID(c),
	})
}

func (s SegmentRequest) toDomain() domain.Segment {
	return domain.Segment{
		ID:                    s.ID,
		Kind:                  domain.SegmentKind(s.Kind),
		StartLocation:         s.StartLocation.toDomain(),
		EndLocation:           s.EndLocation.toDomain(),
		StartTime:             s.StartTime,
		EndTime:               s.EndTime,
		Provenance:            domain.Provenance(s.Provenance),
		Confidence:            s.Confidence,
		ConfirmationReference: s.ConfirmationReference,
	}
}

func (l LocationRequest) toDomain() domain.Location {
	loc := domain.Location{ID: l.ID, Label: l.Label, Address: l.Address}
	if l.Coordinates != nil {
		loc.Coordinates = &domain.Coordinates{Lat: l.Coordinates.Lat, Lon: l.Coordinates.Lon}
	}
	return loc
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func rayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
