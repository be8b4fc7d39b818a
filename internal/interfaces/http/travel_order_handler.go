package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bapperida/siperjadin/internal/application/dto"
	"github.com/bapperida/siperjadin/internal/application/usecase"
	"github.com/bapperida/siperjadin/internal/domain"
	"github.com/bapperida/siperjadin/internal/domain/repository"
)

// TravelOrderHandler handles travel document requests (protected).
type TravelOrderHandler struct {
	uc    *usecase.TravelOrderUseCase
	pdfUC *usecase.DocumentPDFUseCase
}

// NewTravelOrderHandler builds the handler.
func NewTravelOrderHandler(uc *usecase.TravelOrderUseCase, pdfUC *usecase.DocumentPDFUseCase) *TravelOrderHandler {
	return &TravelOrderHandler{uc: uc, pdfUC: pdfUC}
}

func actorFromCtx(c *fiber.Ctx) usecase.Actor {
	return usecase.Actor{
		ID:   GetUserID(c),
		Name: GetUserName(c),
		Role: GetRole(c),
	}
}

// Create godoc
// @Summary      Create a travel document (draft or submitted)
// @Tags         travel-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.TravelOrderRequest  true  "document fields plus optional action (save|submit)"
// @Success      201   {object}  dto.TravelOrderMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ValidationErrorResponse
// @Router       /api/travel-orders [post]
func (h *TravelOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.TravelOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	out, err := h.uc.Create(c.Context(), actorFromCtx(c), in)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      List travel documents, newest first
// @Tags         travel-orders
// @Produce      json
// @Security     BearerAuth
// @Param        page    query  int     false  "page number (1-based)"
// @Param        status  query  string  false  "filter by status"
// @Param        type    query  string  false  "filter by document type (SPD|SPT)"
// @Success      200  {object}  dto.TravelOrderListResponse
// @Failure      422  {object}  dto.ValidationErrorResponse
// @Router       /api/travel-orders [get]
func (h *TravelOrderHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	filter := repository.TravelOrderFilter{
		Status:       c.Query("status"),
		DocumentType: c.Query("type"),
	}
	out, err := h.uc.List(c.Context(), page, filter)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Get one travel document
// @Tags         travel-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "document id"
// @Success      200  {object}  dto.TravelOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/travel-orders/{id} [get]
func (h *TravelOrderHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id required"})
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Edit a draft or run a lifecycle action (submit, approve, reject)
// @Tags         travel-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "document id"
// @Param        body  body  dto.TravelOrderRequest  true  "fields (save/submit) or just action (approve/reject)"
// @Success      200   {object}  dto.TravelOrderMutationResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ValidationErrorResponse
// @Router       /api/travel-orders/{id} [put]
func (h *TravelOrderHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id required"})
	}
	var in dto.TravelOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	out, err := h.uc.Update(c.Context(), actorFromCtx(c), id, in)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Delete a draft document
// @Tags         travel-orders
// @Security     BearerAuth
// @Param        id  path  string  true  "document id"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/travel-orders/{id} [delete]
func (h *TravelOrderHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id required"})
	}
	if err := h.uc.Delete(c.Context(), id); err != nil {
		return writeDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DownloadPDF godoc
// @Summary      Download the printable PDF of a document
// @Tags         travel-orders
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path  string  true  "document id"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/travel-orders/{id}/pdf [get]
func (h *TravelOrderHandler) DownloadPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id required"})
	}
	pdfBytes, filename, err := h.pdfUC.Download(c.Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// Stats godoc
// @Summary      Document counts per status
// @Tags         travel-orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.TravelOrderStatsResponse
// @Router       /api/travel-orders/stats [get]
func (h *TravelOrderHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// writeDomainError maps domain errors to HTTP responses. Field-level
// validation failures carry their per-field messages; everything else maps
// to the sentinel's status code.
func writeDomainError(c *fiber.Ctx, err error) error {
	if ve, ok := domain.AsValidationError(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidationErrorResponse{Code: "VALIDATION", Errors: ve.Fields})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "document not found"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "the document changed concurrently, retry the request"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
