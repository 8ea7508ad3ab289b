package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"staybook/internal/bookings/service"
	"staybook/pkg/auth"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	UploadPaymentPath = "/api/upload-payment"

	// multipart parts above this are spooled to disk by net/http
	uploadMemory = 8 << 20
)

type PaymentUploadResponse struct {
	Message       string `json:"message"`
	ScreenshotURL string `json:"screenshotUrl"`
}

type BookingHandler struct {
	service service.BookingService
	guard   auth.Guard
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, guard auth.Guard, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, httputil.MessageResponse{
		Message: "Booking created successfully",
		Booking: booking,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	filter := model.BookingFilter{
		PropertyID: query.Get("propertyId"),
		RoomID:     query.Get("roomId"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := query.Get("status"); raw != "" {
		status, err := model.ParseBookingStatus(raw)
		if err != nil {
			h.writeError(w, "GetAll", apperrors.InvalidInput("invalid status parameter: "+raw))
			return
		}
		filter.Status = status
	}

	bookings, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := h.guard.Authenticate(r.Header.Get("Authorization"))
	if err != nil {
		h.log.Warn("Rejected unauthenticated status update", "booking_id", ps.ByName("id"), "reason", err)
		message := "invalid bearer token"
		if errors.Is(err, auth.ErrMissingCredential) {
			message = "missing bearer token"
		}
		h.writeError(w, "UpdateStatus", apperrors.Unauthorized(message))
		return
	}

	var req model.UpdateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), req.BookingStatus, caller)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.MessageResponse{
		Message: "Booking status updated successfully",
		Booking: booking,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RoomAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		h.writeError(w, "RoomAvailability", apperrors.MissingField("roomId"))
		return
	}
	year, err := httputil.QueryInt(r, "year")
	if err != nil {
		h.writeError(w, "RoomAvailability", err)
		return
	}
	month, err := httputil.QueryInt(r, "month")
	if err != nil {
		h.writeError(w, "RoomAvailability", err)
		return
	}

	availability, err := h.service.RoomAvailability(r.Context(), roomID, year, month)
	if err != nil {
		h.writeError(w, "RoomAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "RoomAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UploadPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "UploadPayment", apperrors.InvalidInput("file too large"))
			return
		}
		h.writeError(w, "UploadPayment", apperrors.InvalidInput("Invalid multipart form"))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.log.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	bookingID := r.FormValue("bookingId")
	if bookingID == "" {
		h.writeError(w, "UploadPayment", apperrors.MissingField("bookingId"))
		return
	}

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.writeError(w, "UploadPayment", apperrors.MissingField("screenshot"))
			return
		}
		h.writeError(w, "UploadPayment", apperrors.InvalidInput("Invalid screenshot upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error("failed to read uploaded screenshot", "booking_id", bookingID, "error", err)
		h.writeError(w, "UploadPayment", apperrors.InvalidInput("Invalid screenshot upload"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	booking, err := h.service.AttachPaymentProof(r.Context(), bookingID, data, contentType)
	if err != nil {
		h.writeError(w, "UploadPayment", err)
		return
	}

	if err := httputil.WriteSuccess(w, PaymentUploadResponse{
		Message:       "Payment screenshot uploaded successfully",
		ScreenshotURL: booking.PaymentScreenshotURL,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "UploadPayment", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/bookings", h.Create)
	router.GET("/api/bookings", h.GetAll)
	router.GET("/api/bookings/:id", h.GetByID)
	router.PATCH("/api/bookings/:id", h.UpdateStatus)
	router.GET("/api/room-availability", h.RoomAvailability)
	router.POST(UploadPaymentPath, h.UploadPayment)
}
