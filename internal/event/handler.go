package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	mw "github.com/benmalka/gatherly/pkg/middleware"
	"github.com/benmalka/gatherly/pkg/response"
)

// Handler handles HTTP requests for event operations
type Handler struct {
	service *Service
	auth    *mw.Authenticator
}

// NewHandler creates a new event handler with service dependency injected
func NewHandler(service *Service, auth *mw.Authenticator) *Handler {
	return &Handler{service: service, auth: auth}
}

// Routes returns the router for event endpoints. Reads are public;
// mutations take the token-embedded role path plus the admin gate.
// Sending an invitation needs a valid token but no particular role.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	r.With(h.auth.ExtractRoles).Post("/send-invitation", h.SendInvitation)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.ExtractRoles)
		r.Use(mw.RequireAdmin)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/members", h.AddMember)
		r.Delete("/{id}/members/{userId}", h.RemoveMember)
	})

	return r
}

// unknownMembersBody mirrors the batch-validation failure payload
type unknownMembersBody struct {
	Message           string   `json:"message"`
	NonExistingEmails []string `json:"nonExistingEmails"`
}

// Create handles POST /events (admin only)
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request body CreateEventRequest true "Event creation request"
// @Success      201 {object} EventResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /events [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	date, errs := req.Validate()
	if len(errs) > 0 {
		response.ValidationFailed(w, "Invalid fields", errs)
		return
	}

	event, err := h.service.Create(r.Context(), &req, date)
	if err != nil {
		var unknown *UnknownMembersError
		if errors.As(err, &unknown) {
			response.JSON(w, http.StatusBadRequest, unknownMembersBody{
				Message:           unknown.Error(),
				NonExistingEmails: unknown.NonExisting,
			})
			return
		}
		response.InternalError(w, "Failed to create event")
		return
	}

	response.JSON(w, http.StatusCreated, event.ToResponse())
}

// List handles GET /events
// @Summary      List all events
// @Tags         events
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.ListResponse{data=[]EventResponse}
// @Router       /events [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	events, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list events")
		return
	}

	eventResponses := make([]*EventResponse, len(events))
	for i, event := range events {
		eventResponses[i] = event.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, eventResponses, meta)
}

// GetByID handles GET /events/{id}
// @Summary      Get event by ID
// @Description  Get an event along with its resolved member list
// @Tags         events
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} EventResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /events/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	event, members, err := h.service.GetByIDWithMembers(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get event")
		return
	}

	resp := event.ToResponse()
	resp.Members = make([]*MemberResponse, len(members))
	for i, member := range members {
		resp.Members[i] = member.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// Update handles PUT /events/{id} (admin only)
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        request body UpdateEventRequest true "Event update request"
// @Success      200 {object} EventResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /events/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	date, errs := req.Validate()
	if len(errs) > 0 {
		response.ValidationFailed(w, "Invalid fields", errs)
		return
	}

	event, err := h.service.Update(r.Context(), id, &req, date)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update event")
		return
	}

	response.JSON(w, http.StatusOK, event.ToResponse())
}

// Delete handles DELETE /events/{id} (admin only)
// @Summary      Delete an event
// @Tags         events
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} map[string]string
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /events/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete event")
		return
	}

	response.Message(w, http.StatusOK, "Event deleted successfully")
}

// AddMember handles POST /events/{id}/members (admin only)
// @Summary      Add an event member
// @Description  Add a user to the event by email; adding a present member is a 400
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        request body AddMemberRequest true "Member add request"
// @Success      200 {object} MemberResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /events/{id}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" {
		response.ValidationFailed(w, "Invalid fields", []string{"email is required"})
		return
	}

	member, err := h.service.AddMemberByEmail(r.Context(), id, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrMemberAlreadyExists), errors.Is(err, ErrUnknownMemberEmail):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to add event member")
		}
		return
	}

	response.JSON(w, http.StatusOK, member.ToResponse())
}

// RemoveMember handles DELETE /events/{id}/members/{userId} (admin only)
// @Summary      Remove an event member
// @Description  Remove a user from the event; removing an absent member is a 400
// @Tags         events
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        userId path int true "User ID"
// @Success      200 {object} map[string]string
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /events/{id}/members/{userId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.service.RemoveMember(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrMemberNotFound):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to remove event member")
		}
		return
	}

	response.Message(w, http.StatusOK, "Event member removed successfully")
}

// SendInvitation handles POST /events/send-invitation (any authenticated user)
// @Summary      Send an event invitation email
// @Description  Mail an invitation for the named event to the given address
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request body SendInvitationRequest true "Invitation request"
// @Success      200 {object} map[string]string
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /events/send-invitation [post]
func (h *Handler) SendInvitation(w http.ResponseWriter, r *http.Request) {
	var req SendInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.ToEmail == "" || req.EventName == "" {
		response.ValidationFailed(w, "Invalid fields", []string{"toEmail and eventName are required"})
		return
	}

	var fromEmail string
	if identity, ok := mw.GetIdentity(r.Context()); ok {
		fromEmail = identity.Email
	}

	if err := h.service.SendInvitation(r.Context(), fromEmail, req.ToEmail, req.EventName); err != nil {
		response.InternalError(w, "Failed to send invitation email")
		return
	}

	response.Message(w, http.StatusOK, "Invitation email sent successfully")
}
