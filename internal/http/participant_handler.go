package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/event-manager/internal/application"
)

type participantService interface {
	CreateParticipant(ctx context.Context, input application.ParticipantInput) (application.Participant, error)
	UpdateParticipant(ctx context.Context, id int64, input application.ParticipantInput) (application.Participant, error)
	GetParticipant(ctx context.Context, id int64) (application.Participant, error)
	DeleteParticipant(ctx context.Context, id int64) error
	ListParticipants(ctx context.Context) ([]application.Participant, error)
	EventChoices(ctx context.Context) ([]application.Event, error)
}

// ParticipantHandler serves the participant pages.
type ParticipantHandler struct {
	service   participantService
	responder *Responder
	logger    *slog.Logger
}

func NewParticipantHandler(service participantService, responder *Responder, logger *slog.Logger) *ParticipantHandler {
	return &ParticipantHandler{service: service, responder: responder, logger: defaultLogger(logger)}
}

func (h *ParticipantHandler) log(r *http.Request, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(r, h.logger, "ParticipantHandler", operation, attrs...)
}

func (h *ParticipantHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil || h.responder == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	participants, err := h.service.ListParticipants(r.Context())
	if err != nil {
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Render(w, r, http.StatusOK, "participant_list.html", page{
		Title:  "Participants",
		Active: "participants",
		Data:   participants,
	})
}

func (h *ParticipantHandler) New(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	h.renderForm(w, r, http.StatusOK, h.createForm(application.ParticipantInput{}, nil))
}

func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	logger := h.log(r, "Create")
	if err := r.ParseForm(); err != nil {
		logger.WarnContext(r.Context(), "malformed form body", "error", err, "error_kind", "bad_request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	input := participantInputFromRequest(r)
	_, err := h.service.CreateParticipant(r.Context(), input)
	if err != nil {
		if fieldErrors, ok := validationErrors(err); ok {
			h.renderForm(w, r, http.StatusUnprocessableEntity, h.createForm(input, fieldErrors))
			return
		}
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Redirect(w, r, "/participants/", "Participant created successfully!")
}

func (h *ParticipantHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.NotFound(w, r)
		return
	}

	participant, err := h.service.GetParticipant(r.Context(), id)
	if err != nil {
		h.responder.HandleServiceError(w, r, err)
		return
	}

	eventIDs := make([]string, 0, len(participant.EventIDs))
	for _, eventID := range participant.EventIDs {
		eventIDs = append(eventIDs, strconv.FormatInt(eventID, 10))
	}
	input := application.ParticipantInput{Name: participant.Name, Email: participant.Email, EventIDs: eventIDs}
	h.renderForm(w, r, http.StatusOK, h.editForm(id, input, nil))
}

func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.NotFound(w, r)
		return
	}

	logger := h.log(r, "Update", "participant_id", id)
	if err := r.ParseForm(); err != nil {
		logger.WarnContext(r.Context(), "malformed form body", "error", err, "error_kind", "bad_request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	input := participantInputFromRequest(r)
	if _, err := h.service.UpdateParticipant(r.Context(), id, input); err != nil {
		if fieldErrors, ok := validationErrors(err); ok {
			h.renderForm(w, r, http.StatusUnprocessableEntity, h.editForm(id, input, fieldErrors))
			return
		}
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Redirect(w, r, "/participants/", "Participant updated successfully!")
}

func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.NotFound(w, r)
		return
	}

	if err := h.service.DeleteParticipant(r.Context(), id); err != nil {
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Redirect(w, r, "/participants/", "Participant deleted successfully!")
}

func (h *ParticipantHandler) createForm(input application.ParticipantInput, errs map[string]string) formView {
	return formView{
		Title:      "Add Participant",
		ButtonText: "Add Participant",
		Action:     "/participants/create/",
		CancelURL:  "/participants/",
		Errors:     errs,
		Values:     input,
		Selected:   selectedSet(input.EventIDs),
	}
}

func (h *ParticipantHandler) editForm(id int64, input application.ParticipantInput, errs map[string]string) formView {
	return formView{
		Title:      "Edit Participant",
		ButtonText: "Update Participant",
		Action:     "/participants/" + strconv.FormatInt(id, 10) + "/edit/",
		CancelURL:  "/participants/",
		Errors:     errs,
		Values:     input,
		Selected:   selectedSet(input.EventIDs),
	}
}

func (h *ParticipantHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form formView) {
	events, err := h.service.EventChoices(r.Context())
	if err != nil {
		h.responder.ServerError(w, r, err)
		return
	}
	form.Events = events

	h.responder.Render(w, r, status, "participant_form.html", page{
		Title:  form.Title,
		Active: "participants",
		Data:   form,
	})
}
