package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/event-manager/internal/application"
)

type eventService interface {
	ListEvents(ctx context.Context, query application.EventQuery) (application.EventList, error)
	Categories(ctx context.Context) ([]application.Category, error)
	GetEvent(ctx context.Context, id int64) (application.Event, error)
	CreateEvent(ctx context.Context, input application.EventInput) (application.Event, error)
	UpdateEvent(ctx context.Context, id int64, input application.EventInput) (application.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

// EventHandler serves the event list, detail and form pages.
type EventHandler struct {
	service   eventService
	responder *Responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, responder *Responder, logger *slog.Logger) *EventHandler {
	return &EventHandler{service: service, responder: responder, logger: defaultLogger(logger)}
}

func (h *EventHandler) log(r *http.Request, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(r, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil || h.responder == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	query := application.ParseEventQuery(r.URL.Query())
	list, err := h.service.ListEvents(r.Context(), query)
	if err != nil {
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Render(w, r, http.StatusOK, "event_list.html", page{
		Title:  "Events",
		Active: "events",
		Data:   list,
	})
}

func (h *EventHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.NotFound(w, r)
		return
	}

	event, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Render(w, r, http.StatusOK, "event_detail.html", page{
		Title:  event.Name,
		Active: "events",
		Data:   event,
	})
}

func (h *EventHandler) New(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	h.renderForm(w, r, http.StatusOK, h.createForm(application.EventInput{}, nil))
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	logger := h.log(r, "Create")
	if err := r.ParseForm(); err != nil {
		logger.WarnContext(r.Context(), "malformed form body", "error", err, "error_kind", "bad_request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	input := eventInputFromRequest(r)
	_, err := h.service.CreateEvent(r.Context(), input)
	if err != nil {
		if fieldErrors, ok := validationErrors(err); ok {
			h.renderForm(w, r, http.StatusUnprocessableEntity, h.createForm(input, fieldErrors))
			return
		}
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Redirect(w, r, "/events/", "Event created successfully")
}

func (h *EventHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.NotFound(w, r)
		return
	}

	event, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.renderForm(w, r, http.StatusOK, h.editForm(id, eventInputFrom(event), nil))
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.NotFound(w, r)
		return
	}

	logger := h.log(r, "Update", "event_id", id)
	if err := r.ParseForm(); err != nil {
		logger.WarnContext(r.Context(), "malformed form body", "error", err, "error_kind", "bad_request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	input := eventInputFromRequest(r)
	if _, err := h.service.UpdateEvent(r.Context(), id, input); err != nil {
		if fieldErrors, ok := validationErrors(err); ok {
			h.renderForm(w, r, http.StatusUnprocessableEntity, h.editForm(id, input, fieldErrors))
			return
		}
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Redirect(w, r, eventPath(id), "Event updated successfully!")
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.NotFound(w, r)
		return
	}

	if err := h.service.DeleteEvent(r.Context(), id); err != nil {
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Redirect(w, r, "/events/", "Event deleted successfully!")
}

func (h *EventHandler) createForm(input application.EventInput, errs map[string]string) formView {
	return formView{
		Title:      "Create Event",
		ButtonText: "Create Event",
		Action:     "/events/create/",
		CancelURL:  "/events/",
		Errors:     errs,
		Values:     input,
	}
}

func (h *EventHandler) editForm(id int64, input application.EventInput, errs map[string]string) formView {
	return formView{
		Title:      "Edit Event",
		ButtonText: "Update Event",
		Action:     eventPath(id) + "edit/",
		CancelURL:  eventPath(id),
		Errors:     errs,
		Values:     input,
	}
}

// renderForm loads the category choices before rendering. A failure there is
// a server error even when the form itself only failed validation.
func (h *EventHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form formView) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.responder.ServerError(w, r, err)
		return
	}
	form.Categories = categories

	h.responder.Render(w, r, status, "event_form.html", page{
		Title:  form.Title,
		Active: "events",
		Data:   form,
	})
}

func eventPath(id int64) string {
	return "/events/" + strconv.FormatInt(id, 10) + "/"
}
