package http

import (
	"context"
	"net/http"

	"github.com/example/event-manager/internal/application"
)

type dashboardService interface {
	Dashboard(ctx context.Context, filter application.DashboardFilter) (application.Dashboard, error)
}

// DashboardHandler serves the home page.
type DashboardHandler struct {
	service   dashboardService
	responder *Responder
}

// NewDashboardHandler builds the home page handler. Failures are logged by the
// service and the responder.
func NewDashboardHandler(service dashboardService, responder *Responder) *DashboardHandler {
	return &DashboardHandler{service: service, responder: responder}
}

func (h *DashboardHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil || h.responder == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	filter := application.ParseDashboardFilter(r.URL.Query().Get("filter"))

	dashboard, err := h.service.Dashboard(r.Context(), filter)
	if err != nil {
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Render(w, r, http.StatusOK, "dashboard.html", page{
		Title:  "Dashboard",
		Active: "dashboard",
		Data:   dashboard,
	})
}
