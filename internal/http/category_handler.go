package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/event-manager/internal/application"
)

type categoryService interface {
	CreateCategory(ctx context.Context, input application.CategoryInput) (application.Category, error)
	UpdateCategory(ctx context.Context, id int64, input application.CategoryInput) (application.Category, error)
	GetCategory(ctx context.Context, id int64) (application.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]application.Category, error)
}

// CategoryHandler serves the category pages.
type CategoryHandler struct {
	service   categoryService
	responder *Responder
	logger    *slog.Logger
}

func NewCategoryHandler(service categoryService, responder *Responder, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, responder: responder, logger: defaultLogger(logger)}
}

func (h *CategoryHandler) log(r *http.Request, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(r, h.logger, "CategoryHandler", operation, attrs...)
}

func (h *CategoryHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil || h.responder == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Render(w, r, http.StatusOK, "category_list.html", page{
		Title:  "Categories",
		Active: "categories",
		Data:   categories,
	})
}

func (h *CategoryHandler) New(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	h.renderForm(w, r, http.StatusOK, h.createForm(application.CategoryInput{}, nil))
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	logger := h.log(r, "Create")
	if err := r.ParseForm(); err != nil {
		logger.WarnContext(r.Context(), "malformed form body", "error", err, "error_kind", "bad_request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	input := categoryInputFromRequest(r)
	_, err := h.service.CreateCategory(r.Context(), input)
	if err != nil {
		if fieldErrors, ok := validationErrors(err); ok {
			h.renderForm(w, r, http.StatusUnprocessableEntity, h.createForm(input, fieldErrors))
			return
		}
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Redirect(w, r, "/categories/", "Category created successfully!")
}

func (h *CategoryHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.NotFound(w, r)
		return
	}

	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		h.responder.HandleServiceError(w, r, err)
		return
	}

	input := application.CategoryInput{Name: category.Name, Description: category.Description}
	h.renderForm(w, r, http.StatusOK, h.editForm(id, input, nil))
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.NotFound(w, r)
		return
	}

	logger := h.log(r, "Update", "category_id", id)
	if err := r.ParseForm(); err != nil {
		logger.WarnContext(r.Context(), "malformed form body", "error", err, "error_kind", "bad_request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	input := categoryInputFromRequest(r)
	if _, err := h.service.UpdateCategory(r.Context(), id, input); err != nil {
		if fieldErrors, ok := validationErrors(err); ok {
			h.renderForm(w, r, http.StatusUnprocessableEntity, h.editForm(id, input, fieldErrors))
			return
		}
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Redirect(w, r, "/categories/", "Category updated successfully!")
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.NotFound(w, r)
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		h.responder.HandleServiceError(w, r, err)
		return
	}

	h.responder.Redirect(w, r, "/categories/", "Category deleted successfully!")
}

func (h *CategoryHandler) createForm(input application.CategoryInput, errs map[string]string) formView {
	return formView{
		Title:      "Create Category",
		ButtonText: "Create Category",
		Action:     "/categories/create/",
		CancelURL:  "/categories/",
		Errors:     errs,
		Values:     input,
	}
}

func (h *CategoryHandler) editForm(id int64, input application.CategoryInput, errs map[string]string) formView {
	return formView{
		Title:      "Edit Category",
		ButtonText: "Update Category",
		Action:     "/categories/" + strconv.FormatInt(id, 10) + "/edit/",
		CancelURL:  "/categories/",
		Errors:     errs,
		Values:     input,
	}
}

func (h *CategoryHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form formView) {
	h.responder.Render(w, r, status, "category_form.html", page{
		Title:  form.Title,
		Active: "categories",
		Data:   form,
	})
}
