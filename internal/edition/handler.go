// AngelaMos | 2026
// handler.go

package edition

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/edition-console/internal/backend"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
	"github.com/carterperez-dev/templates/edition-console/internal/view"
)

const (
	listPath        = "/editions"
	deletedListPath = "/editions?show_deleted=true"

	templateList   = "editions.html"
	templateForm   = "edition_form.html"
	templateDelete = "edition_delete.html"
	templatePurge  = "edition_purge.html"
)

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any)
}

// Flasher queues a notification for the page the user is redirected to.
type Flasher interface {
	Flash(w http.ResponseWriter, r *http.Request, kind, message string)
}

type Handler struct {
	service  *Service
	renderer Renderer
	flasher  Flasher
}

func NewHandler(service *Service, renderer Renderer, flasher Flasher) *Handler {
	return &Handler{
		service:  service,
		renderer: renderer,
		flasher:  flasher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(gate)

		r.Get("/editions", h.List)
		r.Post("/editions", h.Create)
		r.Get("/editions/new", h.New)
		r.Get("/editions/{id}/edit", h.Edit)
		r.Post("/editions/{id}", h.Update)
		r.Get("/editions/{id}/delete", h.ConfirmDelete)
		r.Post("/editions/{id}/delete", h.Delete)
		r.Post("/editions/{id}/restore", h.Restore)
		r.Get("/editions/{id}/permanent", h.ConfirmPurge)
		r.Post("/editions/{id}/permanent", h.Purge)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ParseListParams(r.URL.Query())

	lv := ListView{
		Search:      params.Search,
		ShowDeleted: params.ShowDeleted,
	}

	editions, total, err := h.service.List(r.Context(), middleware.GetToken(r.Context()), params)
	if err != nil {
		slog.WarnContext(r.Context(), "list editions failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)

		if middleware.WantsJSON(r) {
			core.JSONError(w, core.NewAppError(err, backend.ErrorMessage(err),
				http.StatusBadGateway, "BACKEND_ERROR"))
			return
		}
		lv.LoadError = backend.ErrorMessage(err)
	}

	if middleware.WantsJSON(r) {
		core.OK(w, ListResponse{Editions: editions, Total: total})
		return
	}

	lv.Editions = editions
	lv.Total = total
	h.renderer.Render(w, r, http.StatusOK, templateList, "Editions", lv)
}

func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, templateForm, "New edition", FormView{})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := FormFromRequest(r)
	if err != nil {
		h.formFailed(w, r, FormView{}, core.ValidationError("invalid form submission"))
		return
	}

	if err := h.service.Create(r.Context(), middleware.GetToken(r.Context()), form); err != nil {
		h.formFailed(w, r, FormView{Form: form}, err)
		return
	}

	h.logMutation(r, OpCreate, "")
	h.done(w, r, http.StatusCreated, "Edition "+form.Name+" created.", listPath)
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, ok := h.load(w, r, id)
	if !ok {
		return
	}

	if middleware.WantsJSON(r) {
		core.OK(w, e)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, templateForm, "Edit edition", FormView{
		IsEdit: true,
		ID:     e.ID,
		Form:   FormFromEdition(e),
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fv := FormView{IsEdit: true, ID: id}

	form, err := FormFromRequest(r)
	if err != nil {
		h.formFailed(w, r, fv, core.ValidationError("invalid form submission"))
		return
	}
	fv.Form = form

	if err := h.service.Update(r.Context(), middleware.GetToken(r.Context()), id, fv.Form); err != nil {
		h.formFailed(w, r, fv, err)
		return
	}

	h.logMutation(r, OpUpdate, id)
	h.done(w, r, http.StatusOK, "Edition "+fv.Form.Name+" updated.", listPath)
}

func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	e, ok := h.load(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	h.renderer.Render(w, r, http.StatusOK, templateDelete, "Delete edition", ConfirmView{Edition: e})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmed := r.PostFormValue("confirm") == "yes"

	err := h.service.SoftDelete(r.Context(), middleware.GetToken(r.Context()), id, confirmed)
	if err != nil {
		h.mutationFailed(w, r, err, listPath)
		return
	}

	h.logMutation(r, OpDelete, id)
	h.done(w, r, http.StatusOK, "Edition deleted. It can be restored from the deleted list.", listPath)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Restore(r.Context(), middleware.GetToken(r.Context()), id); err != nil {
		h.mutationFailed(w, r, err, deletedListPath)
		return
	}

	h.logMutation(r, OpRestore, id)
	h.done(w, r, http.StatusOK, "Edition restored.", listPath)
}

func (h *Handler) ConfirmPurge(w http.ResponseWriter, r *http.Request) {
	e, ok := h.load(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	h.renderer.Render(w, r, http.StatusOK, templatePurge, "Permanently delete edition", ConfirmView{
		Edition: e,
		Phrase:  ConfirmPhrase,
	})
}

func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	token := middleware.GetToken(ctx)

	err := h.service.PermanentDelete(ctx, token, id, r.PostFormValue("confirmation"))
	switch {
	case err == nil:
	case errors.Is(err, ErrConfirmationRequired) && !middleware.WantsJSON(r):
		e, getErr := h.service.Get(ctx, token, id)
		if getErr != nil {
			e = &Edition{ID: id, Name: "this edition"}
		}
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, templatePurge,
			"Permanently delete edition", ConfirmView{
				Edition: e,
				Phrase:  ConfirmPhrase,
				Error:   "Type " + ConfirmPhrase + " exactly to confirm.",
			})
		return
	default:
		h.mutationFailed(w, r, err, deletedListPath)
		return
	}

	h.logMutation(r, OpPurge, id)
	h.done(w, r, http.StatusOK, "Edition permanently deleted.", deletedListPath)
}

// load fetches one edition for a page, sending the user back to the list
// with a notification when it cannot.
func (h *Handler) load(w http.ResponseWriter, r *http.Request, id string) (*Edition, bool) {
	e, err := h.service.Get(r.Context(), middleware.GetToken(r.Context()), id)
	if err != nil {
		h.mutationFailed(w, r, err, listPath)
		return nil, false
	}
	return e, true
}

func (h *Handler) done(w http.ResponseWriter, r *http.Request, status int, message, next string) {
	if middleware.WantsJSON(r) {
		core.JSON(w, status, core.Response{
			Success: true,
			Data:    map[string]string{"message": message},
		})
		return
	}

	h.flasher.Flash(w, r, view.FlashSuccess, message)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handler) formFailed(w http.ResponseWriter, r *http.Request, fv FormView, err error) {
	appErr := toAppError(err)
	logFailure(r, err, appErr.StatusCode)

	if middleware.WantsJSON(r) {
		core.JSONError(w, appErr)
		return
	}

	title := "New edition"
	if fv.IsEdit {
		title = "Edit edition"
	}

	fv.Error = appErr.Message
	h.renderer.Render(w, r, appErr.StatusCode, templateForm, title, fv)
}

func (h *Handler) mutationFailed(w http.ResponseWriter, r *http.Request, err error, next string) {
	appErr := toAppError(err)
	logFailure(r, err, appErr.StatusCode)

	if middleware.WantsJSON(r) {
		core.JSONError(w, appErr)
		return
	}

	h.flasher.Flash(w, r, view.FlashError, appErr.Message)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handler) logMutation(r *http.Request, op, id string) {
	slog.InfoContext(r.Context(), "edition mutated",
		"operation", op,
		"edition_id", id,
		"user_id", middleware.GetUserID(r.Context()),
		"request_id", middleware.GetRequestID(r.Context()),
	)
}

func logFailure(r *http.Request, err error, status int) {
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	slog.Log(r.Context(), level, "edition request failed",
		"status", status,
		"error", err,
		"request_id", middleware.GetRequestID(r.Context()),
	)
}

func toAppError(err error) *core.AppError {
	var appErr *core.AppError
	switch {
	case errors.Is(err, ErrConfirmationRequired):
		return core.NewAppError(err, "Please confirm the deletion.",
			http.StatusUnprocessableEntity, "CONFIRMATION_REQUIRED")
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, core.ErrUnauthorized):
		return core.UnauthorizedError("")
	case backend.IsRequestFailure(err):
		return core.NewAppError(err, backend.ErrorMessage(err),
			http.StatusBadGateway, "BACKEND_ERROR")
	default:
		return core.NewAppError(err, "Something went wrong. Please try again.",
			http.StatusInternalServerError, "INTERNAL_ERROR")
	}
}
