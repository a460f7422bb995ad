package handler

import (
	"errors"
	"net/http"

	"newsdesk/internal/article/model"
	"newsdesk/internal/article/service"
	authsvc "newsdesk/internal/auth/service"
	"newsdesk/middleware"
	"newsdesk/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// MaxBodyBytes bounds request bodies; images travel inline as data URIs.
const MaxBodyBytes = 8 << 20

type ArticleHandler struct {
	Service *service.ArticleService
}

func NewArticleHandler(service *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{Service: service}
}

func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	filter := model.Filter{Category: r.URL.Query().Get("category")}
	articles, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "list articles", err)
		return
	}
	middleware.RespondJSON(w, r, http.StatusOK, articles)
}

func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	article, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get article "+id, err)
		return
	}
	middleware.RespondJSON(w, r, http.StatusOK, article)
}

func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	draft, ok := h.decodeDraft(w, r, token)
	if !ok {
		return
	}

	article, err := h.Service.Create(r.Context(), token, draft)
	if err != nil {
		h.fail(w, r, "create article", err)
		return
	}
	middleware.RespondJSON(w, r, http.StatusCreated, article)
}

func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	token := middleware.BearerToken(r)
	draft, ok := h.decodeDraft(w, r, token)
	if !ok {
		return
	}

	article, err := h.Service.Update(r.Context(), token, id, draft)
	if err != nil {
		h.fail(w, r, "update article "+id, err)
		return
	}
	middleware.RespondJSON(w, r, http.StatusOK, article)
}

func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), middleware.BearerToken(r), id); err != nil {
		h.fail(w, r, "delete article "+id, err)
		return
	}
	middleware.RespondJSON(w, r, http.StatusOK, model.DeleteResponse{Message: "Deleted"})
}

// decodeDraft rejects unauthorized callers before reading the body.
func (h *ArticleHandler) decodeDraft(w http.ResponseWriter, r *http.Request, token string) (model.Draft, bool) {
	var draft model.Draft
	if err := h.Service.Authorize(token); err != nil {
		middleware.RespondError(w, r, http.StatusUnauthorized, "Unauthorized")
		return draft, false
	}
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, MaxBodyBytes), &draft); err != nil {
		middleware.RespondError(w, r, http.StatusBadRequest, "Invalid request body")
		return draft, false
	}
	return draft, true
}

// fail maps service errors onto status codes. Only unexpected errors are logged as errors.
func (h *ArticleHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.RespondError(w, r, http.StatusBadRequest, verr.Message)
	case errors.Is(err, model.ErrNotFound):
		middleware.RespondError(w, r, http.StatusNotFound, "Not found")
	case errors.Is(err, authsvc.ErrUnauthorized):
		middleware.RespondError(w, r, http.StatusUnauthorized, "Unauthorized")
	default:
		logger.Sugar.Errorf("Handler: Failed to %s: %v", action, err)
		middleware.RespondError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
