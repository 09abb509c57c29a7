package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/uniarchive/photoarchive/internal/apperr"
	"github.com/uniarchive/photoarchive/internal/catalog"
)

type CategoryHandler struct {
	repo *catalog.Repo
}

func NewCategoryHandler(repo *catalog.Repo) *CategoryHandler {
	return &CategoryHandler{repo: repo}
}

type categoryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.repo.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	cat, err := h.repo.CategoryByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": cat})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	cat, err := h.repo.CreateCategory(r.Context(), in.Name, in.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Category created successfully.",
		"categoryId": cat.ID,
		"category":   cat,
	})
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in categoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := h.repo.UpdateCategory(r.Context(), id, in.Name, in.Description); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, errBody("Category updated successfully."))
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.repo.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, errBody("Category deleted successfully."))
}

func idParam(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperr.Validation("Invalid id.")
	}
	return uint(id), nil
}
