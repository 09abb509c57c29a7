package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/uniarchive/photoarchive/internal/apperr"
	"github.com/uniarchive/photoarchive/internal/auth"
	"github.com/uniarchive/photoarchive/internal/catalog"
	"github.com/uniarchive/photoarchive/internal/processing"
	"github.com/uniarchive/photoarchive/internal/storage"
)

type ImageHandler struct {
	repo      *catalog.Repo
	svc       *catalog.Service
	store     storage.Store
	proc      processing.ImageProcessor
	maxUpload int64
}

func NewImageHandler(repo *catalog.Repo, svc *catalog.Service, store storage.Store, proc processing.ImageProcessor, maxUpload int64) *ImageHandler {
	return &ImageHandler{repo: repo, svc: svc, store: store, proc: proc, maxUpload: maxUpload}
}

type paginationMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func pageResponse(page *catalog.Page) map[string]any {
	return map[string]any{
		"images": page.Items,
		"pagination": paginationMeta{
			Total: page.Total,
			Page:  page.Page,
			Limit: page.Limit,
			Pages: page.Pages,
		},
	}
}

// List is the plain paged listing; only page and limit apply here. Filtered
// and text-searched reads go through Search.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	p := catalog.ListParams{}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		p.Limit = v
	}

	page, err := h.repo.List(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse(page))
}

func (h *ImageHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := h.repo.List(r.Context(), catalog.ParseListParams(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse(page))
}

func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	row, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"image": row})
}

func (h *ImageHandler) Related(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	limit := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}
	rows, err := h.repo.Related(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"relatedImages": rows})
}

func (h *ImageHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.repo.Distinct(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filterOptions": opts})
}

var allowedUploadTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload receives a multipart image, derives the web rendition and thumbnail,
// stores both blobs and creates the catalog record. Metadata validation and
// the role check run before any blob is written.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFrom(r.Context())
	if err := auth.CanCreateImage(ident); err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, apperr.Validation("File too large or malformed upload."))
		return
	}

	title := r.FormValue("title")
	if strings.TrimSpace(title) == "" {
		writeError(w, apperr.Validation("Image title is required."))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, apperr.Validation("No image file uploaded."))
		return
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperr.Storage("read upload", err))
		return
	}

	ext, ok := allowedUploadTypes[http.DetectContentType(buf)]
	if !ok {
		writeError(w, apperr.Validation("Invalid file type. Only JPEG, PNG, GIF and WebP are allowed."))
		return
	}

	res, err := h.proc.Process(buf)
	if err != nil {
		writeError(w, apperr.Validation("Could not process image file."))
		return
	}
	if res.WebType == "image/jpeg" {
		ext = ".jpg"
	}

	id := uuid.New().String()
	imageLoc, err := h.store.Save(r.Context(), "images/"+id+ext, res.Web, res.WebType)
	if err != nil {
		writeError(w, apperr.Storage("store image", err))
		return
	}
	thumbLoc, err := h.store.Save(r.Context(), "thumbnails/"+id+".jpg", res.Thumbnail, res.ThumbType)
	if err != nil {
		writeError(w, apperr.Storage("store thumbnail", err))
		return
	}

	in := catalog.CreateImageInput{
		Title:         title,
		Description:   formPtr(r, "description"),
		ImagePath:     imageLoc,
		ThumbnailPath: &thumbLoc,
		Location:      formPtr(r, "location"),
		Department:    formPtr(r, "department"),
		Source:        formPtr(r, "source"),
		Keywords:      formPtr(r, "keywords"),
		FileSize:      res.Size,
	}
	if v, err := strconv.ParseUint(r.FormValue("category_id"), 10, 32); err == nil {
		cid := uint(v)
		in.CategoryID = &cid
	}
	if v, err := strconv.Atoi(r.FormValue("year")); err == nil {
		in.Year = &v
	}

	img, err := h.svc.CreateImage(r.Context(), ident, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Image uploaded successfully.",
		"imageId": img.ID,
		"image":   img,
	})
}

func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch catalog.ImagePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.UpdateImage(r.Context(), auth.IdentityFrom(r.Context()), id, patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, errBody("Image updated successfully."))
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.svc.DeleteImage(r.Context(), auth.IdentityFrom(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, errBody("Image deleted successfully."))
}

// formPtr returns a pointer to the form value, or nil when it is empty so the
// column stores NULL.
func formPtr(r *http.Request, key string) *string {
	v := r.FormValue(key)
	if v == "" {
		return nil
	}
	return &v
}
