package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/uniarchive/photoarchive/internal/apperr"
)

// Optional is a JSON field that remembers whether it appeared in the request
// body. Absent fields leave the column untouched; an explicit null clears a
// nullable column.
type Optional[T any] struct {
	value T
	set   bool
}

// Set returns an Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether the field was present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.set = true
	if bytes.Equal(b, []byte("null")) {
		var zero T
		o.value = zero
		return nil
	}
	return json.Unmarshal(b, &o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// ImagePatch is a partial update of an image record. Only present fields are
// folded into the UPDATE.
type ImagePatch struct {
	Title         Optional[string]  `json:"title"`
	Description   Optional[*string] `json:"description"`
	CategoryID    Optional[*uint]   `json:"category_id"`
	Year          Optional[*int]    `json:"year"`
	Location      Optional[*string] `json:"location"`
	Department    Optional[*string] `json:"department"`
	Source        Optional[*string] `json:"source"`
	Keywords      Optional[*string] `json:"keywords"`
	ImagePath     Optional[string]  `json:"image_path"`
	ThumbnailPath Optional[*string] `json:"thumbnail_path"`
	FileSize      Optional[int64]   `json:"file_size"`
}

// Columns returns the present fields as update columns. Nil pointer values
// become NULL.
func (p ImagePatch) Columns() map[string]any {
	cols := map[string]any{}
	if v, ok := p.Title.Get(); ok {
		cols["title"] = v
	}
	if v, ok := p.Description.Get(); ok {
		cols["description"] = v
	}
	if v, ok := p.CategoryID.Get(); ok {
		cols["category_id"] = v
	}
	if v, ok := p.Year.Get(); ok {
		cols["year"] = v
	}
	if v, ok := p.Location.Get(); ok {
		cols["location"] = v
	}
	if v, ok := p.Department.Get(); ok {
		cols["department"] = v
	}
	if v, ok := p.Source.Get(); ok {
		cols["source"] = v
	}
	if v, ok := p.Keywords.Get(); ok {
		cols["keywords"] = v
	}
	if v, ok := p.ImagePath.Get(); ok {
		cols["image_path"] = v
	}
	if v, ok := p.ThumbnailPath.Get(); ok {
		cols["thumbnail_path"] = v
	}
	if v, ok := p.FileSize.Get(); ok {
		cols["file_size"] = v
	}
	return cols
}

// Validate rejects patches that would break record invariants. A title may be
// changed but never blanked, and image_path must stay non-empty.
func (p ImagePatch) Validate() error {
	if v, ok := p.Title.Get(); ok && strings.TrimSpace(v) == "" {
		return apperr.Validation("Image title is required.")
	}
	if v, ok := p.ImagePath.Get(); ok && strings.TrimSpace(v) == "" {
		return apperr.Validation("Image path is required.")
	}
	if len(p.Columns()) == 0 {
		return apperr.Validation("No fields to update.")
	}
	return nil
}
