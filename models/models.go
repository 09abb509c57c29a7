package models

import (
	"time"
)

// Role is the closed set of user roles. Stored as a string column so the
// database stays readable, but application code only ever compares against
// the constants below.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RolePublic Role = "public"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RolePublic:
		return true
	}
	return false
}

// CanUpload reports whether the role may create catalog entries.
func (r Role) CanUpload() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;unique" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null;default:public" json:"role"`
}

type Category struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `json:"description"`
}

// Image is a catalog entry. Nullable columns are pointers so that NULL and
// the zero value stay distinguishable. Both references use SET NULL so that
// deleting a category or uploader detaches images instead of removing them.
type Image struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   *string   `json:"description"`
	ImagePath     string    `gorm:"size:512;not null" json:"image_path"`
	ThumbnailPath *string   `gorm:"size:512" json:"thumbnail_path"`
	CategoryID    *uint     `json:"category_id"`
	Category      *Category `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Year          *int      `json:"year"`
	Location      *string   `gorm:"size:255" json:"location"`
	Department    *string   `gorm:"size:255" json:"department"`
	Source        *string   `gorm:"size:255" json:"source"`
	Keywords      *string   `json:"keywords"`
	UploadedBy    *uint     `json:"uploaded_by"`
	Uploader      *User     `json:"-" gorm:"foreignKey:UploadedBy;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	FileSize      int64     `json:"file_size"`
}
