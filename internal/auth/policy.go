package auth

import (
	"github.com/uniarchive/photoarchive/internal/apperr"
	"github.com/uniarchive/photoarchive/models"
)

// CanCreateImage allows authenticated users with an uploading role.
func CanCreateImage(ident Identity) error {
	if !ident.Authenticated() {
		return apperr.Unauthenticated("Access denied. Not authenticated.")
	}
	if !ident.Role().CanUpload() {
		return apperr.Forbidden("Access forbidden. You do not have the required permissions.")
	}
	return nil
}

// CanModifyImage allows admins and the original uploader.
func CanModifyImage(ident Identity, img *models.Image) error {
	if !ident.Authenticated() {
		return apperr.Unauthenticated("Access denied. Not authenticated.")
	}
	if ident.Role() == models.RoleAdmin {
		return nil
	}
	if img.UploadedBy != nil && *img.UploadedBy == ident.User.ID {
		return nil
	}
	return apperr.Forbidden("You do not have permission to modify this image.")
}
