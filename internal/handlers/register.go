package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/httpx"
	"github.com/streamvault/account-service/internal/models"
	"github.com/streamvault/account-service/internal/services"
)

// maxMultipartMemory bounds the in-memory part of multipart parsing; larger
// files spill to disk.
const maxMultipartMemory = 32 << 20

// Registerer defines the interface that the registration service must
// implement.
type Registerer interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.UserView, error)
}

// NewRegisterHandler returns an HTTP handler for user registration. The
// multipart form carries fullName, email, username, password, a required
// avatar file, and an optional coverImage file. Upload files are spooled to
// tmpDir; the media client removes them after upload, and the handler
// removes whatever is left on early failures.
// @Summary Register a new user
// @Description Creates a new user account with avatar and optional cover image. Username and email must be unique; the password is hashed before storing.
// @Tags auth
// @Accept multipart/form-data
// @Produce json
// @Param fullName formData string true "Full name"
// @Param email formData string true "Email"
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param avatar formData file true "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} httpx.Response "Created user without credential fields"
// @Failure 400 {object} httpx.ErrorBody "Missing fields, missing avatar, or failed avatar upload"
// @Failure 409 {object} httpx.ErrorBody "Username or email already exists"
// @Router /register [post]
func NewRegisterHandler(svc Registerer, tmpDir string, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			httpx.WriteError(w, httpx.ValidationError("invalid multipart form"))
			return
		}

		avatarPath, err := saveFormFile(r, "avatar", tmpDir)
		if err != nil {
			log.Errorw("failed to spool avatar upload", "error", err)
			httpx.WriteError(w, httpx.InternalError("failed to accept upload"))
			return
		}
		defer removeIfPresent(avatarPath)

		coverPath, err := saveFormFile(r, "coverImage", tmpDir)
		if err != nil {
			log.Errorw("failed to spool cover upload", "error", err)
			httpx.WriteError(w, httpx.InternalError("failed to accept upload"))
			return
		}
		defer removeIfPresent(coverPath)

		view, err := svc.Register(r.Context(), services.RegisterInput{
			FullName:       r.FormValue("fullName"),
			Email:          r.FormValue("email"),
			Username:       r.FormValue("username"),
			Password:       r.FormValue("password"),
			AvatarPath:     avatarPath,
			CoverImagePath: coverPath,
		})
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.JSON(w, http.StatusCreated, view, "User registered successfully")
	}
}

// saveFormFile copies the named multipart file into dir and returns its
// local path. Returns "" without error when the field is absent.
func saveFormFile(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	dst, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func removeIfPresent(path string) {
	if path != "" {
		os.Remove(path)
	}
}
