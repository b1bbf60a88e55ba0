package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/httpx"
	"github.com/streamvault/account-service/internal/models"
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetViewByID(ctx context.Context, id primitive.ObjectID) (*models.UserView, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	UpdateRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
}

// TokenIssuer signs and verifies the two token classes.
type TokenIssuer interface {
	NewAccessToken(ctx context.Context, user *models.UserView) (string, error)
	NewRefreshToken(ctx context.Context, userID primitive.ObjectID) (string, error)
	ParseRefresh(ctx context.Context, token string) (primitive.ObjectID, error)
}

// PasswordVerifier compares a plaintext password with a stored digest.
type PasswordVerifier interface {
	Verify(plaintext, digest string) bool
}

// MediaUploader uploads a local file to the media host and returns its URL.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// AuthService orchestrates registration and the session lifecycle: login,
// logout, refresh-token rotation, and password change.
type AuthService struct {
	reader UserReader
	writer UserWriter
	tokens TokenIssuer
	hasher PasswordVerifier
	media  MediaUploader
	log    *zap.SugaredLogger
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	reader UserReader,
	writer UserWriter,
	tokens TokenIssuer,
	hasher PasswordVerifier,
	media MediaUploader,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		tokens: tokens,
		hasher: hasher,
		media:  media,
		log:    log,
	}
}

// RegisterInput carries the registration form fields and the local paths of
// the spooled upload files. CoverImagePath may be empty.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// Register validates the input, checks uniqueness, uploads the avatar
// (required) and cover image (best effort), and persists the new user. The
// returned view is re-read from the store and never carries credentials.
func (svc *AuthService) Register(ctx context.Context, in RegisterInput) (*models.UserView, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))
	pass := strings.TrimSpace(in.Password)

	if fullName == "" || email == "" || username == "" || pass == "" {
		return nil, httpx.ValidationError("all fields are required")
	}

	existing, err := svc.reader.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, httpx.InternalError("failed to check existing user")
	}
	if existing != nil {
		return nil, httpx.ConflictError("user with email or username already exists")
	}

	if in.AvatarPath == "" {
		return nil, httpx.ValidationError("avatar file is required")
	}

	avatarURL, err := svc.media.Upload(ctx, in.AvatarPath)
	if err != nil {
		svc.log.Errorw("avatar upload failed", "username", username, "error", err)
		return nil, httpx.UploadError("avatar upload failed")
	}

	coverURL := ""
	if in.CoverImagePath != "" {
		coverURL, err = svc.media.Upload(ctx, in.CoverImagePath)
		if err != nil {
			// Best effort: a failed cover upload degrades to no cover image.
			svc.log.Warnw("cover image upload failed", "username", username, "error", err)
			coverURL = ""
		}
	}

	user := &models.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatarURL,
		CoverImage: coverURL,
	}
	user.SetPassword(pass)

	if err := svc.writer.Create(ctx, user); err != nil {
		// The unique indexes catch races the pre-check above cannot.
		if errors.Is(err, models.ErrDuplicateUser) {
			return nil, httpx.ConflictError("user with email or username already exists")
		}
		svc.log.Errorw("failed to create user", "username", username, "error", err)
		return nil, httpx.InternalError("failed to create user")
	}

	view, err := svc.reader.GetViewByID(ctx, user.ID)
	if err != nil || view == nil {
		svc.log.Errorw("created user could not be re-read", "user_id", user.ID.Hex(), "error", err)
		return nil, httpx.InternalError("something went wrong while registering the user")
	}
	return view, nil
}

// Login authenticates by username or email (either one suffices), issues
// both tokens, and persists the refresh token into the user's slot without
// touching the password digest. A store failure while persisting the session
// is an internal error, distinct from bad credentials.
func (svc *AuthService) Login(ctx context.Context, username, email, pass string) (*models.UserView, string, string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" && email == "" {
		return nil, "", "", httpx.ValidationError("username or email is required")
	}

	user, err := svc.reader.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, "", "", httpx.InternalError("failed to look up user")
	}
	if user == nil {
		return nil, "", "", httpx.NotFoundError("user does not exist")
	}

	if !svc.hasher.Verify(pass, user.Password) {
		return nil, "", "", httpx.AuthenticationError("invalid user credentials")
	}

	access, refresh, err := svc.issueTokens(ctx, user.View())
	if err != nil {
		return nil, "", "", err
	}

	if err := svc.writer.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, "", "", httpx.InternalError("failed to persist session")
	}

	view, err := svc.reader.GetViewByID(ctx, user.ID)
	if err != nil || view == nil {
		return nil, "", "", httpx.InternalError("failed to load user")
	}
	return view, access, refresh, nil
}

// Logout revokes the session by clearing the stored refresh-token slot in a
// single atomic update.
func (svc *AuthService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	if err := svc.writer.UpdateRefreshToken(ctx, userID, ""); err != nil {
		return httpx.InternalError("failed to clear session")
	}
	return nil
}

// Refresh rotates the token pair. The presented refresh token must verify
// against the refresh secret and match the user's stored slot; rotation
// overwrites the slot, invalidating the presented token.
func (svc *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", httpx.UnauthorizedError("unauthorized request")
	}

	userID, err := svc.tokens.ParseRefresh(ctx, refreshToken)
	if err != nil {
		return "", "", httpx.UnauthorizedError("invalid refresh token")
	}

	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		return "", "", httpx.InternalError("failed to look up user")
	}
	if user == nil {
		return "", "", httpx.UnauthorizedError("invalid refresh token")
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return "", "", httpx.UnauthorizedError("refresh token is expired or used")
	}

	access, refresh, err := svc.issueTokens(ctx, user.View())
	if err != nil {
		return "", "", err
	}

	if err := svc.writer.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return "", "", httpx.InternalError("failed to persist session")
	}
	return access, refresh, nil
}

// ChangePassword verifies the old password and persists the new one through
// the pre-persist hashing hook.
func (svc *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPass, newPass string) error {
	if strings.TrimSpace(newPass) == "" {
		return httpx.ValidationError("new password is required")
	}

	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		return httpx.InternalError("failed to look up user")
	}
	if user == nil {
		return httpx.NotFoundError("user does not exist")
	}

	if !svc.hasher.Verify(oldPass, user.Password) {
		return httpx.AuthenticationError("invalid old password")
	}

	user.SetPassword(strings.TrimSpace(newPass))
	if err := svc.writer.Save(ctx, user); err != nil {
		return httpx.InternalError("failed to update password")
	}
	return nil
}

func (svc *AuthService) issueTokens(ctx context.Context, view *models.UserView) (string, string, error) {
	access, err := svc.tokens.NewAccessToken(ctx, view)
	if err != nil {
		svc.log.Errorw("failed to generate access token", "user_id", view.ID.Hex(), "error", err)
		return "", "", httpx.InternalError("failed to generate tokens")
	}
	refresh, err := svc.tokens.NewRefreshToken(ctx, view.ID)
	if err != nil {
		svc.log.Errorw("failed to generate refresh token", "user_id", view.ID.Hex(), "error", err)
		return "", "", httpx.InternalError("failed to generate tokens")
	}
	return access, refresh, nil
}
