package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicateUser is returned by the user write repository when the unique
// indexes on username or email reject an insert or save.
var ErrDuplicateUser = errors.New("user with this username or email already exists")

// User is a credential record in the users collection. Username and email
// are stored lowercased and are unique across the collection. Password holds
// a bcrypt digest, never plaintext. RefreshToken is the single session slot:
// the currently valid refresh token, empty when the user is logged out.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	FullName     string             `bson:"fullName"`
	Avatar       string             `bson:"avatar"`
	CoverImage   string             `bson:"coverImage,omitempty"`
	Password     string             `bson:"password"`
	RefreshToken string             `bson:"refreshToken,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`

	passwordDirty bool
}

// SetPassword stores a plaintext password on the record and marks it for
// hashing on the next persist.
func (u *User) SetPassword(plaintext string) {
	u.Password = plaintext
	u.passwordDirty = true
}

// SetPasswordDigest stores an already-hashed password and clears the dirty
// flag so the pre-persist hook will not hash it again.
func (u *User) SetPasswordDigest(digest string) {
	u.Password = digest
	u.passwordDirty = false
}

// PasswordChanged reports whether the password was set since the record was
// loaded or last persisted.
func (u *User) PasswordChanged() bool {
	return u.passwordDirty
}

// View returns the sanitized projection of the user.
func (u *User) View() *UserView {
	return &UserView{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserView is the user representation returned by the API and attached to
// authenticated requests. It never carries the password digest or the
// refresh-token slot.
type UserView struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Username   string             `bson:"username" json:"username"`
	Email      string             `bson:"email" json:"email"`
	FullName   string             `bson:"fullName" json:"fullName"`
	Avatar     string             `bson:"avatar" json:"avatar"`
	CoverImage string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
