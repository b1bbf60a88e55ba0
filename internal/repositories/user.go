package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/models"
)

const usersCollection = "users"

// sanitizedProjection excludes the credential fields from read results.
var sanitizedProjection = bson.M{"password": 0, "refreshToken": 0}

// Hasher hashes passwords before they are persisted.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// UserReadRepository provides read access to the users collection.
type UserReadRepository struct {
	col *mongo.Collection
	log *zap.SugaredLogger
}

// NewUserReadRepository creates a UserReadRepository on db.
func NewUserReadRepository(db *mongo.Database, log *zap.SugaredLogger) *UserReadRepository {
	return &UserReadRepository{col: db.Collection(usersCollection), log: log}
}

// GetByUsernameOrEmail finds a user matching either identifier. Empty
// identifiers are skipped; (nil, nil) is returned when no user matches or
// when both identifiers are empty.
func (r *UserReadRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	or := bson.A{}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, nil
	}

	var user models.User
	err := r.col.FindOne(ctx, bson.M{"$or": or}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorw("user lookup failed", "username", username, "email", email, "error", err)
		return nil, err
	}
	return &user, nil
}

// GetByID loads the full user record, refresh-token slot included.
func (r *UserReadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorw("user lookup failed", "user_id", id.Hex(), "error", err)
		return nil, err
	}
	return &user, nil
}

// GetViewByID loads the sanitized user view, excluding the password digest
// and refresh-token slot at the query level.
func (r *UserReadRepository) GetViewByID(ctx context.Context, id primitive.ObjectID) (*models.UserView, error) {
	opts := options.FindOne().SetProjection(sanitizedProjection)

	var view models.UserView
	err := r.col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&view)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorw("user view lookup failed", "user_id", id.Hex(), "error", err)
		return nil, err
	}
	return &view, nil
}

// UserWriteRepository provides write access to the users collection. Writes
// that persist a changed password run it through the hasher first.
type UserWriteRepository struct {
	col    *mongo.Collection
	hasher Hasher
	log    *zap.SugaredLogger
}

// NewUserWriteRepository creates a UserWriteRepository on db.
func NewUserWriteRepository(db *mongo.Database, hasher Hasher, log *zap.SugaredLogger) *UserWriteRepository {
	return &UserWriteRepository{col: db.Collection(usersCollection), hasher: hasher, log: log}
}

// EnsureIndexes creates the unique indexes on username and email. The store
// enforces uniqueness even when the registration pre-check races.
func (r *UserWriteRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

// Create inserts a new user record, hashing a changed password first.
func (r *UserWriteRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.hashIfChanged(user); err != nil {
		return err
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", models.ErrDuplicateUser, user.Username)
		}
		r.log.Errorw("user insert failed", "username", user.Username, "error", err)
		return err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

// Save replaces the stored document with user, re-running the password hook
// when the password changed and skipping it otherwise.
func (r *UserWriteRepository) Save(ctx context.Context, user *models.User) error {
	if err := r.hashIfChanged(user); err != nil {
		return err
	}

	user.UpdatedAt = time.Now().UTC()

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", models.ErrDuplicateUser, user.Username)
		}
		r.log.Errorw("user save failed", "user_id", user.ID.Hex(), "error", err)
		return err
	}
	return nil
}

// UpdateRefreshToken overwrites the refresh-token slot in a single update,
// clearing it when token is empty. The password digest is never touched, so
// the hashing hook is bypassed.
func (r *UserWriteRepository) UpdateRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": time.Now().UTC()}}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"refreshToken": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	}

	_, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		r.log.Errorw("refresh token update failed", "user_id", id.Hex(), "error", err)
	}
	return err
}

func (r *UserWriteRepository) hashIfChanged(user *models.User) error {
	if !user.PasswordChanged() {
		return nil
	}
	digest, err := r.hasher.Hash(user.Password)
	if err != nil {
		return err
	}
	user.SetPasswordDigest(digest)
	return nil
}
