package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

const collectionUsers = "users"

var _ ports.UserRepository = (*UserRepository)(nil)

// Index names are matched against duplicate-key messages to tell which field
// collided.
const (
	indexUniqueCitizenship = "uniq_citizenship"
	indexUniquePhone       = "uniq_phone"
	indexSingleAdmin       = "uniq_admin"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Password    string             `bson:"password"`
	Address     string             `bson:"address"`
	DoB         string             `bson:"DoB"`
	Citizenship string             `bson:"citizenship"`
	Phone       string             `bson:"phone"`
	Email       string             `bson:"email"`
	UserType    string             `bson:"usertype"`
	IsVoted     bool               `bson:"isvoted"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		Name:         mu.Name,
		PasswordHash: mu.Password,
		Address:      mu.Address,
		DateOfBirth:  mu.DoB,
		Citizenship:  mu.Citizenship,
		Phone:        mu.Phone,
		Email:        mu.Email,
		UserType:     mu.UserType,
		IsVoted:      mu.IsVoted,
		CreatedAt:    mu.CreatedAt.UTC(),
		UpdatedAt:    mu.UpdatedAt.UTC(),
	}
}

// EnsureIndexes creates the unique indexes that back the registration rules:
// one account per citizenship number, one per phone, and a single admin.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "citizenship", Value: 1}},
			Options: options.Index().SetName(indexUniqueCitizenship).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetName(indexUniquePhone).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "usertype", Value: 1}},
			Options: options.Index().
				SetName(indexSingleAdmin).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"usertype": domain.RoleAdmin}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		Name:        user.Name,
		Password:    user.PasswordHash,
		Address:     user.Address,
		DoB:         user.DateOfBirth,
		Citizenship: user.Citizenship,
		Phone:       user.Phone,
		Email:       user.Email,
		UserType:    user.UserType,
		IsVoted:     user.IsVoted,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateUserError(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByCitizenship(ctx context.Context, citizenship string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"citizenship": citizenship})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) ExistsByCitizenship(ctx context.Context, citizenship string) (bool, error) {
	return r.exists(ctx, bson.M{"citizenship": citizenship})
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, bson.M{"phone": phone})
}

func (r *UserRepository) AdminExists(ctx context.Context) (bool, error) {
	return r.exists(ctx, bson.M{"usertype": domain.RoleAdmin})
}

func (r *UserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd ports.ProfileUpdate) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Address != "" {
		set["address"] = upd.Address
	}
	if upd.Phone != "" {
		set["phone"] = upd.Phone
	}
	if upd.Email != "" {
		set["email"] = upd.Email
	}

	var mu mongoUser
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateUserError(err)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"password": passwordHash, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ClaimVote flips isvoted in a single conditional update. When nothing
// matches, the current document is read back to report why.
func (r *UserRepository) ClaimVote(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	updCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(updCtx,
		bson.M{
			"_id":      oid,
			"isvoted":  bson.M{"$ne": true},
			"usertype": bson.M{"$ne": domain.RoleAdmin},
		},
		bson.M{"$set": bson.M{"isvoted": true, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("claim vote: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	user, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case user.IsVoted:
		return domain.ErrAlreadyVoted
	case user.IsAdmin():
		return domain.ErrAdminCannotVote
	}
	return fmt.Errorf("claim vote: user %s changed concurrently", id)
}

func (r *UserRepository) ReleaseVote(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "isvoted": true},
		bson.M{"$set": bson.M{"isvoted": false, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("release vote: %w", err)
	}
	return nil
}

func duplicateUserError(err error) error {
	switch {
	case strings.Contains(err.Error(), indexUniqueCitizenship):
		return &domain.DuplicateFieldError{Field: "citizenship"}
	case strings.Contains(err.Error(), indexUniquePhone):
		return &domain.DuplicateFieldError{Field: "phone"}
	case strings.Contains(err.Error(), indexSingleAdmin):
		return &domain.DuplicateFieldError{Field: "usertype"}
	}
	return domain.ErrDuplicate
}
