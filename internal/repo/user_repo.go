package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/notes-service/internal/domain"
)

var (
	ErrDuplicate = errors.New("duplicate key")
	ErrNotFound  = errors.New("not found")
)

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.insert",
		tracer.Tag("email", u.Email),
	)
	defer sp.Finish()

	u.CreatedAt = time.Now().UTC()
	if u.AuthProviders == nil {
		u.AuthProviders = []domain.AuthProvider{}
	}
	res, err := s.colUsers.InsertOne(ctx, u)
	if err != nil {
		sp.SetTag("error", err)
		if IsDup(err) {
			return ErrDuplicate
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

// FindUserByProvider matches the exact pair. $elemMatch pins both conditions
// to the same array element; dotted conditions would also match a user whose
// providers satisfy them across different elements.
func (s *Store) FindUserByProvider(ctx context.Context, provider, providerID string) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{
		"auth_providers": bson.M{"$elemMatch": bson.M{
			"provider":    provider,
			"provider_id": providerID,
		}},
	}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

// AddAuthProvider links one external identity to an existing user.
// $addToSet keeps the pair unique within the user even if two callbacks
// link concurrently; the partial unique index keeps it unique across users.
func (s *Store) AddAuthProvider(ctx context.Context, userID primitive.ObjectID, provider, providerID string) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.link_provider",
		tracer.Tag("provider", provider),
		tracer.Tag("user_id", userID),
	)
	defer sp.Finish()

	res, err := s.colUsers.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"auth_providers": domain.AuthProvider{Provider: provider, ProviderID: providerID}}},
	)
	if err != nil {
		sp.SetTag("error", err)
		if IsDup(err) {
			return ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProfileImage is the explicit write path for avatar sync; the resolver
// never mutates a fetched document and saves it back.
func (s *Store) SetProfileImage(ctx context.Context, userID primitive.ObjectID, url string) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.set_profile_image",
		tracer.Tag("user_id", userID),
	)
	defer sp.Finish()

	res, err := s.colUsers.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"profile_image": url}},
	)
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
