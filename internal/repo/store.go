package repo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client   *mongo.Client
	DB       *mongo.Database
	colUsers *mongo.Collection
	colNotes *mongo.Collection
}

func NewStore(ctx context.Context, uri, dbname string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetMaxPoolSize(50),
	)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := cli.Database(dbname)
	return &Store{
		Client:   cli,
		DB:       db,
		colUsers: db.Collection("users"),
		colNotes: db.Collection("notes"),
	}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.Client.Ping(ctx, nil) }

func (s *Store) Close(ctx context.Context) error { return s.Client.Disconnect(ctx) }

// EnsureIndexes creates the uniqueness constraints the identity invariants
// rely on. The resolver's read-then-write sequence is not transactional, so
// email and (provider, provider_id) uniqueness must hold at the storage
// layer: concurrent signups/callbacks race to insert and the index decides.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.colUsers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			// Partial: documents without linked providers must not collide
			// on the missing-field value.
			Keys: bson.D{
				{Key: "auth_providers.provider", Value: 1},
				{Key: "auth_providers.provider_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_provider_pair").
				SetPartialFilterExpression(bson.M{"auth_providers.provider": bson.M{"$exists": true}}),
		},
	})
	if err != nil {
		return err
	}

	_, err = s.colNotes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "author", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("author_created_desc"),
		},
	})
	return err
}

func IsDup(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce *mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return false
}
