package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/notes-service/internal/domain"
)

func (s *Store) CreateNote(ctx context.Context, n *domain.Note) error {
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	res, err := s.colNotes.InsertOne(ctx, n)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return nil
}

type ListParams struct {
	Limit int
	Skip  int
}

func (s *Store) ListNotesByAuthor(ctx context.Context, author primitive.ObjectID, p ListParams) ([]domain.Note, error) {
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 100
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	cur, err := s.colNotes.Find(ctx,
		bson.M{"author": author},
		options.Find().SetLimit(int64(p.Limit)).SetSkip(int64(p.Skip)).
			SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Note{}
	for cur.Next(ctx) {
		var n domain.Note
		if err := cur.Decode(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, cur.Err()
}

// FindNoteByID is author-scoped: a note id belonging to someone else reads
// the same as a missing note.
func (s *Store) FindNoteByID(ctx context.Context, author, id primitive.ObjectID) (*domain.Note, error) {
	var n domain.Note
	err := s.colNotes.FindOne(ctx, bson.M{"_id": id, "author": author}).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &n, err
}

type NoteUpdate struct {
	Title       *string
	Description *string
}

func (s *Store) UpdateNote(ctx context.Context, author, id primitive.ObjectID, upd NoteUpdate) (*domain.Note, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	res := s.colNotes.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "author": author},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var n domain.Note
	if err := res.Decode(&n); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (s *Store) DeleteNote(ctx context.Context, author, id primitive.ObjectID) (bool, error) {
	res, err := s.colNotes.DeleteOne(ctx, bson.M{"_id": id, "author": author})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}
