package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Note struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Author      primitive.ObjectID `bson:"author"        json:"author"` // from access JWT
	Title       string             `bson:"title"         json:"title"`
	Description string             `bson:"description"   json:"description"`
	CreatedAt   time.Time          `bson:"created_at"    json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"    json:"updated_at"`
}
