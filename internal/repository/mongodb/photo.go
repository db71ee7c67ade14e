package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
)

var (
	_ repository.PhotoRepository = (*PhotoCollection)(nil)
	_ repository.TagRepository   = (*TagCollection)(nil)
)

type photoDoc struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty"`
	ID          string             `bson:"id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	UserID      string             `bson:"userID"`
	Created     time.Time          `bson:"created"`
}

// toModel exposes the public id, or the _id hex when the document has none.
func (d photoDoc) toModel() model.Photo {
	id := d.ID
	if id == "" && !d.ObjectID.IsZero() {
		id = d.ObjectID.Hex()
	}
	return model.Photo{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Category:    model.Category(d.Category),
		UserID:      d.UserID,
		Created:     d.Created,
	}
}

// idFilter matches the public id, and also the _id when id is an ObjectID hex.
func idFilter(id string) bson.D {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return bson.D{{Key: "id", Value: id}}
	}
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "id", Value: id}},
		bson.D{{Key: "_id", Value: oid}},
	}}}
}

// PhotoCollection is the photos collection.
type PhotoCollection struct {
	coll *mongo.Collection
}

func (c *PhotoCollection) List(ctx context.Context) ([]model.Photo, error) {
	cur, err := c.coll.Find(ctx, bson.D{}, byInsertion)
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing photos: %w", err)
	}

	var docs []photoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decoding photos: %w", err)
	}

	photos := make([]model.Photo, 0, len(docs))
	for _, d := range docs {
		photos = append(photos, d.toModel())
	}
	return photos, nil
}

func (c *PhotoCollection) GetByID(ctx context.Context, id string) (*model.Photo, error) {
	var d photoDoc
	if err := c.coll.FindOne(ctx, idFilter(id)).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("photo", id)
		}
		return nil, fmt.Errorf("mongodb: getting photo %s: %w", id, err)
	}
	p := d.toModel()
	return &p, nil
}

// Create inserts the photo. A photo without an ID gets the hex of a fresh
// ObjectID, stored both as _id and as the public id.
func (c *PhotoCollection) Create(ctx context.Context, photo *model.Photo) error {
	oid := primitive.NewObjectID()
	if photo.ID == "" {
		photo.ID = oid.Hex()
	}

	doc := photoDoc{
		ObjectID:    oid,
		ID:          photo.ID,
		Name:        photo.Name,
		Description: photo.Description,
		Category:    string(photo.Category),
		UserID:      photo.UserID,
		Created:     photo.Created,
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongodb: creating photo: %w", err)
	}
	return nil
}

func (c *PhotoCollection) Count(ctx context.Context) (int, error) {
	n, err := c.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("mongodb: counting photos: %w", err)
	}
	return int(n), nil
}

type tagDoc struct {
	PhotoID string `bson:"photoID"`
	UserID  string `bson:"userID"`
}

// TagCollection is the tags collection. No unique index: duplicates are kept.
type TagCollection struct {
	coll *mongo.Collection
}

func (c *TagCollection) List(ctx context.Context) ([]model.Tag, error) {
	cur, err := c.coll.Find(ctx, bson.D{}, byInsertion)
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing tags: %w", err)
	}

	var docs []tagDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decoding tags: %w", err)
	}

	tags := make([]model.Tag, 0, len(docs))
	for _, d := range docs {
		tags = append(tags, model.Tag{PhotoID: d.PhotoID, UserID: d.UserID})
	}
	return tags, nil
}

func (c *TagCollection) Create(ctx context.Context, tag *model.Tag) error {
	_, err := c.coll.InsertOne(ctx, tagDoc{PhotoID: tag.PhotoID, UserID: tag.UserID})
	if err != nil {
		return fmt.Errorf("mongodb: creating tag (%s, %s): %w", tag.PhotoID, tag.UserID, err)
	}
	return nil
}
