package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
)

var _ repository.UserRepository = (*UserCollection)(nil)

type userDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	GitHubLogin string             `bson:"githubLogin"`
	Name        string             `bson:"name"`
	Avatar      string             `bson:"avatar"`
	GitHubToken string             `bson:"githubToken"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d userDoc) toModel() model.User {
	return model.User{
		GitHubLogin: d.GitHubLogin,
		Name:        d.Name,
		Avatar:      d.Avatar,
		GitHubToken: d.GitHubToken,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// UserCollection is the users collection.
type UserCollection struct {
	coll *mongo.Collection
}

func (c *UserCollection) List(ctx context.Context) ([]model.User, error) {
	cur, err := c.coll.Find(ctx, bson.D{}, byInsertion)
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing users: %w", err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decoding users: %w", err)
	}

	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toModel())
	}
	return users, nil
}

func (c *UserCollection) FindByLogin(ctx context.Context, githubLogin string) (*model.User, error) {
	return c.findOne(ctx, bson.D{{Key: "githubLogin", Value: githubLogin}}, githubLogin)
}

// FindByToken matches the stored GitHub token. An empty token never matches.
func (c *UserCollection) FindByToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperror.NotFound("user", "(empty token)")
	}
	return c.findOne(ctx, bson.D{{Key: "githubToken", Value: token}}, "(token)")
}

func (c *UserCollection) findOne(ctx context.Context, filter bson.D, label string) (*model.User, error) {
	var d userDoc
	err := c.coll.FindOne(ctx, filter).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", label)
		}
		return nil, fmt.Errorf("mongodb: getting user %s: %w", label, err)
	}
	u := d.toModel()
	return &u, nil
}

// Upsert writes every profile field with $set, so a field missing from the
// new login is cleared rather than kept. createdAt is only written on insert.
func (c *UserCollection) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.UpdatedAt = now

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "name", Value: user.Name},
			{Key: "avatar", Value: user.Avatar},
			{Key: "githubToken", Value: user.GitHubToken},
			{Key: "updatedAt", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "createdAt", Value: now},
		}},
	}

	var d userDoc
	err := c.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "githubLogin", Value: user.GitHubLogin}},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		return fmt.Errorf("mongodb: upserting user %s: %w", user.GitHubLogin, err)
	}

	user.CreatedAt = d.CreatedAt
	return nil
}

func (c *UserCollection) Count(ctx context.Context) (int, error) {
	n, err := c.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("mongodb: counting users: %w", err)
	}
	return int(n), nil
}
