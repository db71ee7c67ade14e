package graph

import (
	"context"
	"errors"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/auth"
)

// Me is the user behind the request's Authorization header, or null.
func (r *Resolver) Me(ctx context.Context) *userResolver {
	u := auth.UserFromContext(ctx)
	if u == nil {
		return nil
	}
	return r.newUser(*u)
}

func (r *Resolver) TotalPhotos(ctx context.Context) (int32, error) {
	n, err := r.photos.Count(ctx)
	if err != nil {
		return 0, r.resolverError(err, "totalPhotos")
	}
	return int32(n), nil
}

func (r *Resolver) AllPhotos(ctx context.Context) ([]*photoResolver, error) {
	photos, err := r.photos.All(ctx)
	if err != nil {
		return nil, r.resolverError(err, "allPhotos")
	}
	return r.newPhotos(photos), nil
}

func (r *Resolver) TotalUsers(ctx context.Context) (int32, error) {
	n, err := r.users.CountUsers(ctx)
	if err != nil {
		return 0, r.resolverError(err, "totalUsers")
	}
	return int32(n), nil
}

func (r *Resolver) AllUsers(ctx context.Context) ([]*userResolver, error) {
	users, err := r.users.AllUsers(ctx)
	if err != nil {
		return nil, r.resolverError(err, "allUsers")
	}
	return r.newUsers(users), nil
}

// User looks a user up by login. An unknown login is null, not an error.
func (r *Resolver) User(ctx context.Context, args struct{ Login graphql.ID }) (*userResolver, error) {
	u, err := r.users.UserByLogin(ctx, string(args.Login))
	if err != nil {
		return nil, r.resolverError(err, "User")
	}
	if u == nil {
		return nil, nil
	}
	return r.newUser(*u), nil
}

// Photo looks a photo up by id. An unknown id is null, not an error.
func (r *Resolver) Photo(ctx context.Context, args struct{ ID graphql.ID }) (*photoResolver, error) {
	p, err := r.photos.GetByID(ctx, string(args.ID))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, r.resolverError(err, "Photo")
	}
	return r.newPhoto(*p), nil
}
