package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/sakif/photoshare-api/internal/model"
)

// optional maps the empty string to null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// =========================================================================
// User
// =========================================================================

type userResolver struct {
	root *Resolver
	user model.User
}

func (r *Resolver) newUser(u model.User) *userResolver {
	return &userResolver{root: r, user: u}
}

func (r *Resolver) newUsers(users []model.User) []*userResolver {
	out := make([]*userResolver, len(users))
	for i, u := range users {
		out[i] = r.newUser(u)
	}
	return out
}

func (u *userResolver) GithubLogin() graphql.ID { return graphql.ID(u.user.GitHubLogin) }
func (u *userResolver) Name() *string           { return optional(u.user.Name) }
func (u *userResolver) Avatar() *string         { return optional(u.user.Avatar) }

func (u *userResolver) PostedPhotos(ctx context.Context) ([]*photoResolver, error) {
	photos, err := u.root.photos.PostedPhotos(ctx, &u.user)
	if err != nil {
		return nil, u.root.resolverError(err, "User.postedPhotos")
	}
	return u.root.newPhotos(photos), nil
}

func (u *userResolver) InPhotos(ctx context.Context) ([]*photoResolver, error) {
	photos, err := u.root.photos.InPhotos(ctx, &u.user)
	if err != nil {
		return nil, u.root.resolverError(err, "User.inPhotos")
	}
	return u.root.newPhotos(photos), nil
}

// =========================================================================
// Photo
// =========================================================================

type photoResolver struct {
	root  *Resolver
	photo model.Photo
}

func (r *Resolver) newPhoto(p model.Photo) *photoResolver {
	return &photoResolver{root: r, photo: p}
}

func (r *Resolver) newPhotos(photos []model.Photo) []*photoResolver {
	out := make([]*photoResolver, len(photos))
	for i, p := range photos {
		out[i] = r.newPhoto(p)
	}
	return out
}

func (p *photoResolver) ID() graphql.ID       { return graphql.ID(p.photo.ID) }
func (p *photoResolver) URL() string          { return p.root.photos.URL(&p.photo) }
func (p *photoResolver) Name() string         { return p.photo.Name }
func (p *photoResolver) Description() *string { return optional(p.photo.Description) }
func (p *photoResolver) Category() string     { return string(p.photo.Category) }
func (p *photoResolver) Created() DateTime    { return DateTime{p.photo.Created} }

func (p *photoResolver) PostedBy(ctx context.Context) (*userResolver, error) {
	user, err := p.root.photos.PostedBy(ctx, &p.photo)
	if err != nil {
		return nil, p.root.resolverError(err, "Photo.postedBy")
	}
	if user == nil {
		return nil, nil
	}
	return p.root.newUser(*user), nil
}

func (p *photoResolver) TaggedUsers(ctx context.Context) ([]*userResolver, error) {
	users, err := p.root.photos.TaggedUsers(ctx, &p.photo)
	if err != nil {
		return nil, p.root.resolverError(err, "Photo.taggedUsers")
	}
	return p.root.newUsers(users), nil
}

// =========================================================================
// AuthPayload
// =========================================================================

type authPayloadResolver struct {
	root    *Resolver
	payload *model.AuthPayload
}

func (a *authPayloadResolver) Token() string       { return a.payload.Token }
func (a *authPayloadResolver) User() *userResolver { return a.root.newUser(*a.payload.User) }
