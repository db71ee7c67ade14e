package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/sakif/photoshare-api/internal/auth"
	"github.com/sakif/photoshare-api/internal/model"
)

// PostPhotoInput mirrors the schema input of the same name. Category
// arrives as the enum value name; the schema default fills it when omitted.
type PostPhotoInput struct {
	Name        string
	Category    *string
	Description *string
}

func (in PostPhotoInput) toModel() model.PhotoInput {
	out := model.PhotoInput{Name: in.Name}
	if in.Category != nil {
		out.Category = model.Category(*in.Category)
	}
	if in.Description != nil {
		out.Description = *in.Description
	}
	return out
}

func (r *Resolver) PostPhoto(ctx context.Context, args struct{ Input PostPhotoInput }) (*photoResolver, error) {
	photo, err := r.photos.Create(ctx, args.Input.toModel(), auth.UserFromContext(ctx))
	if err != nil {
		return nil, r.resolverError(err, "postPhoto")
	}
	return r.newPhoto(*photo), nil
}

func (r *Resolver) TagPhoto(ctx context.Context, args struct {
	GithubLogin graphql.ID
	PhotoID     graphql.ID
}) (*photoResolver, error) {
	photo, err := r.photos.TagPhoto(ctx, string(args.PhotoID), string(args.GithubLogin), auth.UserFromContext(ctx))
	if err != nil {
		return nil, r.resolverError(err, "tagPhoto")
	}
	return r.newPhoto(*photo), nil
}

func (r *Resolver) GithubAuth(ctx context.Context, args struct{ Code string }) (*authPayloadResolver, error) {
	payload, err := r.users.GitHubAuth(ctx, args.Code)
	if err != nil {
		return nil, r.resolverError(err, "githubAuth")
	}
	return &authPayloadResolver{root: r, payload: payload}, nil
}

func (r *Resolver) AddFakeUsers(ctx context.Context, args struct{ Count *int32 }) ([]*userResolver, error) {
	count := 1
	if args.Count != nil {
		count = int(*args.Count)
	}
	users, err := r.users.AddFakeUsers(ctx, count)
	if err != nil {
		return nil, r.resolverError(err, "addFakeUsers")
	}
	return r.newUsers(users), nil
}

func (r *Resolver) FakeUserAuth(ctx context.Context, args struct{ GithubLogin graphql.ID }) (*authPayloadResolver, error) {
	payload, err := r.users.FakeUserAuth(ctx, string(args.GithubLogin))
	if err != nil {
		return nil, r.resolverError(err, "fakeUserAuth")
	}
	return &authPayloadResolver{root: r, payload: payload}, nil
}
