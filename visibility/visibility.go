// Package visibility decides whether a record may be shown to a request.
//
// Rules are applied twice: as store predicates when rows are loaded, and as
// gates on decoded records, since a cached record was written without knowing
// who would read it.
package visibility

import (
	"context"
)

// Options are the per-request visibility parameters.
type Options struct {
	AllowNSFW bool
	// Viewer is the requesting user id, 0 for anonymous requests.
	Viewer uint32
}

// Exclusions are the rows a store query must leave out.
type Exclusions struct {
	Banned bool
	NSFW   bool
}

// Exclusions returns the store predicates matching o. Banned rows are
// always excluded.
func (o Options) Exclusions() Exclusions {
	return Exclusions{Banned: true, NSFW: !o.AllowNSFW}
}

// Gate reports whether a decoded record is visible under opts.
type Gate[T any] func(ctx context.Context, record T, opts Options) (bool, error)

// NSFWMarked is implemented by records carrying an nsfw flag.
type NSFWMarked interface {
	IsNSFW() bool
}

// Owned is implemented by records with an owner and a public flag.
type Owned interface {
	OwnerID() uint32
	IsPublic() bool
}

// FriendChecker resolves friendship between a record owner and a viewer.
type FriendChecker interface {
	IsFriend(ctx context.Context, owner, viewer uint32) (bool, error)
}

// Always shows every record.
func Always[T any](context.Context, T, Options) (bool, error) {
	return true, nil
}

// NSFW hides nsfw records unless the request allows them.
func NSFW[T NSFWMarked](_ context.Context, record T, opts Options) (bool, error) {
	return opts.AllowNSFW || !record.IsNSFW(), nil
}

// Privacy shows public records to everyone and non-public ones to their
// owner and the owner's friends. Friendship is checked on every call.
func Privacy[T Owned](friends FriendChecker) Gate[T] {
	return func(ctx context.Context, record T, opts Options) (bool, error) {
		if record.IsPublic() {
			return true, nil
		}
		if opts.Viewer == 0 {
			return false, nil
		}
		owner := record.OwnerID()
		if owner == opts.Viewer {
			return true, nil
		}
		return friends.IsFriend(ctx, owner, opts.Viewer)
	}
}

// All composes gates; a record is visible when every gate agrees.
func All[T any](gates ...Gate[T]) Gate[T] {
	return func(ctx context.Context, record T, opts Options) (bool, error) {
		for _, gate := range gates {
			ok, err := gate(ctx, record, opts)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}
