// Package source defines the uniform read interface every cricket data
// origin implements. Clients convert their upstream shapes into the
// canonical models and never let network or parse failures escape: the
// aggregator sees (nil, err) or empty slices and moves down its chain.
package source

import (
	"context"
	"errors"

	"github.com/fortuna/willow/internal/models"
)

// ErrNotFound signals data-not-found at a source. It is not a failure;
// the aggregator treats it exactly like an empty result.
var ErrNotFound = errors.New("not found in source")

// ErrUnavailable signals the source could not be reached or its response
// could not be parsed. The cause is already logged by the client.
var ErrUnavailable = errors.New("source unavailable")

// Source is one origin of cricket data.
type Source interface {
	// Name tags records with their origin.
	Name() string

	// PlayerStats returns the canonical record for a player, or
	// ErrNotFound/ErrUnavailable.
	PlayerStats(ctx context.Context, name string) (*models.Player, error)

	// LiveMatches returns matches currently in progress.
	LiveMatches(ctx context.Context) ([]models.Match, error)

	// UpcomingMatches returns scheduled matches.
	UpcomingMatches(ctx context.Context) ([]models.Match, error)

	// RecentMatches returns recently completed matches.
	RecentMatches(ctx context.Context) ([]models.Match, error)

	// MatchDetails returns a single match by source-specific id.
	MatchDetails(ctx context.Context, id string) (*models.Match, error)
}
