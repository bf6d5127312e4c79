package adapter

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
)

// matchFetch pulls one match list from one source.
type matchFetch func(context.Context, source.Source) ([]models.Match, error)

// firstMatches walks sources in priority order and returns the first
// non-empty result. Empty results and errors both advance the chain;
// a source that answers with nothing is as useless as one that fails.
func (a *Adapter) firstMatches(ctx context.Context, what string, chain []source.Source, fetch matchFetch) []models.Match {
	for _, s := range chain {
		matches, err := fetch(ctx, s)
		if err != nil {
			if !errors.Is(err, source.ErrNotFound) {
				a.log.WithFields(logrus.Fields{
					"source": s.Name(),
					"what":   what,
				}).WithError(err).Warn("source failed, trying next")
			}
			continue
		}
		if len(matches) == 0 {
			continue
		}
		a.log.WithFields(logrus.Fields{
			"source": s.Name(),
			"what":   what,
			"count":  len(matches),
		}).Debug("source answered")
		return matches
	}
	a.log.WithField("what", what).Warn("all sources empty")
	return nil
}
