// Package profile is the persisted-score collaborator boundary. Score
// storage itself lives outside this process; the coordinator only hands the
// final standings across this interface.
package profile

import (
	"context"

	"github.com/ShatadruM/MonkeRivals/internal/race"
)

type Store interface {
	RecordRace(ctx context.Context, roomID string, results race.Results) error
}

// Noop discards results, for deployments without a profile service.
type Noop struct{}

func (Noop) RecordRace(context.Context, string, race.Results) error { return nil }
