package repository

import "context"

// SequenceRepository contadores monótonos por prefijo para identificadores legibles.
type SequenceRepository interface {
	Next(ctx context.Context, prefix string) (int64, error)
}
