package denial

import "context"

// Repository defines the persistence contract for appeals.
type Repository interface {
	Save(ctx context.Context, appeal *Appeal) error
	GetByID(ctx context.Context, appealID string) (*Appeal, error)
	ListRecent(ctx context.Context, limit int) ([]*Appeal, error)
	UpdateStatus(ctx context.Context, appealID string, status AppealStatus) error
}
