package flipper

import "osrs-flipper/internal/models"

// FlipStore is the persistence surface the flipping services need. The
// MySQL implementation lives in internal/database; tests use an in-memory
// fake.
type FlipStore interface {
	// OpenFlip returns the oldest non-closed flip for (user, item), or nil.
	OpenFlip(displayName string, itemID int) (*models.Flip, error)
	// UserFlips returns every flip for the user with transaction history.
	UserFlips(displayName string) ([]models.Flip, error)
	// SaveFlips commits the batch atomically, enforcing version checks.
	SaveFlips(flips []*models.Flip) error
}
