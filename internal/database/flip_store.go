package database

import (
	"errors"
	"fmt"
	"sort"

	"osrs-flipper/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FlipStore persists flips in MySQL. It is the sole writer of flip rows;
// suggestion-side components only read through it.
type FlipStore struct {
	db *gorm.DB
}

func NewFlipStore(db *gorm.DB) *FlipStore {
	return &FlipStore{db: db}
}

// OpenFlip returns the oldest non-closed flip for (user, item), or nil when
// the user has no open position in that item.
func (s *FlipStore) OpenFlip(displayName string, itemID int) (*models.Flip, error) {
	var flip models.Flip
	err := s.db.
		Where("account_display_name = ? AND item_id = ? AND is_closed = ?", displayName, itemID, false).
		Order("opened_time asc").
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("time asc, id asc")
		}).
		First(&flip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query open flip: %w", err)
	}
	return &flip, nil
}

// UserFlips returns every flip for the user with full transaction history.
func (s *FlipStore) UserFlips(displayName string) ([]models.Flip, error) {
	var flips []models.Flip
	err := s.db.
		Where("account_display_name = ?", displayName).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("time asc, id asc")
		}).
		Find(&flips).Error
	if err != nil {
		return nil, fmt.Errorf("query user flips: %w", err)
	}

	// Closed flips newest first; open flips (closed_time = 0) last.
	sort.SliceStable(flips, func(i, j int) bool {
		a, b := flips[i].ClosedTime, flips[j].ClosedTime
		if (a == 0) != (b == 0) {
			return a != 0
		}
		return a > b
	})
	return flips, nil
}

// SaveFlips commits all flips in one transaction. Existing rows are updated
// with a version check; a stale version fails the whole batch with
// models.ErrVersionConflict so the caller can re-read and retry.
func (s *FlipStore) SaveFlips(flips []*models.Flip) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, flip := range flips {
			if err := saveFlip(tx, flip); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveFlip(tx *gorm.DB, flip *models.Flip) error {
	if flip.Version == 0 {
		flip.Version = 1
		if err := tx.Omit("Transactions").Create(flip).Error; err != nil {
			return fmt.Errorf("create flip %s: %w", flip.ID, err)
		}
	} else {
		res := tx.Model(&models.Flip{}).
			Where("id = ? AND version = ?", flip.ID, flip.Version).
			Updates(map[string]interface{}{
				"item_name":         flip.ItemName,
				"opened_time":       flip.OpenedTime,
				"opened_quantity":   flip.OpenedQuantity,
				"spent":             flip.Spent,
				"closed_time":       flip.ClosedTime,
				"closed_quantity":   flip.ClosedQuantity,
				"received_post_tax": flip.ReceivedPostTax,
				"tax_paid":          flip.TaxPaid,
				"profit":            flip.Profit,
				"is_closed":         flip.IsClosed,
				"version":           flip.Version + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("update flip %s: %w", flip.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return models.ErrVersionConflict
		}
		flip.Version++
	}

	for i := range flip.Transactions {
		flip.Transactions[i].FlipID = flip.ID
	}
	if len(flip.Transactions) > 0 {
		// History rows are append-only; re-ingested ids are no-ops.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(flip.Transactions).Error; err != nil {
			return fmt.Errorf("save flip %s history: %w", flip.ID, err)
		}
	}
	return nil
}
