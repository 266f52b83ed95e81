package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Toggle flips membership of a unique pair. Rows matching query are deleted; when there
// were none, row is inserted instead. Both branches run in one transaction and the insert
// ignores a unique conflict, so concurrent identical calls never leave duplicates.
// It reports true when row was added.
func Toggle(ctx context.Context, db *gorm.DB, row any, query string, args ...any) (bool, error) {
	added := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(query, args...).Delete(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return err
		}
		added = true
		return nil
	})
	return added, err
}
