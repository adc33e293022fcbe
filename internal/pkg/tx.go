package pkg

import "gorm.io/gorm"

// WithTx executes fn within a database transaction. It commits on success
// and rolls back on error or panic. Circulation flows use it so a loan row
// and its book's stock always change together.
func WithTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
