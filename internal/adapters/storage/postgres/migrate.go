package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Quotes are unique on author and content, ignoring case and surrounding whitespace.
const createQuoteTextIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_quotes_author_content
	ON quotes (LOWER(TRIM(author)), LOWER(TRIM(content)))`

// Migrate creates or updates the schema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(&quoteRecord{}, &userRecord{}); err != nil {
		return translate("schema", "migrate", err)
	}

	if err := db.Exec(createQuoteTextIndex).Error; err != nil {
		return fmt.Errorf("postgres: creating quote text index: %w", err)
	}

	return nil
}
