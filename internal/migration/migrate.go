// Package migration moves legacy per-user places into the brand-scoped
// model: each legacy owner gets a default brand, an owner membership, and
// their places re-scoped to the new brand.
package migration

import (
	"fmt"
	"time"

	"github.com/suteetoe/storelocator/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultBrandName is the name given to brands created by the migration.
const DefaultBrandName = "My Brand"

const defaultBrandDescription = "Default brand created during migration"

// Result summarizes a migration run.
type Result struct {
	UsersProcessed int
	BrandsCreated  int
	PlacesUpdated  int
	Errors         []string
}

// MigrateToBrands migrates every legacy place owner to the brand model. The
// run is idempotent: users that already own a brand are skipped, so a
// partially failed run can simply be repeated. Each user's brand, membership
// and place updates are committed in one transaction.
func MigrateToBrands(db *gorm.DB, log *zap.Logger) (*Result, error) {
	result := &Result{}

	var userIDs []string
	query := db.Model(&model.Place{}).
		Distinct("user_id").
		Where("user_id IS NOT NULL AND brand_id IS NULL").
		Pluck("user_id", &userIDs)
	if query.Error != nil {
		return nil, fmt.Errorf("failed to list legacy place owners: %w", query.Error)
	}

	log.Info("Starting migration to brand-based model", zap.Int("users", len(userIDs)))

	for _, userID := range userIDs {
		if err := migrateUser(db, log, userID, result); err != nil {
			msg := fmt.Sprintf("user %s: %v", userID, err)
			log.Error("Migration step failed", zap.String("user_id", userID), zap.Error(err))
			result.Errors = append(result.Errors, msg)
			continue
		}
		result.UsersProcessed++
	}

	log.Info("Migration completed",
		zap.Int("users_processed", result.UsersProcessed),
		zap.Int("brands_created", result.BrandsCreated),
		zap.Int("places_updated", result.PlacesUpdated),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

func migrateUser(db *gorm.DB, log *zap.Logger, userID string, result *Result) error {
	// Skip users that already own a brand, in case of a partial earlier run.
	var existing model.Brand
	lookup := db.Where("owner_id = ?", userID).First(&existing)
	if lookup.Error == nil {
		log.Info("User already has a brand, skipping",
			zap.String("user_id", userID),
			zap.String("brand", existing.Name))
		return nil
	}
	if lookup.Error != gorm.ErrRecordNotFound {
		return lookup.Error
	}

	var placesUpdated int64
	err := db.Transaction(func(tx *gorm.DB) error {
		brand := model.Brand{
			Name:        DefaultBrandName,
			Description: defaultBrandDescription,
			OwnerID:     userID,
		}
		if err := tx.Create(&brand).Error; err != nil {
			return fmt.Errorf("create brand: %w", err)
		}

		now := time.Now()
		membership := model.BrandMember{
			BrandID:    brand.ID,
			UserID:     userID,
			Role:       model.RoleOwner,
			AcceptedAt: &now,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}

		update := tx.Model(&model.Place{}).
			Where("user_id = ?", userID).
			Update("brand_id", brand.ID)
		if update.Error != nil {
			return fmt.Errorf("update places: %w", update.Error)
		}
		placesUpdated = update.RowsAffected

		log.Info("Migrated user",
			zap.String("user_id", userID),
			zap.Uint("brand_id", brand.ID),
			zap.Int64("places", update.RowsAffected))
		return nil
	})
	if err != nil {
		return err
	}

	result.BrandsCreated++
	result.PlacesUpdated += int(placesUpdated)
	return nil
}
