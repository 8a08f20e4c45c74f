package db

import (
	"fmt"

	types "github.com/Milo-adonos/SilentView/internal/domain"
)

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := s.db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if s.dialect != "postgres" {
		return nil
	}
	// the foreign key is added by hand because migrations run with FK
	// creation disabled
	if err := s.db.Exec(`
		DO $$ BEGIN
			ALTER TABLE "user_token"
			ADD CONSTRAINT "fk_user_token_user_id"
			FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$;
	`).Error; err != nil {
		return fmt.Errorf("user_token foreign key: %w", err)
	}
	return nil
}
