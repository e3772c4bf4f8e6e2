package repositories

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; one connection keeps transactions serialized
	sqlDB.SetMaxOpenConns(1)

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	models := []struct {
		name  string
		model any
	}{
		{"Application", &entities.Application{}},
		{"ApplicationDepartment", &entities.ApplicationDepartment{}},
		{"EligibilityCriterion", &entities.EligibilityCriterion{}},
		{"EvaluationResult", &entities.EvaluationResult{}},
		{"StatusHistoryEntry", &entities.StatusHistoryEntry{}},
		{"ApplicantProfile", &entities.ApplicantProfile{}},
		{"ApplicantAttribute", &entities.ApplicantAttribute{}},
		{"ApplicantDocument", &entities.ApplicantDocument{}},
	}

	for _, m := range models {
		if err := c.DB.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("failed to migrate %s entity: %w", m.name, err)
		}
	}

	if err := c.DB.Exec("CREATE INDEX IF NOT EXISTS idx_criteria_active_scope " +
		"ON eligibility_criteria (is_active, department_id);").Error; err != nil {
		return fmt.Errorf("failed to create criteria index: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}

// lockForUpdate adds a row lock where the dialect supports one. sqlite has no
// row locks and relies on its single writer connection instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
