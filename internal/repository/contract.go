package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"EstateLink/internal/model"
)

// ContractStore is the read-only view over customers and projects the
// automation core consumes. The CRM application owns these records.
type ContractStore struct {
	db *gorm.DB
}

func NewContractStore(db *gorm.DB) *ContractStore {
	return &ContractStore{db: db}
}

// ActiveProjects returns all active contracts with their customer attached.
func (s *ContractStore) ActiveProjects(ctx context.Context) ([]*model.Project, error) {
	var projects []*model.Project
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Where("status = ?", model.ProjectStatusActive).
		Order("id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active projects: %w", err)
	}

	return projects, nil
}

// GetCustomer loads one customer by ID.
func (s *ContractStore) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	var customer model.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetProject loads one project by ID.
func (s *ContractStore) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	var project model.Project
	if err := s.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}
