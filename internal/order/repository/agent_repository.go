package repository

import (
	orderdomain "hushh-backend/internal/order/domain"

	"gorm.io/gorm"
)

// AgentRepository defines lookups for fulfillment agents
type AgentRepository interface {
	FindByID(id string) (*orderdomain.Agent, error)
}

type agentRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepository{
		db: db,
	}
}

func (r *agentRepository) FindByID(id string) (*orderdomain.Agent, error) {
	var agent orderdomain.Agent
	err := r.db.Where("id = ?", id).First(&agent).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}
