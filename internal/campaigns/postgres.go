package campaigns

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// PostgresSource reads campaign data over a direct database connection.
type PostgresSource struct {
	db *gorm.DB
}

func NewPostgresSource(db *gorm.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) CampaignStats(ctx context.Context) ([]CampaignStats, error) {
	var rows []CampaignStats
	if err := s.db.WithContext(ctx).Order("last_activity desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load campaign stats: %w", err)
	}
	return rows, nil
}

func (s *PostgresSource) Contacts(ctx context.Context, campaignID string) ([]CallContact, error) {
	q := s.db.WithContext(ctx)
	if campaignID != "" {
		q = q.Where("campaign_id = ?", campaignID)
	}

	var rows []CallContact
	if err := q.Order("processing_order asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	return rows, nil
}

func (s *PostgresSource) RecentContacts(ctx context.Context) ([]CallContact, error) {
	var rows []CallContact
	if err := s.db.WithContext(ctx).Order("last_called_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load recent contacts: %w", err)
	}
	return rows, nil
}

func (s *PostgresSource) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
