package campaigns

import (
	"context"
	"testing"

	"autolynx-portal/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// The queries are plain SQL, so an in-memory SQLite copy of the schema is
// enough to exercise them.
func seedCampaignDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)

	stmts := []string{
		`CREATE TABLE contacts (
			row_id TEXT PRIMARY KEY,
			campaign_id TEXT,
			name TEXT,
			business_name TEXT,
			phone TEXT,
			status TEXT,
			transcript TEXT,
			last_called_at TIMESTAMP,
			processing_order INTEGER,
			recording_url TEXT,
			cost REAL,
			ended_reason TEXT,
			success_evaluation BOOLEAN
		)`,
		`CREATE VIEW v_campaign_stats AS
			SELECT campaign_id,
				COUNT(*) AS total,
				SUM(CASE WHEN status = 'DONE' THEN 1 ELSE 0 END) AS completed,
				SUM(CASE WHEN status = 'FAILED' THEN 1 ELSE 0 END) AS failed,
				0.0 AS success_pct,
				MAX(last_called_at) AS last_activity
			FROM contacts GROUP BY campaign_id`,
		`INSERT INTO contacts (row_id, campaign_id, name, phone, status, transcript, last_called_at, processing_order) VALUES
			('1', 'A', 'Ann', '+15550000001', 'DONE', '{"summary":"ok"}', '2024-11-28 10:00:00', 2),
			('2', 'A', 'Ben', '+15550000002', 'FAILED', NULL, '2024-11-29 10:00:00', 1),
			('3', 'B', 'Cy', '+15550000003', 'NEW', NULL, NULL, 1)`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestPostgresSource_Contacts(t *testing.T) {
	src := NewPostgresSource(seedCampaignDB(t))
	ctx := context.Background()

	rows, err := src.Contacts(ctx, "A")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ben", rows[0].Name, "ordered by processing_order")
	assert.True(t, rows[0].Transcript.Empty())
	assert.JSONEq(t, `{"summary":"ok"}`, string(rows[1].Transcript))
	require.NotNil(t, rows[1].LastCalledAt)
	assert.Equal(t, 28, rows[1].LastCalledAt.Day())

	all, err := src.Contacts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	recent, err := src.RecentContacts(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	require.NoError(t, src.Ping(ctx))
}

func TestPostgresSource_CampaignStats(t *testing.T) {
	rows, err := NewPostgresSource(seedCampaignDB(t)).CampaignStats(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[string]CampaignStats{}
	for _, r := range rows {
		byID[r.CampaignID] = r
	}
	assert.Equal(t, 2, byID["A"].Total)
	assert.Equal(t, 1, byID["A"].Completed)
	assert.Equal(t, 1, byID["A"].Failed)
	assert.Nil(t, byID["B"].LastActivity)
}
