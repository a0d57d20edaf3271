// Package realtime turns changes in the campaign tables into refresh events
// for connected pages.
package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	TableCampaigns = "campaigns"
	TableContacts  = "contacts"

	ChannelCampaigns = "campaigns_changes"
	ChannelContacts  = "contacts_changes"
)

// Tables lists every table pages watch.
var Tables = []string{TableCampaigns, TableContacts}

type Event struct {
	Table   string `json:"table"`
	Payload string `json:"payload,omitempty"`
}

// Feed delivers change events until ctx is cancelled.
type Feed interface {
	Run(ctx context.Context, notify func(Event)) error
}

// PGListener listens for NOTIFY messages sent by the change triggers.
type PGListener struct {
	DSN          string
	MinReconnect time.Duration
	MaxReconnect time.Duration
	logger       *zap.Logger
}

func NewPGListener(dsn string, logger *zap.Logger) *PGListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PGListener{
		DSN:          dsn,
		MinReconnect: 10 * time.Second,
		MaxReconnect: time.Minute,
		logger:       logger,
	}
}

func (l *PGListener) Run(ctx context.Context, notify func(Event)) error {
	listener := pq.NewListener(l.DSN, l.MinReconnect, l.MaxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			l.logger.Warn("change feed connection problem", zap.Error(err))
		case pq.ListenerEventReconnected:
			l.logger.Info("change feed reconnected")
		}
	})
	defer listener.Close()

	for _, ch := range []string{ChannelCampaigns, ChannelContacts} {
		if err := listener.Listen(ch); err != nil {
			return fmt.Errorf("listen %s: %w", ch, err)
		}
	}
	l.logger.Info("change feed listening", zap.Strings("channels", []string{ChannelCampaigns, ChannelContacts}))

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				// reconnected; anything may have changed meanwhile
				for _, table := range Tables {
					notify(Event{Table: table})
				}
				continue
			}
			notify(Event{Table: TableForChannel(n.Channel), Payload: n.Extra})
		case <-time.After(90 * time.Second):
			go func() {
				if err := listener.Ping(); err != nil {
					l.logger.Warn("change feed ping failed", zap.Error(err))
				}
			}()
		}
	}
}

// TableForChannel maps a notification channel back to its table.
func TableForChannel(channel string) string {
	return strings.TrimSuffix(channel, "_changes")
}

// Poller emits a refresh for every table on a fixed interval. It stands in
// for the change feed when campaign data is read over REST.
type Poller struct {
	Interval time.Duration
}

func NewPoller(interval time.Duration) *Poller {
	return &Poller{Interval: interval}
}

func (p *Poller) Run(ctx context.Context, notify func(Event)) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, table := range Tables {
				notify(Event{Table: table})
			}
		}
	}
}

// triggerStatements install the NOTIFY triggers PGListener depends on.
var triggerStatements = []string{
	`CREATE OR REPLACE FUNCTION autolynx_notify_change() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify(TG_TABLE_NAME || '_changes', TG_OP);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS autolynx_campaigns_changes ON campaigns`,
	`CREATE TRIGGER autolynx_campaigns_changes
	AFTER INSERT OR UPDATE OR DELETE ON campaigns
	FOR EACH STATEMENT EXECUTE FUNCTION autolynx_notify_change()`,
	`DROP TRIGGER IF EXISTS autolynx_contacts_changes ON contacts`,
	`CREATE TRIGGER autolynx_contacts_changes
	AFTER INSERT OR UPDATE OR DELETE ON contacts
	FOR EACH STATEMENT EXECUTE FUNCTION autolynx_notify_change()`,
}

// InstallTriggers creates or replaces the change triggers on the campaign
// database.
func InstallTriggers(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range triggerStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("install change triggers: %w", err)
			}
		}
		return nil
	})
}
