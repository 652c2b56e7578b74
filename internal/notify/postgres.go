package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"
)

// Channel is the pg_notify channel the row triggers write to.
const Channel = "rebuyrnot_changes"

// InstallTriggers creates one AFTER trigger per watched table that calls
// pg_notify with the table name. Safe to run on every start.
func InstallTriggers(db *gorm.DB) error {
	fn := fmt.Sprintf(`
CREATE OR REPLACE FUNCTION rebuyrnot_notify_change() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('%s', TG_TABLE_NAME);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;`, Channel)
	if err := db.Exec(fn).Error; err != nil {
		return fmt.Errorf("failed to create notify function: %w", err)
	}

	for _, table := range WatchedTables {
		trigger := "rebuyrnot_" + table + "_changed"
		stmts := []string{
			fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s`, trigger, table),
			fmt.Sprintf(`CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s
				FOR EACH STATEMENT EXECUTE FUNCTION rebuyrnot_notify_change()`, trigger, table),
		}
		for _, stmt := range stmts {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to install trigger on %s: %w", table, err)
			}
		}
	}
	return nil
}

// PGListener forwards PostgreSQL notifications into a Notifier so that
// writes made by other instances invalidate this instance's snapshots.
type PGListener struct {
	dsn     string
	target  Notifier
	backoff time.Duration
}

func NewPGListener(dsn string, target Notifier) *PGListener {
	return &PGListener{dsn: dsn, target: target, backoff: 2 * time.Second}
}

// Run blocks until ctx is cancelled, reconnecting on connection loss.
func (l *PGListener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		slog.Warn("change listener disconnected, retrying", "error", err, "backoff", l.backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.backoff):
		}
	}
}

func (l *PGListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	slog.Info("listening for table changes", "channel", Channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("wait: %w", err)
		}
		l.target.Publish(Change{Table: n.Payload, Source: "postgres"})
	}
}
