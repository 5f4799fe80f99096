package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_pdf_configurations",
		SQL: `CREATE TABLE IF NOT EXISTS pdf_configurations (
  id                   TEXT        NOT NULL,
  form_id              TEXT        NOT NULL,
  name                 TEXT        NOT NULL,
  active               BOOLEAN     NOT NULL DEFAULT false,
  public_access        BOOLEAN     NOT NULL DEFAULT false,
  restrict_owner       BOOLEAN     NOT NULL DEFAULT false,
  conditional_logic    JSONB,
  notification_targets JSONB       NOT NULL DEFAULT '[]',
  template_id          TEXT        NOT NULL,
  filename_pattern     TEXT        NOT NULL DEFAULT '',
  paper_size           TEXT        NOT NULL DEFAULT '',
  orientation          TEXT        NOT NULL DEFAULT '',
  rtl                  BOOLEAN     NOT NULL DEFAULT false,
  position             BIGSERIAL,
  PRIMARY KEY (form_id, id)
);`,
	},
	{
		Name: "create_index_pdf_configurations_position",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_pdf_configurations_position ON pdf_configurations (form_id, position);`,
	},
	{
		Name: "create_table_entries",
		SQL: `CREATE TABLE IF NOT EXISTS entries (
  id           TEXT        PRIMARY KEY,
  form_id      TEXT        NOT NULL,
  created_by   TEXT,
  ip           TEXT        NOT NULL DEFAULT '',
  date_created TIMESTAMPTZ NOT NULL DEFAULT now(),
  fields       JSONB       NOT NULL DEFAULT '{}'
);`,
	},
	{
		Name: "create_index_entries_form_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_entries_form_id ON entries (form_id);`,
	},
	{
		Name: "create_table_user_capabilities",
		SQL: `CREATE TABLE IF NOT EXISTS user_capabilities (
  user_id    TEXT NOT NULL,
  capability TEXT NOT NULL,
  PRIMARY KEY (user_id, capability)
);`,
	},
}

// EnsureMigrated checks if the 'pdf_configurations' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.pdf_configurations') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
