package store

import "database/sql"

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS leads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  entity_id TEXT NOT NULL,
  channel_name TEXT NOT NULL,
  channel_url TEXT NOT NULL DEFAULT '',
  creator_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  keyword_source TEXT NOT NULL DEFAULT '',
  video_id TEXT NOT NULL DEFAULT '',
  video_title TEXT NOT NULL DEFAULT '',
  video_description TEXT NOT NULL DEFAULT '',
  subscriber_count INTEGER,
  subscriber_tier TEXT NOT NULL DEFAULT 'unknown',
  profile_text TEXT NOT NULL DEFAULT '',
  stats_available INTEGER NOT NULL DEFAULT 0,
  video_count INTEGER NOT NULL DEFAULT 0,
  score INTEGER NOT NULL DEFAULT 0,
  score_breakdown TEXT NOT NULL DEFAULT '{}',
  evaluation TEXT NOT NULL DEFAULT '',
  disposition_reason TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  next_action_at TEXT,
  action_count INTEGER NOT NULL DEFAULT 0,
  asset_url TEXT NOT NULL DEFAULT '',
  draft_subject TEXT NOT NULL DEFAULT '',
  draft_body TEXT NOT NULL DEFAULT '',
  sent_subject TEXT NOT NULL DEFAULT '',
  sent_at TEXT,
  notes TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS lead_events (
  id TEXT PRIMARY KEY,
  entity_id TEXT NOT NULL,
  at TEXT NOT NULL,
  type TEXT NOT NULL,
  payload TEXT NOT NULL DEFAULT '{}',
  response TEXT
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS keywords (
  keyword TEXT NOT NULL COLLATE NOCASE,
  used INTEGER NOT NULL DEFAULT 0,
  used_at TEXT,
  created_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_entity_id ON leads(entity_id);
`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_leads_next_action
ON leads(next_action_at)
WHERE next_action_at IS NOT NULL;
`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_lead_events_entity ON lead_events(entity_id, at);
`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_keywords_keyword ON keywords(keyword);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}
