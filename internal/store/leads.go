package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"outreach-engine/internal/domain"
)

const leadCols = `id, entity_id, channel_name, channel_url, creator_name, email,
keyword_source, video_id, video_title, video_description,
subscriber_count, subscriber_tier, profile_text, stats_available, video_count,
score, score_breakdown, evaluation, disposition_reason,
status, next_action_at, action_count,
asset_url, draft_subject, draft_body, sent_subject, sent_at,
notes, created_at, updated_at`

func scanLead(row interface{ Scan(...any) error }) (*domain.Lead, error) {
	var l domain.Lead
	var subCount sql.NullInt64
	var tier, breakdown string
	var nextAction, sentAt sql.NullString
	var statsAvail int
	var status string
	var createdAt, updatedAt string

	err := row.Scan(
		&l.ID, &l.EntityID, &l.ChannelName, &l.ChannelURL, &l.CreatorName, &l.Email,
		&l.KeywordSource, &l.VideoID, &l.VideoTitle, &l.VideoDescription,
		&subCount, &tier, &l.ProfileText, &statsAvail, &l.VideoCount,
		&l.Score, &breakdown, &l.Evaluation, &l.DispositionReason,
		&status, &nextAction, &l.ActionCount,
		&l.AssetURL, &l.DraftSubject, &l.DraftBody, &l.SentSubject, &sentAt,
		&l.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if subCount.Valid {
		n := subCount.Int64
		l.SubscriberCount = &n
	}
	l.SubscriberTier = domain.Tier(tier)
	l.StatsAvailable = statsAvail != 0
	l.Status = domain.Status(status)
	_ = json.Unmarshal([]byte(breakdown), &l.ScoreBreakdown)
	if nextAction.Valid {
		if t, err := time.Parse(time.RFC3339, nextAction.String); err == nil {
			l.NextActionAt = &t
		}
	}
	if sentAt.Valid {
		if t, err := time.Parse(time.RFC3339, sentAt.String); err == nil {
			l.SentAt = &t
		}
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &l, nil
}

// UpsertLead persists a harvested lead with full-replace semantics on the
// entity id, so re-running a harvest never creates duplicate rows.
func UpsertLead(ctx context.Context, db *sql.DB, l domain.Lead) error {
	if !l.Status.Valid() {
		return fmt.Errorf("upsert lead %s: invalid status %q", l.EntityID, l.Status)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	var subCount any
	if l.SubscriberCount != nil {
		subCount = *l.SubscriberCount
	}
	statsAvail := 0
	if l.StatsAvailable {
		statsAvail = 1
	}

	_, err := db.ExecContext(ctx, `
INSERT INTO leads (
  entity_id, channel_name, channel_url, creator_name, email, keyword_source,
  video_id, video_title, video_description,
  subscriber_count, subscriber_tier, profile_text, stats_available, video_count,
  status, created_at, updated_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(entity_id) DO UPDATE SET
  channel_name=excluded.channel_name,
  channel_url=excluded.channel_url,
  email=excluded.email,
  keyword_source=excluded.keyword_source,
  video_id=excluded.video_id,
  video_title=excluded.video_title,
  video_description=excluded.video_description,
  subscriber_count=excluded.subscriber_count,
  subscriber_tier=excluded.subscriber_tier,
  profile_text=excluded.profile_text,
  stats_available=excluded.stats_available,
  video_count=excluded.video_count,
  status=excluded.status,
  updated_at=excluded.updated_at;`,
		l.EntityID, l.ChannelName, l.ChannelURL, l.CreatorName, l.Email, l.KeywordSource,
		l.VideoID, l.VideoTitle, l.VideoDescription,
		subCount, string(l.SubscriberTier), l.ProfileText, statsAvail, l.VideoCount,
		string(l.Status), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert lead %s: %w", l.EntityID, err)
	}
	return nil
}

func GetLead(ctx context.Context, db *sql.DB, entityID string) (*domain.Lead, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+leadCols+` FROM leads WHERE entity_id = ?;`, entityID)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func ListLeadsByStatus(ctx context.Context, db *sql.DB, status domain.Status, limit int) ([]domain.Lead, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.QueryContext(ctx, `
SELECT `+leadCols+` FROM leads WHERE status = ? ORDER BY created_at LIMIT ?;`,
		string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// ListLeadsDue returns non-terminal leads whose next_action_at is at or
// before now, oldest first.
func ListLeadsDue(ctx context.Context, db *sql.DB, now time.Time) ([]domain.Lead, error) {
	terminal := []domain.Status{
		domain.StatusDisqualified, domain.StatusLowScore, domain.StatusReplied,
		domain.StatusConverted, domain.StatusUnsubscribed, domain.StatusDead,
	}
	marks := make([]string, len(terminal))
	args := []any{now.UTC().Format(time.RFC3339)}
	for i, s := range terminal {
		marks[i] = "?"
		args = append(args, string(s))
	}

	rows, err := db.QueryContext(ctx, `
SELECT `+leadCols+` FROM leads
WHERE next_action_at IS NOT NULL
  AND next_action_at <= ?
  AND status NOT IN (`+strings.Join(marks, ",")+`)
ORDER BY next_action_at;`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

func collectLeads(rows *sql.Rows) ([]domain.Lead, error) {
	var out []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// KnownEntityIDs loads every entity id already in the store; the harvester
// dedups against this set in memory for the duration of one batch.
func KnownEntityIDs(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT entity_id FROM leads;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seen[id] = true
	}
	return seen, rows.Err()
}

// ContactableEmails maps lowercased email address to entity id for every
// non-terminal lead that has one; the reply poller matches inbound mail
// against this set.
func ContactableEmails(ctx context.Context, db *sql.DB) (map[string]string, error) {
	terminal := []domain.Status{
		domain.StatusDisqualified, domain.StatusLowScore, domain.StatusReplied,
		domain.StatusConverted, domain.StatusUnsubscribed, domain.StatusDead,
	}
	marks := make([]string, len(terminal))
	var args []any
	for i, s := range terminal {
		marks[i] = "?"
		args = append(args, string(s))
	}

	rows, err := db.QueryContext(ctx, `
SELECT email, entity_id FROM leads
WHERE email != '' AND status NOT IN (`+strings.Join(marks, ",")+`);`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var email, id string
		if err := rows.Scan(&email, &id); err != nil {
			return nil, err
		}
		out[strings.ToLower(email)] = id
	}
	return out, rows.Err()
}

func CountByStatus(ctx context.Context, db *sql.DB) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

// conflictFor resolves why a guarded update matched no rows.
func conflictFor(ctx context.Context, db *sql.DB, entityID string, expected domain.Status) error {
	var actual string
	err := db.QueryRowContext(ctx, `SELECT status FROM leads WHERE entity_id = ?;`, entityID).Scan(&actual)
	if err == sql.ErrNoRows {
		return domain.ErrLeadNotFound
	}
	if err != nil {
		return err
	}
	return &domain.ConflictError{EntityID: entityID, Expected: expected, Actual: domain.Status(actual)}
}

// UpdateStatus is the bare compare-and-swap on status. Every lifecycle
// transition funnels through a guarded write like this one; a lost race is
// a ConflictError, never a silent overwrite. Terminal targets clear the
// pending action in the same write so no retired lead keeps a schedule.
func UpdateStatus(ctx context.Context, db *sql.DB, entityID string, from, to domain.Status) error {
	now := time.Now().UTC().Format(time.RFC3339)
	set := `status = ?, updated_at = ?`
	if to.Terminal() {
		set = `status = ?, updated_at = ?, next_action_at = NULL`
	}
	res, err := db.ExecContext(ctx, `
UPDATE leads SET `+set+`
WHERE entity_id = ? AND status = ?;`,
		string(to), now, entityID, string(from))
	if err != nil {
		return fmt.Errorf("update status %s: %w", entityID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return conflictFor(ctx, db, entityID, from)
	}
	return nil
}

// QualificationUpdate is everything the qualifier persists in one guarded
// write, conditioned on the lead still being harvested.
type QualificationUpdate struct {
	Status      domain.Status
	Score       int
	Breakdown   map[string]int
	Evaluation  string
	Reason      string
	Email       string
	CreatorName string
	VideoCount  int
}

func ApplyQualification(ctx context.Context, db *sql.DB, entityID string, from domain.Status, q QualificationUpdate) error {
	if !q.Status.Valid() {
		return fmt.Errorf("apply qualification %s: invalid status %q", entityID, q.Status)
	}
	breakdown, _ := json.Marshal(q.Breakdown)
	if q.Breakdown == nil {
		breakdown = []byte("{}")
	}
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := db.ExecContext(ctx, `
UPDATE leads SET
  status = ?, score = ?, score_breakdown = ?, evaluation = ?,
  disposition_reason = ?, video_count = ?,
  email = CASE WHEN ? != '' THEN ? ELSE email END,
  creator_name = CASE WHEN ? != '' THEN ? ELSE creator_name END,
  updated_at = ?
WHERE entity_id = ? AND status = ?;`,
		string(q.Status), q.Score, string(breakdown), q.Evaluation,
		q.Reason, q.VideoCount,
		q.Email, q.Email,
		q.CreatorName, q.CreatorName,
		now, entityID, string(from))
	if err != nil {
		return fmt.Errorf("apply qualification %s: %w", entityID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return conflictFor(ctx, db, entityID, from)
	}
	return nil
}

// SetAssetURL records the generated asset and completes the in-progress
// transition; guarded on asset_generating so a failed run that already
// rolled back cannot be overwritten.
func SetAssetURL(ctx context.Context, db *sql.DB, entityID, assetURL string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `
UPDATE leads SET status = ?, asset_url = ?, updated_at = ?
WHERE entity_id = ? AND status = ?;`,
		string(domain.StatusAssetGenerated), assetURL, now,
		entityID, string(domain.StatusAssetGenerating))
	if err != nil {
		return fmt.Errorf("set asset url %s: %w", entityID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return conflictFor(ctx, db, entityID, domain.StatusAssetGenerating)
	}
	return nil
}

func SetDraft(ctx context.Context, db *sql.DB, entityID string, from domain.Status, subject, body string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `
UPDATE leads SET status = ?, draft_subject = ?, draft_body = ?, updated_at = ?
WHERE entity_id = ? AND status = ?;`,
		string(domain.StatusDrafted), subject, body, now,
		entityID, string(from))
	if err != nil {
		return fmt.Errorf("set draft %s: %w", entityID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return conflictFor(ctx, db, entityID, from)
	}
	return nil
}

// MarkSent records the initial outreach: status=sent and the first
// follow-up scheduled, guarded on the prior status.
func MarkSent(ctx context.Context, db *sql.DB, entityID string, from domain.Status, subject string, sentAt, nextAction time.Time) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `
UPDATE leads SET
  status = ?, sent_subject = ?, sent_at = ?, next_action_at = ?, updated_at = ?
WHERE entity_id = ? AND status = ?;`,
		string(domain.StatusSent), subject,
		sentAt.UTC().Format(time.RFC3339), nextAction.UTC().Format(time.RFC3339),
		now, entityID, string(from))
	if err != nil {
		return fmt.Errorf("mark sent %s: %w", entityID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return conflictFor(ctx, db, entityID, from)
	}
	return nil
}

// DispatchFollowup advances the follow-up chain: action_count=k and either
// the next due time or a terminal dead state. Guarded on the status the
// scheduler observed when it selected the lead.
func DispatchFollowup(ctx context.Context, db *sql.DB, entityID string, from, to domain.Status, k int, next *time.Time) error {
	now := time.Now().UTC().Format(time.RFC3339)
	var nextVal any
	if next != nil {
		nextVal = next.UTC().Format(time.RFC3339)
	}
	res, err := db.ExecContext(ctx, `
UPDATE leads SET status = ?, action_count = ?, next_action_at = ?, updated_at = ?
WHERE entity_id = ? AND status = ? AND action_count < ?;`,
		string(to), k, nextVal, now,
		entityID, string(from), k)
	if err != nil {
		return fmt.Errorf("dispatch followup %s: %w", entityID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return conflictFor(ctx, db, entityID, from)
	}
	return nil
}

// RecordReplyStatus moves the lead to replied and clears the pending
// action, guarded on the status observed by the caller. If a follow-up
// dispatch won the race the caller re-reads and tries again.
func RecordReplyStatus(ctx context.Context, db *sql.DB, entityID string, from domain.Status) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `
UPDATE leads SET status = ?, next_action_at = NULL, updated_at = ?
WHERE entity_id = ? AND status = ?;`,
		string(domain.StatusReplied), now, entityID, string(from))
	if err != nil {
		return fmt.Errorf("record reply %s: %w", entityID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return conflictFor(ctx, db, entityID, from)
	}
	return nil
}

func AppendNote(ctx context.Context, db *sql.DB, entityID, note string) error {
	now := time.Now().UTC()
	stamped := fmt.Sprintf("[%s] %s\n", now.Format(time.RFC3339), note)
	res, err := db.ExecContext(ctx, `
UPDATE leads SET notes = notes || ?, updated_at = ? WHERE entity_id = ?;`,
		stamped, now.Format(time.RFC3339), entityID)
	if err != nil {
		return fmt.Errorf("append note %s: %w", entityID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}
