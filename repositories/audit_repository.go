package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/blogem/toolshelf/models"
)

// AuditRepository handles durable audit log persistence
type AuditRepository interface {
	Create(entry *models.AuditLogEntry) error
	Recent(limit int) ([]models.AuditLogEntry, error)
}

type sqliteAuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &sqliteAuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *sqliteAuditRepository) Create(entry *models.AuditLogEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	query := `
		INSERT INTO audit_log (id, timestamp, event_kind, details, ip_address)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(
		query,
		entry.ID,
		entry.Timestamp,
		string(entry.Kind),
		string(details),
		entry.IPAddress,
	)
	return err
}

// Recent returns the newest entries, oldest first
func (r *sqliteAuditRepository) Recent(limit int) ([]models.AuditLogEntry, error) {
	query := `
		SELECT id, timestamp, event_kind, details, ip_address FROM (
			SELECT id, timestamp, event_kind, details, ip_address, seq
			FROM audit_log
			ORDER BY seq DESC
			LIMIT ?
		) ORDER BY seq ASC
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var entry models.AuditLogEntry
		var kind, details string
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &kind, &details, &entry.IPAddress); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Kind = models.EventKind(kind)
		if details != "" && details != "null" {
			if err := json.Unmarshal([]byte(details), &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to decode audit details: %w", err)
			}
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
