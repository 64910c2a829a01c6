package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore keeps a history of generated reports in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	store := &PostgresStore{db: db}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %v", err)
	}

	log.Println("✅ PostgreSQL report store connected successfully")
	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id SERIAL PRIMARY KEY,
		generated_at TIMESTAMP NOT NULL,
		timezone VARCHAR(64) NOT NULL,
		window_hours INTEGER NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at);
	`

	_, err := ps.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %v", err)
	}

	return nil
}

// Save inserts one report row.
func (ps *PostgresStore) Save(r Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %v", err)
	}

	query := `
		INSERT INTO reports (generated_at, timezone, window_hours, payload)
		VALUES ($1, $2, $3, $4)
	`

	_, err = ps.db.Exec(query, r.GeneratedAt, r.Timezone, r.WindowHours, payload)
	if err != nil {
		return fmt.Errorf("failed to save report: %v", err)
	}

	return nil
}

// Cleanup removes reports older than the retention window.
func (ps *PostgresStore) Cleanup(retention time.Duration) error {
	cutoffTime := time.Now().Add(-retention)

	result, err := ps.db.Exec(`DELETE FROM reports WHERE generated_at < $1`, cutoffTime)
	if err != nil {
		return fmt.Errorf("failed to cleanup: %v", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		log.Printf("🗑️ Cleaned up %d old reports from database", rows)
	}

	return nil
}

// Close closes the database connection.
func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
