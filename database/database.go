package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"crm-server/models"

	_ "github.com/go-sql-driver/mysql"
)

type DB struct {
	*sql.DB
}

var Database *DB

// Connect establishes a connection to the MySQL database
func Connect(dsn string) (*DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	Database = &DB{db}
	return Database, nil
}

// InitializeTables creates all tables if they don't exist
func (db *DB) InitializeTables() error {
	tables := []interface{}{
		models.User{},
		models.Contact{},
		models.ContactEmail{},
		models.ContactPhone{},
		models.ContactFieldValue{},
		models.Opportunity{},
		models.Task{},
	}

	for _, table := range tables {
		if tableModel, ok := table.(interface {
			TableName() string
			CreateTableSQL() string
		}); ok {
			tableName := tableModel.TableName()
			createSQL := tableModel.CreateTableSQL()

			log.Printf("Creating table: %s", tableName)
			if _, err := db.Exec(createSQL); err != nil {
				return fmt.Errorf("failed to create table %s: %w", tableName, err)
			}
		}
	}

	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("All tables created successfully!")
	return nil
}

// runMigrations handles schema updates for existing tables. MySQL has no
// ADD COLUMN IF NOT EXISTS, so reruns fail on already-applied steps and
// the loop tolerates that, same as a failed-but-applied step on first run.
func (db *DB) runMigrations() error {
	migrations := []string{
		// Columns added after the initial schema shipped
		`ALTER TABLE contacts ADD COLUMN photo_url VARCHAR(500);`,
		`ALTER TABLE contacts ADD COLUMN last_contact TIMESTAMP NULL;`,
		`ALTER TABLE tasks ADD COLUMN reminder_sent BOOLEAN NOT NULL DEFAULT FALSE;`,
		`ALTER TABLE users ADD COLUMN push_token VARCHAR(500);`,

		// Backfill avatars for users created before the avatar column existed
		`UPDATE users SET avatar = CONCAT('https://api.dicebear.com/7.x/initials/svg?seed=', id)
		 WHERE avatar IS NULL OR avatar = '';`,

		// Create a bootstrap admin for org 1 if none exists; the dev
		// auth strategy runs every request as this identity
		`INSERT INTO users (org_id, email, full_name, role, is_active)
		 SELECT 1, 'admin@localhost', 'Admin User', 'admin', TRUE
		 WHERE NOT EXISTS (SELECT 1 FROM users WHERE org_id = 1 AND role = 'admin');`,
	}

	for i, migration := range migrations {
		log.Printf("Running migration %d", i+1)
		if _, err := db.Exec(migration); err != nil {
			log.Printf("Warning: Migration %d failed: %v", i+1, err)
			// Continue with other migrations even if one fails
		}
	}

	log.Println("Migrations completed!")
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
