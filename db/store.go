package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	"github.com/rschick/cloud-slackbot/models"
	"github.com/rschick/cloud-slackbot/utils"
)

// Store is the durable keyed store: point read/write/delete by exact key
// plus prefix range scans over keys and labels. It backs both the command
// intake queue (keys command_<ULID>) and the user-config registry (keys
// user_<userID>, labels users:user_<userID>).
type Store interface {
	// Put upserts the record, replacing any existing value wholesale.
	Put(ctx context.Context, key, label string, value json.RawMessage) (*models.StoreRecord, error)
	// Merge upserts the record, shallow-merging the given JSON object into
	// the existing value. Fields absent from value are left untouched.
	Merge(ctx context.Context, key, label string, value json.RawMessage) (*models.StoreRecord, error)
	Get(ctx context.Context, key string) (mo.Option[*models.StoreRecord], error)
	// Delete removes the record. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// ListByKeyPrefix returns all records whose key starts with prefix,
	// ordered by key ascending.
	ListByKeyPrefix(ctx context.Context, prefix string) ([]*models.StoreRecord, error)
	// ListByLabelPrefix returns all records whose label starts with prefix,
	// ordered by key ascending.
	ListByLabelPrefix(ctx context.Context, prefix string) ([]*models.StoreRecord, error)
}

type PostgresStoreRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for store_records table
var storeColumns = []string{
	"key",
	"label",
	"value",
	"created_at",
	"updated_at",
}

func NewPostgresStoreRepository(db *sqlx.DB, schema string) *PostgresStoreRepository {
	utils.AssertInvariant(ValidSchemaName(schema), "schema name must be a plain identifier")
	return &PostgresStoreRepository{db: db, schema: schema}
}

func (r *PostgresStoreRepository) Put(
	ctx context.Context,
	key, label string,
	value json.RawMessage,
) (*models.StoreRecord, error) {
	returningStr := strings.Join(storeColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.store_records (key, label, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET
			label = EXCLUDED.label,
			value = EXCLUDED.value,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	record := &models.StoreRecord{}
	if err := r.db.QueryRowxContext(ctx, query, key, label, value).StructScan(record); err != nil {
		return nil, fmt.Errorf("failed to put store record: %w", err)
	}

	return record, nil
}

func (r *PostgresStoreRepository) Merge(
	ctx context.Context,
	key, label string,
	value json.RawMessage,
) (*models.StoreRecord, error) {
	returningStr := strings.Join(storeColumns, ", ")

	// Server-side JSONB merge keeps concurrent partial updates from
	// clobbering each other's fields - there is no read-modify-write
	// window on the client.
	query := fmt.Sprintf(`
		INSERT INTO %s.store_records (key, label, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET
			label = EXCLUDED.label,
			value = store_records.value || EXCLUDED.value,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	record := &models.StoreRecord{}
	if err := r.db.QueryRowxContext(ctx, query, key, label, value).StructScan(record); err != nil {
		return nil, fmt.Errorf("failed to merge store record: %w", err)
	}

	return record, nil
}

func (r *PostgresStoreRepository) Get(
	ctx context.Context,
	key string,
) (mo.Option[*models.StoreRecord], error) {
	returningStr := strings.Join(storeColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.store_records
		WHERE key = $1`, returningStr, r.schema)

	record := &models.StoreRecord{}
	err := r.db.QueryRowxContext(ctx, query, key).StructScan(record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mo.None[*models.StoreRecord](), nil
		}
		return mo.None[*models.StoreRecord](), fmt.Errorf("failed to get store record: %w", err)
	}

	return mo.Some(record), nil
}

func (r *PostgresStoreRepository) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s.store_records WHERE key = $1`, r.schema)

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete store record: %w", err)
	}

	return nil
}

func (r *PostgresStoreRepository) ListByKeyPrefix(
	ctx context.Context,
	prefix string,
) ([]*models.StoreRecord, error) {
	return r.listByColumnPrefix(ctx, "key", prefix)
}

func (r *PostgresStoreRepository) ListByLabelPrefix(
	ctx context.Context,
	prefix string,
) ([]*models.StoreRecord, error) {
	return r.listByColumnPrefix(ctx, "label", prefix)
}

func (r *PostgresStoreRepository) listByColumnPrefix(
	ctx context.Context,
	column, prefix string,
) ([]*models.StoreRecord, error) {
	returningStr := strings.Join(storeColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.store_records
		WHERE %s LIKE $1
		ORDER BY key ASC`, returningStr, r.schema, column)

	records := []*models.StoreRecord{}
	if err := r.db.SelectContext(ctx, &records, query, escapeLikePrefix(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("failed to list store records by %s prefix: %w", column, err)
	}

	return records, nil
}

// escapeLikePrefix escapes LIKE metacharacters so a prefix scan matches the
// prefix literally.
func escapeLikePrefix(prefix string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(prefix)
}
