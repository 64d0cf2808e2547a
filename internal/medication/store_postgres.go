// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package medication

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/platform/database/schema"
	"github.com/taibuivan/healthlog/internal/platform/dberr"
	"github.com/taibuivan/healthlog/internal/platform/postgres"
)

const resourceMedication = "Medication"

// PostgresRepository implements [Repository] on health.medication.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a new PostgreSQL medication repository.
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	medicationColumns = strings.Join(schema.Medication.Columns(), ", ")
	selectMedication  = fmt.Sprintf(`SELECT %s FROM %s`, medicationColumns, schema.Medication.Table)
)

func scanMedication(row pgx.Row) (*Medication, error) {
	m := &Medication{}
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Dosage,
		&m.Unit,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

/*
List returns one page of the caller's live medications, newest first, and
the total number of matching rows.

Parameters:
  - context: context.Context
  - filter: Filter (owner and optional active flag)
  - limit: int
  - offset: int

Returns:
  - []*Medication: The page
  - int: Total matching rows
  - error: Database errors
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Medication, int, error) {
	where := fmt.Sprintf(` WHERE %s = $1 AND %s IS NULL`, schema.Medication.UserID, schema.Medication.DeletedAt)
	args := []any{filter.UserID}

	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where += fmt.Sprintf(` AND %s = $%d`, schema.Medication.IsActive, len(args))
	}

	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s`, schema.Medication.Table) + where

	var total int
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_medication_repo_count_failed: %w", dberr.Wrap(err, resourceMedication))
	}

	query := selectMedication + where + fmt.Sprintf(` ORDER BY %s DESC, %s DESC LIMIT $%s OFFSET $%s`,
		schema.Medication.CreatedAt, schema.Medication.ID, itos(len(args)+1), itos(len(args)+2))

	rows, err := repository.db.Query(context, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_medication_repo_list_failed: %w", dberr.Wrap(err, resourceMedication))
	}
	defer rows.Close()

	var medications []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_medication_repo_scan_failed: %w", dberr.Wrap(err, resourceMedication))
		}
		medications = append(medications, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_medication_repo_list_failed: %w", dberr.Wrap(err, resourceMedication))
	}

	return medications, total, nil
}

// FindByID retrieves a live medication owned by userID.
func (repository *PostgresRepository) FindByID(context context.Context, userID, id string) (*Medication, error) {
	query := selectMedication + fmt.Sprintf(` WHERE %s = $1 AND %s = $2 AND %s IS NULL`,
		schema.Medication.ID, schema.Medication.UserID, schema.Medication.DeletedAt)

	m, err := scanMedication(repository.db.QueryRow(context, query, id, userID))
	if err != nil {
		return nil, dberr.Wrap(err, resourceMedication)
	}
	return m, nil
}

/*
Create inserts a new medication row.

Description: A live record of the same owner with the same name yields
CONFLICT.

Parameters:
  - context: context.Context
  - medication: *Medication (ID, owner and timestamps already set)

Returns:
  - error: apperr.Conflict or database errors
*/
func (repository *PostgresRepository) Create(context context.Context, medication *Medication) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.Medication.Table, medicationColumns,
	)

	_, err := repository.db.Exec(context, query,
		medication.ID,
		medication.UserID,
		medication.Name,
		medication.Dosage,
		medication.Unit,
		medication.Description,
		medication.IsActive,
		medication.CreatedAt,
		medication.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(MsgDuplicateName).WithCause(err)
		}
		return fmt.Errorf("postgres_medication_repo_create_failed: %w", dberr.Wrap(err, resourceMedication))
	}
	return nil
}

/*
Update writes every mutable column of medication and refreshes UpdatedAt.

Parameters:
  - context: context.Context
  - medication: *Medication (merged state)

Returns:
  - error: apperr.NotFound, apperr.Conflict or database errors
*/
func (repository *PostgresRepository) Update(context context.Context, medication *Medication) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1 AND %s = $2 AND %s IS NULL
		RETURNING %s`,
		schema.Medication.Table,
		schema.Medication.Name, schema.Medication.Dosage, schema.Medication.Unit,
		schema.Medication.Description, schema.Medication.IsActive, schema.Medication.UpdatedAt,
		schema.Medication.ID, schema.Medication.UserID, schema.Medication.DeletedAt,
		schema.Medication.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		medication.ID,
		medication.UserID,
		medication.Name,
		medication.Dosage,
		medication.Unit,
		medication.Description,
		medication.IsActive,
	).Scan(&medication.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(MsgDuplicateName).WithCause(err)
		}
		return dberr.Wrap(err, resourceMedication)
	}
	return nil
}

// SoftDelete marks a live medication of userID as deleted.
func (repository *PostgresRepository) SoftDelete(context context.Context, userID, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1 AND %s = $2 AND %s IS NULL`,
		schema.Medication.Table, schema.Medication.DeletedAt, schema.Medication.UpdatedAt,
		schema.Medication.ID, schema.Medication.UserID, schema.Medication.DeletedAt,
	)

	tag, err := repository.db.Exec(context, query, id, userID)
	if err != nil {
		return fmt.Errorf("postgres_medication_repo_delete_failed: %w", dberr.Wrap(err, resourceMedication))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceMedication)
	}
	return nil
}

func itos(i int) string {
	return strconv.Itoa(i)
}
