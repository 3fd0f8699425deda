package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/examhub/examhub/internal/common"
	"github.com/examhub/examhub/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository opens the database behind dsn and applies the
// embedded goose migrations.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return nil, fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {

	query :=
		`INSERT INTO users (username, credential, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO NOTHING
		 `

	result, err := r.db.ExecContext(ctx, query, user.UserName, user.Credential, user.Role)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	if affected == 0 {
		return nil, common.ErrAlreadyExists
	}

	return user, nil
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*User, error) {
	query :=
		`SELECT username, credential, role FROM users
		 WHERE username = $1
		 `

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, userName).Scan(&user.UserName, &user.Credential, &user.Role)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return user, nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
