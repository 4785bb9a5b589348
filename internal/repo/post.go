package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/postboard/internal/models"
	"github.com/pkg/errors"
)

// PostRepo persists posts. Writes run in their own transaction and roll back
// on any failure, so no partial write is ever committed.
type PostRepo struct {
	DB *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db}
}

// ListByOwner returns every post owned by ownerID, oldest first.
func (r *PostRepo) ListByOwner(ctx context.Context, ownerID int) ([]models.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, text, owner_id FROM posts WHERE owner_id = $1 ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list posts")
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Text, &p.OwnerID); err != nil {
			return nil, errors.Wrap(err, "scan post")
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate posts")
	}
	return posts, nil
}

// Create inserts a post and returns its generated id.
func (r *PostRepo) Create(ctx context.Context, text string, ownerID int) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin create post")
	}

	var id int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO posts (text, owner_id) VALUES ($1, $2) RETURNING id`,
		text, ownerID,
	).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		return 0, errors.Wrap(err, "insert post")
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return 0, errors.Wrap(err, "commit create post")
	}
	return id, nil
}

// DeleteOwned removes the post only if it belongs to ownerID. A post owned by
// someone else is reported exactly like a missing one: ErrNotFound.
func (r *PostRepo) DeleteOwned(ctx context.Context, postID, ownerID int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin delete post")
	}

	var id int
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM posts WHERE id = $1 AND owner_id = $2 FOR UPDATE`,
		postID, ownerID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		_ = tx.Rollback()
		return ErrNotFound
	}
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "select post for delete")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "delete post")
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "commit delete post")
	}
	return nil
}
