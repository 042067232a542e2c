package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pathbound/pathbound/internal/model"
	"github.com/pathbound/pathbound/internal/roadmap"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

type GoalRepository interface {
	Create(goal *model.Goal) error
	ByID(userID, goalID string) (*model.Goal, error)
	ByUser(userID string) ([]*model.Goal, error)
	MaxOrderIndex(userID, status string) (int, error)
	Update(goal *model.Goal) error
	UpdatePositions(userID string, changes []roadmap.Change) error
	Delete(userID, goalID string) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(goal *model.Goal) error {
	query := `INSERT INTO goals (id, user_id, title, description, category, target_date, priority, status, order_index, completed_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Category,
		goal.TargetDate,
		goal.Priority,
		goal.Status,
		goal.OrderIndex,
		goal.CompletedAt,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	return err
}

func (r *goalRepository) ByID(userID, goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1 AND user_id = $2`

	err := r.db.Get(goal, query, goalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}

	return goal, err
}

func (r *goalRepository) ByUser(userID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM goals WHERE user_id = $1 ORDER BY status ASC, order_index ASC`

	err := r.db.Select(&goals, query, userID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// MaxOrderIndex returns the highest order_index in a (user, status)
// bucket, or -1 when the bucket is empty.
func (r *goalRepository) MaxOrderIndex(userID, status string) (int, error) {
	var max int
	query := `SELECT COALESCE(MAX(order_index), -1) FROM goals WHERE user_id = $1 AND status = $2`
	err := r.db.QueryRow(query, userID, status).Scan(&max)
	return max, err
}

// Update rewrites the editor-owned scalar fields. Status, order_index
// and completed_at belong to the position/status paths and are left
// alone here.
func (r *goalRepository) Update(goal *model.Goal) error {
	query := `UPDATE goals
	          SET title = $1, description = $2, category = $3, target_date = $4, priority = $5, updated_at = $6
	          WHERE id = $7 AND user_id = $8`

	result, err := r.db.Exec(query,
		goal.Title,
		goal.Description,
		goal.Category,
		goal.TargetDate,
		goal.Priority,
		time.Now(),
		goal.ID,
		goal.UserID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// UpdatePositions persists an ordering-engine change set. The rows go
// out in one local transaction when the driver allows it, but callers
// must not rely on that: the controller's rollback is snapshot-based
// either way.
func (r *goalRepository) UpdatePositions(userID string, changes []roadmap.Change) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE goals
	          SET status = $1, order_index = $2, completed_at = $3, updated_at = $4
	          WHERE id = $5 AND user_id = $6`

	now := time.Now()
	for _, ch := range changes {
		result, err := tx.Exec(query, ch.Status, ch.OrderIndex, ch.CompletedAt, now, ch.GoalID, userID)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if rows == 0 {
			return ErrGoalNotFound
		}
	}

	return tx.Commit()
}

func (r *goalRepository) Delete(userID, goalID string) error {
	query := `DELETE FROM goals WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, goalID, userID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}
