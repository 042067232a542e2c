package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pathbound/pathbound/internal/model"
)

var (
	ErrMilestoneNotFound = errors.New("milestone not found")
)

type MilestoneRepository interface {
	ByGoal(goalID string) ([]*model.Milestone, error)
	ByGoals(goalIDs []string) ([]*model.Milestone, error)
	CreateMany(milestones []*model.Milestone) error
	ReplaceForGoal(goalID string, milestones []*model.Milestone) error
	SetCompleted(goalID, milestoneID string, completed bool, completedAt *time.Time) error
	DeleteByGoal(goalID string) error
}

type milestoneRepository struct {
	db *sqlx.DB
}

func NewMilestoneRepository(db *sqlx.DB) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) ByGoal(goalID string) ([]*model.Milestone, error) {
	var milestones []*model.Milestone
	query := `SELECT * FROM milestones WHERE goal_id = $1 ORDER BY order_index ASC`

	err := r.db.Select(&milestones, query, goalID)
	if err != nil {
		return nil, err
	}

	return milestones, nil
}

// ByGoals loads the milestones for a set of goals in one query, for
// assembling a full board.
func (r *milestoneRepository) ByGoals(goalIDs []string) ([]*model.Milestone, error) {
	if len(goalIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM milestones WHERE goal_id IN (?) ORDER BY goal_id, order_index ASC`, goalIDs)
	if err != nil {
		return nil, err
	}

	var milestones []*model.Milestone
	err = r.db.Select(&milestones, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return milestones, nil
}

func (r *milestoneRepository) CreateMany(milestones []*model.Milestone) error {
	if len(milestones) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = insertMilestones(tx, milestones)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ReplaceForGoal swaps a goal's milestone list wholesale: delete every
// existing row, then insert the submitted list. Milestone identity is
// deliberately not preserved across edits.
func (r *milestoneRepository) ReplaceForGoal(goalID string, milestones []*model.Milestone) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM milestones WHERE goal_id = $1`, goalID)
	if err != nil {
		return fmt.Errorf("failed to clear milestones: %w", err)
	}

	err = insertMilestones(tx, milestones)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func insertMilestones(tx *sql.Tx, milestones []*model.Milestone) error {
	query := `INSERT INTO milestones (id, goal_id, title, target_date, order_index, is_completed, completed_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, m := range milestones {
		_, err := tx.Exec(query, m.ID, m.GoalID, m.Title, m.TargetDate, m.OrderIndex, m.IsCompleted, m.CompletedAt, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create milestone %q: %w", m.Title, err)
		}
	}

	return nil
}

func (r *milestoneRepository) SetCompleted(goalID, milestoneID string, completed bool, completedAt *time.Time) error {
	query := `UPDATE milestones
	          SET is_completed = $1, completed_at = $2
	          WHERE id = $3 AND goal_id = $4`

	result, err := r.db.Exec(query, completed, completedAt, milestoneID, goalID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrMilestoneNotFound
	}

	return nil
}

func (r *milestoneRepository) DeleteByGoal(goalID string) error {
	_, err := r.db.Exec(`DELETE FROM milestones WHERE goal_id = $1`, goalID)
	return err
}
