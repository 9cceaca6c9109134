package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ResourceKind names an ownable resource type.
type ResourceKind string

const (
	ResourceTerm       ResourceKind = "term"
	ResourceCourse     ResourceKind = "course"
	ResourceAssignment ResourceKind = "assignment"
	ResourcePlan       ResourceKind = "study_plan"
	ResourceTopic      ResourceKind = "study_plan_topic"
	ResourceSession    ResourceKind = "study_session"
)

// ownerQueries maps each resource kind to the join chain that resolves its
// transitive owning user. Every chain terminates at terms.user_id, so each
// resource has exactly one owner.
var ownerQueries = map[ResourceKind]string{
	ResourceTerm: `SELECT user_id FROM terms WHERE id = $1`,
	ResourceCourse: `SELECT t.user_id FROM courses c
JOIN terms t ON c.term_id = t.id
WHERE c.id = $1`,
	ResourceAssignment: `SELECT t.user_id FROM assignments a
JOIN courses c ON a.course_id = c.id
JOIN terms t ON c.term_id = t.id
WHERE a.id = $1`,
	ResourcePlan: `SELECT t.user_id FROM study_plans p
JOIN courses c ON p.course_id = c.id
JOIN terms t ON c.term_id = t.id
WHERE p.id = $1`,
	ResourceTopic: `SELECT t.user_id FROM study_plan_topics tp
JOIN study_plans p ON tp.plan_id = p.id
JOIN courses c ON p.course_id = c.id
JOIN terms t ON c.term_id = t.id
WHERE tp.id = $1`,
	ResourceSession: `SELECT t.user_id FROM study_sessions s
JOIN study_plans p ON s.plan_id = p.id
JOIN courses c ON p.course_id = c.id
JOIN terms t ON c.term_id = t.id
WHERE s.id = $1`,
}

// OwnershipRepository resolves the owning user of any resource by walking
// its parent chain in a single query.
type OwnershipRepository struct {
	db *sqlx.DB
}

// NewOwnershipRepository instantiates an ownership repository.
func NewOwnershipRepository(db *sqlx.DB) *OwnershipRepository {
	return &OwnershipRepository{db: db}
}

// OwnerOf returns the user id owning the resource. sql.ErrNoRows is passed
// through untouched when the resource does not exist.
func (r *OwnershipRepository) OwnerOf(ctx context.Context, kind ResourceKind, id string) (string, error) {
	query, ok := ownerQueries[kind]
	if !ok {
		return "", fmt.Errorf("unknown resource kind %q", kind)
	}

	var ownerID string
	if err := r.db.GetContext(ctx, &ownerID, query, id); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("resolve owner of %s %s: %w", kind, id, err)
	}
	return ownerID, nil
}
