package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/valueobject"
	pgutil "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/postgres"
)

const selectAssessment = `
	SELECT id, subject_id, rule_scores, rule_based_score, ml_score,
		final_risk_score, risk_band, notes,
		assessed_at, version, created_at
	FROM profile_assessments
`

// AssessmentRepository implements port.AssessmentRepository using PostgreSQL.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository creates a new PostgreSQL-backed assessment repository.
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

// Save upserts a profile assessment keyed by its ID.
func (r *AssessmentRepository) Save(ctx context.Context, assessment *model.ProfileAssessment) error {
	result := assessment.Result()

	ruleScores, err := json.Marshal(result.RuleScores)
	if err != nil {
		return fmt.Errorf("failed to encode rule scores: %w", err)
	}
	notes := result.Notes
	if notes == nil {
		notes = []string{}
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}

	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO profile_assessments (
				id, subject_id, rule_scores, rule_based_score, ml_score,
				final_risk_score, risk_band, notes,
				assessed_at, version, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				rule_scores = EXCLUDED.rule_scores,
				rule_based_score = EXCLUDED.rule_based_score,
				ml_score = EXCLUDED.ml_score,
				final_risk_score = EXCLUDED.final_risk_score,
				risk_band = EXCLUDED.risk_band,
				notes = EXCLUDED.notes,
				assessed_at = EXCLUDED.assessed_at,
				version = EXCLUDED.version
		`

		_, err := tx.Exec(ctx, query,
			assessment.ID(),
			assessment.SubjectID(),
			ruleScores,
			result.RuleBasedScore,
			result.MLScore,
			result.FinalRiskScore,
			result.RiskBand.String(),
			notesJSON,
			assessment.AssessedAt(),
			assessment.Version(),
			assessment.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}
		return nil
	})
}

// FindByID retrieves an assessment by its unique identifier.
func (r *AssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProfileAssessment, error) {
	assessment, err := scanAssessment(r.pool.QueryRow(ctx, selectAssessment+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAssessmentNotFound
		}
		return nil, err
	}
	return assessment, nil
}

// FindBySubjectID retrieves a page of assessments for a subject, newest first.
func (r *AssessmentRepository) FindBySubjectID(ctx context.Context, subjectID string, limit, offset int) ([]*model.ProfileAssessment, error) {
	return listAssessments(ctx, r.pool, subjectID, limit, offset)
}

func listAssessments(ctx context.Context, q pgutil.Querier, subjectID string, limit, offset int) ([]*model.ProfileAssessment, error) {
	query := selectAssessment + `
		WHERE subject_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.Query(ctx, query, subjectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*model.ProfileAssessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assessments: %w", err)
	}

	return assessments, nil
}

func scanAssessment(row pgx.Row) (*model.ProfileAssessment, error) {
	var (
		id             uuid.UUID
		subjectID      string
		ruleScoresRaw  []byte
		ruleBasedScore float64
		mlScore        *float64
		finalScore     float64
		riskBandStr    string
		notesRaw       []byte
		assessedAt     time.Time
		version        int
		createdAt      time.Time
	)

	err := row.Scan(
		&id, &subjectID, &ruleScoresRaw, &ruleBasedScore, &mlScore,
		&finalScore, &riskBandStr, &notesRaw,
		&assessedAt, &version, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}

	band, err := valueobject.RiskBandFromString(riskBandStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk band: %w", err)
	}

	result := model.AggregateResult{
		RuleBasedScore: ruleBasedScore,
		MLScore:        mlScore,
		FinalRiskScore: finalScore,
		RiskBand:       band,
	}
	if err := json.Unmarshal(ruleScoresRaw, &result.RuleScores); err != nil {
		return nil, fmt.Errorf("failed to decode rule scores: %w", err)
	}
	if err := json.Unmarshal(notesRaw, &result.Notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}

	return model.ReconstructAssessment(id, subjectID, result, assessedAt.UTC(), version, createdAt.UTC()), nil
}
