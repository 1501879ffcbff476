package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Lokesh1028/agentjobs/internal/models"
)

// NewSessionID returns an opaque agent session identifier like "sess_1a2b3c4d5e6f".
func NewSessionID() string {
	return "sess_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// SaveSession persists a completed agent search for later replay. Missing
// ID and CreatedAt are filled in.
func (s *Store) SaveSession(ctx context.Context, sess *models.Session) error {
	if sess.ID == "" {
		sess.ID = NewSessionID()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now().UTC()
	}
	if sess.Status == "" {
		sess.Status = models.SessionCompleted
	}

	skills, err := json.Marshal(nonNil(sess.ResumeSkills))
	if err != nil {
		return fmt.Errorf("failed to marshal resume skills: %w", err)
	}
	results, err := json.Marshal(nonNilJobs(sess.Jobs))
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	var locations sql.NullString
	if len(sess.PreferredLocations) > 0 {
		raw, err := json.Marshal(sess.PreferredLocations)
		if err != nil {
			return fmt.Errorf("failed to marshal preferred locations: %w", err)
		}
		locations = sql.NullString{String: string(raw), Valid: true}
	}
	var completedAt any
	if sess.CompletedAt != nil {
		completedAt = models.FormatTimestamp(*sess.CompletedAt)
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO agent_sessions (
			id, user_id, user_email, resume_text, resume_skills, resume_experience_years,
			resume_preferred_locations, resume_preferred_salary_min, job_preferences,
			status, match_count, results, created_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		sess.ID,
		nullString(sess.UserID),
		nullString(sess.UserEmail),
		nullString(sess.ResumeText),
		string(skills),
		sess.ExperienceYears,
		locations,
		sess.SalaryMin,
		nullString(sess.JobPreferences),
		sess.Status,
		sess.MatchCount,
		string(results),
		models.FormatTimestamp(sess.CreatedAt),
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession loads a stored session. It returns nil, nil when the session
// does not exist.
func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var row struct {
		ID                 string         `db:"id"`
		UserID             sql.NullString `db:"user_id"`
		UserEmail          sql.NullString `db:"user_email"`
		ResumeText         sql.NullString `db:"resume_text"`
		ResumeSkills       sql.NullString `db:"resume_skills"`
		ExperienceYears    sql.NullInt64  `db:"resume_experience_years"`
		PreferredLocations sql.NullString `db:"resume_preferred_locations"`
		SalaryMin          sql.NullInt64  `db:"resume_preferred_salary_min"`
		JobPreferences     sql.NullString `db:"job_preferences"`
		Status             string         `db:"status"`
		MatchCount         int            `db:"match_count"`
		Results            sql.NullString `db:"results"`
		CreatedAt          sql.NullString `db:"created_at"`
		CompletedAt        sql.NullString `db:"completed_at"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, user_id, user_email, resume_text, resume_skills, resume_experience_years,
			resume_preferred_locations, resume_preferred_salary_min, job_preferences,
			status, match_count, results, created_at, completed_at
		FROM agent_sessions WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess := &models.Session{
		ID:             row.ID,
		UserID:         row.UserID.String,
		UserEmail:      row.UserEmail.String,
		ResumeText:     row.ResumeText.String,
		ResumeSkills:   []string{},
		JobPreferences: row.JobPreferences.String,
		Status:         row.Status,
		MatchCount:     row.MatchCount,
		Jobs:           []models.MatchedJob{},
	}
	if row.ExperienceYears.Valid {
		sess.ExperienceYears = models.IntPtr(int(row.ExperienceYears.Int64))
	}
	if row.SalaryMin.Valid {
		sess.SalaryMin = models.IntPtr(int(row.SalaryMin.Int64))
	}
	// Stored JSON is written by SaveSession; a damaged column degrades to empty.
	if row.ResumeSkills.Valid {
		_ = json.Unmarshal([]byte(row.ResumeSkills.String), &sess.ResumeSkills)
	}
	if row.PreferredLocations.Valid {
		_ = json.Unmarshal([]byte(row.PreferredLocations.String), &sess.PreferredLocations)
	}
	if row.Results.Valid {
		_ = json.Unmarshal([]byte(row.Results.String), &sess.Jobs)
	}
	// A stored JSON null decodes to nil; replay always answers with lists.
	sess.ResumeSkills = nonNil(sess.ResumeSkills)
	sess.Jobs = nonNilJobs(sess.Jobs)
	if t, ok := models.ParseTime(row.CreatedAt.String); ok {
		sess.CreatedAt = t
	}
	if t, ok := models.ParseTime(row.CompletedAt.String); ok {
		sess.CompletedAt = &t
	}
	return sess, nil
}

func nonNilJobs(jobs []models.MatchedJob) []models.MatchedJob {
	if jobs == nil {
		return []models.MatchedJob{}
	}
	return jobs
}
