package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sujalbistaa/qanda/internal/models"
)

// CreateSession opens a session for userID that lasts ttl.
func (s *Store) CreateSession(userID uint, ttl time.Duration) (*models.Session, error) {
	session := models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

// SessionUser resolves a session id to its user. Expired sessions and
// deactivated users resolve to ErrNotFound.
func (s *Store) SessionUser(sessionID string) (*models.User, error) {
	var session models.Session
	err := s.db.Where("id = ? AND expires_at > ?", sessionID, time.Now()).First(&session).Error
	if err != nil {
		return nil, notFound(err)
	}
	user, err := s.GetUser(session.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *Store) DeleteSession(sessionID string) error {
	if err := s.db.Where("id = ?", sessionID).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PruneSessions removes expired sessions and returns how many went.
func (s *Store) PruneSessions() (int64, error) {
	res := s.db.Where("expires_at <= ?", time.Now()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
