package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"uno-server/internal/config"
	"uno-server/internal/db"

	"gorm.io/gorm"
)

const sessionCookie = "uno_session"

type sessionStore struct {
	db  *gorm.DB
	ttl time.Duration
}

func newSessionStore(conn *gorm.DB, cfg config.Config) *sessionStore {
	return &sessionStore{
		db:  conn,
		ttl: time.Duration(cfg.SessionTTLHours) * time.Hour,
	}
}

func newSessionID() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

// Create opens a session for the user and sets the cookie.
func (s *sessionStore) Create(w http.ResponseWriter, userID uint) error {
	id := newSessionID()
	if id == "" {
		return errors.New("could not generate session id")
	}
	record := db.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  record.ExpiresAt,
	})
	return nil
}

// UserID resolves the request's session to a user id. Expired
// sessions are treated as absent.
func (s *sessionStore) UserID(r *http.Request) (uint, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	var record db.Session
	if err := s.db.Where("id = ?", cookie.Value).First(&record).Error; err != nil {
		return 0, false
	}
	if time.Now().UTC().After(record.ExpiresAt) {
		_ = s.db.Delete(&db.Session{}, "id = ?", record.ID).Error
		return 0, false
	}
	return record.UserID, true
}

// Destroy removes the request's session and clears the cookie.
func (s *sessionStore) Destroy(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err == nil && cookie.Value != "" {
		_ = s.db.Delete(&db.Session{}, "id = ?", cookie.Value).Error
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
