package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/config"
	"github.com/guptas/lms-backend/internal/mail"
	"github.com/guptas/lms-backend/internal/middleware"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/guptas/lms-backend/internal/repository"
	"github.com/guptas/lms-backend/internal/response"
	"github.com/guptas/lms-backend/internal/service"
	"github.com/guptas/lms-backend/internal/validator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var setupOnce sync.Once

func setupGin() {
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validator.Setup()
	})
}

// envelope mirrors the JSON response wrapper for assertions.
type envelope struct {
	Data  map[string]json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Metadata struct {
		RequestID string `json:"request_id"`
		Timestamp string `json:"timestamp"`
	} `json:"metadata"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, &env
}

// asClaims injects claims the way RequireAuth would after token validation.
func asClaims(userID uuid.UUID, role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{UserID: userID, Role: role})
		c.Next()
	}
}

// memUserStore is a minimal in-memory service.UserStore for handler tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newMemUserStore(users ...*model.User) *memUserStore {
	s := &memUserStore{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memUserStore) UpdateProfile(_ context.Context, id uuid.UUID, name, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Name = name
	u.Email = email
	cp := *u
	return &cp, nil
}

func (s *memUserStore) SetStatus(_ context.Context, id uuid.UUID, status model.Status) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Status = status
	cp := *u
	return &cp, nil
}

func (s *memUserStore) MarkVerified(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.IsVerified = true
	u.Status = model.StatusActive
	cp := *u
	return &cp, nil
}

func (s *memUserStore) ListAll(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *memUserStore) ListPendingTeachers(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if u.Role == model.RoleTeacher && u.Status == model.StatusPending && !u.IsVerified {
			out = append(out, *u)
		}
	}
	return out, nil
}

// memCodeStore is a minimal in-memory service.AccessCodeStore.
type memCodeStore struct {
	mu    sync.Mutex
	codes []*model.AccessCode
}

func (s *memCodeStore) Create(_ context.Context, a *model.AccessCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.Code == a.Code {
			return repository.ErrDuplicateCode
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	cp := *a
	s.codes = append(s.codes, &cp)
	return nil
}

func (s *memCodeStore) ExpireUnusedForTeacher(_ context.Context, teacherID uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.TeacherID == teacherID && !c.IsUsed && c.ExpiresAt.After(now) {
			c.ExpiresAt = now
		}
	}
	return nil
}

func (s *memCodeStore) Redeem(_ context.Context, code string, teacherID uuid.UUID, now time.Time) (*model.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.Code == code && c.TeacherID == teacherID && !c.IsUsed && c.ExpiresAt.After(now) {
			c.IsUsed = true
			t := now
			c.UsedAt = &t
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrCodeNotRedeemable
}

func (s *memCodeStore) HasActiveCode(_ context.Context, teacherID uuid.UUID, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.TeacherID == teacherID && !c.IsUsed && c.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

// fixedGen always deals the same code.
type fixedGen struct{ code string }

func (g fixedGen) Code() string { return g.code }

type dropMailer struct{}

func (dropMailer) Send(_ context.Context, _ mail.Message) error { return nil }

func handlerTestConfig() *config.Config {
	return &config.Config{
		AccessCodeTTL:     24 * time.Hour,
		VerifyMaxAttempts: 10,
		VerifyWindow:      15 * time.Minute,
	}
}

func newTestRouter() *gin.Engine {
	setupGin()
	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	return r
}

func newVerificationService(users *memUserStore, codes *memCodeStore, code string) *service.VerificationService {
	return service.NewVerificationService(users, codes, dropMailer{}, fixedGen{code: code}, nil, handlerTestConfig(), zerolog.Nop())
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, env *envelope, status int, code response.ErrCode) {
	t.Helper()
	require.Equal(t, status, w.Code)
	require.NotNil(t, env.Error)
	require.Equal(t, string(code), env.Error.Code)
	require.NotEmpty(t, env.Error.Message)
}
