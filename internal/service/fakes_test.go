package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/mail"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/guptas/lms-backend/internal/repository"
)

// In-memory store fakes backing the service tests. They mirror the pgx
// repositories' error contracts (repository.ErrNotFound and friends) so
// services can be exercised without a database.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = uuid.New()
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uuid.UUID, name, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for otherID, other := range f.users {
		if otherID != id && strings.EqualFold(other.Email, email) {
			return nil, repository.ErrDuplicateEmail
		}
	}
	u.Name = name
	u.Email = strings.ToLower(email)
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) SetStatus(_ context.Context, id uuid.UUID, status model.Status) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Status = status
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) MarkVerified(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.IsVerified = true
	u.Status = model.StatusActive
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) ListAll(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) ListPendingTeachers(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		if u.Role == model.RoleTeacher && u.Status == model.StatusPending && !u.IsVerified {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeCodeStore struct {
	mu    sync.Mutex
	codes []*model.AccessCode
}

func (f *fakeCodeStore) Create(_ context.Context, a *model.AccessCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.Code == a.Code {
			return repository.ErrDuplicateCode
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	cp := *a
	f.codes = append(f.codes, &cp)
	return nil
}

func (f *fakeCodeStore) ExpireUnusedForTeacher(_ context.Context, teacherID uuid.UUID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.TeacherID == teacherID && !c.IsUsed && c.ExpiresAt.After(now) {
			c.ExpiresAt = now
		}
	}
	return nil
}

func (f *fakeCodeStore) Redeem(_ context.Context, code string, teacherID uuid.UUID, now time.Time) (*model.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
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

func (f *fakeCodeStore) HasActiveCode(_ context.Context, teacherID uuid.UUID, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.TeacherID == teacherID && !c.IsUsed && c.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

// all returns a snapshot of every stored code.
func (f *fakeCodeStore) all() []model.AccessCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.AccessCode, 0, len(f.codes))
	for _, c := range f.codes {
		out = append(out, *c)
	}
	return out
}

type fakeCourseStore struct {
	enrolledByStudent int
	byTeacher         int
}

func (f *fakeCourseStore) Create(_ context.Context, _ *model.Course) error { return nil }
func (f *fakeCourseStore) GetByID(_ context.Context, _ uuid.UUID) (*model.Course, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeCourseStore) Update(_ context.Context, _ *model.Course) error { return nil }
func (f *fakeCourseStore) ListPublished(_ context.Context) ([]model.Course, error) {
	return nil, nil
}
func (f *fakeCourseStore) ListByTeacher(_ context.Context, _ uuid.UUID) ([]model.Course, error) {
	return nil, nil
}
func (f *fakeCourseStore) ListAll(_ context.Context) ([]model.Course, error) { return nil, nil }
func (f *fakeCourseStore) ListEnrolled(_ context.Context, _ uuid.UUID) ([]model.Course, error) {
	return nil, nil
}
func (f *fakeCourseStore) Enroll(_ context.Context, _, _ uuid.UUID) error { return nil }
func (f *fakeCourseStore) CountByTeacher(_ context.Context, _ uuid.UUID) (int, error) {
	return f.byTeacher, nil
}
func (f *fakeCourseStore) CountEnrolledByStudent(_ context.Context, _ uuid.UUID) (int, error) {
	return f.enrolledByStudent, nil
}

type fakeAssignmentStore struct {
	byTeacher            int
	submissionsByStudent int
}

func (f *fakeAssignmentStore) Create(_ context.Context, _ *model.Assignment) error { return nil }
func (f *fakeAssignmentStore) GetByID(_ context.Context, _ uuid.UUID) (*model.Assignment, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeAssignmentStore) ListByCourse(_ context.Context, _ uuid.UUID) ([]model.Assignment, error) {
	return nil, nil
}
func (f *fakeAssignmentStore) SaveSubmission(_ context.Context, _ *model.Submission) error {
	return nil
}
func (f *fakeAssignmentStore) GradeSubmission(_ context.Context, _, _ uuid.UUID, _ int, _ string) (*model.Submission, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeAssignmentStore) ListSubmissions(_ context.Context, _ uuid.UUID) ([]model.Submission, error) {
	return nil, nil
}
func (f *fakeAssignmentStore) CountByTeacher(_ context.Context, _ uuid.UUID) (int, error) {
	return f.byTeacher, nil
}
func (f *fakeAssignmentStore) CountSubmissionsByStudent(_ context.Context, _ uuid.UUID) (int, error) {
	return f.submissionsByStudent, nil
}

// seqGen deals codes from a fixed list, cycling when exhausted.
type seqGen struct {
	mu    sync.Mutex
	codes []string
	i     int
}

func (g *seqGen) Code() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.codes[g.i%len(g.codes)]
	g.i++
	return c
}

// fakeMailer records sent messages on a buffered channel so tests can wait
// for the fire-and-forget delivery goroutine.
type fakeMailer struct {
	sent chan mail.Message
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan mail.Message, 8)}
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.sent <- msg
	return nil
}
