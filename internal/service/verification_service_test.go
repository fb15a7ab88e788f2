package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/config"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBase = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		AccessCodeTTL:     24 * time.Hour,
		VerifyMaxAttempts: 10,
		VerifyWindow:      15 * time.Minute,
	}
}

type verificationFixture struct {
	svc    *VerificationService
	users  *fakeUserStore
	codes  *fakeCodeStore
	mailer *fakeMailer
	gen    *seqGen

	admin   *model.User
	teacher *model.User
}

func newVerificationFixture(t *testing.T, codes ...string) *verificationFixture {
	t.Helper()
	if len(codes) == 0 {
		codes = []string{"482913"}
	}

	admin := &model.User{
		Name:       "Admin",
		Email:      "admin@example.com",
		Role:       model.RoleAdmin,
		Status:     model.StatusActive,
		IsVerified: true,
	}
	teacher := &model.User{
		Name:       "Priya Sharma",
		Email:      "priya@example.com",
		Role:       model.RoleTeacher,
		Status:     model.StatusPending,
		TeacherRef: "TR-1042",
	}

	f := &verificationFixture{
		users:   newFakeUserStore(admin, teacher),
		codes:   &fakeCodeStore{},
		mailer:  newFakeMailer(),
		gen:     &seqGen{codes: codes},
		admin:   admin,
		teacher: teacher,
	}
	f.svc = NewVerificationService(f.users, f.codes, f.mailer, f.gen, nil, testConfig(), zerolog.Nop())
	f.svc.now = func() time.Time { return testBase }
	return f
}

// advance moves the service clock forward by d.
func (f *verificationFixture) advance(d time.Duration) {
	now := testBase.Add(d)
	f.svc.now = func() time.Time { return now }
}

func TestVerificationService_ApproveTeacher(t *testing.T) {
	ctx := context.Background()

	t.Run("Should issue a six digit code valid for the configured TTL", func(t *testing.T) {
		f := newVerificationFixture(t)

		code, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)

		assert.Len(t, code.Code, 6)
		assert.Equal(t, f.teacher.ID, code.TeacherID)
		assert.Equal(t, f.teacher.Email, code.Email)
		assert.Equal(t, f.admin.ID, code.CreatedBy)
		assert.Equal(t, testBase.Add(24*time.Hour), code.ExpiresAt)
		assert.False(t, code.IsUsed)
	})

	t.Run("Should email the plaintext code to the teacher", func(t *testing.T) {
		f := newVerificationFixture(t)

		code, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)

		select {
		case msg := <-f.mailer.sent:
			assert.Equal(t, f.teacher.Email, msg.To)
			assert.Contains(t, msg.Text, code.Code)
		case <-time.After(2 * time.Second):
			t.Fatal("access code email was never sent")
		}
	})

	t.Run("Should invalidate earlier unused codes on re-approval", func(t *testing.T) {
		f := newVerificationFixture(t, "111111", "222222")

		first, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)
		second, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.Code, second.Code)

		// The first code is no longer redeemable.
		_, err = f.svc.RedeemCode(ctx, f.teacher.ID, first.Code)
		assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

		// The second one still is.
		user, err := f.svc.RedeemCode(ctx, f.teacher.ID, second.Code)
		require.NoError(t, err)
		assert.True(t, user.IsVerified)
	})

	t.Run("Should redraw when the generated code collides", func(t *testing.T) {
		f := newVerificationFixture(t, "333333", "333333", "444444")

		// Occupy 333333 for a different teacher so the first two draws collide.
		other := &model.User{Name: "Other", Email: "other@example.com", Role: model.RoleTeacher, Status: model.StatusPending}
		require.NoError(t, f.users.Create(ctx, other))
		require.NoError(t, f.codes.Create(ctx, &model.AccessCode{
			Code:      "333333",
			TeacherID: other.ID,
			Email:     other.Email,
			ExpiresAt: testBase.Add(24 * time.Hour),
			CreatedBy: f.admin.ID,
		}))

		code, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)
		assert.Equal(t, "444444", code.Code)
	})

	t.Run("Should give up when every redraw collides", func(t *testing.T) {
		f := newVerificationFixture(t, "555555")

		other := &model.User{Name: "Other", Email: "other2@example.com", Role: model.RoleTeacher, Status: model.StatusPending}
		require.NoError(t, f.users.Create(ctx, other))
		require.NoError(t, f.codes.Create(ctx, &model.AccessCode{
			Code:      "555555",
			TeacherID: other.ID,
			Email:     other.Email,
			ExpiresAt: testBase.Add(24 * time.Hour),
			CreatedBy: f.admin.ID,
		}))

		_, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		assert.ErrorIs(t, err, ErrCodeGeneration)
	})

	t.Run("Should reject approval of a missing user without persisting a code", func(t *testing.T) {
		f := newVerificationFixture(t)

		_, err := f.svc.ApproveTeacher(ctx, f.admin.ID, uuid.New())
		assert.ErrorIs(t, err, ErrTeacherNotFound)
		assert.Empty(t, f.codes.all())
	})

	t.Run("Should reject approval of a non teacher without persisting a code", func(t *testing.T) {
		f := newVerificationFixture(t)

		student := &model.User{Name: "Student", Email: "student@example.com", Role: model.RoleStudent, Status: model.StatusActive, IsVerified: true}
		require.NoError(t, f.users.Create(ctx, student))

		_, err := f.svc.ApproveTeacher(ctx, f.admin.ID, student.ID)
		assert.ErrorIs(t, err, ErrTeacherNotFound)
		assert.Empty(t, f.codes.all())
	})
}

func TestVerificationService_RedeemCode(t *testing.T) {
	ctx := context.Background()

	t.Run("Should verify the teacher on a valid code", func(t *testing.T) {
		f := newVerificationFixture(t, "482913")

		code, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)
		require.Equal(t, "482913", code.Code)

		user, err := f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
		require.NoError(t, err)
		assert.True(t, user.IsVerified)
		assert.Equal(t, model.StatusActive, user.Status)

		stored := f.codes.all()
		require.Len(t, stored, 1)
		assert.True(t, stored[0].IsUsed)
		require.NotNil(t, stored[0].UsedAt)
		assert.Equal(t, testBase, *stored[0].UsedAt)
	})

	t.Run("Should reject a second redemption of the same code", func(t *testing.T) {
		f := newVerificationFixture(t, "482913")

		_, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)

		_, err = f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
		require.NoError(t, err)

		_, err = f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
		assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
	})

	t.Run("Should reject a code after its expiry", func(t *testing.T) {
		f := newVerificationFixture(t, "482913")

		_, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)

		f.advance(25 * time.Hour)

		_, err = f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
		assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

		teacher, err := f.users.GetByID(ctx, f.teacher.ID)
		require.NoError(t, err)
		assert.False(t, teacher.IsVerified)
	})

	t.Run("Should reject another teacher's code with the same generic error", func(t *testing.T) {
		f := newVerificationFixture(t, "482913")

		_, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)

		other := &model.User{Name: "Other", Email: "other@example.com", Role: model.RoleTeacher, Status: model.StatusPending}
		require.NoError(t, f.users.Create(ctx, other))

		_, err = f.svc.RedeemCode(ctx, other.ID, "482913")
		assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

		// The owner's code is untouched and still redeemable.
		stored := f.codes.all()
		require.Len(t, stored, 1)
		assert.False(t, stored[0].IsUsed)

		_, err = f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
		assert.NoError(t, err)
	})

	t.Run("Should reject an unknown code", func(t *testing.T) {
		f := newVerificationFixture(t)

		_, err := f.svc.RedeemCode(ctx, f.teacher.ID, "000000")
		assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
	})

	t.Run("Should report a vanished user distinctly", func(t *testing.T) {
		f := newVerificationFixture(t, "482913")

		_, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)

		// Simulate the account disappearing between auth and redemption.
		f.users.mu.Lock()
		delete(f.users.users, f.teacher.ID)
		f.users.mu.Unlock()

		_, err = f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
		assert.ErrorIs(t, err, ErrUserVanished)
	})

	t.Run("Should let exactly one concurrent redemption win", func(t *testing.T) {
		f := newVerificationFixture(t, "482913")

		_, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)

		const workers = 8
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
			}()
		}
		wg.Wait()

		var wins, generic int
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			default:
				require.ErrorIs(t, err, ErrInvalidOrExpiredCode)
				generic++
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, workers-1, generic)
	})
}

func TestVerificationService_AttemptThrottle(t *testing.T) {
	ctx := context.Background()

	// throttled rebuilds the fixture's service with a Redis-backed attempt
	// counter and a small budget.
	throttled := func(t *testing.T, f *verificationFixture, maxAttempts int) *miniredis.Miniredis {
		t.Helper()
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		cfg := testConfig()
		cfg.VerifyMaxAttempts = maxAttempts
		f.svc = NewVerificationService(f.users, f.codes, f.mailer, f.gen, rdb, cfg, zerolog.Nop())
		f.svc.now = func() time.Time { return testBase }
		return mr
	}

	t.Run("Should cut off after the attempt budget is spent", func(t *testing.T) {
		f := newVerificationFixture(t)
		throttled(t, f, 3)

		for range 3 {
			_, err := f.svc.RedeemCode(ctx, f.teacher.ID, "000000")
			require.ErrorIs(t, err, ErrInvalidOrExpiredCode)
		}

		_, err := f.svc.RedeemCode(ctx, f.teacher.ID, "000000")
		assert.ErrorIs(t, err, ErrTooManyAttempts)
	})

	t.Run("Should throttle even a correct code", func(t *testing.T) {
		f := newVerificationFixture(t, "482913")
		throttled(t, f, 2)

		_, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)

		for range 2 {
			_, err := f.svc.RedeemCode(ctx, f.teacher.ID, "000000")
			require.ErrorIs(t, err, ErrInvalidOrExpiredCode)
		}

		_, err = f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
		assert.ErrorIs(t, err, ErrTooManyAttempts)
	})

	t.Run("Should reset the budget after the window elapses", func(t *testing.T) {
		f := newVerificationFixture(t, "482913")
		mr := throttled(t, f, 1)

		_, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)

		_, err = f.svc.RedeemCode(ctx, f.teacher.ID, "000000")
		require.ErrorIs(t, err, ErrInvalidOrExpiredCode)
		_, err = f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
		require.ErrorIs(t, err, ErrTooManyAttempts)

		mr.FastForward(16 * time.Minute)

		user, err := f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
		require.NoError(t, err)
		assert.True(t, user.IsVerified)
	})

	t.Run("Should scope the budget per user", func(t *testing.T) {
		f := newVerificationFixture(t, "482913")
		throttled(t, f, 1)

		other := &model.User{Name: "Other", Email: "other@example.com", Role: model.RoleTeacher, Status: model.StatusPending}
		require.NoError(t, f.users.Create(ctx, other))

		_, err := f.svc.RedeemCode(ctx, other.ID, "000000")
		require.ErrorIs(t, err, ErrInvalidOrExpiredCode)
		_, err = f.svc.RedeemCode(ctx, other.ID, "000000")
		require.ErrorIs(t, err, ErrTooManyAttempts)

		// The other teacher's exhausted budget does not bleed over.
		_, err = f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)
		_, err = f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
		assert.NoError(t, err)
	})
}

func TestVerificationService_TeacherState(t *testing.T) {
	ctx := context.Background()

	t.Run("Should walk the full lifecycle", func(t *testing.T) {
		f := newVerificationFixture(t, "482913")

		state, err := f.svc.TeacherState(ctx, f.teacher)
		require.NoError(t, err)
		assert.Equal(t, model.TeacherPendingApproval, state)

		_, err = f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)

		state, err = f.svc.TeacherState(ctx, f.teacher)
		require.NoError(t, err)
		assert.Equal(t, model.TeacherAwaitingRedemption, state)

		user, err := f.svc.RedeemCode(ctx, f.teacher.ID, "482913")
		require.NoError(t, err)

		state, err = f.svc.TeacherState(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, model.TeacherVerified, state)
	})

	t.Run("Should fall back to pending when an issued code expires unredeemed", func(t *testing.T) {
		f := newVerificationFixture(t)

		_, err := f.svc.ApproveTeacher(ctx, f.admin.ID, f.teacher.ID)
		require.NoError(t, err)

		f.advance(25 * time.Hour)

		state, err := f.svc.TeacherState(ctx, f.teacher)
		require.NoError(t, err)
		assert.Equal(t, model.TeacherPendingApproval, state)
	})
}

func TestRandCodeGenerator(t *testing.T) {
	t.Run("Should produce six digit codes in range", func(t *testing.T) {
		gen := NewCodeGenerator()
		for range 100 {
			code := gen.Code()
			require.Len(t, code, 6)
			assert.False(t, strings.HasPrefix(code, "0"))
		}
	})
}
