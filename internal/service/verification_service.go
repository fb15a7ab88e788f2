package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guptas/lms-backend/internal/config"
	"github.com/guptas/lms-backend/internal/mail"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/guptas/lms-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Verification errors.
var (
	// ErrTeacherNotFound covers both a missing user and a user that is not
	// a teacher: approval targets teachers only.
	ErrTeacherNotFound = errors.New("teacher not found")
	// ErrInvalidOrExpiredCode is the single redemption failure. It does not
	// distinguish wrong, expired, or already-used codes.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	// ErrUserVanished means the caller's own user row disappeared between
	// authentication and redemption.
	ErrUserVanished = errors.New("user not found")
	// ErrTooManyAttempts means the caller exhausted the verify-code budget
	// for the current window.
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrCodeGeneration means every redraw collided with an existing code.
	ErrCodeGeneration = errors.New("could not generate a unique access code")
)

// maxCodeDraws bounds redraws after unique-index collisions. Six digits
// give 900k values, so more than a couple of collisions means something
// is wrong with the randomness source.
const maxCodeDraws = 5

// VerificationService owns the teacher access-code lifecycle: issuance on
// admin approval and single-use redemption by the teacher.
type VerificationService struct {
	users  UserStore
	codes  AccessCodeStore
	mailer mail.Service
	gen    CodeGenerator
	rdb    *redis.Client
	cfg    *config.Config
	log    zerolog.Logger

	// now is the clock, overridable in tests.
	now func() time.Time
}

// NewVerificationService creates a VerificationService. rdb may be nil, in
// which case attempt throttling is disabled.
func NewVerificationService(
	users UserStore,
	codes AccessCodeStore,
	mailer mail.Service,
	gen CodeGenerator,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *VerificationService {
	return &VerificationService{
		users:  users,
		codes:  codes,
		mailer: mailer,
		gen:    gen,
		rdb:    rdb,
		cfg:    cfg,
		log:    log.With().Str("component", "verification_service").Logger(),
		now:    time.Now,
	}
}

// ApproveTeacher issues a fresh access code for the teacher. Any earlier
// unused codes are invalidated first, so at most one code per teacher is
// redeemable at a time. The plaintext code is returned to the approving
// admin and mailed to the teacher; mail failure is logged, never surfaced.
func (s *VerificationService) ApproveTeacher(ctx context.Context, adminID, teacherID uuid.UUID) (*model.AccessCode, error) {
	teacher, err := s.users.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("load teacher: %w", err)
	}
	if teacher.Role != model.RoleTeacher {
		return nil, ErrTeacherNotFound
	}

	now := s.now()
	if err := s.codes.ExpireUnusedForTeacher(ctx, teacherID, now); err != nil {
		return nil, fmt.Errorf("expire previous codes: %w", err)
	}

	code, err := s.createCode(ctx, teacher, adminID, now)
	if err != nil {
		return nil, err
	}

	// Best-effort notification; the code is already persisted and usable.
	go func() {
		msg := mail.AccessCodeMessage(teacher.Email, code.Code)
		sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mailer.Send(sendCtx, msg); err != nil {
			s.log.Error().Err(err).Str("email", teacher.Email).Msg("Access code email failed")
		}
	}()

	s.log.Info().
		Str("teacher_id", teacherID.String()).
		Str("admin_id", adminID.String()).
		Time("expires_at", code.ExpiresAt).
		Msg("Teacher approved, access code issued")

	return code, nil
}

func (s *VerificationService) createCode(ctx context.Context, teacher *model.User, adminID uuid.UUID, now time.Time) (*model.AccessCode, error) {
	for range maxCodeDraws {
		code := &model.AccessCode{
			Code:      s.gen.Code(),
			TeacherID: teacher.ID,
			Email:     teacher.Email,
			ExpiresAt: now.Add(s.cfg.AccessCodeTTL),
			CreatedBy: adminID,
		}
		err := s.codes.Create(ctx, code)
		if err == nil {
			return code, nil
		}
		if errors.Is(err, repository.ErrDuplicateCode) {
			continue
		}
		return nil, fmt.Errorf("store access code: %w", err)
	}
	return nil, ErrCodeGeneration
}

// RedeemCode consumes the submitted code for the calling teacher and flips
// the account to verified. The mark-used step is a single conditional
// update in the store, so concurrent redemptions of the same code yield
// exactly one success.
func (s *VerificationService) RedeemCode(ctx context.Context, callerID uuid.UUID, code string) (*model.User, error) {
	if err := s.checkAttempts(ctx, callerID); err != nil {
		return nil, err
	}

	redeemed, err := s.codes.Redeem(ctx, code, callerID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotRedeemable) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, fmt.Errorf("redeem code: %w", err)
	}

	user, err := s.users.MarkVerified(ctx, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserVanished
		}
		return nil, fmt.Errorf("mark verified: %w", err)
	}

	s.log.Info().
		Str("teacher_id", callerID.String()).
		Time("used_at", *redeemed.UsedAt).
		Msg("Teacher verified")

	return user, nil
}

// TeacherState derives the verification lifecycle state of a teacher,
// consulting the code store for an outstanding redeemable code.
func (s *VerificationService) TeacherState(ctx context.Context, teacher *model.User) (model.TeacherState, error) {
	hasActive, err := s.codes.HasActiveCode(ctx, teacher.ID, s.now())
	if err != nil {
		return "", fmt.Errorf("check active code: %w", err)
	}
	return model.TeacherStateOf(teacher, hasActive), nil
}

// checkAttempts enforces the per-user verify-code attempt budget via a
// Redis counter with a rolling window.
func (s *VerificationService) checkAttempts(ctx context.Context, userID uuid.UUID) error {
	if s.rdb == nil {
		return nil
	}
	key := config.CacheKey.VerifyAttemptsKey(userID.String())

	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("count attempts: %w", err)
	}
	if n == 1 {
		if err := s.rdb.Expire(ctx, key, s.cfg.VerifyWindow).Err(); err != nil {
			return fmt.Errorf("set attempt window: %w", err)
		}
	}
	if n > int64(s.cfg.VerifyMaxAttempts) {
		return ErrTooManyAttempts
	}
	return nil
}
