package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/woundtrack/supply-api/internal/email"
	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/repository"
	"github.com/woundtrack/supply-api/internal/repository/postgres"
	"github.com/woundtrack/supply-api/internal/service/access"
	"github.com/woundtrack/supply-api/pkg/auth"
	apperrors "github.com/woundtrack/supply-api/pkg/errors"
	"github.com/woundtrack/supply-api/pkg/security"
)

type Service interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.TokenResponse, error)
	ApproveUser(ctx context.Context, identity *access.Identity, userID uuid.UUID) error
	ValidateToken(token string) (*access.Identity, error)
}

type service struct {
	users    repository.UserRepository
	tokens   auth.TokenService
	hasher   security.PasswordHasher
	emails   email.Service
	tokenTTL time.Duration
}

func NewService(users repository.UserRepository, tokens auth.TokenService,
	hasher security.PasswordHasher, emails email.Service, tokenTTL time.Duration) Service {
	return &service{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		emails:   emails,
		tokenTTL: tokenTTL,
	}
}

// Register creates an unapproved facility-scoped user. An admin must
// approve the account before it can authenticate.
func (s *service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	facilityID, err := uuid.Parse(req.FacilityID)
	if err != nil {
		return nil, apperrors.Validation("invalid facilityId")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		FacilityID:   &facilityID,
		IsApproved:   false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("email already registered", err)
		}
		return nil, apperrors.StoreFault(err)
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, emailAddr, password string) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, apperrors.InvalidCredential()
	}
	if !user.IsApproved {
		return nil, apperrors.InvalidCredential()
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.InvalidCredential()
	}

	token, err := s.tokens.Generate(&auth.Claims{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       string(user.Role),
		FacilityID: user.FacilityID,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
	}, nil
}

// ApproveUser flips the approval flag and notifies the user. Notification
// failures are logged, not fatal.
func (s *service) ApproveUser(ctx context.Context, identity *access.Identity, userID uuid.UUID) error {
	if err := access.RequireAdmin(identity); err != nil {
		return err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if postgres.IsNoRows(err) {
			return apperrors.NotFound("user")
		}
		return apperrors.StoreFault(err)
	}

	if err := s.users.SetApproved(ctx, userID, true); err != nil {
		return apperrors.StoreFault(err)
	}

	if err := s.emails.SendApprovalNotice(ctx, user.Email, user.Name); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("failed to send approval notice")
	}
	return nil
}

// ValidateToken turns a bearer token into the Guard identity.
func (s *service) ValidateToken(token string) (*access.Identity, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperrors.InvalidCredential()
	}
	return &access.Identity{
		UserID:     claims.UserID,
		Email:      claims.Email,
		Role:       model.Role(claims.Role),
		FacilityID: claims.FacilityID,
	}, nil
}
