package auth

import (
	"context"
	"log/slog"

	internal "github.com/ussdlab/journey-console/internal"
	operatorDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/operator"
	"golang.org/x/crypto/bcrypt"
)

type OperatorRepository interface {
	GetByEmail(ctx context.Context, email string) (*operatorDatamodel.Operator, error)
	GetByID(ctx context.Context, id string) (*operatorDatamodel.Operator, error)
}

type Service struct {
	operators  OperatorRepository
	tokens     TokenGenerator
	bcryptCost int
	logger     *slog.Logger
}

func NewService(operators OperatorRepository, tokens TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		operators:  operators,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Authenticate verifies the operator's credentials and issues a token pair.
// Credential failures are indistinguishable from unknown accounts.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	record, err := s.operators.GetByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Error("operator lookup failed", "error", err)
		return AuthTokens{}, internal.NewTransportError("failed to verify credentials", err)
	}
	if record == nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !record.IsActive {
		return AuthTokens{}, internal.ErrOperatorInactive
	}

	return s.issueTokens(record)
}

// RefreshTokens exchanges a valid refresh token for a new pair. The operator
// is re-checked so a deactivated account cannot keep refreshing.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	record, err := s.operators.GetByID(ctx, claims.OperatorID)
	if err != nil {
		return AuthTokens{}, internal.NewTransportError("failed to verify operator", err)
	}
	if record == nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !record.IsActive {
		return AuthTokens{}, internal.ErrOperatorInactive
	}

	return s.issueTokens(record)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issueTokens(record *operatorDatamodel.Operator) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(record.ID, record.Email, record.Role)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign access token", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(record.ID, record.Email, record.Role)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign refresh token", err)
	}
	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
