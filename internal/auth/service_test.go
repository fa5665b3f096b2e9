package auth_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	internal "github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/auth"
	operatorDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/operator"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

type MockOperatorRepository struct {
	operators map[string]*operatorDatamodel.Operator
}

func (m *MockOperatorRepository) GetByEmail(ctx context.Context, email string) (*operatorDatamodel.Operator, error) {
	for _, record := range m.operators {
		if record.Email == email {
			return record, nil
		}
	}
	return nil, nil
}

func (m *MockOperatorRepository) GetByID(ctx context.Context, id string) (*operatorDatamodel.Operator, error) {
	return m.operators[id], nil
}

var _ = Describe("Auth Service", func() {
	var (
		mockRepo *MockOperatorRepository
		service  *auth.Service
		ctx      context.Context
	)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	tokens := auth.NewJWTTokenGenerator("access-secret-for-tests", "refresh-secret-for-tests")

	hash := func(password string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		return string(h)
	}

	BeforeEach(func() {
		mockRepo = &MockOperatorRepository{operators: map[string]*operatorDatamodel.Operator{
			"op-1": {
				ID:           "op-1",
				Email:        "admin@console.local",
				Name:         "Console Admin",
				PasswordHash: hash("s3cret!"),
				Role:         auth.RoleAdmin,
				IsActive:     true,
			},
			"op-2": {
				ID:           "op-2",
				Email:        "ghost@console.local",
				Name:         "Deactivated",
				PasswordHash: hash("s3cret!"),
				Role:         auth.RoleViewer,
				IsActive:     false,
			},
		}}
		service = auth.NewService(mockRepo, tokens, bcrypt.MinCost, logger)
		ctx = context.Background()
	})

	Describe("Authenticate", func() {
		It("issues a token pair for valid credentials", func() {
			pair, err := service.Authenticate(ctx, auth.LoginDTO{Email: "admin@console.local", Password: "s3cret!"})
			Expect(err).NotTo(HaveOccurred())
			Expect(pair.AccessToken).NotTo(BeEmpty())
			Expect(pair.RefreshToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(pair.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.OperatorID).To(Equal("op-1"))
			Expect(claims.Role).To(Equal(auth.RoleAdmin))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "admin@console.local", Password: "wrong"})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("rejects an unknown email the same way as a wrong password", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "nobody@console.local", Password: "s3cret!"})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("rejects a deactivated operator", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "ghost@console.local", Password: "s3cret!"})
			Expect(err).To(Equal(internal.ErrOperatorInactive))
		})

		It("requires email and password", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("RefreshTokens", func() {
		It("exchanges a refresh token for a new pair", func() {
			pair, err := service.Authenticate(ctx, auth.LoginDTO{Email: "admin@console.local", Password: "s3cret!"})
			Expect(err).NotTo(HaveOccurred())

			renewed, err := service.RefreshTokens(ctx, pair.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(renewed.AccessToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(renewed.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.OperatorID).To(Equal("op-1"))
		})

		It("rejects garbage tokens", func() {
			_, err := service.RefreshTokens(ctx, "not-a-token")
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})

		It("stops refreshing once the operator is deactivated", func() {
			pair, err := service.Authenticate(ctx, auth.LoginDTO{Email: "admin@console.local", Password: "s3cret!"})
			Expect(err).NotTo(HaveOccurred())

			mockRepo.operators["op-1"].IsActive = false
			_, err = service.RefreshTokens(ctx, pair.RefreshToken)
			Expect(err).To(Equal(internal.ErrOperatorInactive))
		})
	})
})
