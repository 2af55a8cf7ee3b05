package auth_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campussync/complaint-management/internal/auth"
	"github.com/campussync/complaint-management/internal/user"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

// Mock user repository for testing
type mockUserRepository struct {
	byEmail map[string]*user.User
	byID    map[int64]*user.User
	nextID  int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		byEmail: make(map[string]*user.User),
		byID:    make(map[int64]*user.User),
		nextID:  1,
	}
}

func (m *mockUserRepository) GetByEmail(email string) (*user.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetByID(userID int64) (*user.User, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepository) Create(u *user.User) error {
	u.ID = m.nextID
	m.nextID++
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return nil
}

// Mock sweeper recording opportunistic escalation runs on login
type mockSweeper struct {
	calls int
	err   error
}

func (m *mockSweeper) EscalateStale() (int, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	return 0, nil
}

var _ = Describe("AuthService", func() {
	var (
		service  *auth.Service
		mockRepo *mockUserRepository
		sweeper  *mockSweeper
		tokenGen *auth.JWTTokenGenerator
		logger   *slog.Logger
	)

	register := func(email string) *user.User {
		u, err := service.Register(auth.RegisterDTO{
			Username: "alex",
			Email:    email,
			Password: "correct-horse",
		})
		Expect(err).ToNot(HaveOccurred())
		return u
	}

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		sweeper = &mockSweeper{}
		tokenGen = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(mockRepo, tokenGen, sweeper, "campus.edu", 4, logger)
	})

	Describe("Register", func() {
		It("creates a student account by default with a hashed password", func() {
			u := register("alex@campus.edu")

			Expect(u.ID).To(BeNumerically(">", 0))
			Expect(u.Role).To(Equal(user.RoleStudent))
			Expect(u.IsActive).To(BeTrue())
			Expect(u.PasswordHash).ToNot(Equal("correct-horse"))
		})

		It("rejects emails outside the allowed domain", func() {
			_, err := service.Register(auth.RegisterDTO{
				Username: "eve",
				Email:    "eve@elsewhere.com",
				Password: "correct-horse",
			})
			Expect(err).To(MatchError(auth.ErrEmailDomain))
		})

		It("rejects duplicate emails", func() {
			register("alex@campus.edu")

			_, err := service.Register(auth.RegisterDTO{
				Username: "alex2",
				Email:    "alex@campus.edu",
				Password: "correct-horse",
			})
			Expect(err).To(MatchError(auth.ErrEmailTaken))
		})

		It("normalizes email case before the duplicate check", func() {
			register("alex@campus.edu")

			_, err := service.Register(auth.RegisterDTO{
				Username: "alex2",
				Email:    "Alex@Campus.edu",
				Password: "correct-horse",
			})
			Expect(err).To(MatchError(auth.ErrEmailTaken))
		})

		It("rejects unknown roles", func() {
			_, err := service.Register(auth.RegisterDTO{
				Username: "alex",
				Email:    "alex@campus.edu",
				Password: "correct-horse",
				Role:     "superuser",
			})
			Expect(err).To(MatchError(auth.ErrInvalidRole))
		})

		It("rejects short passwords", func() {
			_, err := service.Register(auth.RegisterDTO{
				Username: "alex",
				Email:    "alex@campus.edu",
				Password: "short",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Authenticate", func() {
		BeforeEach(func() {
			register("alex@campus.edu")
		})

		It("returns a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "alex@campus.edu",
				Password: "correct-horse",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(tokens.AccessToken).ToNot(BeEmpty())
			Expect(tokens.RefreshToken).ToNot(BeEmpty())
		})

		It("runs one escalation sweep on login", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "alex@campus.edu",
				Password: "correct-horse",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(sweeper.calls).To(Equal(1))
		})

		It("still logs in when the sweep fails", func() {
			sweeper.err = errors.New("db down")

			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "alex@campus.edu",
				Password: "correct-horse",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(tokens.AccessToken).ToNot(BeEmpty())
		})

		It("rejects a wrong password with the generic credentials error", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "alex@campus.edu",
				Password: "wrong-password",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown email with the same error", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@campus.edu",
				Password: "correct-horse",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})
	})

	Describe("RefreshTokens", func() {
		It("exchanges a valid refresh token for a new pair", func() {
			register("alex@campus.edu")
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "alex@campus.edu",
				Password: "correct-horse",
			})
			Expect(err).ToNot(HaveOccurred())

			fresh, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(fresh.AccessToken).ToNot(BeEmpty())
		})

		It("rejects garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-token")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("JWTTokenGenerator", func() {
		It("round-trips claims through an access token", func() {
			token, err := tokenGen.GenerateAccessToken("42", "alex@campus.edu", user.RoleStaff)
			Expect(err).ToNot(HaveOccurred())

			claims, err := tokenGen.ValidateToken(token)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.UserID).To(Equal("42"))
			Expect(claims.Email).To(Equal("alex@campus.edu"))
			Expect(claims.Role).To(Equal(user.RoleStaff))
		})

		It("reports expired tokens distinctly", func() {
			expired := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", -time.Minute, -time.Minute)

			token, err := expired.GenerateAccessToken("42", "alex@campus.edu", user.RoleStudent)
			Expect(err).ToNot(HaveOccurred())

			_, err = expired.ValidateToken(token)
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})

		It("rejects tokens signed with a different secret", func() {
			other := auth.NewJWTTokenGenerator("another-secret", "another-refresh", time.Minute, time.Minute)

			token, err := other.GenerateAccessToken("42", "alex@campus.edu", user.RoleStudent)
			Expect(err).ToNot(HaveOccurred())

			_, err = tokenGen.ValidateToken(token)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("GetIdentity", func() {
		It("maps the stored user onto the request identity", func() {
			u := register("alex@campus.edu")

			identity, err := service.GetIdentity(u.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(identity.ID).To(Equal(u.ID))
			Expect(identity.Role).To(Equal(user.RoleStudent))
			Expect(identity.Email).To(Equal("alex@campus.edu"))
		})
	})
})
