// Package services holds the server-side use cases behind the auth endpoints.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/cryptox"
	"github.com/dmitrijs2005/devconnector/internal/dbx"
	"github.com/dmitrijs2005/devconnector/internal/logging"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/dmitrijs2005/devconnector/internal/server/repositories/repomanager"
)

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AvatarSigner turns a stored avatar name into a URL a client can fetch.
type AvatarSigner interface {
	AvatarURL(ctx context.Context, avatar string) (string, error)
}

// RegisterOutcome tells how a registration attempt ended. Both duplicate
// outcomes are reported to callers as the same validation error.
type RegisterOutcome int

const (
	Registered RegisterOutcome = iota + 1
	// DuplicateOnPrecheck: the email lookup found an existing identity.
	DuplicateOnPrecheck
	// DuplicateOnWrite: the lookup raced with another registration and the
	// unique index rejected the insert.
	DuplicateOnWrite
)

func (o RegisterOutcome) String() string {
	switch o {
	case Registered:
		return "registered"
	case DuplicateOnPrecheck:
		return "duplicate_on_precheck"
	case DuplicateOnWrite:
		return "duplicate_on_write"
	default:
		return "unknown"
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterResult struct {
	Outcome RegisterOutcome
	User    *models.User
	Token   string
}

var errDuplicatePrecheck = errors.New("email taken")

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	bcryptCost  int
	avatars     AvatarSigner
	logger      logging.Logger
}

type Option func(*UserService)

func WithAvatarSigner(a AvatarSigner) Option {
	return func(s *UserService) { s.avatars = a }
}

func WithLogger(l logging.Logger) Option {
	return func(s *UserService) { s.logger = l }
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenIssuer, bcryptCost int, opts ...Option) *UserService {
	s := &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		bcryptCost:  bcryptCost,
		logger:      logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	cryptox.PrepareBurn(bcryptCost)
	return s
}

// Register stores a new identity and issues its first token, so a
// successful registration is also a login. Field rules are enforced where the
// request is decoded; Register only normalizes name and email. A taken email yields
// a *ValidationError with MsgUserExists and the result's Outcome records
// which guard caught it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	hash, err := cryptox.HashPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("register: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        NormalizeEmail(in.Email),
		PasswordHash: hash,
		Avatar:       models.DefaultAvatar,
	}

	outcome := Registered
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetUserByEmail(ctx, user.Email)
		switch {
		case err == nil:
			outcome = DuplicateOnPrecheck
			return errDuplicatePrecheck
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		if _, err := repo.Create(ctx, user); err != nil {
			if errors.Is(err, common.ErrDuplicateEmail) {
				outcome = DuplicateOnWrite
			}
			return err
		}
		return nil
	})

	if outcome != Registered {
		s.logger.Debug(ctx, "registration rejected", "outcome", outcome.String())
		return RegisterResult{Outcome: outcome}, newValidationError("email", MsgUserExists)
	}
	if err != nil {
		return RegisterResult{}, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("issue token: %w", err)
	}

	return RegisterResult{Outcome: Registered, User: user, Token: token}, nil
}

// Login returns a fresh token for valid credentials. An unknown email and a
// wrong password both return common.ErrInvalidCredentials after doing the
// same bcrypt work.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.BurnPasswordCheck([]byte(password), s.bcryptCost)
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if !cryptox.CheckPassword(user.PasswordHash, []byte(password)) {
		return "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Me loads the identity a verified token speaks for. A failing avatar
// signer only drops AvatarURL from the result.
func (s *UserService) Me(ctx context.Context, userID string) (models.PublicUser, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.PublicUser{}, common.ErrorNotFound
		}
		return models.PublicUser{}, fmt.Errorf("me: %w", err)
	}

	pub := user.Public()
	if s.avatars != nil {
		url, err := s.avatars.AvatarURL(ctx, user.Avatar)
		if err != nil {
			s.logger.Warn(ctx, "avatar url unavailable", "user_id", user.ID, "error", err)
		} else {
			pub.AvatarURL = url
		}
	}
	return pub, nil
}
