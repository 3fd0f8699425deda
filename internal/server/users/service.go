package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/examhub/examhub/internal/common"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a participant account. The credential is stored as a
// bcrypt hash; the observed protocol never reads it back.
func (s *Service) Register(ctx context.Context, userName, password string) (*User, error) {

	if userName == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &User{
		UserName:   userName,
		Credential: string(hash),
		Role:       RoleParticipant,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}

	return user, nil
}

// Authenticate verifies the password against the stored credential and
// returns the matching user. Unknown usernames and wrong passwords both
// come back as common.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, userName, password string) (*User, error) {

	user, err := s.repo.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if !s.checkCredential(user.Credential, password) {
		return nil, common.ErrUnauthorized
	}

	return user, nil
}

// checkCredential accepts either a bcrypt hash (registered accounts) or a
// plaintext value (externally provisioned records such as an operator-added
// admin row). Plaintext comparison is constant-time.
func (s *Service) checkCredential(stored, candidate string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
