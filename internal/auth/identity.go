package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nurpe/swachh-fleet/internal/model"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Identity wraps credential storage and password checks. It stands in for the
// hosted identity provider: sign-up and sign-in return the stable user id.
type Identity struct {
	db *gorm.DB
}

func NewIdentity(db *gorm.DB) *Identity {
	return &Identity{db: db}
}

// SignUp creates a credential for an existing user id. The profile document
// is written first by the caller; this is the second step.
func (i *Identity) SignUp(ctx context.Context, userID uuid.UUID, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	cred := model.Credential{
		UserID:       userID,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := i.db.WithContext(ctx).Create(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// SignUpHashed stores an already-hashed password, used when promoting an
// approval request whose password was hashed at submission time.
func (i *Identity) SignUpHashed(ctx context.Context, userID uuid.UUID, email, passwordHash string) error {
	cred := model.Credential{
		UserID:       userID,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := i.db.WithContext(ctx).Create(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (i *Identity) SignIn(ctx context.Context, email, password string) (uuid.UUID, error) {
	var cred model.Credential
	err := i.db.WithContext(ctx).Where("email = ?", email).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrInvalidCredentials
		}
		return uuid.Nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return uuid.Nil, ErrInvalidCredentials
	}
	return cred.UserID, nil
}

// HashPassword is exposed for the approval workflow, which stores the hash on
// the request until it is approved.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
