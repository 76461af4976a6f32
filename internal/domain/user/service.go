package user

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"foodgram/internal/domain/upload"
)

// usernamePattern повторяет ограничение исходной модели пользователя.
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type jwtService interface {
	GenerateToken(userID int64) (string, error)
}

// SubscriptionChecker сообщает, подписан ли зритель на автора.
// Реализуется репозиторием подписок; nil допустим (все флаги false).
type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, followerID, authorID int64) (bool, error)
}

type uploader interface {
	SaveBase64(ctx context.Context, userID int64, payload string) (*upload.Upload, error)
}

type Service struct {
	users   Repository
	jwt     jwtService
	uploads uploader
	subs    SubscriptionChecker
}

type LoginResult struct {
	User        *User
	AccessToken string
}

func NewService(users Repository, jwt jwtService, uploads uploader, subs SubscriptionChecker) *Service {
	return &Service{users: users, jwt: jwt, uploads: uploads, subs: subs}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	taken, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        email,
		Username:     username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, AccessToken: token}, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, page, perPage int) ([]*User, int64, error) {
	return s.users.List(ctx, perPage, (page-1)*perPage)
}

// SetAvatar сохраняет base64-картинку и привязывает её URL к пользователю.
func (s *Service) SetAvatar(ctx context.Context, userID int64, payload string) (string, error) {
	u, err := s.uploads.SaveBase64(ctx, userID, payload)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateAvatar(ctx, userID, u.FileURL); err != nil {
		return "", err
	}
	return u.FileURL, nil
}

func (s *Service) DeleteAvatar(ctx context.Context, userID int64) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.AvatarURL == "" {
		return ErrNoAvatar
	}
	return s.users.UpdateAvatar(ctx, userID, "")
}

// IsSubscribed — nil-безопасная обёртка для построения представлений.
func (s *Service) IsSubscribed(ctx context.Context, viewerID, authorID int64) bool {
	if s.subs == nil || viewerID == 0 || viewerID == authorID {
		return false
	}
	ok, err := s.subs.IsSubscribed(ctx, viewerID, authorID)
	if err != nil {
		return false
	}
	return ok
}
