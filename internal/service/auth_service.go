package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"kodbank/internal/domain"
	"kodbank/internal/logger"
	"kodbank/internal/repository"
	"kodbank/internal/rng"

	"golang.org/x/crypto/bcrypt"
)

const MinUsernameLength = 5

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// AuthService covers registration, OTP activation, mPIN and login.
type AuthService struct {
	store    repository.Store
	sessions *SessionManager
	otp      OTPSender
	rnd      rng.Source
	now      func() time.Time
	hashCost int
}

func NewAuthService(store repository.Store, sessions *SessionManager, otp OTPSender) *AuthService {
	if otp == nil {
		otp = LogOTPSender{}
	}
	return &AuthService{
		store:    store,
		sessions: sessions,
		otp:      otp,
		rnd:      rng.Default(),
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *AuthService) newOTP() string {
	return strconv.Itoa(rng.Between(s.rnd, 100000, 999999))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if len(in.Username) < MinUsernameLength {
		return nil, ErrShortUsername
	}

	taken, err := s.store.UsernameTaken(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}
	if _, err := s.store.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, err
	}

	code := s.newOTP()
	u, err := s.store.CreateUser(ctx, domain.NewUser(in.Username, in.Email, string(hash), in.Phone, code, s.now()))
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}

	if err := s.otp.SendOTP(ctx, u.Email, code); err != nil {
		logger.Warn("otp delivery failed", "email", u.Email, "error", err)
	}
	logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrMissingFields
	}
	u, err := s.store.FindByEmail(ctx, email)
	return u, storeErr(err)
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	code := s.newOTP()
	if _, err := s.store.UpdateUser(ctx, u.ID, func(w *domain.User) error {
		w.OTP = code
		return nil
	}); err != nil {
		return storeErr(err)
	}
	if err := s.otp.SendOTP(ctx, u.Email, code); err != nil {
		logger.Warn("otp delivery failed", "email", u.Email, "error", err)
	}
	return nil
}

// VerifyOTP activates the account owning email when code matches.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	u, err := s.findByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	_, err = s.store.UpdateUser(ctx, u.ID, func(w *domain.User) error {
		if w.OTP == "" || strings.TrimSpace(code) != w.OTP {
			return ErrInvalidOTP
		}
		w.Active = true
		w.OTP = ""
		return nil
	})
	return storeErr(err)
}

func validMPIN(mpin string) bool {
	if len(mpin) < 4 || len(mpin) > 6 {
		return false
	}
	for _, r := range mpin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SetupMPIN sets the secondary PIN once. Changing it is not supported.
func (s *AuthService) SetupMPIN(ctx context.Context, email, mpin string) error {
	if !validMPIN(mpin) {
		return ErrInvalidMPIN
	}
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(mpin), s.hashCost)
	if err != nil {
		return err
	}
	_, err = s.store.UpdateUser(ctx, u.ID, func(w *domain.User) error {
		if w.HasMPIN() {
			return ErrMPINAlreadySet
		}
		w.MPINHash = string(hash)
		return nil
	})
	return storeErr(err)
}

func (s *AuthService) VerifyMPIN(ctx context.Context, userID int64, mpin string) error {
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidSession
	}
	if err != nil {
		return err
	}
	if !u.HasMPIN() || bcrypt.CompareHashAndPassword([]byte(u.MPINHash), []byte(mpin)) != nil {
		return ErrIncorrectMPIN
	}
	return nil
}

// Login checks credentials against a username or email and opens a session.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*domain.User, Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, Session{}, ErrMissingFields
	}
	u, err := s.store.FindByIdentifier(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, Session{}, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, Session{}, ErrAccountInactive
	}

	now := s.now()
	u, err = s.store.UpdateUser(ctx, u.ID, func(w *domain.User) error {
		w.LoginTime = &now
		return nil
	})
	if err != nil {
		return nil, Session{}, storeErr(err)
	}

	sess, err := s.sessions.Issue(u.ID)
	if err != nil {
		return nil, Session{}, err
	}
	logger.Info("user logged in", "user_id", u.ID)
	return u, sess, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// UsernameAvailable reports false for names that are too short to register.
func (s *AuthService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if len(username) < MinUsernameLength {
		return false, nil
	}
	taken, err := s.store.UsernameTaken(ctx, username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
