package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Milo-adonos/SilentView/internal/data/repos"
	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/pkg/ctxutil"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

const MinPasswordLength = 6

const (
	msgEmailRequired    = "L'email est requis"
	msgPasswordMismatch = "Les mots de passe ne correspondent pas"
	msgPasswordTooShort = "Le mot de passe doit contenir au moins 6 caractères"
	msgEmailTaken       = "Cet email est déjà utilisé"
	msgBadCredentials   = "Email ou mot de passe incorrect"
	msgSessionInvalid   = "Session invalide ou expirée"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

// AuthSession is a signed-in identity and the bearer token that proves it.
type AuthSession struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *types.User `json:"user"`
}

type AuthService interface {
	// SignUp creates the account and signs it in.
	SignUp(ctx context.Context, email, password, confirm string) (*AuthSession, error)
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*AuthSession, error)
	// SetContextFromToken validates token and records the identity on the
	// request data carried by ctx.
	SetContextFromToken(ctx context.Context, token string) (context.Context, error)
	IsPremium(ctx context.Context, userID uuid.UUID) (bool, error)
	AccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	subRepo       repos.SubscriptionRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	subRepo repos.SubscriptionRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = 7 * 24 * time.Hour
	}
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		subRepo:       subRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		now:           time.Now,
	}
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return pkgerrors.Invalid(msgEmailRequired)
	}
	if len([]rune(password)) < MinPasswordLength {
		return pkgerrors.Invalid(msgPasswordTooShort)
	}
	return nil
}

func (as *authService) SignUp(ctx context.Context, email, password, confirm string) (*AuthSession, error) {
	if password != confirm {
		return nil, pkgerrors.Invalid(msgPasswordMismatch)
	}
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var out *AuthSession
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u := &types.User{Email: email, Password: string(hash)}
		if err := as.userRepo.Create(dbc, u); err != nil {
			if errors.Is(err, repos.ErrEmailTaken) {
				return pkgerrors.Conflict(msgEmailTaken)
			}
			return fmt.Errorf("create user: %w", err)
		}
		sess, err := as.issue(dbc, u)
		if err != nil {
			return err
		}
		out = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User signed up", "user_id", out.User.ID.String())
	return out, nil
}

func (as *authService) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	dbc := dbctx.Of(ctx)
	u, err := as.userRepo.GetByEmail(dbc, email)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, pkgerrors.Unauthorized(msgBadCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, pkgerrors.Unauthorized(msgBadCredentials)
	}
	if _, err := as.userTokenRepo.DeleteExpired(dbc, as.now()); err != nil {
		as.log.Warn("Failed to prune expired tokens", "error", err)
	}
	return as.issue(dbc, u)
}

func (as *authService) issue(dbc dbctx.Context, u *types.User) (*AuthSession, error) {
	now := as.now()
	exp := now.Add(as.accessTTL)
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	if err := as.userTokenRepo.Create(dbc, &types.UserToken{UserID: u.ID, AccessToken: signed, ExpiresAt: exp}); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}
	return &AuthSession{AccessToken: signed, ExpiresAt: exp, User: u}, nil
}

func (as *authService) SignOut(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.Unauthorized(msgSessionInvalid)
	}
	return as.userTokenRepo.DeleteByAccessToken(dbctx.Of(ctx), token)
}

func (as *authService) parse(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(as.jwtSecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		return uuid.Nil, pkgerrors.Unauthorized(msgSessionInvalid)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, pkgerrors.Unauthorized(msgSessionInvalid)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, pkgerrors.Unauthorized(msgSessionInvalid)
	}
	return id, nil
}

// CurrentSession accepts a token only while it is signed, unexpired and
// still stored; signing out removes it.
func (as *authService) CurrentSession(ctx context.Context, token string) (*AuthSession, error) {
	userID, err := as.parse(token)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Of(ctx)
	stored, err := as.userTokenRepo.GetByAccessToken(dbc, token)
	if errors.Is(err, pkgerrors.ErrNotFound) || (err == nil && stored.UserID != userID) {
		return nil, pkgerrors.Unauthorized(msgSessionInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	u, err := as.userRepo.GetByID(dbc, userID)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, pkgerrors.Unauthorized(msgSessionInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &AuthSession{AccessToken: token, ExpiresAt: stored.ExpiresAt, User: u}, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	sess, err := as.CurrentSession(ctx, token)
	if err != nil {
		return ctx, err
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		rd = &ctxutil.RequestData{}
		ctx = ctxutil.WithRequestData(ctx, rd)
	}
	rd.TokenString = token
	rd.UserID = sess.User.ID
	rd.Email = sess.User.Email
	return ctx, nil
}

func (as *authService) IsPremium(ctx context.Context, userID uuid.UUID) (bool, error) {
	sub, err := as.subRepo.ActiveForUser(dbctx.Of(ctx), userID, as.now())
	if err != nil {
		return false, err
	}
	return sub != nil, nil
}
