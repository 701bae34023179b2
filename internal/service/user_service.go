package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-panel-go/internal/model"
	"chat-panel-go/internal/repository"
	"chat-panel-go/internal/session"
	"chat-panel-go/internal/validation"
	"chat-panel-go/pkg/hash"
	"chat-panel-go/pkg/log"
	"chat-panel-go/pkg/token"
)

const (
	// RegistrationToast 是注册成功后的通知文案。
	RegistrationToast = "Registration complete!"
	// LoginToast 是登录成功后的通知文案。
	LoginToast = "Signed in!"
)

var (
	// ErrEmailTaken 表示邮箱已被注册。
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials 表示邮箱不存在或密码错误。
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService 接口定义了模拟注册/登录相关的业务操作。
type UserService interface {
	Register(ctx context.Context, sess *session.Session, form validation.RegistrationForm) (*model.Identity, error)
	Login(ctx context.Context, sess *session.Session, form validation.LoginForm) (*model.Identity, error)
	GetProfile(sess *session.Session) (model.Identity, bool)
}

// userService 是 UserService 接口的实现。
type userService struct {
	accountRepo repository.AccountRepository
	notifier    Notifier
	delay       time.Duration
	now         func() time.Time
}

// NewUserService 创建一个新的 UserService 实例。delay 模拟服务端处理耗时。
func NewUserService(accountRepo repository.AccountRepository, notifier Notifier, delay time.Duration) UserService {
	return &userService{
		accountRepo: accountRepo,
		notifier:    notifier,
		delay:       delay,
		now:         time.Now,
	}
}

// Register 处理用户注册的业务逻辑。
func (s *userService) Register(ctx context.Context, sess *session.Session, form validation.RegistrationForm) (*model.Identity, error) {
	// 1. 校验表单
	if errs := validation.Registration(&form); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	// 2. 模拟服务端耗时
	if err := sleepCtx(ctx, s.delay); err != nil {
		return nil, err
	}

	// 3. 对密码进行哈希处理并写入目录
	hashed, err := hash.HashPassword(form.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	account := &model.Account{
		Email:        form.Email,
		Username:     form.Username,
		PasswordHash: hashed,
		CreatedAt:    now,
	}
	if err := s.accountRepo.Create(account); err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// 4. 登记身份并通知
	identity := model.Identity{
		Email:    account.Email,
		Username: account.Username,
		Token:    token.MockIdentityToken("reg", now),
	}
	sess.SignIn(identity)
	s.notifier.Notify(sess.ID, model.NotificationSuccess, RegistrationToast)
	log.Infow("[UserService] 用户注册成功", "username", identity.Username, "sessionId", sess.ID)
	return &identity, nil
}

// Login 处理用户登录的业务逻辑。
func (s *userService) Login(ctx context.Context, sess *session.Session, form validation.LoginForm) (*model.Identity, error) {
	if errs := validation.Login(&form); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}
	if err := sleepCtx(ctx, s.delay); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByEmail(form.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPasswordHash(form.Password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	identity := model.Identity{
		Email:    account.Email,
		Username: account.Username,
		Token:    token.MockIdentityToken("login", s.now()),
	}
	sess.SignIn(identity)
	s.notifier.Notify(sess.ID, model.NotificationSuccess, LoginToast)
	log.Infow("[UserService] 用户登录成功", "username", identity.Username, "sessionId", sess.ID)
	return &identity, nil
}

// GetProfile 返回会话当前的身份。
func (s *userService) GetProfile(sess *session.Session) (model.Identity, bool) {
	return sess.Identity()
}
