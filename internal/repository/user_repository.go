// Package repository 定义了账户数据的存取接口和实现。
package repository

import (
	"errors"
	"sync"

	"chat-panel-go/internal/model"
)

var (
	// ErrAccountNotFound 表示目录中没有该邮箱。
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists 表示邮箱已被注册。
	ErrAccountExists = errors.New("account already exists")
)

// AccountRepository 接口定义了账户目录的操作。
type AccountRepository interface {
	Create(account *model.Account) error
	FindByEmail(email string) (*model.Account, error)
}

// memoryAccountRepository 是进程内的账户目录，重启后清空。
type memoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]model.Account
}

// NewAccountRepository 创建一个新的内存 AccountRepository 实例。
func NewAccountRepository() AccountRepository {
	return &memoryAccountRepository{accounts: make(map[string]model.Account)}
}

// Create 以规范化后的邮箱为键保存账户。
func (r *memoryAccountRepository) Create(account *model.Account) error {
	key := model.NormalizeEmail(account.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[key]; ok {
		return ErrAccountExists
	}
	account.Email = key
	r.accounts[key] = *account
	return nil
}

// FindByEmail 根据邮箱查找账户。
func (r *memoryAccountRepository) FindByEmail(email string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accounts[model.NormalizeEmail(email)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &acc, nil
}
