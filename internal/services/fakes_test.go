package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"tasklist/internal/models"
	"tasklist/internal/repositories"
)

// memStore backs both the account and the code repositories, so verification
// can flip the same account rows the auth service reads.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	codes    map[string]*models.VerificationCode
	nextID   int64

	replaceErr error
	latestErr  error
	createErr  error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[string]*models.Account{},
		codes:    map[string]*models.VerificationCode{},
	}
}

func (m *memStore) Create(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertAccount(a)
}

func (m *memStore) insertAccount(a *models.Account) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return repositories.ErrDuplicate
		}
	}
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *memStore) CreateWithCode(_ context.Context, a *models.Account, c *models.VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.insertAccount(a); err != nil {
		return err
	}
	m.storeCode(c)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a := m.byEmail(email); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *memStore) byEmail(email string) *models.Account {
	for _, a := range m.accounts {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (m *memStore) UpdatePasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (m *memStore) Replace(_ context.Context, c *models.VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.storeCode(c)
	return nil
}

func (m *memStore) storeCode(c *models.VerificationCode) {
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.codes[c.Email] = &cp
}

func (m *memStore) Latest(_ context.Context, email string) (*models.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	c, ok := m.codes[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) ConsumeAndVerify(_ context.Context, codeID int64, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[email]
	if !ok || c.ID != codeID {
		return repositories.ErrNotFound
	}
	a := m.byEmail(email)
	if a == nil {
		return repositories.ErrNoAccount
	}
	delete(m.codes, email)
	a.IsVerified = true
	return nil
}

func (m *memStore) account(email string) *models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a := m.byEmail(email); a != nil {
		cp := *a
		return &cp
	}
	return nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentMail struct {
	email, code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendVerificationCode(_ context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{email: email, code: code})
	return nil
}

func (f *fakeMailer) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}
	}
	return f.sent[len(f.sent)-1]
}

type fakeAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeAlerter) Alert(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

var errDB = errors.New("connection refused")
