package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"campus-wallet/src/internal/entity"
)

// MemoryRepository keeps wallets and transactions in process. It backs the demo mode and the
// usecase tests, and follows the same posting rules as the SQL repositories.
type MemoryRepository struct {
	mu           sync.Mutex
	wallets      map[string]entity.Wallet
	transactions []entity.Transaction
	now          func() time.Time
	lastCreated  time.Time

	failInsert       error
	failBalanceWrite error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		wallets: map[string]entity.Wallet{},
		now:     time.Now,
	}
}

// WithClock replaces the time source used for created_at.
func (m *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

func (m *MemoryRepository) SeedWallet(w entity.Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[w.ID] = w
}

func (m *MemoryRepository) SeedTransaction(t entity.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, t)
}

// FailNextInsert makes the next Append fail when inserting the transaction row.
func (m *MemoryRepository) FailNextInsert(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failInsert = err
}

// FailNextBalanceWrite makes the next Append fail after the insert, while writing the balance.
func (m *MemoryRepository) FailNextBalanceWrite(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failBalanceWrite = err
}

func (m *MemoryRepository) TransactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transactions)
}

func (m *MemoryRepository) Wallet(id string) (entity.Wallet, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[id]
	return w, ok
}

func (m *MemoryRepository) findByUserID(userID string) []entity.Wallet {
	var found []entity.Wallet
	for _, w := range m.wallets {
		if w.UserID == userID {
			found = append(found, w)
		}
	}
	return found
}

func (m *MemoryRepository) FindByUserID(ctx context.Context, userID string) (*entity.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	found := m.findByUserID(userID)
	switch len(found) {
	case 0:
		return nil, ErrWalletNotFound
	case 1:
		return &found[0], nil
	default:
		return nil, ErrDuplicateWallet
	}
}

func (m *MemoryRepository) involving(userID string) []entity.Transaction {
	var out []entity.Transaction
	for _, t := range m.transactions {
		if (t.FromUserID != nil && *t.FromUserID == userID) || (t.ToUserID != nil && *t.ToUserID == userID) {
			out = append(out, t)
		}
	}
	return out
}

func (m *MemoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entity.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.involving(userID)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []entity.Transaction{}
	}
	return out, nil
}

func (m *MemoryRepository) ListAllByUser(ctx context.Context, userID string) ([]entity.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.involving(userID)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if out == nil {
		out = []entity.Transaction{}
	}
	return out, nil
}

func (m *MemoryRepository) Append(ctx context.Context, posting *entity.Posting) (*entity.PostingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sender, ok := m.wallets[posting.WalletID]
	if !ok {
		return nil, ErrWalletNotFound
	}

	var recipient *entity.Wallet
	if posting.TransactionType == entity.TransactionTypeTransfer && posting.ToUserID != nil {
		found := m.findByUserID(*posting.ToUserID)
		switch len(found) {
		case 0:
		case 1:
			recipient = &found[0]
		default:
			return nil, ErrDuplicateWallet
		}
	}

	plan, err := planPosting(posting, sender, recipient)
	if err != nil {
		return nil, err
	}

	// nothing is stored until every step has succeeded
	if err := m.failInsert; err != nil {
		m.failInsert = nil
		return nil, err
	}
	created := m.now().UTC()
	if !created.After(m.lastCreated) {
		created = m.lastCreated.Add(time.Microsecond)
	}
	stored := plan.transaction
	stored.CreatedAt = created

	if err := m.failBalanceWrite; err != nil {
		m.failBalanceWrite = nil
		return nil, err
	}

	m.lastCreated = created
	m.transactions = append(m.transactions, stored)

	result := &entity.PostingResult{
		Transaction:   stored,
		Wallet:        sender,
		StaleSnapshot: posting.SnapshotVersion != sender.Version,
	}
	result.Wallet.Balance = plan.senderBalance
	result.Wallet.Version = sender.Version + 1
	result.Wallet.UpdatedAt = created
	m.wallets[sender.ID] = result.Wallet

	if plan.credit {
		credited := *recipient
		credited.Balance = plan.recipientBalance
		credited.Version = recipient.Version + 1
		credited.UpdatedAt = created
		m.wallets[credited.ID] = credited
		result.Recipient = &credited
	}
	return result, nil
}
