package service

import (
	"sync"
	"time"

	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// transactionIDLength is the character length of generated transaction IDs.
const transactionIDLength = 24

// consentTransactionStore is an in-memory, single-process implementation of
// ConsentTransactionStore. Consent transactions are short-lived UI state, not
// protocol state, so they do not need to survive a restart or be shared
// across instances behind a sticky load balancer.
type consentTransactionStore struct {
	mu           sync.Mutex
	transactions map[string]*oauthDomain.ConsentTransaction
	lifetime     time.Duration
	generator    GeneratorService
}

// Create stores the transaction under a freshly generated ID and stamps its
// expiry. The assigned ID is written back to the transaction and returned.
func (s *consentTransactionStore) Create(tx *oauthDomain.ConsentTransaction) (string, error) {
	id, err := s.generator.RandomString(transactionIDLength)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to generate transaction id")
	}

	tx.ID = id
	tx.ExpiresAt = time.Now().UTC().Add(s.lifetime)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	s.transactions[id] = tx

	return id, nil
}

// Consume removes and returns the transaction with the given ID. Unknown and
// expired IDs are indistinguishable to the caller.
func (s *consentTransactionStore) Consume(id string) (*oauthDomain.ConsentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return nil, oauthDomain.ErrInvalidTransaction
	}
	delete(s.transactions, id)

	if tx.Expired(time.Now().UTC()) {
		return nil, oauthDomain.ErrInvalidTransaction
	}
	return tx, nil
}

// purgeExpiredLocked drops expired transactions. Caller must hold mu.
func (s *consentTransactionStore) purgeExpiredLocked() {
	now := time.Now().UTC()
	for id, tx := range s.transactions {
		if tx.Expired(now) {
			delete(s.transactions, id)
		}
	}
}

// NewConsentTransactionStore creates an in-memory ConsentTransactionStore
// whose transactions expire after lifetime.
func NewConsentTransactionStore(lifetime time.Duration, generator GeneratorService) ConsentTransactionStore {
	return &consentTransactionStore{
		transactions: make(map[string]*oauthDomain.ConsentTransaction),
		lifetime:     lifetime,
		generator:    generator,
	}
}
