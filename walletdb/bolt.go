package walletdb

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

const (
	countersBucket   = "counters"
	proofsBucket     = "proofs"
	mintQuotesBucket = "mint_quotes"
	meltQuotesBucket = "melt_quotes"
	seedBucket       = "seed"
	mnemonicKey      = "mnemonic"
	seedKey          = "seed"
)

// BoltStore implements Store over a single go.etcd.io/bbolt file, one
// wallet.db per wallet directory.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (creating if absent) wallet.db under dir and ensures
// every top-level bucket exists.
func OpenBolt(dir string) (*BoltStore, error) {
	db, err := bolt.Open(filepath.Join(dir, "wallet.db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("walletdb: opening bolt db: %w", err)
	}

	store := &BoltStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *BoltStore) init() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{countersBucket, proofsBucket, mintQuotesBucket, meltQuotesBucket, seedBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func walletBucket(tx *bolt.Tx, top, walletId string) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(top))
	return b.CreateBucketIfNotExists([]byte(walletId))
}

// --- CounterStore ---

func (s *BoltStore) Get(walletId, keysetId string) (uint32, error) {
	var counter uint32
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(countersBucket)).Bucket([]byte(walletId))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(keysetId))
		if v != nil {
			counter = binary.BigEndian.Uint32(v)
		}
		return nil
	})
	return counter, err
}

// Advance reserves `count` counter values atomically and returns the
// first reserved value, so concurrent callers never receive
// overlapping ranges.
func (s *BoltStore) Advance(walletId, keysetId string, count uint32) (uint32, error) {
	var first uint32
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := walletBucket(tx, countersBucket, walletId)
		if err != nil {
			return err
		}

		var current uint32
		if v := b.Get([]byte(keysetId)); v != nil {
			current = binary.BigEndian.Uint32(v)
		}
		first = current

		next := make([]byte, 4)
		binary.BigEndian.PutUint32(next, current+count)
		return b.Put([]byte(keysetId), next)
	})
	return first, err
}

func (s *BoltStore) Set(walletId, keysetId string, value uint32) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := walletBucket(tx, countersBucket, walletId)
		if err != nil {
			return err
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, value)
		return b.Put([]byte(keysetId), buf)
	})
}

func (s *BoltStore) All(walletId string) (map[string]uint32, error) {
	out := make(map[string]uint32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(countersBucket)).Bucket([]byte(walletId))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			out[string(k)] = binary.BigEndian.Uint32(v)
			return nil
		})
	})
	return out, err
}

// --- ProofStore ---

func (s *BoltStore) Insert(proofs []StoredProof) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, p := range proofs {
			b, err := walletBucket(tx, proofsBucket, p.WalletId)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("walletdb: marshaling proof: %w", err)
			}
			if err := b.Put([]byte(p.Secret), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) List(walletId string, state ProofState) ([]StoredProof, error) {
	var out []StoredProof
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(proofsBucket)).Bucket([]byte(walletId))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var p StoredProof
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			if p.State == state {
				out = append(out, p)
			}
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) ListByKeyset(walletId, keysetId string) ([]StoredProof, error) {
	var out []StoredProof
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(proofsBucket)).Bucket([]byte(walletId))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var p StoredProof
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			if p.Id == keysetId {
				out = append(out, p)
			}
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) UpdateState(walletId string, secrets []string, state ProofState, quoteId string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := walletBucket(tx, proofsBucket, walletId)
		if err != nil {
			return err
		}
		for _, secret := range secrets {
			raw := b.Get([]byte(secret))
			if raw == nil {
				continue
			}
			var p StoredProof
			if err := json.Unmarshal(raw, &p); err != nil {
				return err
			}
			p.State = state
			p.QuoteId = quoteId
			updated, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(secret), updated); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Delete(walletId string, secrets []string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := walletBucket(tx, proofsBucket, walletId)
		if err != nil {
			return err
		}
		for _, secret := range secrets {
			if err := b.Delete([]byte(secret)); err != nil {
				return err
			}
		}
		return nil
	})
}

// CommitSwap puts fresh and deletes spentSecrets inside one bbolt
// transaction: both writes land together or neither does, so a crash
// mid-swap can never delete spent inputs without the outputs that
// replaced them.
func (s *BoltStore) CommitSwap(walletId string, spentSecrets []string, fresh []StoredProof) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := walletBucket(tx, proofsBucket, walletId)
		if err != nil {
			return err
		}
		for _, p := range fresh {
			raw, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("walletdb: marshaling proof: %w", err)
			}
			if err := b.Put([]byte(p.Secret), raw); err != nil {
				return err
			}
		}
		for _, secret := range spentSecrets {
			if err := b.Delete([]byte(secret)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) FindByQuote(walletId, quoteId string) ([]StoredProof, error) {
	var out []StoredProof
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(proofsBucket)).Bucket([]byte(walletId))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var p StoredProof
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			if p.QuoteId == quoteId {
				out = append(out, p)
			}
			return nil
		})
	})
	return out, err
}

// --- QuoteStore ---

func (s *BoltStore) SaveMintQuote(q MintQuote) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := walletBucket(tx, mintQuotesBucket, q.WalletId)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(q)
		if err != nil {
			return err
		}
		return b.Put([]byte(q.QuoteId), raw)
	})
}

func (s *BoltStore) MintQuote(walletId, quoteId string) (*MintQuote, error) {
	var q *MintQuote
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(mintQuotesBucket)).Bucket([]byte(walletId))
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(quoteId))
		if raw == nil {
			return nil
		}
		var found MintQuote
		if err := json.Unmarshal(raw, &found); err != nil {
			return err
		}
		q = &found
		return nil
	})
	return q, err
}

func (s *BoltStore) MintQuotes(walletId string) ([]MintQuote, error) {
	var out []MintQuote
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(mintQuotesBucket)).Bucket([]byte(walletId))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var q MintQuote
			if err := json.Unmarshal(v, &q); err != nil {
				return err
			}
			out = append(out, q)
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) SaveMeltQuote(q MeltQuote) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := walletBucket(tx, meltQuotesBucket, q.WalletId)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(q)
		if err != nil {
			return err
		}
		return b.Put([]byte(q.QuoteId), raw)
	})
}

func (s *BoltStore) MeltQuote(walletId, quoteId string) (*MeltQuote, error) {
	var q *MeltQuote
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(meltQuotesBucket)).Bucket([]byte(walletId))
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(quoteId))
		if raw == nil {
			return nil
		}
		var found MeltQuote
		if err := json.Unmarshal(raw, &found); err != nil {
			return err
		}
		q = &found
		return nil
	})
	return q, err
}

func (s *BoltStore) MeltQuotes(walletId string) ([]MeltQuote, error) {
	var out []MeltQuote
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(meltQuotesBucket)).Bucket([]byte(walletId))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var q MeltQuote
			if err := json.Unmarshal(v, &q); err != nil {
				return err
			}
			out = append(out, q)
			return nil
		})
	})
	return out, err
}

// --- SeedStore ---

func (s *BoltStore) SaveMnemonic(mnemonic string, seed []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(seedBucket))
		if err := b.Put([]byte(mnemonicKey), []byte(mnemonic)); err != nil {
			return err
		}
		return b.Put([]byte(seedKey), seed)
	})
}

func (s *BoltStore) Mnemonic() (string, error) {
	var mnemonic string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(seedBucket))
		mnemonic = string(b.Get([]byte(mnemonicKey)))
		return nil
	})
	return mnemonic, err
}

func (s *BoltStore) Seed() ([]byte, error) {
	var seed []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(seedBucket))
		seed = b.Get([]byte(seedKey))
		return nil
	})
	return seed, err
}

var _ Store = (*BoltStore)(nil)
