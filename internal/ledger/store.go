package ledger

import (
	"strconv"

	bolt "go.etcd.io/bbolt"

	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/hashing"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/nodeerr"
	"github.com/kamuikatsurgi/rustic-chain-of-blocks/internal/storage"
)

const (
	bucketAccounts = "accounts"
	bucketMeta     = "accounts_meta"
	keyOrder       = "order"
)

// Store is the persistent, insertion-ordered account set.
type Store struct {
	db *storage.Store
}

// Open opens (creating if absent) the ledger store at path.
func Open(path string) (*Store, error) {
	db, err := storage.Open(path, bucketAccounts, bucketMeta)
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.IO, "open ledger store", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the account at address, or a NotFound error if absent.
func (s *Store) Get(address string) (Account, error) {
	var acc Account
	ok, err := s.db.Get(bucketAccounts, address, &acc)
	if err != nil {
		return Account{}, nodeerr.Wrap(nodeerr.IO, "read account", err)
	}
	if !ok {
		return Account{}, nodeerr.New(nodeerr.NotFound, "account "+address+" not found")
	}
	return acc, nil
}

// GetAll returns every account in insertion order.
func (s *Store) GetAll() ([]Account, error) {
	order, err := s.order()
	if err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(order))
	for _, addr := range order {
		acc, err := s.Get(addr)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// Upsert replaces the account by address if present, else appends it to the
// insertion order. The account write and the order-list update (when new)
// happen in a single bbolt transaction.
func (s *Store) Upsert(acc Account) error {
	data, err := storage.Marshal(acc)
	if err != nil {
		return nodeerr.Wrap(nodeerr.IO, "encode account", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		accounts := tx.Bucket([]byte(bucketAccounts))
		meta := tx.Bucket([]byte(bucketMeta))

		isNew := accounts.Get([]byte(acc.Address)) == nil

		if err := accounts.Put([]byte(acc.Address), data); err != nil {
			return err
		}

		if isNew {
			var order []string
			if raw := meta.Get([]byte(keyOrder)); raw != nil {
				if err := storage.Unmarshal(raw, &order); err != nil {
					return err
				}
			}
			order = append(order, acc.Address)
			encodedOrder, err := storage.Marshal(order)
			if err != nil {
				return err
			}
			return meta.Put([]byte(keyOrder), encodedOrder)
		}
		return nil
	})
	if err != nil {
		return nodeerr.Wrap(nodeerr.IO, "write account", err)
	}
	return nil
}

// ApplyTransfer debits value from sender (rejecting the transfer with a
// Validation error if the balance would go negative), increments the
// sender's nonce, and credits receiver — creating receiver with a zero
// balance if this is its first transfer. The two accounts are upserted
// sequentially, not inside one bbolt transaction: a crash between the two
// writes leaves the sender debited and the receiver not yet credited, and
// nothing replays or repairs such a half-applied transfer.
func (s *Store) ApplyTransfer(sender, receiver string, value uint64) error {
	senderAcc, err := s.Get(sender)
	if err != nil {
		return err
	}
	if senderAcc.Balance < value {
		return nodeerr.New(nodeerr.Validation, "insufficient funds")
	}

	receiverAcc, err := s.Get(receiver)
	if err != nil {
		if !nodeerr.Is(err, nodeerr.NotFound) {
			return err
		}
		receiverAcc = Account{Address: receiver}
	}

	senderAcc.Balance -= value
	senderAcc.Nonce++
	receiverAcc.Balance += value

	if err := s.Upsert(senderAcc); err != nil {
		return err
	}
	return s.Upsert(receiverAcc)
}

func (s *Store) order() ([]string, error) {
	var order []string
	ok, err := s.db.Get(bucketMeta, keyOrder, &order)
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.IO, "read account order", err)
	}
	if !ok {
		return nil, nil
	}
	return order, nil
}

// StateRoot computes "0x" + keccak over the concatenation of each account's
// keccak(address || decimal(balance) || decimal(nonce)) hex string, in
// insertion order. An empty account set hashes to keccak("").
func (s *Store) StateRoot() (string, error) {
	accounts, err := s.GetAll()
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "0x" + hashing.EmptyHash, nil
	}

	leaves := make([][]byte, 0, len(accounts))
	for _, acc := range accounts {
		leaf := hashing.KeccakHex(
			[]byte(acc.Address),
			[]byte(strconv.FormatUint(acc.Balance, 10)),
			[]byte(strconv.FormatUint(acc.Nonce, 10)),
		)
		leaves = append(leaves, []byte(leaf))
	}

	return "0x" + hashing.KeccakHex(leaves...), nil
}
