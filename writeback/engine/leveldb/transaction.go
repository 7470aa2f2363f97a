package leveldb

import (
	"github.com/syndtr/goleveldb/leveldb"
)

// Transaction wraps a leveldb transaction as an engine.Transaction.
// goleveldb allows a single open transaction at a time and blocks further
// ones until it is committed or discarded, which matches the flush
// discipline of the writeback store.
type Transaction struct {
	*leveldb.Transaction
}

func (t *Transaction) Put(key, value []byte) error {
	return t.Transaction.Put(key, value, nil)
}

func (t *Transaction) Delete(key []byte) error {
	return t.Transaction.Delete(key, nil)
}

func (t *Transaction) Commit() error {
	return t.Transaction.Commit()
}

func (t *Transaction) Discard() {
	t.Transaction.Discard()
}
