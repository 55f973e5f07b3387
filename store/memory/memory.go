// Package memory is an in-process store driver backed by go-memdb. It serves
// STORE_DRIVER=memory and the unit tests.
package memory

import (
	"fmt"

	"github.com/hashicorp/go-memdb"
)

const (
	friendsTable   = "friends"
	positionsTable = "positions"

	indexID    = "id"
	indexEmail = "email"
)

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			friendsTable: {
				Name: friendsTable,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					indexEmail: {
						Name:    indexEmail,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Email"},
					},
				},
			},
			positionsTable: {
				Name: positionsTable,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Email"},
					},
				},
			},
		},
	}
}

// Store holds both tables. memdb allows a single writer at a time, which
// makes check-then-insert sequences atomic.
type Store struct {
	db *memdb.MemDB
}

func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Friends() *FriendRepository {
	return &FriendRepository{db: s.db}
}

func (s *Store) Positions() *PositionIndex {
	return &PositionIndex{db: s.db}
}
