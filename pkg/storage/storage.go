// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage provides the durable keyed record store backing the
// marketplace registries, built on luxfi/database.
package storage

import (
	"encoding/json"

	"github.com/luxfi/database"
	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/database/memdb"
)

// Store wraps luxfi's database interface
type Store struct {
	db database.Database
}

// New creates a new store. dbType "memory" is used by tests and the dev
// daemon; anything else opens badger at path.
func New(dbType string, path string) (*Store, error) {
	var db database.Database
	var err error

	switch dbType {
	case "memory":
		db = memdb.New()
	default:
		db, err = badgerdb.New(path, nil, "", nil)
		if err != nil {
			return nil, err
		}
	}

	return &Store{db: db}, nil
}

// Put stores a key-value pair
func (s *Store) Put(key, value []byte) error {
	return s.db.Put(key, value)
}

// Get retrieves a value by key. The second return is false when the key is
// absent.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	ok, err := s.db.Has(key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	value, err := s.db.Get(key)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Has checks if a key exists
func (s *Store) Has(key []byte) (bool, error) {
	return s.db.Has(key)
}

// Delete removes a key-value pair
func (s *Store) Delete(key []byte) error {
	return s.db.Delete(key)
}

// NewIteratorWithPrefix creates an iterator over all keys with the prefix
func (s *Store) NewIteratorWithPrefix(prefix []byte) database.Iterator {
	return s.db.NewIteratorWithPrefix(prefix)
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// PutJSON marshals a record and stores it under key.
func (s *Store) PutJSON(key []byte, record interface{}) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.Put(key, raw)
}

// GetJSON loads and unmarshals a record. The boolean is false when the key
// is absent.
func (s *Store) GetJSON(key []byte, record interface{}) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	return true, json.Unmarshal(raw, record)
}
