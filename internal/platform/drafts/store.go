// Package drafts implements the single-slot onboarding draft store on top
// of a local bbolt database. One slot per owner, read once at workflow
// construction and rewritten on every transition.
package drafts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"peopledesk/internal/domain/onboarding"
)

var bucketName = []byte("onboarding_drafts")

type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Load(owner string) (*onboarding.Draft, error) {
	var draft *onboarding.Draft
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(owner))
		if raw == nil {
			return nil
		}
		draft = &onboarding.Draft{}
		return json.Unmarshal(raw, draft)
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *Store) Save(owner string, draft *onboarding.Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(owner), raw)
	})
}

func (s *Store) Clear(owner string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(owner))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
