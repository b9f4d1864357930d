// Package persistence serializes a Sheet's cell texts to and from an
// embedded bbolt database, as a snapshot save/load pair around an
// in-memory sheet.Sheet.
package persistence

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
	"go.etcd.io/bbolt"

	"github.com/gosheetlab/sheetcore/internal/position"
	"github.com/gosheetlab/sheetcore/internal/sheet"
)

// cellRecord is the JSON payload stored per cell.
type cellRecord struct {
	Text string `json:"text"`
}

type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bbolt db %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSheet snapshots every non-empty cell's text into sheetID's bucket,
// replacing whatever was there before.
func (s *Store) SaveSheet(sheetID string, sht *sheet.Sheet) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucketID := []byte(sheetID)

		if err := tx.DeleteBucket(bucketID); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}

		bucket, err := tx.CreateBucket(bucketID)
		if err != nil {
			return err
		}

		var marshalErr error
		sht.Each(func(pos position.Position, c *sheet.Cell) {
			if marshalErr != nil {
				return
			}

			text := c.GetText()
			if text == "" {
				return
			}

			payload, err := sonic.Marshal(cellRecord{Text: text})
			if err != nil {
				marshalErr = err
				return
			}

			marshalErr = bucket.Put([]byte(pos.String()), payload)
		})

		return marshalErr
	})
}

// SaveCell persists a single cell's text, for the common case of
// persisting one write at a time instead of re-snapshotting the sheet.
func (s *Store) SaveCell(sheetID string, pos position.Position, text string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(sheetID))
		if err != nil {
			return err
		}

		if text == "" {
			return bucket.Delete([]byte(pos.String()))
		}

		payload, err := sonic.Marshal(cellRecord{Text: text})
		if err != nil {
			return err
		}

		return bucket.Put([]byte(pos.String()), payload)
	})
}

// LoadSheet replays sheetID's snapshot into sht via SetCell, so dependency
// edges and caches are rebuilt exactly as if the writes had just happened.
func (s *Store) LoadSheet(sheetID string, sht *sheet.Sheet) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sheetID))
		if bucket == nil {
			return nil
		}

		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			pos, err := position.Parse(string(k))
			if err != nil {
				return fmt.Errorf("corrupt snapshot key %q: %w", k, err)
			}

			var record cellRecord
			if err := sonic.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("corrupt snapshot value at %q: %w", k, err)
			}

			if err := sht.SetCell(pos, record.Text); err != nil {
				return fmt.Errorf("replay %s: %w", pos, err)
			}
		}

		return nil
	})
}
