package persistence

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/shirou/gopsutil/v4/disk"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketWaveforms = "waveforms"
	BucketDerived   = "derived"
	BucketControls  = "controls"
)

var Buckets = []string{BucketWaveforms, BucketDerived, BucketControls}

var ErrNotFound = errors.New("not found")

const openTimeout = time.Second

// prepareDirectory creates the parent directory of the given database path, if necessary
func prepareDirectory(dbPath string) error {
	parentDir := filepath.Dir(dbPath)
	_, err := os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating directory for data log: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
	}
	return err
}

// checkFreeSpace returns an error if the volume of the given path has less than minFree bytes available
func checkFreeSpace(dbPath string, minFree uint64) error {
	if minFree == 0 {
		return nil
	}
	usage, err := disk.Usage(filepath.Dir(dbPath))
	if err != nil {
		return fmt.Errorf("unable to determine free disk space: %w", err)
	}
	if usage.Free < minFree {
		return fmt.Errorf("only %s of disk space left, at least %s required",
			humanize.IBytes(usage.Free), humanize.IBytes(minFree))
	}
	return nil
}

func openDatabase(dbPath string) (*bolt.DB, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range Buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// rotatedPath is the name of a data log that has been rotated at the given time
func rotatedPath(dbPath string, now time.Time) string {
	return fmt.Sprintf("%s.%s", dbPath, now.Format("20060102-150405"))
}

// load reads the most recent entries of the given bucket, oldest first.
// A limit <= 0 loads all entries.
func load[T any](dbPath string, bucket string, limit int) ([]T, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, err
	}
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: openTimeout, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("unable to open data log %s: %w", dbPath, err)
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var result []T
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrNotFound
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil && (limit <= 0 || len(result) < limit); k, v = c.Prev() {
			var entry T
			if err := json.Unmarshal(v, &entry); err != nil {
				ui.Warning("Skipping corrupt entry %d of %s: %v", binary.BigEndian.Uint64(k), bucket, err)
				continue
			}
			result = append(result, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}
