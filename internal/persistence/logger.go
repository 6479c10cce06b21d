package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/values"
	fileatomic "github.com/natefinch/atomic"
	bolt "go.etcd.io/bbolt"
)

// batchSize is the number of entries after which the writer commits without an explicit flush
const batchSize = 512

var ErrQueueFull = errors.New("data log queue is full")

type Config struct {
	DbPath string
	// MaxFileSize is the size in bytes at which the data log is rotated, 0 disables rotation
	MaxFileSize int64
	// MinFreeDiskSpace in bytes, logging is disabled when less space is available
	MinFreeDiskSpace uint64
	// BufferSize is the number of entries queued before new entries are dropped
	BufferSize int
}

// WaveformRecord is a single iteration of the control loop
type WaveformRecord struct {
	Sensors  values.SensorValues  `json:"sensors"`
	Controls values.ControlValues `json:"controls"`
}

type entry struct {
	bucket string
	value  interface{}
}

type command int

const (
	flushCommand command = iota
	rotateCommand
	closeCommand
)

// DataLogger writes the data of the control loop into a bolt database.
// Entries are queued and written by a separate goroutine, so storing never blocks.
type DataLogger struct {
	config Config

	entries  chan entry
	commands chan command
	done     chan struct{}

	// only accessed by the writer goroutine, nil while logging is disabled
	db *bolt.DB

	closeOnce sync.Once
	closed    atomic.Bool
	written   atomic.Uint64
	dropped   atomic.Uint64
	rotations atomic.Uint64
}

// Open prepares the data log at config.DbPath and starts its writer
func Open(config Config) (*DataLogger, error) {
	if len(config.DbPath) <= 0 {
		return nil, errors.New("missing path of the data log")
	}
	if err := prepareDirectory(config.DbPath); err != nil {
		return nil, fmt.Errorf("unable to create directory of data log: %w", err)
	}
	if err := checkFreeSpace(config.DbPath, config.MinFreeDiskSpace); err != nil {
		return nil, err
	}
	db, err := openDatabase(config.DbPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open data log %s: %w", config.DbPath, err)
	}

	bufferSize := config.BufferSize
	if bufferSize < 1 {
		bufferSize = batchSize
	}
	l := &DataLogger{
		config:   config,
		entries:  make(chan entry, bufferSize),
		commands: make(chan command, 4),
		done:     make(chan struct{}),
		db:       db,
	}
	go l.run()
	ui.Info("Logging data to %s", config.DbPath)
	return l, nil
}

func (l *DataLogger) StoreWaveformData(sensors values.SensorValues, controls values.ControlValues) {
	l.enqueue(entry{bucket: BucketWaveforms, value: WaveformRecord{Sensors: sensors, Controls: controls}})
}

func (l *DataLogger) StoreDerivedData(derived values.DerivedValues) {
	l.enqueue(entry{bucket: BucketDerived, value: derived})
}

func (l *DataLogger) StoreControlCommand(setting values.ControlSetting) {
	l.enqueue(entry{bucket: BucketControls, value: setting})
}

// Flush requests all queued entries to be written
func (l *DataLogger) Flush() error {
	return l.request(flushCommand)
}

// Rotate requests a flush, after which the data log is rotated if it exceeds its maximum size
func (l *DataLogger) Rotate() error {
	return l.request(rotateCommand)
}

// Close writes all queued entries and closes the database
func (l *DataLogger) Close() error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		l.commands <- closeCommand
	})
	<-l.done
	return nil
}

// Written returns the number of entries committed to the database
func (l *DataLogger) Written() uint64 {
	return l.written.Load()
}

// Dropped returns the number of entries lost because the queue was full or logging was disabled
func (l *DataLogger) Dropped() uint64 {
	return l.dropped.Load()
}

func (l *DataLogger) Rotations() uint64 {
	return l.rotations.Load()
}

func (l *DataLogger) enqueue(e entry) {
	if l.closed.Load() {
		return
	}
	select {
	case l.entries <- e:
	default:
		if l.dropped.Add(1)%1000 == 1 {
			ui.Warning("Data log queue is full, dropping entries (%d so far)", l.dropped.Load())
		}
	}
}

func (l *DataLogger) request(c command) error {
	if l.closed.Load() {
		return errors.New("data log is closed")
	}
	select {
	case l.commands <- c:
		return nil
	default:
		return ErrQueueFull
	}
}

// run is the writer goroutine, the only one accessing the database
func (l *DataLogger) run() {
	defer close(l.done)
	batch := make([]entry, 0, batchSize)
	for {
		select {
		case e := <-l.entries:
			batch = append(batch, e)
			if len(batch) >= batchSize {
				batch = l.write(batch)
			}
		case c := <-l.commands:
			batch = l.drain(batch)
			batch = l.write(batch)
			switch c {
			case rotateCommand:
				l.rotateIfNecessary(time.Now())
			case closeCommand:
				if l.db != nil {
					if err := l.db.Close(); err != nil {
						ui.Warning("Unable to close data log: %v", err)
					}
					l.db = nil
				}
				return
			}
		}
	}
}

// drain moves all currently queued entries into the batch
func (l *DataLogger) drain(batch []entry) []entry {
	for {
		select {
		case e := <-l.entries:
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

// write commits the given entries in a single transaction and returns the emptied batch
func (l *DataLogger) write(batch []entry) []entry {
	if len(batch) == 0 {
		return batch
	}
	if l.db == nil {
		l.dropped.Add(uint64(len(batch)))
		return batch[:0]
	}

	err := l.db.Update(func(tx *bolt.Tx) error {
		for _, e := range batch {
			b := tx.Bucket([]byte(e.bucket))
			if b == nil {
				return fmt.Errorf("missing bucket %s", e.bucket)
			}
			data, err := json.Marshal(e.value)
			if err != nil {
				ui.Warning("Unable to encode %s entry: %v", e.bucket, err)
				continue
			}
			id, err := b.NextSequence()
			if err != nil {
				return err
			}
			if err = b.Put(itob(id), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		ui.Error("Unable to write %d entries to data log: %v", len(batch), err)
		l.dropped.Add(uint64(len(batch)))
	} else {
		l.written.Add(uint64(len(batch)))
	}
	return batch[:0]
}

// rotateIfNecessary moves the data log aside once it exceeds its maximum size
// and disables logging when the disk is running full.
func (l *DataLogger) rotateIfNecessary(now time.Time) {
	if l.db == nil {
		return
	}

	if err := checkFreeSpace(l.config.DbPath, l.config.MinFreeDiskSpace); err != nil {
		ui.ErrorAndNotify("Data logging disabled", "Disabling data log: %v", err)
		_ = l.db.Close()
		l.db = nil
		return
	}

	if l.config.MaxFileSize <= 0 {
		return
	}
	info, err := os.Stat(l.config.DbPath)
	if err != nil {
		ui.Warning("Unable to determine size of data log: %v", err)
		return
	}
	if info.Size() < l.config.MaxFileSize {
		return
	}

	target := rotatedPath(l.config.DbPath, now)
	ui.Info("Rotating data log of %s to %s", humanize.IBytes(uint64(info.Size())), target)
	if err = l.db.Close(); err != nil {
		ui.Warning("Unable to close data log: %v", err)
	}
	l.db = nil
	if err = fileatomic.ReplaceFile(l.config.DbPath, target); err != nil {
		ui.Error("Unable to rotate data log: %v", err)
	} else {
		l.rotations.Add(1)
	}

	db, err := openDatabase(l.config.DbPath)
	if err != nil {
		ui.ErrorAndNotify("Data logging disabled", "Unable to reopen data log: %v", err)
		return
	}
	l.db = db
}
