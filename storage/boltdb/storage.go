package boltdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"git.sr.ht/~mariusor/vevents/ics"
	"git.sr.ht/~mariusor/vevents/storage"
)

type LoggerFn func(string, ...interface{})

type repo struct {
	d    *bolt.DB
	root []byte
	path string
	log  LoggerFn
	err  LoggerFn
}

const (
	rootBucket = "events"

	// DefaultFile is the database file name inside the storage path.
	DefaultFile = "vevents.bdb"
)

// Config
type Config struct {
	Path  string
	LogFn LoggerFn
	ErrFn LoggerFn
}

// New returns a new events repository
func New(c Config) *repo {
	b := repo{
		root: []byte(rootBucket),
		path: c.Path,
		log:  func(string, ...interface{}) {},
		err:  func(string, ...interface{}) {},
	}
	if c.ErrFn != nil {
		b.err = c.ErrFn
	}
	if c.LogFn != nil {
		b.log = c.LogFn
	}

	return &b
}

func (r *repo) open() error {
	var err error
	r.d, err = bolt.Open(r.path, 0600, nil)
	if err != nil {
		return fmt.Errorf("could not open db %s %w", r.path, err)
	}
	err = r.d.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(r.root)
		if err != nil {
			return fmt.Errorf("unable to create root bucket %s: %w", r.root, err)
		}
		if !root.Writable() {
			return fmt.Errorf("non writeable root bucket %s", r.root)
		}
		return nil
	})
	return err
}

// Close closes the boltdb database if possible.
func (r *repo) close() error {
	if r.d == nil {
		return nil
	}
	return r.d.Close()
}

// LoadEvent returns the stored event with the given UID starting at
// date, if any.
func (r *repo) LoadEvent(uid string, date time.Time) (ics.Event, bool) {
	events, err := r.LoadEvents(storage.DateCursor{T: date, D: time.Hour})
	if err != nil {
		r.err("error loading events: %s", err)
	}
	for _, event := range events {
		if event.UID == uid {
			return event, true
		}
	}
	return ics.Event{}, false
}

// LoadEvents returns every stored event starting inside the cursor's
// window.
func (r *repo) LoadEvents(cursor storage.DateCursor) (ics.Events, error) {
	var err error
	err = r.open()
	if err != nil {
		return nil, err
	}
	defer r.close()
	return loadFromBucket(r.d, r.root, cursor)
}

// loadFromBucketRecursive scans one bucket level. min and max are the
// remaining path segments of the window's edges: only the edge child
// buckets stay constrained, everything strictly between them is loaded
// whole.
func loadFromBucketRecursive(b *bolt.Bucket, min, max []byte) ics.Events {
	events := make(ics.Events, 0)

	minHead, minRest := splitPath(min)
	maxHead, maxRest := splitPath(max)

	c := b.Cursor()

	first := func() ([]byte, []byte) { return c.First() }
	compare := func(k []byte) bool { return k != nil }
	if minHead != nil {
		first = func() ([]byte, []byte) { return c.Seek(minHead) }
	}
	if maxHead != nil {
		compare = func(k []byte) bool { return k != nil && bytes.Compare(k, maxHead) <= 0 }
	}
	for key, raw := first(); compare(key); key, raw = c.Next() {
		if raw == nil {
			// this is a bucket mate: descend!
			var cmin, cmax []byte
			if bytes.Equal(key, minHead) {
				cmin = minRest
			}
			if bytes.Equal(key, maxHead) {
				cmax = maxRest
			}
			events = append(events, loadFromBucketRecursive(b.Bucket(key), cmin, cmax)...)
		} else {
			ev, err := loadItem(raw)
			if err == nil {
				events = append(events, ev)
			}
		}
	}

	return events
}

func splitPath(path []byte) ([]byte, []byte) {
	if len(path) == 0 {
		return nil, nil
	}
	if i := bytes.Index(path, pathSeparator); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, nil
}

func loadFromBucket(db *bolt.DB, root []byte, cursor storage.DateCursor) (ics.Events, error) {
	events := make(ics.Events, 0)

	err := db.View(func(tx *bolt.Tx) error {
		rb := tx.Bucket(root)
		if rb == nil {
			return fmt.Errorf("invalid bucket %s", root)
		}

		min, max := getCursorPaths(cursor)
		b, min, max := descendToLastCommonBucket(rb, min, max)
		events = append(events, loadFromBucketRecursive(b, min, max)...)
		return nil
	})

	return events, err
}

func loadItem(raw []byte) (ics.Event, error) {
	ev := ics.Event{}
	if len(raw) == 0 {
		return ev, fmt.Errorf("empty raw item")
	}
	err := json.Unmarshal(raw, &ev)
	return ev, err
}

var pathSeparator = []byte{'/'}

func getCursorPaths(c storage.DateCursor) ([]byte, []byte) {
	var min, max []byte
	if c.D < 0 {
		max = itemBucketPath(c.T)
		min = itemBucketPath(c.T.Add(c.D))
	} else {
		min = itemBucketPath(c.T)
		max = itemBucketPath(c.T.Add(c.D))
	}
	return min, max
}

// itemBucketPath buckets on the UTC instant so that saving and loading
// agree regardless of the wall clock zone a caller carries. Naive
// date-times already live in the UTC location, their wall clock is kept.
func itemBucketPath(date time.Time) []byte {
	date = date.UTC()
	pathEl := make([][]byte, 0)

	pathEl = append(pathEl, []byte(date.Format("06")))
	pathEl = append(pathEl, []byte(date.Format("01")))
	pathEl = append(pathEl, []byte(date.Format("02")))
	pathEl = append(pathEl, []byte(date.Format("15")))
	pathEl = append(pathEl, []byte(date.Format("04")))

	return bytes.Join(pathEl, pathSeparator)
}

func descendToLastCommonBucket(root *bolt.Bucket, min, max []byte) (*bolt.Bucket, []byte, []byte) {
	minPieces := bytes.Split(min, pathSeparator)
	maxPieces := bytes.Split(max, pathSeparator)

	b := root
	lvl := 0
	// the lengths are the same: both paths come from itemBucketPath
	for i, k := range minPieces {
		if !bytes.Equal(k, maxPieces[i]) {
			break
		}
		cb := b.Bucket(k)
		if cb == nil {
			break
		}
		lvl = i + 1
		b = cb
	}
	min = bytes.Join(minPieces[lvl:], pathSeparator)
	max = bytes.Join(maxPieces[lvl:], pathSeparator)
	return b, min, max
}

func descendInBucket(root *bolt.Bucket, path []byte, create bool) (*bolt.Bucket, []byte, error) {
	if root == nil {
		return nil, path, fmt.Errorf("trying to descend into nil bucket")
	}
	if len(path) == 0 {
		return root, path, nil
	}
	buckets := bytes.Split(path, pathSeparator)

	lvl := 0
	b := root
	// descend the bucket tree up to the last found bucket
	for _, name := range buckets {
		lvl++
		if len(name) == 0 {
			continue
		}
		if b == nil {
			return root, path, fmt.Errorf("trying to load from nil bucket")
		}
		var cb *bolt.Bucket
		if create {
			cb, _ = b.CreateBucketIfNotExists(name)
		} else {
			cb = b.Bucket(name)
		}
		if cb == nil {
			lvl--
			break
		}
		b = cb
	}
	path = bytes.Join(buckets[lvl:], pathSeparator)

	return b, path, nil
}

// SaveEvents
func (r *repo) SaveEvents(events ics.Events) error {
	var err error
	err = r.open()
	if err != nil {
		return err
	}
	defer r.close()

	for _, ev := range events {
		ev, err = save(r, ev)
		if err != nil {
			r.err("Error saving event %s: %s", ev.UID, err)
		}
	}
	return err
}

// SaveEvent
func (r *repo) SaveEvent(ev ics.Event) error {
	var err error
	err = r.open()
	if err != nil {
		return err
	}
	defer r.close()

	_, err = save(r, ev)
	return err
}

func save(r *repo, ev ics.Event) (ics.Event, error) {
	path := itemBucketPath(ev.DTStart.Time)

	err := r.d.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(r.root)
		if root == nil {
			return fmt.Errorf("invalid bucket %s", r.root)
		}
		if !root.Writable() {
			return fmt.Errorf("non writeable bucket %s", r.root)
		}
		b, path, err := descendInBucket(root, path, true)
		if err != nil {
			return fmt.Errorf("unable to find %s in root bucket: %w", path, err)
		}
		if !b.Writable() {
			return fmt.Errorf("non writeable bucket %s", path)
		}
		entryBytes, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("could not marshal object: %w", err)
		}
		err = b.Put([]byte(ev.UID), entryBytes)
		if err != nil {
			return fmt.Errorf("could not store encoded object: %w", err)
		}

		return nil
	})

	return ev, err
}
