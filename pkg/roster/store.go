package roster

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Table is the remote sheet as seen by the store. ReadAllRows returns one
// header-keyed record per data row. ReplaceAll clears the whole table and
// then writes header and rows in a single call.
type Table interface {
	ReadAllRows(ctx context.Context) ([]map[string]string, error)
	ReplaceAll(ctx context.Context, header []string, rows [][]string) error
}

// Store loads and saves the whole roster. It holds no roster state of its
// own: every interaction starts with a fresh Load.
type Store struct {
	table Table
}

func NewStore(table Table) *Store {
	return &Store{table: table}
}

// Snapshot is a loaded roster together with a fingerprint of the rows it
// was built from.
type Snapshot struct {
	Roster   Roster
	Revision string
}

// Load reads and normalizes the sheet. On failure the returned roster is
// empty and usable, and the error says whether the read or the data failed.
func (s *Store) Load(ctx context.Context) (Roster, error) {
	snap, err := s.LoadSnapshot(ctx)
	return snap.Roster, err
}

func (s *Store) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	records, err := s.table.ReadAllRows(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to read roster")
		return Snapshot{Roster: Roster{}}, newError(KindConnection, "load", "could not read the roster sheet", err)
	}
	r, err := Normalize(records)
	if err != nil {
		log.WithError(err).Error("Failed to normalize roster")
		return Snapshot{Roster: Roster{}}, err
	}
	log.WithField("participants", len(r)).Debug("Loaded roster")
	return Snapshot{Roster: r, Revision: revision(records)}, nil
}

// Save replaces the sheet with r. A failed save may leave the sheet empty
// if the clear went through and the write did not; the table decides.
func (s *Store) Save(ctx context.Context, r Roster) error {
	if err := s.table.ReplaceAll(ctx, Header(), r.ToRows()); err != nil {
		log.WithError(err).Error("Failed to save roster")
		return newError(KindSave, "save", "could not write the roster sheet", err)
	}
	log.WithField("participants", len(r)).Debug("Saved roster")
	return nil
}

// SaveSnapshot saves r only if the sheet still holds the rows snap was
// loaded from. The check and the replace are two calls, so a writer that
// slips in between them still wins.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot, r Roster) error {
	records, err := s.table.ReadAllRows(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to re-read roster before save")
		return newError(KindSave, "save", "could not verify the roster sheet", err)
	}
	if rev := revision(records); rev != snap.Revision {
		log.WithFields(log.Fields{"loaded": snap.Revision, "current": rev}).Warn("Roster changed since it was loaded")
		return newError(KindConflict, "save", "the roster was changed by someone else, reload and try again", nil)
	}
	return s.Save(ctx, r)
}

// revision fingerprints records independently of map iteration order.
func revision(records []map[string]string) string {
	h := sha256.New()
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.Write([]byte(k))
			h.Write([]byte{0})
			h.Write([]byte(rec[k]))
			h.Write([]byte{0})
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
