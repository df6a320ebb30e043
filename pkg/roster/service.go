package roster

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// SessionNumber selects one of the two attendance columns.
type SessionNumber int

const (
	FirstSession  SessionNumber = 1
	SecondSession SessionNumber = 2
)

func ParseSessionNumber(s string) (SessionNumber, error) {
	switch s {
	case "1", "first":
		return FirstSession, nil
	case "2", "second":
		return SecondSession, nil
	}
	return 0, newError(KindValidation, "toggle", fmt.Sprintf("unknown session %q", s), nil)
}

type ServiceOptions struct {
	// ConflictCheck rejects a save when the sheet changed after it was loaded.
	ConflictCheck bool
	// Collation is the language tag used to sort by name.
	Collation string
}

// Service runs one interaction per call: load the sheet, apply a single
// change, and write the whole sheet back if anything changed.
type Service struct {
	store *Store
	opts  ServiceOptions
}

func NewService(store *Store, opts ServiceOptions) *Service {
	if opts.Collation == "" {
		opts.Collation = "ja"
	}
	return &Service{store: store, opts: opts}
}

// View loads the roster and returns it sorted along with its stats. For
// an unknown mode the roster comes back in sheet order with the error.
func (s *Service) View(ctx context.Context, mode SortMode) (Roster, Stats, error) {
	r, err := s.store.Load(ctx)
	if err != nil {
		return r, Stats{}, err
	}
	sorted, err := Sort(r, mode, NewCollator(s.opts.Collation))
	return sorted, ComputeStats(r), err
}

// Refresh reloads the roster without changing it.
func (s *Service) Refresh(ctx context.Context) (Roster, error) {
	return s.store.Load(ctx)
}

func (s *Service) Add(ctx context.Context, name string) (Roster, Participant, error) {
	var added Participant
	r, _, err := s.apply(ctx, "add", func(r Roster) (Roster, bool, error) {
		out, p, changed, err := Add(r, name)
		added = p
		return out, changed, err
	})
	return r, added, err
}

func (s *Service) Edit(ctx context.Context, no int, first, second bool, comment string) (Roster, bool, error) {
	return s.apply(ctx, "edit", func(r Roster) (Roster, bool, error) {
		return Edit(r, no, first, second, comment)
	})
}

// Changes lists the fields of a partial edit. Nil fields keep the value on
// the sheet as read by the same interaction.
type Changes struct {
	FirstSession  *bool
	SecondSession *bool
	Comment       *string
}

// Patch is Edit with optional fields. The current values are taken from
// the load that the edit is applied to, not from an earlier read.
func (s *Service) Patch(ctx context.Context, no int, c Changes) (Roster, bool, error) {
	return s.apply(ctx, "edit", func(r Roster) (Roster, bool, error) {
		p, ok := r.Find(no)
		if !ok {
			return r, false, notFound("edit", no)
		}
		if c.FirstSession != nil {
			p.FirstSession = *c.FirstSession
		}
		if c.SecondSession != nil {
			p.SecondSession = *c.SecondSession
		}
		if c.Comment != nil {
			p.Comment = *c.Comment
		}
		return Edit(r, no, p.FirstSession, p.SecondSession, p.Comment)
	})
}

func (s *Service) Toggle(ctx context.Context, no int, which SessionNumber) (Roster, bool, error) {
	return s.apply(ctx, "toggle", func(r Roster) (Roster, bool, error) {
		switch which {
		case FirstSession:
			return ToggleFirst(r, no)
		case SecondSession:
			return ToggleSecond(r, no)
		}
		return r, false, newError(KindValidation, "toggle", fmt.Sprintf("unknown session %d", which), nil)
	})
}

func (s *Service) Delete(ctx context.Context, no int) (Roster, bool, error) {
	return s.apply(ctx, "delete", func(r Roster) (Roster, bool, error) {
		out, changed := Delete(r, no)
		return out, changed, nil
	})
}

// apply never saves after a failed load: writing back an empty roster
// would wipe the sheet. When the save fails the mutated roster is still
// returned, with changed set, but it is not on the sheet.
func (s *Service) apply(ctx context.Context, op string, fn func(Roster) (Roster, bool, error)) (Roster, bool, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return snap.Roster, false, err
	}
	out, changed, err := fn(snap.Roster)
	if err != nil {
		return out, false, err
	}
	if !changed {
		log.WithField("op", op).Debug("No change to save")
		return out, false, nil
	}
	if s.opts.ConflictCheck {
		err = s.store.SaveSnapshot(ctx, snap, out)
	} else {
		err = s.store.Save(ctx, out)
	}
	if err != nil {
		return out, true, err
	}
	log.WithFields(log.Fields{"op": op, "participants": len(out)}).Info("Roster updated")
	return out, true, nil
}
