// Package records owns the shifts of one user's month and persists them as a
// single flat value per (user, month).
//
// Every mutation rewrites the whole partition. The in-memory sequence only
// changes after the write succeeded, so a failed save never leaves the store
// ahead of its file.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/elevatic20/worktime-app/internal/aggregate"
	"github.com/elevatic20/worktime-app/internal/logging"
	"github.com/elevatic20/worktime-app/internal/model"
	"github.com/elevatic20/worktime-app/internal/storage"
	"github.com/elevatic20/worktime-app/internal/timecalc"
)

var errCorrupt = errors.New("corrupt shift data")

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = logging.OrDiscard(l) }
}

// WithIDGenerator replaces the uuid generator used for new shifts.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// Store is the record store for one (user, month) partition.
type Store struct {
	blobs     storage.Blobs
	user      string
	month     timecalc.Month
	key       string
	log       *slog.Logger
	newID     func() string
	shifts    []model.Shift
	recovered bool
}

// Load returns the shifts persisted for user in month, sorted by date. A
// missing or unreadable partition yields an empty sequence.
func Load(ctx context.Context, b storage.Blobs, user string, month timecalc.Month) []model.Shift {
	key, err := storage.Key(user, month)
	if err != nil {
		return []model.Shift{}
	}
	shifts, err := read(ctx, b, key)
	if err != nil {
		return []model.Shift{}
	}
	return aggregate.SortByDate(shifts)
}

func read(ctx context.Context, b storage.Blobs, key string) ([]model.Shift, error) {
	data, err := b.Read(ctx, key)
	if errors.Is(err, storage.ErrNotExist) {
		return []model.Shift{}, nil
	}
	if err != nil {
		return []model.Shift{}, err
	}
	var shifts []model.Shift
	if err := json.Unmarshal(data, &shifts); err != nil {
		return []model.Shift{}, fmt.Errorf("%w in %s: %v", errCorrupt, key, err)
	}
	if shifts == nil {
		shifts = []model.Shift{}
	}
	return shifts, nil
}

// Open loads the partition for user and month for editing. A corrupt
// partition is quarantined, the store starts empty and Recovered reports
// true. Any other read error is returned. Shifts stored without an id get
// one, and the ids are saved right away.
func Open(ctx context.Context, b storage.Blobs, user string, month timecalc.Month, opts ...Option) (*Store, error) {
	key, err := storage.Key(user, month)
	if err != nil {
		return nil, err
	}
	s := &Store{
		blobs: b,
		user:  user,
		month: month,
		key:   key,
		log:   logging.Discard(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	shifts, err := read(ctx, b, key)
	switch {
	case err == nil:
	case errors.Is(err, errCorrupt):
		s.recovered = true
		backup, qerr := b.Quarantine(ctx, key)
		if qerr != nil {
			s.log.Warn("could not back up corrupt shift file", "key", key, "error", qerr)
		}
		s.log.Warn("corrupt shift file, starting empty", "key", key, "backup", backup, "error", err)
	default:
		// The partition may still hold good data; a save would replace it.
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	missing := 0
	for i := range shifts {
		if shifts[i].ID == "" {
			shifts[i].ID = s.newID()
			missing++
		}
	}
	s.shifts = aggregate.SortByDate(shifts)
	s.log.Debug("loaded shifts", "key", key, "count", len(s.shifts))

	if missing > 0 {
		if _, err := s.commit(ctx, s.shifts); err != nil {
			s.log.Warn("could not save assigned ids", "key", key, "count", missing, "error", err)
		} else {
			s.log.Info("assigned ids to shifts", "key", key, "count", missing)
		}
	}
	return s, nil
}

// User returns the owner of the partition.
func (s *Store) User() string { return s.user }

// Month returns the partition month.
func (s *Store) Month() timecalc.Month { return s.month }

// Key returns the storage key of the partition.
func (s *Store) Key() string { return s.key }

// Recovered reports whether Open discarded unreadable data.
func (s *Store) Recovered() bool { return s.recovered }

// Shifts returns a copy of the current sequence, sorted by date.
func (s *Store) Shifts() []model.Shift {
	out := make([]model.Shift, len(s.shifts))
	copy(out, s.shifts)
	return out
}

// Resolve finds a shift by full id or by a unique id prefix.
func (s *Store) Resolve(ref string) (model.Shift, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Shift{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	var matches []model.Shift
	for _, sh := range s.shifts {
		if sh.ID == ref {
			return sh, nil
		}
		if strings.HasPrefix(sh.ID, ref) {
			matches = append(matches, sh)
		}
	}
	switch len(matches) {
	case 0:
		return model.Shift{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.Shift{}, fmt.Errorf("%w: %s matches %d shifts", ErrAmbiguous, ref, len(matches))
	}
}

// Append validates in, adds it as a new shift and persists the partition.
func (s *Store) Append(ctx context.Context, in Input) ([]model.Shift, error) {
	sh, err := s.build(in, s.newID())
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, append(s.Shifts(), sh))
}

// Update replaces the shift with the given id, keeping the id.
func (s *Store) Update(ctx context.Context, id string, in Input) ([]model.Shift, error) {
	i := s.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.replace(ctx, i, in)
}

// Delete removes the shift with the given id.
func (s *Store) Delete(ctx context.Context, id string) ([]model.Shift, error) {
	i := s.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.remove(ctx, i)
}

// UpdateAt replaces the shift at position index of Shifts.
func (s *Store) UpdateAt(ctx context.Context, index int, in Input) ([]model.Shift, error) {
	if err := s.checkIndex(index); err != nil {
		return nil, err
	}
	return s.replace(ctx, index, in)
}

// DeleteAt removes the shift at position index of Shifts.
func (s *Store) DeleteAt(ctx context.Context, index int) ([]model.Shift, error) {
	if err := s.checkIndex(index); err != nil {
		return nil, err
	}
	return s.remove(ctx, index)
}

// Move applies in to the shift id of from when the edited date belongs to
// another month: the shift is appended to to under the same id, then deleted
// from from.
func Move(ctx context.Context, from, to *Store, id string, in Input) error {
	if from.key == to.key {
		_, err := from.Update(ctx, id, in)
		return err
	}
	if from.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sh, err := to.build(in, id)
	if err != nil {
		return err
	}
	if _, err := to.commit(ctx, append(to.Shifts(), sh)); err != nil {
		return err
	}
	if _, err := from.Delete(ctx, id); err != nil {
		return fmt.Errorf("shift copied to %s but not removed from %s: %w", to.month, from.month, err)
	}
	return nil
}

func (s *Store) build(in Input, id string) (model.Shift, error) {
	sh, err := in.Shift(id)
	if err != nil {
		return model.Shift{}, err
	}
	if !s.month.Contains(in.Date) {
		return model.Shift{}, fmt.Errorf("%w: %s is not in %s", ErrMonthMismatch, sh.Date, s.month)
	}
	return sh, nil
}

func (s *Store) replace(ctx context.Context, i int, in Input) ([]model.Shift, error) {
	sh, err := s.build(in, s.shifts[i].ID)
	if err != nil {
		return nil, err
	}
	next := s.Shifts()
	next[i] = sh
	return s.commit(ctx, next)
}

func (s *Store) remove(ctx context.Context, i int) ([]model.Shift, error) {
	next := make([]model.Shift, 0, len(s.shifts)-1)
	next = append(next, s.shifts[:i]...)
	next = append(next, s.shifts[i+1:]...)
	return s.commit(ctx, next)
}

func (s *Store) index(id string) int {
	for i, sh := range s.shifts {
		if sh.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) checkIndex(i int) error {
	if i < 0 || i >= len(s.shifts) {
		return fmt.Errorf("%w: %d (have %d shifts)", ErrIndexOutOfRange, i, len(s.shifts))
	}
	return nil
}

// commit sorts next, writes it and only then makes it the current sequence.
func (s *Store) commit(ctx context.Context, next []model.Shift) ([]model.Shift, error) {
	next = aggregate.SortByDate(next)
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return nil, &PersistenceError{Key: s.key, Err: err}
	}
	if err := s.blobs.Write(ctx, s.key, data); err != nil {
		s.log.Error("saving shifts failed", "key", s.key, "error", err)
		return nil, &PersistenceError{Key: s.key, Err: err}
	}
	s.shifts = next
	s.log.Debug("saved shifts", "key", s.key, "count", len(next))
	return s.Shifts(), nil
}
