package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"weighttrack/internal/domain"
	"weighttrack/internal/logging"
)

var (
	// ErrBusy is returned when a submit or remove is attempted while another
	// one is still in flight.
	ErrBusy = errors.New("another request is in progress")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("tracker closed")
)

// FormMode is the intent of the next submit.
type FormMode int

const (
	ModeCreate FormMode = iota
	ModeEditing
)

func (m FormMode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "create"
}

// FormState is the pending user input. An empty EditingID means Create mode.
type FormState struct {
	Weight    string
	Date      string
	EditingID string
}

// Mode reports whether the form creates a new entry or edits EditingID.
func (f FormState) Mode() FormMode {
	if f.EditingID != "" {
		return ModeEditing
	}
	return ModeCreate
}

// Tracker owns the local copy of the weight collection and the form state,
// and keeps the former in sync with the store of record. The collection is
// only ever replaced by a successful list call; mutations are never applied
// locally.
type Tracker struct {
	store    domain.WeightStore
	notifier domain.Notifier
	log      *zap.Logger

	refreshes singleflight.Group

	mu       sync.Mutex
	entries  []domain.WeightEntry
	form     FormState
	inFlight bool
	closed   bool

	// generation counts successful mutations. Refreshes only share a list
	// request within one generation, and a result older than the applied
	// one is dropped.
	generation uint64
	applied    uint64
}

// NewTracker creates a Tracker backed by the given store. A nil notifier or
// logger is replaced by a no-op.
func NewTracker(store domain.WeightStore, notifier domain.Notifier, logger *zap.Logger) *Tracker {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		store:    store,
		notifier: notifier,
		log:      logger,
		entries:  []domain.WeightEntry{},
	}
}

// Init performs the startup refresh. A failure is notified like any other
// refresh failure and returned; the tracker stays usable with an empty
// collection.
func (t *Tracker) Init(ctx context.Context) error {
	t.log.Debug("initial refresh", zap.String(logging.FieldOperation, logging.OpStartup))
	return t.Refresh(ctx)
}

// Close releases the tracker. Every later operation returns ErrClosed.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

// Entries returns a copy of the local collection in store order.
func (t *Tracker) Entries() []domain.WeightEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.WeightEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Form returns the current form state.
func (t *Tracker) Form() FormState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.form
}

// Mode returns the current form mode.
func (t *Tracker) Mode() FormMode {
	return t.Form().Mode()
}

// Busy reports whether a submit or remove is in flight.
func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight
}

// SetWeight sets the pending weight input.
func (t *Tracker) SetWeight(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.form.Weight = s
}

// SetDate sets the pending date input.
func (t *Tracker) SetDate(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.form.Date = s
}

// BeginEdit loads entry into the form and switches to Editing mode. Any
// previous form content is discarded.
func (t *Tracker) BeginEdit(entry domain.WeightEntry) {
	date, err := domain.CanonicalDate(entry.Date)
	if err != nil {
		date = entry.Date
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.form = FormState{
		Weight:    strconv.FormatFloat(entry.Weight, 'f', -1, 64),
		Date:      date,
		EditingID: entry.ID,
	}
}

// CancelEdit clears the form and returns to Create mode.
func (t *Tracker) CancelEdit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.form = FormState{}
}

// Refresh replaces the local collection with the store's. Concurrent calls
// share one request unless a mutation succeeded in between. On failure the
// collection is left as it was.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	gen := t.generation
	t.mu.Unlock()

	key := "list:" + strconv.FormatUint(gen, 10)
	v, err, _ := t.refreshes.Do(key, func() (any, error) {
		return t.store.List(ctx)
	})
	if err != nil {
		t.fail(logging.OpList, "Failed to load weight entries", err)
		return err
	}
	entries := v.([]domain.WeightEntry)

	t.mu.Lock()
	if gen < t.applied {
		t.mu.Unlock()
		t.log.Debug("stale list dropped", zap.Uint64("generation", gen))
		return nil
	}
	t.entries = append(make([]domain.WeightEntry, 0, len(entries)), entries...)
	t.applied = gen
	t.mu.Unlock()

	t.log.Debug("collection refreshed", zap.Int(logging.FieldCount, len(entries)))
	return nil
}

// Submit sends the form to the store: a create in Create mode, an update of
// EditingID in Editing mode. A form with an empty field is ignored without a
// request or notification. On success the form is reset and the collection
// refreshed; on failure the form is kept so the user can retry. Form edits
// made while the request is in flight survive a successful submit.
func (t *Tracker) Submit(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	form := t.form
	if strings.TrimSpace(form.Weight) == "" || strings.TrimSpace(form.Date) == "" {
		t.mu.Unlock()
		return nil
	}
	if t.inFlight {
		t.mu.Unlock()
		t.log.Debug("submit rejected", zap.Error(ErrBusy))
		return ErrBusy
	}

	in, verr := parseForm(form)
	if verr != nil {
		t.mu.Unlock()
		t.log.Info("submit rejected",
			zap.String(logging.FieldOperation, logging.OpValidate),
			zap.String(logging.FieldErrorType, logging.ErrorTypeValidation),
			zap.Error(verr))
		t.notifier.Notify(domain.Notification{Kind: domain.NotifyError, Message: verr.Error()})
		return verr
	}
	t.inFlight = true
	t.mu.Unlock()

	var err error
	op, verb := logging.OpCreate, "added"
	if form.Mode() == ModeEditing {
		op, verb = logging.OpUpdate, "updated"
		_, err = t.store.Update(ctx, form.EditingID, in)
	} else {
		_, err = t.store.Create(ctx, in)
	}

	t.mu.Lock()
	t.inFlight = false
	if err == nil {
		t.generation++
		if t.form == form {
			t.form = FormState{}
		}
	}
	t.mu.Unlock()

	if err != nil {
		t.fail(op, "Failed to save weight entry", err)
		return err
	}

	t.log.Info("entry saved",
		zap.String(logging.FieldOperation, op),
		zap.String(logging.FieldEntryID, form.EditingID))
	t.notifier.Notify(domain.Notification{
		Kind:    domain.NotifySuccess,
		Message: fmt.Sprintf("Weight entry %s successfully!", verb),
	})
	_ = t.Refresh(ctx)
	return nil
}

// Remove deletes the entry with the given id from the store and then
// refreshes. The local collection only changes through that refresh.
func (t *Tracker) Remove(ctx context.Context, id string) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.inFlight {
		t.mu.Unlock()
		t.log.Debug("remove rejected", zap.Error(ErrBusy))
		return ErrBusy
	}
	t.inFlight = true
	t.mu.Unlock()

	err := t.store.Delete(ctx, id)

	t.mu.Lock()
	t.inFlight = false
	if err == nil {
		t.generation++
	}
	t.mu.Unlock()

	if err != nil {
		t.fail(logging.OpDelete, "Failed to delete weight entry", err)
		return err
	}

	t.log.Info("entry deleted", zap.String(logging.FieldEntryID, id))
	t.notifier.Notify(domain.Notification{Kind: domain.NotifySuccess, Message: "Weight entry deleted successfully!"})
	_ = t.Refresh(ctx)
	return nil
}

// fail logs err and reports it on the notification channel.
func (t *Tracker) fail(op, msg string, err error) {
	t.log.Warn(msg,
		zap.String(logging.FieldOperation, op),
		zap.String(logging.FieldErrorType, errorType(err)),
		zap.Error(err))
	t.notifier.Notify(domain.Notification{Kind: domain.NotifyError, Message: msg + ": " + describe(err)})
}

func parseForm(f FormState) (domain.WeightInput, error) {
	raw := strings.TrimSpace(f.Weight)
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || strings.ContainsAny(raw, "xX") {
		return domain.WeightInput{}, &domain.ValidationError{Field: "weight", Reason: fmt.Sprintf("%q is not a number", f.Weight)}
	}
	date, err := domain.CanonicalDate(f.Date)
	if err != nil {
		return domain.WeightInput{}, &domain.ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a date", f.Date)}
	}
	return domain.WeightInput{Weight: w, Date: date}, nil
}

func errorType(err error) string {
	var (
		nerr *domain.NetworkError
		serr *domain.ServerError
	)
	switch {
	case errors.As(err, &nerr) && nerr.Timeout():
		return logging.ErrorTypeTimeout
	case errors.As(err, &nerr):
		return logging.ErrorTypeNetwork
	case errors.As(err, &serr):
		return logging.ErrorTypeServer
	case errors.Is(err, domain.ErrNotFound):
		return logging.ErrorTypeNotFound
	}
	return logging.ErrorTypeInternal
}

// describe turns err into a short user-facing reason.
func describe(err error) string {
	var (
		nerr *domain.NetworkError
		serr *domain.ServerError
	)
	switch {
	case errors.As(err, &nerr) && nerr.Timeout():
		return "the server did not respond in time"
	case errors.As(err, &nerr):
		return "could not reach the server"
	case errors.As(err, &serr) && serr.Message != "":
		return fmt.Sprintf("server error %d (%s)", serr.StatusCode, serr.Message)
	case errors.As(err, &serr):
		return fmt.Sprintf("server error %d", serr.StatusCode)
	}
	return err.Error()
}
