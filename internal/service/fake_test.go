package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

type fakeUser struct {
	models.User
	Qualified            []models.EmergencyType
	SpecialCircumstances []string
	MedicalConditions    []string
}

// fakeStore хранилище в памяти с семантикой блокировок SQL-реализации:
// каждая транзакция выполняется под общим мьютексом.
type fakeStore struct {
	mu          sync.Mutex
	clock       time.Time
	emergencies map[uuid.UUID]*models.Emergency
	users       map[uuid.UUID]*fakeUser
	history     []*models.HistoryEntry

	appendErr  error
	setErr     error
	forceErr   error
	ensureErr  error
	ensureCall int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clock:       time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		emergencies: make(map[uuid.UUID]*models.Emergency),
		users:       make(map[uuid.UUID]*fakeUser),
	}
}

// tick монотонное время, чтобы порядок записей был однозначным
func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Millisecond)
	return f.clock
}

func (f *fakeStore) addUser(role models.Role, name string, opts ...func(*fakeUser)) models.Actor {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := &fakeUser{User: models.User{ID: uuid.New(), Name: name, Role: role, Email: name + "@example.com"}}
	if role == models.RoleResponder {
		u.ResponderStatus = models.ResponderAvailable
	}
	for _, opt := range opts {
		opt(u)
	}
	f.users[u.ID] = u
	return models.Actor{UserID: u.ID, Role: role, Name: name}
}

func (f *fakeStore) responderStatus(id uuid.UUID) models.ResponderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].ResponderStatus
}

func (f *fakeStore) emergency(id uuid.UUID) *models.Emergency {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emergencies[id].Clone()
}

func (f *fakeStore) activeFor(reporter uuid.UUID, except uuid.UUID) bool {
	for _, e := range f.emergencies {
		if e.ID != except && e.ReporterID == reporter && e.Active() {
			return true
		}
	}
	return false
}

// EmergencyRepository

func (f *fakeStore) Create(_ context.Context, e *models.Emergency) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.activeFor(e.ReporterID, uuid.Nil) {
		return apperr.ErrActiveEmergencyExists
	}
	now := f.tick()
	e.CreatedAt, e.UpdatedAt = now, now
	f.emergencies[e.ID] = e.Clone()
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.emergencies[id]
	if !ok {
		return nil, apperr.ErrEmergencyNotFound
	}
	return e.Clone(), nil
}

func (f *fakeStore) Assign(_ context.Context, emergencyID, responderID uuid.UUID, check models.AssignCheck) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.emergencies[emergencyID]
	if !ok {
		return nil, apperr.ErrEmergencyNotFound
	}
	u, ok := f.users[responderID]
	if !ok || u.Role != models.RoleResponder {
		return nil, apperr.ErrResponderNotFound
	}
	avail := &models.ResponderAvailability{
		ResponderID:    responderID,
		Name:           u.Name,
		Status:         u.ResponderStatus,
		QualifiedTypes: u.Qualified,
	}
	if err := check(current.Clone(), avail); err != nil {
		return nil, err
	}
	if u.ResponderStatus != models.ResponderAvailable {
		return nil, apperr.ErrResponderNotAvailable
	}
	u.ResponderStatus = models.ResponderOnDuty
	if current.ResponderID != nil && *current.ResponderID != responderID && current.Status.Engaged() {
		if prev, ok := f.users[*current.ResponderID]; ok && prev.ResponderStatus == models.ResponderOnDuty {
			prev.ResponderStatus = models.ResponderAvailable
		}
	}

	next := current.Clone()
	next.ResponderID = &responderID
	next.Status = models.StatusAssigned
	next.UpdatedAt = f.tick()
	f.emergencies[emergencyID] = next
	return next.Clone(), nil
}

func (f *fakeStore) Mutate(_ context.Context, id uuid.UUID, fn models.MutateFunc) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.emergencies[id]
	if !ok {
		return nil, apperr.ErrEmergencyNotFound
	}
	next := current.Clone()
	change, err := fn(next)
	if err != nil {
		return nil, err
	}
	if next.Active() && f.activeFor(next.ReporterID, next.ID) {
		return nil, apperr.ErrActiveEmergencyExists
	}
	next.UpdatedAt = f.tick()
	f.emergencies[id] = next
	if change != nil {
		if u, ok := f.users[change.ResponderID]; ok {
			u.ResponderStatus = change.Status
		}
	}
	return next.Clone(), nil
}

func (f *fakeStore) SetResponderStatus(_ context.Context, responderID uuid.UUID, status models.ResponderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[responderID]
	if !ok || u.Role != models.RoleResponder {
		return apperr.ErrResponderNotFound
	}
	if status != models.ResponderOnDuty {
		for _, e := range f.emergencies {
			if e.AssignedTo(responderID) && e.Status.Engaged() {
				return apperr.ErrResponderHasAssignment
			}
		}
	}
	u.ResponderStatus = status
	return nil
}

// ArrivalWriter

// writeStatus условная запись с той же логикой, что и UPDATE в репозитории
func (f *fakeStore) writeStatus(w models.StatusWrite) error {
	e, ok := f.emergencies[w.EmergencyID]
	if !ok {
		return apperr.ErrEmergencyNotFound
	}
	if e.Status == models.StatusResolved {
		return apperr.ErrEmergencyResolved
	}
	if !w.Permits(e) {
		return apperr.ErrForbidden.With("emergency %s is no longer assigned", w.EmergencyID)
	}
	e.Status = w.Status
	e.UpdatedAt = f.tick()
	return nil
}

func (f *fakeStore) SetStatus(_ context.Context, w models.StatusWrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	return f.writeStatus(w)
}

func (f *fakeStore) ForceStatus(_ context.Context, w models.StatusWrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forceErr != nil {
		return f.forceErr
	}
	return f.writeStatus(w)
}

func (f *fakeStore) EnsureStatus(_ context.Context, w models.StatusWrite) (models.EmergencyStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCall++
	if f.ensureErr != nil {
		return "", f.ensureErr
	}
	e, ok := f.emergencies[w.EmergencyID]
	if !ok {
		return "", apperr.ErrEmergencyNotFound
	}
	if e.Status == models.StatusResolved {
		return e.Status, nil
	}
	if err := f.writeStatus(w); err != nil {
		return "", err
	}
	return e.Status, nil
}

// HistoryRepository

func (f *fakeStore) Append(ctx context.Context, entry *models.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	c := *entry
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = f.tick()
	f.history = append(f.history, &c)
	return nil
}

func (f *fakeStore) ListFor(_ context.Context, emergencyID uuid.UUID) ([]*models.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*models.HistoryEntry, 0)
	for _, h := range f.history {
		if h.EmergencyID == emergencyID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAllSummaries(_ context.Context, limit int) ([]*models.HistorySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	last := make(map[uuid.UUID]*models.HistoryEntry)
	for _, h := range f.history {
		last[h.EmergencyID] = h
	}
	out := make([]*models.HistorySummary, 0, len(last))
	for id, h := range last {
		e := f.emergencies[id]
		out = append(out, &models.HistorySummary{
			EmergencyID:     id,
			EmergencyType:   e.Type,
			Status:          e.Status,
			EmergencyAt:     e.CreatedAt,
			LastEventType:   h.EventType,
			LastEventAt:     h.CreatedAt,
			LastEventDetail: h.Payload,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmergencyAt.After(out[j].EmergencyAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DirectQuery

func (f *fakeStore) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	c := u.User
	return &c, nil
}

func (f *fakeStore) EmergencyContext(_ context.Context, userID uuid.UUID) (*models.EmergencyContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return &models.EmergencyContext{
		Name:                 u.Name,
		Phone:                u.Phone,
		SpecialCircumstances: u.SpecialCircumstances,
		MedicalConditions:    u.MedicalConditions,
	}, nil
}

func (f *fakeStore) ActiveEmergencyForReporter(_ context.Context, reporterID uuid.UUID) (*uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.emergencies {
		if e.ReporterID == reporterID && e.Active() {
			id := e.ID
			return &id, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) sorted(keep func(e *models.Emergency) bool) []*models.Emergency {
	out := make([]*models.Emergency, 0)
	for _, e := range f.emergencies {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f *fakeStore) ListPending(context.Context) ([]*models.PendingEmergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*models.PendingEmergency, 0)
	for _, e := range f.sorted(func(e *models.Emergency) bool { return e.Status == models.StatusPending && !e.IsFraud }) {
		reporter := f.users[e.ReporterID]
		out = append(out, &models.PendingEmergency{Emergency: *e, ReporterName: reporter.Name, ReporterPhone: reporter.Phone})
	}
	return out, nil
}

func (f *fakeStore) ListActive(context.Context) ([]*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(e *models.Emergency) bool { return e.Active() }), nil
}

func (f *fakeStore) ListFraud(context.Context) ([]*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(e *models.Emergency) bool { return e.IsFraud }), nil
}

func (f *fakeStore) StaffIDs(context.Context) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uuid.UUID, 0)
	for id, u := range f.users {
		if u.Role == models.RoleAdmin || u.Role == models.RoleResponder {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// recorder собирает уведомления и события
type recorder struct {
	mu            sync.Mutex
	notifications []models.Notification
	events        []models.RealtimeEvent
	notifyErr     error
	emitErr       error
}

func (r *recorder) Notify(ctx context.Context, n models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	return r.notifyErr
}

func (r *recorder) Emit(ctx context.Context, ev models.RealtimeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.emitErr
}

func (r *recorder) eventNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		names = append(names, ev.Name)
	}
	return names
}

func (r *recorder) event(name string) (models.RealtimeEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Name == name {
			return ev, true
		}
	}
	return models.RealtimeEvent{}, false
}

func (r *recorder) notifiedUsers(typ string) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, n := range r.notifications {
		if n.Type == typ {
			ids = append(ids, n.UserID)
		}
	}
	return ids
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = nil
	r.events = nil
}
