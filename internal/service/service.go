package service

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . EmergencyService,AuthService,ArrivalWriter,HistoryRepository,Notifier,Emitter

import (
	"context"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

// EmergencyRepository транзакционные операции над вызовом и связанной доступностью спасателя
type EmergencyRepository interface {
	Create(ctx context.Context, e *models.Emergency) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Emergency, error)
	Assign(ctx context.Context, emergencyID, responderID uuid.UUID, check models.AssignCheck) (*models.Emergency, error)
	Mutate(ctx context.Context, id uuid.UUID, fn models.MutateFunc) (*models.Emergency, error)
	SetResponderStatus(ctx context.Context, responderID uuid.UUID, status models.ResponderStatus) error
}

// ArrivalWriter три ступени записи статуса прибытия
type ArrivalWriter interface {
	SetStatus(ctx context.Context, w models.StatusWrite) error
	ForceStatus(ctx context.Context, w models.StatusWrite) error
	EnsureStatus(ctx context.Context, w models.StatusWrite) (models.EmergencyStatus, error)
}

// HistoryRepository журнал аудита
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.HistoryEntry) error
	ListFor(ctx context.Context, emergencyID uuid.UUID) ([]*models.HistoryEntry, error)
	ListAllSummaries(ctx context.Context, limit int) ([]*models.HistorySummary, error)
}

// DirectQuery чтения через выделенный пул
type DirectQuery interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	EmergencyContext(ctx context.Context, userID uuid.UUID) (*models.EmergencyContext, error)
	ActiveEmergencyForReporter(ctx context.Context, reporterID uuid.UUID) (*uuid.UUID, error)
	ListPending(ctx context.Context) ([]*models.PendingEmergency, error)
	ListActive(ctx context.Context) ([]*models.Emergency, error)
	ListFraud(ctx context.Context) ([]*models.Emergency, error)
	StaffIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Notifier ставит уведомление пользователю в очередь доставки
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Emitter рассылает событие подключенным клиентам
type Emitter interface {
	Emit(ctx context.Context, ev models.RealtimeEvent) error
}

// UserDirectory поиск пользователей для входа и проверки токена
type UserDirectory interface {
	FindCredentialedUser(ctx context.Context, email string) (*models.CredentialedUser, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenManager выпуск и проверка bearer-токенов
type TokenManager interface {
	Issue(user *models.User) (string, error)
	Verify(token string) (uuid.UUID, error)
}

// EmergencyService жизненный цикл вызова. Каждая операция выполняется от имени actor.
type EmergencyService interface {
	CreateEmergency(ctx context.Context, actor models.Actor, in models.NewEmergency) (*models.Emergency, error)
	AssignResponder(ctx context.Context, actor models.Actor, emergencyID, responderID uuid.UUID) (*models.Emergency, error)
	AcceptAssignment(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error)
	MarkArrived(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error)
	ResolveEmergency(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error)
	UpdateResponderLocation(ctx context.Context, actor models.Actor, emergencyID uuid.UUID, loc models.Location) (*models.Emergency, error)
	MarkFraud(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error)
	UnmarkFraud(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error)
	GetEmergency(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error)
	MyActiveEmergency(ctx context.Context, actor models.Actor) (*models.Emergency, error)
	GetHistory(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) ([]*models.HistoryEntry, error)
	ListHistorySummaries(ctx context.Context, actor models.Actor, limit int) ([]*models.HistorySummary, error)
	ListPending(ctx context.Context, actor models.Actor) ([]*models.PendingEmergency, error)
	ListActive(ctx context.Context, actor models.Actor) ([]*models.Emergency, error)
	ListFraud(ctx context.Context, actor models.Actor) ([]*models.Emergency, error)
	SetResponderStatus(ctx context.Context, actor models.Actor, status models.ResponderStatus) error
}

// AuthService вход по паролю и разрешение bearer-токена в пользователя
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Authenticate(ctx context.Context, token string) (models.Actor, error)
}
