package directquery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

const emergencyColumns = `
	e.id, e.type, e.description, e.latitude, e.longitude, e.priority, e.status, e.is_fraud,
	e.reporter_id, e.responder_id, e.responder_latitude, e.responder_longitude,
	e.created_at, e.updated_at, e.resolved_at`

// Service читает данные через отдельный пул database/sql.
// Используется для аутентификации и частых чтений, которые не должны конкурировать
// с долгими транзакциями основного пула.
type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// Ping проверка выделенного пула
func (s *Service) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Stats статистика пула для метрик
func (s *Service) Stats() sql.DBStats {
	return s.db.Stats()
}

// FindCredentialedUser ищет пользователя по email вместе с хешем пароля. Возвращает nil, nil, если не найден.
func (s *Service) FindCredentialedUser(ctx context.Context, email string) (*models.CredentialedUser, error) {
	var (
		u               models.CredentialedUser
		role            string
		responderStatus sql.NullString
		phone           sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, phone, role, responder_status, password_hash
		FROM users
		WHERE lower(email) = lower($1)
	`, strings.TrimSpace(email)).Scan(&u.ID, &u.Email, &u.Name, &phone, &role, &responderStatus, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	u.Phone = phone.String
	u.Role = models.ParseRole(role)
	u.ResponderStatus = models.ResponderStatus(responderStatus.String)
	return &u, nil
}

// FindUserByID разрешает идентификатор из токена в пользователя. Возвращает nil, nil, если не найден.
func (s *Service) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var (
		u               models.User
		role            string
		responderStatus sql.NullString
		phone           sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, phone, role, responder_status
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Name, &phone, &role, &responderStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	u.Phone = phone.String
	u.Role = models.ParseRole(role)
	u.ResponderStatus = models.ResponderStatus(responderStatus.String)
	return &u, nil
}

// EmergencyContext данные заявителя для расчета приоритета
func (s *Service) EmergencyContext(ctx context.Context, userID uuid.UUID) (*models.EmergencyContext, error) {
	var (
		c     models.EmergencyContext
		phone sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, phone, COALESCE(special_circumstances, '{}'), COALESCE(medical_conditions, '{}')
		FROM users
		WHERE id = $1
	`, userID).Scan(&c.Name, &phone, pq.Array(&c.SpecialCircumstances), pq.Array(&c.MedicalConditions))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrUserNotFound.With("user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to load emergency context: %w", err)
	}
	c.Phone = phone.String
	return &c, nil
}

// ActiveEmergencyForReporter возвращает id активного вызова заявителя или nil
func (s *Service) ActiveEmergencyForReporter(ctx context.Context, reporterID uuid.UUID) (*uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM emergencies
		WHERE reporter_id = $1 AND status <> 'resolved' AND NOT is_fraud
		LIMIT 1
	`, reporterID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check active emergency: %w", err)
	}
	return &id, nil
}

// ListPending очередь ожидания: только pending без пометки fraud, сначала самые старые
func (s *Service) ListPending(ctx context.Context) ([]*models.PendingEmergency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+emergencyColumns+`, u.name, u.phone
		FROM emergencies e
		JOIN users u ON u.id = e.reporter_id
		WHERE e.status = 'pending' AND NOT e.is_fraud
		ORDER BY e.created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending emergencies: %w", err)
	}
	defer rows.Close()

	out := make([]*models.PendingEmergency, 0)
	for rows.Next() {
		var (
			p     models.PendingEmergency
			phone sql.NullString
		)
		dest := append(emergencyDest(&p.Emergency), &p.ReporterName, &phone)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan pending emergency: %w", err)
		}
		p.ReporterPhone = phone.String
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error pending iteration: %w", err)
	}
	return out, nil
}

// ListActive все активные вызовы, сначала самые срочные
func (s *Service) ListActive(ctx context.Context) ([]*models.Emergency, error) {
	return s.listEmergencies(ctx, `
		SELECT`+emergencyColumns+`
		FROM emergencies e
		WHERE e.status <> 'resolved' AND NOT e.is_fraud
		ORDER BY e.priority ASC, e.created_at ASC
	`)
}

// ListFraud вызовы, помеченные как ложные
func (s *Service) ListFraud(ctx context.Context) ([]*models.Emergency, error) {
	return s.listEmergencies(ctx, `
		SELECT`+emergencyColumns+`
		FROM emergencies e
		WHERE e.is_fraud
		ORDER BY e.updated_at DESC
	`)
}

// StaffIDs идентификаторы администраторов и спасателей для рассылки о новом вызове
func (s *Service) StaffIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users WHERE role IN ('admin', 'responder')`)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan staff id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Service) listEmergencies(ctx context.Context, query string) ([]*models.Emergency, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergencies: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Emergency, 0)
	for rows.Next() {
		var e models.Emergency
		if err := rows.Scan(emergencyDest(&e)...); err != nil {
			return nil, fmt.Errorf("failed to scan emergency: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error emergency iteration: %w", err)
	}
	return out, nil
}

// emergencyDest возвращает приемники для emergencyColumns; nullable-поля
// переносятся в e через scanner-обертки.
func emergencyDest(e *models.Emergency) []any {
	return []any{
		&e.ID,
		textScanner(func(v string) { e.Type = models.EmergencyType(v) }),
		&e.Description,
		&e.Location.Latitude,
		&e.Location.Longitude,
		&e.Priority,
		textScanner(func(v string) { e.Status = models.EmergencyStatus(v) }),
		&e.IsFraud,
		&e.ReporterID,
		&responderIDScanner{e: e},
		&responderCoordScanner{e: e, lat: true},
		&responderCoordScanner{e: e},
		&e.CreatedAt,
		&e.UpdatedAt,
		&resolvedAtScanner{e: e},
	}
}

type textScanner func(v string)

func (f textScanner) Scan(src any) error {
	var v sql.NullString
	if err := v.Scan(src); err != nil {
		return err
	}
	f(v.String)
	return nil
}

type responderIDScanner struct{ e *models.Emergency }

func (s *responderIDScanner) Scan(src any) error {
	var v uuid.NullUUID
	if err := v.Scan(src); err != nil {
		return err
	}
	if v.Valid {
		id := v.UUID
		s.e.ResponderID = &id
	}
	return nil
}

type responderCoordScanner struct {
	e   *models.Emergency
	lat bool
}

func (s *responderCoordScanner) Scan(src any) error {
	var v sql.NullFloat64
	if err := v.Scan(src); err != nil {
		return err
	}
	if !v.Valid {
		return nil
	}
	if s.e.ResponderLocation == nil {
		s.e.ResponderLocation = &models.Location{}
	}
	if s.lat {
		s.e.ResponderLocation.Latitude = v.Float64
	} else {
		s.e.ResponderLocation.Longitude = v.Float64
	}
	return nil
}

type resolvedAtScanner struct{ e *models.Emergency }

func (s *resolvedAtScanner) Scan(src any) error {
	var v sql.NullTime
	if err := v.Scan(src); err != nil {
		return err
	}
	if v.Valid {
		t := v.Time
		s.e.ResolvedAt = &t
	}
	return nil
}
