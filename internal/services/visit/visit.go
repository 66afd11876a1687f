// Package visit реализует жизненный цикл визитов клиента: проверку оплаты
// при создании, выборки по статусам и датам, поиск, изменение и смену статуса.
package visit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/apperr"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/period"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/rabbitmq"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/storage"
)

// Сообщения, которые видит клиент API.
const (
	MsgRequiredFields   = "Please provide all required fields"
	MsgActiveVisit      = "You already have an active visit. Please complete it before creating a new one."
	MsgNoPayment        = "You have not made any payment yet. Please make a payment first."
	MsgPaymentExpired   = "Your payment has expired. Please make a new payment."
	msgPaymentStatusFmt = "Your payment is %s . Please wait for it to be payment or completed before creating a visit."
	MsgInvalidDate      = "Invalid date format"
	MsgVisitNotFound    = "Visit not found"
	MsgNotOwnerUpdate   = "You are not allowed to update this visit"
	MsgNotOwnerCancel   = "You are not allowed to cancel this visit"
	MsgNotEditable      = "Only pending or confirmed visits can be updated"
	MsgNoUpcoming       = "No upcoming visits found"
	MsgNoVisits         = "No visits found"
	MsgStaffNotFound    = "Staff not found"
	MsgNotStaff         = "Assigned user is not a staff member"
	MsgStaffOnConfirm   = "Staff can only be assigned when confirming a visit"
	MsgStatusChanged    = "Visit status was changed by another request"
)

// PaymentStatusMessage — текст отказа для оплаты в неподходящем статусе.
func PaymentStatusMessage(status models.PaymentStatus) string {
	return fmt.Sprintf(msgPaymentStatusFmt, status)
}

// Repository описывает хранилище визитов, оплат и тарифов клиента.
type Repository interface {
	HasActiveVisit(ctx context.Context, clientID string) (bool, error)
	LatestPayment(ctx context.Context, userID string) (*models.Payment, error)
	CurrentUserPlan(ctx context.Context, userID string) (*models.UserPlan, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateVisit(ctx context.Context, v *models.Visit) (*models.Visit, error)
	GetVisit(ctx context.Context, id string) (*models.Visit, error)
	ListVisits(ctx context.Context, f models.VisitFilter, page *models.Page) ([]*models.Visit, error)
	CountVisits(ctx context.Context, f models.VisitFilter) (int, error)
	UpdateVisit(ctx context.Context, id, address string, date time.Time) error
	UpdateVisitStatus(ctx context.Context, id string, from, to models.VisitStatus, staffID *string) error
}

// EventPublisher публикует события визитов в брокер.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Recorder учитывает события визитов в метриках.
type Recorder interface {
	VisitCreated()
	VisitRejected(reason string)
	VisitTransition(from, to string)
}

// Service — операции над визитами от имени аутентифицированного пользователя.
type Service struct {
	repo    Repository
	events  EventPublisher
	metrics Recorder
	log     *slog.Logger
	now     func() time.Time
}

// NewService создает новый экземпляр Service. events может быть nil,
// тогда события не публикуются.
func NewService(repo Repository, events EventPublisher, metrics Recorder, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		events:  events,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// Create создаёт визит клиента, если у него нет активного визита
// и последняя оплата действует.
func (s *Service) Create(ctx context.Context, p models.Principal, req models.CreateVisitRequest) (*models.CreatedVisit, error) {
	const op = "services.visit.Create"
	log := s.log.With(sl.Op(op), slog.String("client", p.UserID))

	address := strings.TrimSpace(req.Address)
	if address == "" || strings.TrimSpace(req.Date) == "" {
		return nil, s.reject("missing_fields", apperr.Validation(MsgRequiredFields))
	}
	date, ok := models.ParseVisitDate(req.Date)
	if !ok {
		return nil, s.reject("invalid_date", apperr.Validation(MsgInvalidDate))
	}

	active, err := s.repo.HasActiveVisit(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if active {
		return nil, s.reject("active_visit", apperr.Conflict(MsgActiveVisit))
	}

	payment, err := s.repo.LatestPayment(ctx, p.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, s.reject("no_payment", apperr.BusinessRule(MsgNoPayment))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkPayment(payment); err != nil {
		return nil, err
	}

	userPlan, err := s.repo.CurrentUserPlan(ctx, p.UserID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v := &models.Visit{
		ClientID: p.UserID,
		Address:  address,
		Date:     date,
		Status:   models.VisitPending,
		Type:     normalizeType(req.Type),
		IsPaid:   payment.Status == models.PaymentCompleted,
	}
	if userPlan != nil {
		v.UserPlanID = &userPlan.ID
	}

	created, err := s.insert(ctx, v)
	if errors.Is(err, storage.ErrConflict) {
		return nil, s.reject("active_visit", apperr.Conflict(MsgActiveVisit))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("visit created", slog.String("visit", created.VisitID))
	if s.metrics != nil {
		s.metrics.VisitCreated()
	}
	s.publish(ctx, rabbitmq.RoutingVisitCreated, created)

	return &models.CreatedVisit{VisitData: created, UserPlan: userPlan}, nil
}

// insert сохраняет визит, подбирая новый номер при совпадении с существующим.
func (s *Service) insert(ctx context.Context, v *models.Visit) (*models.Visit, error) {
	for attempt := 1; ; attempt++ {
		v.VisitID = newVisitID()
		created, err := s.repo.CreateVisit(ctx, v)
		if !errors.Is(err, storage.ErrDuplicateVisitID) || attempt == visitIDAttempts {
			return created, err
		}
		s.log.Warn("visit number collision, retrying", slog.String("visit", v.VisitID))
	}
}

// checkPayment проверяет оплату в том же порядке, в каком клиенту
// сообщаются причины отказа.
func (s *Service) checkPayment(payment *models.Payment) error {
	pack := ""
	if payment.Plan != nil {
		pack = string(payment.Plan.Pack)
	}
	if payment.Status == models.PaymentCompleted && pack == period.PerPatrol {
		return s.reject("payment_expired", apperr.BusinessRule(MsgPaymentExpired))
	}
	switch payment.Status {
	case models.PaymentPending, models.PaymentFailed, models.PaymentRefunded:
		return s.reject("payment_"+string(payment.Status), apperr.BusinessRule(PaymentStatusMessage(payment.Status)))
	}
	if period.Expired(payment.CreatedAt, pack, s.now()) {
		return s.reject("payment_expired", apperr.BusinessRule(MsgPaymentExpired))
	}
	return nil
}

func (s *Service) reject(reason string, err *apperr.Error) error {
	if s.metrics != nil {
		s.metrics.VisitRejected(reason)
	}
	return err
}

// Update меняет адрес и дату активного визита владельца.
// Пустые поля сохраняют текущие значения.
func (s *Service) Update(ctx context.Context, p models.Principal, id string, req models.UpdateVisitRequest) (*models.Visit, error) {
	const op = "services.visit.Update"

	v, err := s.ownedVisit(ctx, p, id, MsgNotOwnerUpdate)
	if err != nil {
		return nil, err
	}
	if !v.Status.Active() {
		return nil, apperr.BusinessRule(MsgNotEditable)
	}

	address := v.Address
	if a := strings.TrimSpace(req.Address); a != "" {
		address = a
	}
	date := v.Date
	if strings.TrimSpace(req.Date) != "" {
		parsed, ok := models.ParseVisitDate(req.Date)
		if !ok {
			return nil, apperr.Validation(MsgInvalidDate)
		}
		date = parsed
	}

	if err := s.repo.UpdateVisit(ctx, id, address, date); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound(MsgVisitNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := s.repo.GetVisit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Cancel отменяет визит владельца.
func (s *Service) Cancel(ctx context.Context, p models.Principal, id string) (*models.Visit, error) {
	v, err := s.ownedVisit(ctx, p, id, MsgNotOwnerCancel)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, v, models.VisitCancelled, nil)
}

// ChangeStatus переводит визит в новый статус по таблице переходов.
// Сотрудника можно назначить только при подтверждении.
func (s *Service) ChangeStatus(ctx context.Context, id string, req models.ChangeVisitStatusRequest) (*models.Visit, error) {
	const op = "services.visit.ChangeStatus"

	if req.StaffID != "" && req.Status != models.VisitConfirmed {
		return nil, apperr.Validation(MsgStaffOnConfirm)
	}

	v, err := s.repo.GetVisit(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(MsgVisitNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var staffID *string
	if req.StaffID != "" {
		staff, err := s.repo.GetUser(ctx, req.StaffID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound(MsgStaffNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if staff.Role != models.RoleStaff {
			return nil, apperr.Validation(MsgNotStaff)
		}
		staffID = &staff.ID
	}
	return s.transition(ctx, v, req.Status, staffID)
}

func (s *Service) transition(ctx context.Context, v *models.Visit, to models.VisitStatus, staffID *string) (*models.Visit, error) {
	const op = "services.visit.transition"

	from := v.Status
	if !from.CanTransition(to) {
		return nil, apperr.BusinessRule(fmt.Sprintf("Cannot change visit status from %s to %s", from, to))
	}
	err := s.repo.UpdateVisitStatus(ctx, v.ID, from, to, staffID)
	if errors.Is(err, storage.ErrConflict) {
		return nil, apperr.Conflict(MsgStatusChanged)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.GetVisit(ctx, v.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("visit status changed",
		slog.String("visit", v.VisitID), slog.String("from", string(from)), slog.String("to", string(to)))
	if s.metrics != nil {
		s.metrics.VisitTransition(string(from), string(to))
	}
	s.publish(ctx, rabbitmq.RoutingVisitStatus, updated)
	return updated, nil
}

func (s *Service) ownedVisit(ctx context.Context, p models.Principal, id, forbidden string) (*models.Visit, error) {
	const op = "services.visit.ownedVisit"

	v, err := s.repo.GetVisit(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(MsgVisitNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if v.ClientID != p.UserID {
		return nil, apperr.Forbidden(forbidden)
	}
	return v, nil
}

// publish отправляет событие без влияния на результат запроса.
func (s *Service) publish(ctx context.Context, key string, v *models.Visit) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, Event(v, s.now())); err != nil {
		s.log.Warn("failed to publish visit event",
			slog.String("routing_key", key), slog.String("visit", v.VisitID), sl.Err(err))
	}
}

// Event собирает событие для брокера из визита.
func Event(v *models.Visit, at time.Time) models.VisitEvent {
	e := models.VisitEvent{
		ID:         v.ID,
		VisitID:    v.VisitID,
		Address:    v.Address,
		Date:       v.Date,
		Status:     v.Status,
		OccurredAt: at.UTC(),
	}
	if v.Client != nil {
		e.ClientName = v.Client.Fullname
		e.ClientEmail = v.Client.Email
	}
	return e
}

const visitIDAttempts = 3

func newVisitID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "VIS-" + strings.ToUpper(raw[:8])
}

func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return models.DefaultVisitType
	}
	return t
}
