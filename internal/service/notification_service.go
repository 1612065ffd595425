package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/condoops/incident-service/internal/domain"
	"github.com/condoops/incident-service/internal/events"
	"github.com/condoops/incident-service/internal/repository"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

// EmailSender delivers notification emails best-effort.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogEmailSender is the delivery stub: it logs instead of speaking SMTP.
type LogEmailSender struct {
	From   string
	Logger *zap.Logger
}

// Send logs the outgoing message.
func (s *LogEmailSender) Send(ctx context.Context, to, subject, body string) error {
	s.Logger.Debug("send email",
		zap.String("from", s.From),
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

// NotificationService consumes lifecycle events and fans out notification
// rows plus best-effort emails. Failures are logged and never reach the
// request that triggered the event.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	email         EmailSender
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, users repository.UserRepository, email EmailSender, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		email:         email,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIncidentCreated, n.handleCreated)
	n.dispatcher.Subscribe(events.EventIncidentAssigned, n.handleAssigned)
	n.dispatcher.Subscribe(events.EventIncidentEscalated, n.handleEscalated)
	n.dispatcher.Subscribe(events.EventIncidentRejected, n.handleRejected)
	n.dispatcher.Subscribe(events.EventIncidentPriorityRaised, n.handlePriorityRaised)
	n.dispatcher.Subscribe(events.EventIncidentCommented, n.handleCommented)
}

func (n *NotificationService) handleCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IncidentCreatedPayload)
	if !ok || payload.Priority != domain.IncidentPriorityUrgent {
		return nil
	}
	n.notifyBuildingAdmins(ctx, event, domain.NotificationKindUrgency, "Incidencia urgente reportada")
	return nil
}

func (n *NotificationService) handleAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IncidentAssignedPayload)
	if !ok {
		return nil
	}
	n.notifyUser(ctx, event, payload.AssigneeID, domain.NotificationKindAssignment, "Incidencia asignada")
	return nil
}

func (n *NotificationService) handleEscalated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IncidentEscalatedPayload)
	if !ok {
		return nil
	}
	kind := domain.NotificationKindReminder
	subject := "Incidencia escalada"
	if payload.Urgent {
		kind = domain.NotificationKindUrgency
		subject = "Incidencia urgente escalada"
	}
	n.notifyBuildingAdmins(ctx, event, kind, subject)
	return nil
}

func (n *NotificationService) handleRejected(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IncidentRejectedPayload)
	if !ok {
		return nil
	}
	n.record(ctx, payload.ReporterID, event.IncidentID, domain.NotificationKindRejection)
	return nil
}

func (n *NotificationService) handlePriorityRaised(ctx context.Context, event events.Event) error {
	n.notifyBuildingAdmins(ctx, event, domain.NotificationKindUrgency, "Incidencia marcada urgente")
	return nil
}

func (n *NotificationService) handleCommented(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IncidentCommentedPayload)
	if !ok {
		return nil
	}
	recipients := map[string]struct{}{payload.ReporterID: {}}
	if payload.AssigneeID != nil {
		recipients[*payload.AssigneeID] = struct{}{}
	}
	if payload.CommenterRole == domain.RoleResident {
		admins, err := n.users.ListByBuildingAndRole(ctx, event.BuildingID, domain.RoleBuildingAdmin)
		if err != nil {
			n.logger.Warn("list building admins", zap.Error(err))
		}
		for _, admin := range admins {
			recipients[admin.ID] = struct{}{}
		}
	}
	delete(recipients, event.ActorID)
	for userID := range recipients {
		n.notifyUser(ctx, event, userID, domain.NotificationKindComment, "Nuevo comentario en incidencia")
	}
	return nil
}

func (n *NotificationService) notifyBuildingAdmins(ctx context.Context, event events.Event, kind domain.NotificationKind, subject string) {
	admins, err := n.users.ListByBuildingAndRole(ctx, event.BuildingID, domain.RoleBuildingAdmin)
	if err != nil {
		n.logger.Warn("list building admins", zap.Error(err))
		return
	}
	for _, admin := range admins {
		n.record(ctx, admin.ID, event.IncidentID, kind)
		n.send(ctx, admin.Email, subject, event.IncidentID)
	}
}

func (n *NotificationService) notifyUser(ctx context.Context, event events.Event, userID string, kind domain.NotificationKind, subject string) {
	n.record(ctx, userID, event.IncidentID, kind)
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		n.logger.Warn("load notification recipient", zap.String("user_id", userID), zap.Error(err))
		return
	}
	n.send(ctx, user.Email, subject, event.IncidentID)
}

// ListForUser returns the caller's notifications, newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	list, err := n.notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// MarkRead toggles the read flag; only the recipient may do so.
func (n *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := n.notifications.MarkRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (n *NotificationService) record(ctx context.Context, userID, incidentID string, kind domain.NotificationKind) {
	notification := &domain.Notification{
		UserID:     userID,
		IncidentID: incidentID,
		Kind:       kind,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Warn("create notification",
			zap.String("user_id", userID),
			zap.String("incident_id", incidentID),
			zap.Error(err))
	}
}

func (n *NotificationService) send(ctx context.Context, to, subject, incidentID string) {
	if n.email == nil || to == "" {
		return
	}
	if err := n.email.Send(ctx, to, subject, "Incidencia "+incidentID); err != nil {
		n.logger.Warn("send email", zap.String("to", to), zap.Error(err))
	}
}
