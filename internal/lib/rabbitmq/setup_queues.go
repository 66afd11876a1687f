package rabbitmq

// Exchange — direct-обменник, через который ходят все уведомления о визитах.
const Exchange = "visits.notifications"

// Ключи маршрутизации событий.
const (
	RoutingVisitCreated  = "visit.created"
	RoutingVisitReminder = "visit.reminder"
	RoutingVisitStatus   = "visit.status"
)

// QueueConfig описывает очередь и ключ, которым она привязана к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// VisitQueues возвращает очереди, которые слушает сервис уведомлений.
func VisitQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.visit_created", RoutingKey: RoutingVisitCreated},
		{QueueName: "notification.visit_reminder", RoutingKey: RoutingVisitReminder},
		{QueueName: "notification.visit_status", RoutingKey: RoutingVisitStatus},
	}
}
