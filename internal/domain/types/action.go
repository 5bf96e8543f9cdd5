package types

// Action names attached to log records via the log context.
const (
	ActionIngestLocation     = "ingest_location"
	ActionGetLatestLocation  = "get_latest_location"
	ActionValidationRejected = "validation_rejected"
	ActionLocationStored     = "location_stored"
	ActionBroadcastAttempted = "broadcast_attempted"
	ActionSubscriberDropped  = "subscriber_dropped"

	ActionWSConnect    = "ws_connect"
	ActionWSDisconnect = "ws_disconnect"

	ActionDatabaseQueryFailed = "database_query_failed"

	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitPublishFailed     = "rabbitmq_publish_failed"
	ActionRabbitConsumeFailed     = "rabbitmq_consume_failed"
)
