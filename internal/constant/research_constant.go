package constant

const (
	// Retention caps. Both collections are most-recent-first; inserting
	// beyond the cap evicts the oldest entries.
	MaxStoredLeads   = 100
	MaxSearchHistory = 50

	// Redis key layout (flat namespace, one JSON value per key).
	JobKeyPrefix     = "job:"
	LeadsKey         = "leads"
	SearchHistoryKey = "search:history"
	SettingsKey      = "settings"

	// Queue subjects and topics.
	ResearchRequestedSubject = "research.requested"
	ResearchWorkerDurable    = "research-worker"
	JobUpdatesTopic          = "JOB_UPDATES"

	// Redis pub/sub channel for cross-instance websocket fan-out.
	JobEventsChannel = "job_events"
)
