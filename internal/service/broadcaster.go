package service

// Dashboard event types pushed to a user's open dashboards
const (
	EventDashboardStale = "dashboard_stale"
)

// Broadcaster pushes events to a user's live connections (avoids import cycle with ws)
type Broadcaster interface {
	NotifyUser(userID string, msgType string, payload interface{})
}

type nopBroadcaster struct{}

func (nopBroadcaster) NotifyUser(string, string, interface{}) {}
