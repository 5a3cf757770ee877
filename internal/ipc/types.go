package ipc

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// DependencyStatus describes availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail"`
}

// StatusResponse describes daemon, monitor, and store state.
type StatusResponse struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	StartedAt     string             `json:"started_at"`
	EventCount    int                `json:"event_count"`
	Capacity      int                `json:"capacity"`
	DataFilePath  string             `json:"data_file_path"`
	LockPath      string             `json:"lock_path"`
	HistoryDBPath string             `json:"history_db_path"`
	Notifier      string             `json:"notifier"`
	CorruptState  string             `json:"corrupt_state"`
	LastError     string             `json:"last_error"`
	LastScan      string             `json:"last_scan"`
	Scans         uint64             `json:"scans"`
	Announced     uint64             `json:"announced"`
	PollSeconds   int                `json:"poll_seconds"`
	Dependencies  []DependencyStatus `json:"dependencies"`
}

// StopRequest asks the daemon process to shut down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// EventSummary is a tracked event rendered for display.
type EventSummary struct {
	Name          string `json:"name"`
	Start         string `json:"start"`
	StartDisplay  string `json:"start_display"`
	Enabled       bool   `json:"enabled"`
	Days          int    `json:"days"`
	Elapsed       string `json:"elapsed"`
	NextMilestone int    `json:"next_milestone"`
	NextIn        int    `json:"next_in"`
	HasNext       bool   `json:"has_next"`
	NotifiedCount int    `json:"notified_count"`
	LastMilestone int    `json:"last_milestone"`
}

// EventListRequest fetches all tracked events.
type EventListRequest struct{}

// EventListResponse contains tracked events ordered by start date.
type EventListResponse struct {
	Events []EventSummary `json:"events"`
}

// EventAddRequest registers a new tracked event. Start is RFC 3339.
type EventAddRequest struct {
	Name  string `json:"name"`
	Start string `json:"start"`
}

// EventAddResponse returns the stored event.
type EventAddResponse struct {
	Event EventSummary `json:"event"`
}

// EventRemoveRequest deletes a tracked event by name.
type EventRemoveRequest struct {
	Name string `json:"name"`
}

// EventRemoveResponse indicates removal result.
type EventRemoveResponse struct {
	Removed bool `json:"removed"`
}

// EventEnableRequest pauses or resumes milestone notifications for an event.
type EventEnableRequest struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// EventEnableResponse returns the updated event.
type EventEnableResponse struct {
	Event EventSummary `json:"event"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// MilestoneRecord is one row of the milestone journal.
type MilestoneRecord struct {
	ID            int64  `json:"id"`
	EventName     string `json:"event_name"`
	Days          int    `json:"days"`
	StartLabel    string `json:"start_label"`
	Delivered     bool   `json:"delivered"`
	DeliveryError string `json:"delivery_error"`
	CreatedAt     string `json:"created_at"`
}

// HistoryRequest fetches journal rows, optionally filtered to one event.
type HistoryRequest struct {
	EventName string `json:"event_name"`
	Limit     int    `json:"limit"`
}

// HistoryResponse contains journal rows, newest first.
type HistoryResponse struct {
	Entries []MilestoneRecord `json:"entries"`
}

// HistoryClearRequest removes every journal row.
type HistoryClearRequest struct{}

// HistoryClearResponse reports how many rows were removed.
type HistoryClearResponse struct {
	Removed int64 `json:"removed"`
}

// StateResetRequest backs up the event file and starts empty.
type StateResetRequest struct{}

// StateResetResponse reports where the previous state was moved.
type StateResetResponse struct {
	BackupPath string `json:"backup_path"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
