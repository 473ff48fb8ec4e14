package app

import "time"

// TickMsg expires toasts.
type TickMsg struct {
	Time time.Time
}

// RefreshTickMsg triggers the periodic reload.
type RefreshTickMsg struct {
	Time time.Time
}

// RefreshMsg asks for a reload now.
type RefreshMsg struct{}

// SnapshotLoadedMsg carries a finished load.
type SnapshotLoadedMsg struct {
	Snapshot *Snapshot
	Err      error
}

// FilesChangedMsg is sent when a watched document was rewritten.
type FilesChangedMsg struct{}

// PeakNotifiedMsg reports the desktop notification for a new peak.
type PeakNotifiedMsg struct {
	Peak int
	Err  error
}

// AddNotificationMsg requests adding a toast.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a toast.
type RemoveNotificationMsg struct {
	ID string
}

// TabSwitchMsg switches to a tab.
type TabSwitchMsg struct {
	Tab TabID
}
