// Package app implements the operator dashboard: a Bubble Tea program over
// the data the bot persists.
package app

import (
	"fmt"
	"sync"
	"time"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	NotificationSuccess NotificationType = iota
	NotificationError
	NotificationWarning
	NotificationInfo
	// NotificationLoading shows a spinner.
	NotificationLoading
)

// LoadingNotificationID is the fixed ID of the loading toast.
const LoadingNotificationID = "__loading__"

const maxNotifications = 10

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification is a toast shown in the top right corner.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

func (n *Notification) expired(now time.Time) bool {
	return n.Duration > 0 && now.Sub(n.CreatedAt) > n.Duration
}

// State is shared between the root model and the tabs.
type State struct {
	mu sync.RWMutex

	snapshot *Snapshot
	loadErr  error
	loading  bool
	// peak is the highest all-time peak seen; -1 until the first load.
	peak int

	notifications   []Notification
	notificationSeq int
	now             func() time.Time
}

// NewState returns an empty state waiting for its first snapshot.
func NewState() *State {
	return &State{peak: -1, loading: true, now: time.Now}
}

// SetSnapshot stores a freshly loaded snapshot. It reports whether the
// all-time population peak rose since the previous load.
func (s *State) SetSnapshot(snap *Snapshot, err error) (peakRaised bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	s.loadErr = err
	if snap == nil {
		return false
	}
	s.snapshot = snap

	peak := snap.Population.PeakAllTime
	raised := s.peak >= 0 && peak > s.peak
	if peak > s.peak {
		s.peak = peak
	}
	return raised
}

// Snapshot returns the latest snapshot, or nil before the first load.
func (s *State) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// LoadError returns the error of the latest load.
func (s *State) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// SetLoading marks a reload in progress.
func (s *State) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// IsInitialLoading is true until the first snapshot arrives.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading && s.snapshot == nil
}

// IsLoading reports whether a reload is in progress.
func (s *State) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// TimeSinceUpdate is the age of the current snapshot.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return 0
	}
	return s.now().Sub(s.snapshot.LoadedAt)
}

// AddNotification adds a toast and returns its ID.
func (s *State) AddNotification(kind NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	now := s.now()
	id := fmt.Sprintf("%s-%d", now.Format("20060102150405"), s.notificationSeq)
	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      kind,
		Message:   message,
		CreatedAt: now,
		Duration:  duration,
	})
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}
	return id
}

// RemoveNotification removes a toast by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications drops toasts past their duration.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = s.active()
}

// Notifications returns the toasts that have not expired.
func (s *State) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active()
}

func (s *State) active() []Notification {
	now := s.now()
	out := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.expired(now) {
			out = append(out, n)
		}
	}
	return out
}

// SetLoadingNotification shows or updates the loading toast.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}
	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: s.now(),
	})
}

// ClearLoadingNotification removes the loading toast.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}
