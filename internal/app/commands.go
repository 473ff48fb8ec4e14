package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/gen2brain/beeep"
)

const (
	// DefaultTickInterval is how often toasts are expired.
	DefaultTickInterval = 2 * time.Second

	// DefaultRefreshInterval is how often the snapshot is reloaded without
	// a file change.
	DefaultRefreshInterval = 30 * time.Second

	DefaultNotificationDuration = 5 * time.Second
	LongNotificationDuration    = 10 * time.Second

	loadTimeout = 10 * time.Second
)

// Loader produces snapshots.
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Notifier raises a desktop notification.
type Notifier func(title, message string) error

// DesktopNotifier notifies through the OS notification center.
func DesktopNotifier(title, message string) error {
	return beeep.Notify(title, message, "")
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func refreshTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return RefreshTickMsg{Time: t}
	})
}

func loadSnapshotCmd(src Loader) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		snap, err := src.Load(ctx)
		return SnapshotLoadedMsg{Snapshot: snap, Err: err}
	}
}

// waitForChangeCmd blocks until the watcher reports a change.
func waitForChangeCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return FilesChangedMsg{}
	}
}

func notifyPeakCmd(notify Notifier, peak int) tea.Cmd {
	return func() tea.Msg {
		err := notify("ArchMC player peak", fmt.Sprintf("New all-time peak: %s players online", humanize.Comma(int64(peak))))
		return PeakNotifiedMsg{Peak: peak, Err: err}
	}
}

func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(kind NotificationType, message string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: kind, Message: message, Duration: duration}
	}
}

func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}
