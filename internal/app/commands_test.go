package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/clickdash/internal/services"
)

func TestTickCmd(t *testing.T) {
	if tickCmd(time.Millisecond) == nil {
		t.Error("tickCmd returned nil")
	}
	msg := tickCmd(time.Millisecond)()
	if _, ok := msg.(TickMsg); !ok {
		t.Errorf("Expected TickMsg, got %T", msg)
	}
}

func TestNotifyCommands(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(string) tea.Cmd
		want     NotificationType
		duration time.Duration
	}{
		{"Success", NotifySuccess, NotificationSuccess, DefaultNotificationDuration},
		{"Error", NotifyError, NotificationError, LongNotificationDuration},
		{"Warning", NotifyWarning, NotificationWarning, DefaultNotificationDuration},
		{"Info", NotifyInfo, NotificationInfo, QuickNotificationDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.fn("msg")()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
			if addMsg.Duration != tt.duration {
				t.Errorf("Duration = %v, want %v", addMsg.Duration, tt.duration)
			}
		})
	}
}

func TestClearNotificationCmd(t *testing.T) {
	msg := clearNotificationCmd("id", time.Millisecond)()
	rm, ok := msg.(RemoveNotificationMsg)
	if !ok {
		t.Fatalf("Expected RemoveNotificationMsg, got %T", msg)
	}
	if rm.ID != "id" {
		t.Errorf("ID = %q, want id", rm.ID)
	}
}

func TestDelayed(t *testing.T) {
	msg := Delayed(time.Millisecond, TabSwitchMsg{Tab: TabHistory})()
	if sw, ok := msg.(TabSwitchMsg); !ok || sw.Tab != TabHistory {
		t.Errorf("Delayed returned %#v", msg)
	}
}

func TestDeepLink(t *testing.T) {
	if DeepLink("") != nil {
		t.Error("empty alias should not schedule a read")
	}

	start := time.Now()
	msg := DeepLink("abc")()
	if elapsed := time.Since(start); elapsed < DeepLinkDelay-50*time.Millisecond {
		t.Errorf("deep link fired after %v, want about %v", elapsed, DeepLinkDelay)
	}

	load, ok := msg.(LoadAnalyticsMsg)
	if !ok {
		t.Fatalf("Expected LoadAnalyticsMsg, got %T", msg)
	}
	if load.Alias != "abc" {
		t.Errorf("Alias = %q, want abc", load.Alias)
	}
}

func TestWaitForServiceEventCmd_Closed(t *testing.T) {
	ch := make(chan services.ServiceEvent)
	close(ch)
	if msg := waitForServiceEventCmd(ch)(); msg != nil {
		t.Errorf("closed channel should yield nil, got %T", msg)
	}
}
