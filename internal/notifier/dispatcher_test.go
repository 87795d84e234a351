package notifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/peacewatch/peacewatch/internal/matcher"
	"github.com/peacewatch/peacewatch/internal/models"
	"github.com/peacewatch/peacewatch/internal/store"
)

type sendCall struct {
	to      string
	subject string
}

type fakeSender struct {
	mu      sync.Mutex
	channel string
	calls   []sendCall
	err     error
}

func (f *fakeSender) Channel() string { return f.channel }

func (f *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sendCall{to: to, subject: subject})
	return f.err
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestDispatcher(t *testing.T, subs []models.Subscription) (*Dispatcher, *fakeSender, *fakeSender, *fakeSender) {
	t.Helper()
	s := store.NewInMemoryStore()
	for i := range subs {
		if err := s.CreateSubscription(context.Background(), &subs[i]); err != nil {
			t.Fatal(err)
		}
	}
	email := &fakeSender{channel: "email"}
	whatsapp := &fakeSender{channel: "whatsapp"}
	sms := &fakeSender{channel: "sms"}
	d := New(s, matcher.NewLocationMatcher(), email, whatsapp, sms, 200)
	return d, email, whatsapp, sms
}

func TestDispatch_LocationMatching(t *testing.T) {
	d, email, _, _ := newTestDispatcher(t, []models.Subscription{
		{ID: "s1", Location: "Rivers State", Method: "Email", Email: "a@x.com"},
		{ID: "s2", Location: "Lagos", Method: "Email", Email: "b@x.com"},
	})

	report := models.Report{
		ID:        "r1",
		Title:     "Clash at market square",
		Location:  "Rivers",
		CreatedAt: time.Now().UTC(),
	}
	d.Dispatch(context.Background(), report)

	if email.callCount() != 1 {
		t.Fatalf("Expected exactly 1 email send, got %d", email.callCount())
	}
	if email.calls[0].to != "a@x.com" {
		t.Errorf("Expected send to a@x.com, got %s", email.calls[0].to)
	}
}

func TestDispatch_MethodRouting(t *testing.T) {
	tests := []struct {
		name         string
		sub          models.Subscription
		wantEmail    int
		wantWhatsApp int
		wantSMS      int
	}{
		{
			name:      "email method",
			sub:       models.Subscription{Method: "Email", Email: "a@x.com", Location: "Rivers"},
			wantEmail: 1,
		},
		{
			name:         "whatsapp preferred over present email",
			sub:          models.Subscription{Method: "WhatsApp-preferred", Email: "a@x.com", Phone: "+2348031234567", Location: "Rivers"},
			wantWhatsApp: 1,
		},
		{
			name:    "sms method",
			sub:     models.Subscription{Method: "send SMS please", Phone: "+2348031234567", Location: "Rivers"},
			wantSMS: 1,
		},
		{
			name:      "unknown method falls back to email when present",
			sub:       models.Subscription{Method: "carrier pigeon", Email: "a@x.com", Location: "Rivers"},
			wantEmail: 1,
		},
		{
			name: "unknown method and no email is skipped",
			sub:  models.Subscription{Method: "carrier pigeon", Phone: "+2348031234567", Location: "Rivers"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.sub.ID = "s1"
			d, email, whatsapp, sms := newTestDispatcher(t, []models.Subscription{tt.sub})

			d.Dispatch(context.Background(), models.Report{ID: "r1", Location: "Rivers"})

			if email.callCount() != tt.wantEmail {
				t.Errorf("email sends = %d, want %d", email.callCount(), tt.wantEmail)
			}
			if whatsapp.callCount() != tt.wantWhatsApp {
				t.Errorf("whatsapp sends = %d, want %d", whatsapp.callCount(), tt.wantWhatsApp)
			}
			if sms.callCount() != tt.wantSMS {
				t.Errorf("sms sends = %d, want %d", sms.callCount(), tt.wantSMS)
			}
		})
	}
}

func TestDispatch_FailureIsolation(t *testing.T) {
	d, email, _, _ := newTestDispatcher(t, []models.Subscription{
		{ID: "s1", Location: "Rivers", Method: "email", Email: "a@x.com"},
		{ID: "s2", Location: "Rivers", Method: "email", Email: "b@x.com"},
		{ID: "s3", Location: "Rivers", Method: "email", Email: "c@x.com"},
	})
	email.err = errors.New("smtp down")

	// All three sends are attempted even though every one of them fails.
	d.Dispatch(context.Background(), models.Report{ID: "r1", Location: "Rivers"})

	if email.callCount() != 3 {
		t.Errorf("Expected 3 attempted sends despite failures, got %d", email.callCount())
	}
}

func TestDispatch_NoMatchesSendsNothing(t *testing.T) {
	d, email, whatsapp, sms := newTestDispatcher(t, []models.Subscription{
		{ID: "s1", Location: "Lagos", Method: "email", Email: "a@x.com"},
	})

	d.Dispatch(context.Background(), models.Report{ID: "r1", Location: "Benue"})

	if n := email.callCount() + whatsapp.callCount() + sms.callCount(); n != 0 {
		t.Errorf("Expected zero sends, got %d", n)
	}
}

func TestFormatBody(t *testing.T) {
	report := models.Report{
		Title:      "Clash at market square",
		Location:   "Rivers",
		Categories: []string{"violence", "community"},
		Content:    "A long account of what happened at the market square today.",
		CreatedAt:  time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC),
	}

	body := FormatBody(report, 20)

	for _, want := range []string{
		"Clash at market square",
		"Location: Rivers",
		"Categories: violence, community",
		"Date: 11 Mar 2024 09:30",
		"A long account of wh...",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q, got:\n%s", want, body)
		}
	}
}
