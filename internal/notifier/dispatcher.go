// Package notifier fans a newly published report out to matching
// subscribers over their preferred channel.
package notifier

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/peacewatch/peacewatch/internal/logger"
	"github.com/peacewatch/peacewatch/internal/matcher"
	"github.com/peacewatch/peacewatch/internal/metrics"
	"github.com/peacewatch/peacewatch/internal/models"
	"github.com/peacewatch/peacewatch/internal/store"
)

const dispatchTimeout = 2 * time.Minute

// Dispatcher routes report notifications to subscribers
type Dispatcher struct {
	subs       store.SubscriptionStore
	locations  matcher.LocationMatcher
	email      Sender
	whatsapp   Sender
	sms        Sender
	previewLen int
}

// New creates a Dispatcher
func New(subs store.SubscriptionStore, locations matcher.LocationMatcher, email, whatsapp, sms Sender, previewLen int) *Dispatcher {
	return &Dispatcher{
		subs:       subs,
		locations:  locations,
		email:      email,
		whatsapp:   whatsapp,
		sms:        sms,
		previewLen: previewLen,
	}
}

// Notify fans the report out to matching subscribers. Fire-and-forget: the
// caller never blocks on delivery and never sees a send failure. The
// report-submission handler responds to its client before any of this runs.
func (d *Dispatcher) Notify(report models.Report) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		d.Dispatch(ctx, report)
	}()
}

// Dispatch performs one synchronous fan-out. Split out from Notify so tests
// can wait for completion.
func (d *Dispatcher) Dispatch(ctx context.Context, report models.Report) {
	subs, err := d.subs.ListSubscriptions(ctx)
	if err != nil {
		logger.Error("load subscriptions", "report_id", report.ID, "error", err)
		return
	}

	subject := FormatSubject(report)
	body := FormatBody(report, d.previewLen)

	var wg sync.WaitGroup
	matched := 0
	for _, sub := range subs {
		if !d.locations.Matches(sub.Location, report.Location) {
			continue
		}
		matched++

		sub := sub
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.sendOne(ctx, sub, subject, body)
		}()
	}
	wg.Wait()

	logger.Info("notification dispatch complete",
		"report_id", report.ID,
		"location", report.Location,
		"subscribers", len(subs),
		"matched", matched,
	)
}

// sendOne routes a single subscriber to a sender and isolates its failure
func (d *Dispatcher) sendOne(ctx context.Context, sub models.Subscription, subject, body string) {
	sender, to := d.route(sub)
	if sender == nil {
		logger.Warn("no deliverable channel for subscriber",
			"subscription_id", sub.ID, "method", sub.Method)
		metrics.RecordNotification("none", "skipped")
		return
	}

	if err := sender.Send(ctx, to, subject, body); err != nil {
		logger.Error("notification send failed",
			"subscription_id", sub.ID,
			"channel", sender.Channel(),
			"error", err,
		)
		metrics.RecordNotification(sender.Channel(), "error")
		return
	}
	metrics.RecordNotification(sender.Channel(), "sent")
}

// route selects the sender for a subscription. Method is free text; the
// known channel names are matched by substring in a fixed order, with a
// fallback to email when an address is present.
func (d *Dispatcher) route(sub models.Subscription) (Sender, string) {
	method := strings.ToLower(sub.Method)

	switch {
	case strings.Contains(method, "email"):
		return d.email, sub.Email
	case strings.Contains(method, "whatsapp"):
		return d.whatsapp, sub.Phone
	case strings.Contains(method, "sms"):
		return d.sms, sub.Phone
	case sub.Email != "":
		return d.email, sub.Email
	}
	return nil, ""
}
