package notification

import (
	"context"
	"fmt"
	"sync"

	domainnotif "nomadly/internal/domain/notification"
	"nomadly/internal/shared/logger"
	"nomadly/internal/shared/retry"
)

// ChannelResult reports what happened on one channel.
type ChannelResult struct {
	Channel   domainnotif.Channel
	Attempted bool
	Delivered bool
	// Skipped means the channel was intentionally not used: no address,
	// or the terminal notification was already delivered earlier.
	Skipped bool
	Err     error
}

// DeliveryReport is the per-channel outcome of one Notify call.
type DeliveryReport struct {
	Chat  ChannelResult
	Email ChannelResult
}

// AnyDelivered reports whether at least one channel reached the user.
func (r DeliveryReport) AnyDelivered() bool {
	return r.Chat.Delivered || r.Email.Delivered
}

// Dispatcher delivers outcome notifications through chat and email
// concurrently. Channel failures are independent; each channel retries
// transient failures under the shared notification policy. Terminal-success
// outcomes are deduplicated per order and channel through NotificationRecords
// so pipeline retries never spam the user, while pending and failure notices
// stay at-least-once.
type Dispatcher struct {
	chat    ChatSender
	email   EmailSender
	records domainnotif.RecordRepository
	policy  retry.Policy
	logger  logger.Interface
}

func NewDispatcher(
	chat ChatSender,
	email EmailSender,
	records domainnotif.RecordRepository,
	logger logger.Interface,
) *Dispatcher {
	return &Dispatcher{
		chat:    chat,
		email:   email,
		records: records,
		policy:  retry.Notifications(),
		logger:  logger,
	}
}

// SetRetryPolicy overrides the delivery retry policy, mainly for tests.
func (d *Dispatcher) SetRetryPolicy(p retry.Policy) {
	d.policy = p
}

// Notify sends the outcome through both channels and returns what happened.
// It never returns an error: a confirmed payment must always produce some
// acknowledgment, so total delivery failure is recorded and logged, not
// propagated as a pipeline failure.
func (d *Dispatcher) Notify(ctx context.Context, o Outcome) DeliveryReport {
	subject, body, err := renderMessage(o)
	if err != nil {
		d.logger.Errorw("message construction failed, using fallback",
			"order_id", o.OrderID,
			"kind", o.Kind,
			"error", err,
		)
		subject, body = fallbackMessage(o)
	}

	var report DeliveryReport
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		report.Chat = d.deliver(ctx, o, domainnotif.ChannelChat, func(ctx context.Context) error {
			return d.chat.SendChatMessage(ctx, o.OwnerID, subject+"\n\n"+body)
		})
	}()
	go func() {
		defer wg.Done()
		if o.ContactEmail == "" {
			report.Email = ChannelResult{Channel: domainnotif.ChannelEmail, Skipped: true}
			return
		}
		report.Email = d.deliver(ctx, o, domainnotif.ChannelEmail, func(ctx context.Context) error {
			return d.email.SendEmail(ctx, o.ContactEmail, subject, body)
		})
	}()
	wg.Wait()

	if !report.AnyDelivered() && !(report.Chat.Skipped && report.Email.Skipped) {
		d.logger.Errorw("notification delivery failed on all channels",
			"order_id", o.OrderID,
			"kind", o.Kind,
			"chat_error", report.Chat.Err,
			"email_error", report.Email.Err,
		)
	}

	return report
}

func (d *Dispatcher) deliver(ctx context.Context, o Outcome, channel domainnotif.Channel, send func(ctx context.Context) error) ChannelResult {
	result := ChannelResult{Channel: channel}

	record, err := d.records.GetByOrderChannelKind(ctx, o.OrderID, channel, string(o.Kind))
	if err == nil && record != nil {
		if o.Kind.IsTerminalSuccess() && record.Status() == domainnotif.DeliveryStatusSent {
			result.Skipped = true
			return result
		}
	}
	if record == nil {
		record, err = domainnotif.NewRecord(o.OrderID, o.OwnerID, channel, string(o.Kind))
		if err != nil {
			result.Err = fmt.Errorf("create notification record: %w", err)
			return result
		}
	}

	result.Attempted = true
	sendErr := d.policy.Do(ctx, func(ctx context.Context) error {
		attemptErr := send(ctx)
		record.RecordAttempt(attemptErr)
		return attemptErr
	})
	result.Delivered = sendErr == nil
	result.Err = sendErr

	if saveErr := d.records.Save(ctx, record); saveErr != nil {
		d.logger.Warnw("failed to persist notification record",
			"order_id", o.OrderID,
			"channel", channel,
			"error", saveErr,
		)
	}

	if sendErr != nil {
		d.logger.Warnw("channel delivery failed",
			"order_id", o.OrderID,
			"channel", channel,
			"attempts", record.Attempts(),
			"error", sendErr,
		)
	}

	return result
}
