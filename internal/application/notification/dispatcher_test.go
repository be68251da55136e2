package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainnotif "nomadly/internal/domain/notification"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
	"nomadly/internal/shared/retry"
)

type fakeChat struct {
	mu       sync.Mutex
	messages []string
	err      error
	failures int // fail this many times, then succeed
}

func (c *fakeChat) SendChatMessage(ctx context.Context, ownerID int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures > 0 {
		c.failures--
		return apperrors.NewExternalError("chat api unavailable")
	}
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, text)
	return nil
}

type fakeEmail struct {
	mu    sync.Mutex
	sent  []string
	err   error
	calls int
}

func (e *fakeEmail) SendEmail(ctx context.Context, address, subject, body string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, address+": "+subject)
	return nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[string]*domainnotif.Record
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]*domainnotif.Record)}
}

func recordKey(orderID string, channel domainnotif.Channel, kind string) string {
	return orderID + "|" + string(channel) + "|" + kind
}

func (r *fakeRecordRepo) Save(ctx context.Context, record *domainnotif.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[recordKey(record.OrderID(), record.Channel(), record.Kind())] = record
	return nil
}

func (r *fakeRecordRepo) GetByOrderChannelKind(ctx context.Context, orderID string, channel domainnotif.Channel, kind string) (*domainnotif.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[recordKey(orderID, channel, kind)]
	if !ok {
		return nil, apperrors.NewNotFoundError("record not found")
	}
	return record, nil
}

func (r *fakeRecordRepo) ListByOrder(ctx context.Context, orderID string) ([]*domainnotif.Record, error) {
	var out []*domainnotif.Record
	for _, record := range r.records {
		if record.OrderID() == orderID {
			out = append(out, record)
		}
	}
	return out, nil
}

func successOutcome() Outcome {
	return Outcome{
		Kind:         OutcomeRegistrationSuccess,
		OrderID:      "ord-1",
		OwnerID:      7,
		DomainName:   "nomad-site.com",
		Nameservers:  []string{"anna.ns.cloudflare.com", "burt.ns.cloudflare.com"},
		AmountUSD:    decimal.RequireFromString("42.87"),
		ContactEmail: "owner@example.com",
	}
}

func fastDispatcher(chat *fakeChat, email *fakeEmail, records *fakeRecordRepo) *Dispatcher {
	d := NewDispatcher(chat, email, records, logger.NewLogger())
	d.SetRetryPolicy(retry.Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Microsecond,
		Retryable:      func(err error) bool { return err != nil },
	})
	return d
}

func TestDispatcher_DeliversBothChannels(t *testing.T) {
	chat := &fakeChat{}
	email := &fakeEmail{}
	records := newFakeRecordRepo()

	report := fastDispatcher(chat, email, records).Notify(context.Background(), successOutcome())

	assert.True(t, report.Chat.Delivered)
	assert.True(t, report.Email.Delivered)
	require.Len(t, chat.messages, 1)
	assert.Contains(t, chat.messages[0], "nomad-site.com")
	require.Len(t, email.sent, 1)

	record, err := records.GetByOrderChannelKind(context.Background(), "ord-1", domainnotif.ChannelChat, string(OutcomeRegistrationSuccess))
	require.NoError(t, err)
	assert.Equal(t, domainnotif.DeliveryStatusSent, record.Status())
}

func TestDispatcher_ChannelFailuresAreIndependent(t *testing.T) {
	chat := &fakeChat{err: errors.New("chat down")}
	email := &fakeEmail{}

	report := fastDispatcher(chat, email, newFakeRecordRepo()).Notify(context.Background(), successOutcome())

	assert.False(t, report.Chat.Delivered)
	assert.Error(t, report.Chat.Err)
	assert.True(t, report.Email.Delivered)
	assert.True(t, report.AnyDelivered())
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	chat := &fakeChat{failures: 2}
	email := &fakeEmail{}

	report := fastDispatcher(chat, email, newFakeRecordRepo()).Notify(context.Background(), successOutcome())

	assert.True(t, report.Chat.Delivered)
	require.Len(t, chat.messages, 1)
}

func TestDispatcher_DedupesTerminalSuccess(t *testing.T) {
	chat := &fakeChat{}
	email := &fakeEmail{}
	records := newFakeRecordRepo()
	d := fastDispatcher(chat, email, records)

	first := d.Notify(context.Background(), successOutcome())
	require.True(t, first.Chat.Delivered)
	require.True(t, first.Email.Delivered)

	second := d.Notify(context.Background(), successOutcome())
	assert.True(t, second.Chat.Skipped)
	assert.True(t, second.Email.Skipped)
	assert.Len(t, chat.messages, 1)
	assert.Len(t, email.sent, 1)
}

func TestDispatcher_PendingNoticesAreNotDeduped(t *testing.T) {
	chat := &fakeChat{}
	email := &fakeEmail{}
	d := fastDispatcher(chat, email, newFakeRecordRepo())

	pending := successOutcome()
	pending.Kind = OutcomeRegistrationPending

	d.Notify(context.Background(), pending)
	report := d.Notify(context.Background(), pending)

	assert.True(t, report.Chat.Delivered)
	assert.Len(t, chat.messages, 2)
}

func TestDispatcher_SkipsEmailWithoutAddress(t *testing.T) {
	chat := &fakeChat{}
	email := &fakeEmail{}
	o := successOutcome()
	o.ContactEmail = ""

	report := fastDispatcher(chat, email, newFakeRecordRepo()).Notify(context.Background(), o)

	assert.True(t, report.Chat.Delivered)
	assert.True(t, report.Email.Skipped)
	assert.Zero(t, email.calls)
}

func TestDispatcher_UnknownKindUsesFallbackMessage(t *testing.T) {
	chat := &fakeChat{}
	email := &fakeEmail{}

	o := successOutcome()
	o.Kind = "" // reconciliation-deferred acknowledgment

	report := fastDispatcher(chat, email, newFakeRecordRepo()).Notify(context.Background(), o)

	assert.True(t, report.Chat.Delivered)
	require.Len(t, chat.messages, 1)
	assert.Contains(t, chat.messages[0], "ord-1")
	assert.Contains(t, chat.messages[0], "42.87")
}

func TestRenderMessage_KnownKinds(t *testing.T) {
	kinds := []OutcomeKind{
		OutcomeRegistrationSuccess,
		OutcomeDepositCredited,
		OutcomeOverpaidCredited,
		OutcomeUnderpaidCredited,
		OutcomeRegistrationPending,
		OutcomeRegistrationFailed,
		OutcomeAwaitingConfirmation,
	}
	for _, kind := range kinds {
		o := successOutcome()
		o.Kind = kind
		subject, body, err := renderMessage(o)
		require.NoError(t, err, "kind %s", kind)
		assert.NotEmpty(t, subject)
		assert.NotEmpty(t, body)
	}

	o := successOutcome()
	o.Kind = "bogus"
	_, _, err := renderMessage(o)
	assert.Error(t, err)
}

func TestRenderMessage_UnderpaidIncludesShortfall(t *testing.T) {
	o := successOutcome()
	o.Kind = OutcomeUnderpaidCredited
	o.CreditedUSD = decimal.RequireFromString("20")
	o.ShortfallUSD = decimal.RequireFromString("22.87")

	_, body, err := renderMessage(o)
	require.NoError(t, err)
	assert.True(t, strings.Contains(body, "22.87"), "body should state the shortfall: %s", body)
	assert.True(t, strings.Contains(body, "20"), "body should state the credited amount: %s", body)
}
