package email

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

type fakeEmailSender struct {
	calls     int32
	started   chan struct{}
	recipient atomic.Value
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{started: make(chan struct{}, 1)}
}

func (f *fakeEmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	atomic.AddInt32(&f.calls, 1)
	f.recipient.Store(recipient)
	select {
	case f.started <- struct{}{}:
	default:
	}
	return nil
}

func insertTestClient(t *testing.T, q *store.Queries, email string) int64 {
	t.Helper()

	client, err := q.CreateClient(context.Background(), store.CreateClientParams{
		FirstName:  "Maria",
		LastName:   "Lopez",
		NationalID: "34567890",
		Email:      email,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client.ID
}

func waitForSignal(t *testing.T, ch <-chan struct{}, message string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(500 * time.Millisecond):
		t.Fatal(message)
	}
}

func TestNotifyClient_SendsToClientEmail(t *testing.T) {
	database := testutil.NewTestDB(t)
	clientID := insertTestClient(t, database.Queries, "maria@test.com")
	sender := newFakeEmailSender()

	NotifyClient(context.Background(), database.Queries, sender, clientID, Message{
		Subject: "Subject",
		Body:    "Body",
	}, nil)

	waitForSignal(t, sender.started, "expected send to start")
	if got := sender.recipient.Load(); got != "maria@test.com" {
		t.Fatalf("recipient = %v", got)
	}
	if atomic.LoadInt32(&sender.calls) != 1 {
		t.Fatalf("expected one send call, got %d", atomic.LoadInt32(&sender.calls))
	}
}

func TestNotifyClient_SurvivesRequestCancellation(t *testing.T) {
	database := testutil.NewTestDB(t)
	clientID := insertTestClient(t, database.Queries, "maria@test.com")
	sender := newFakeEmailSender()

	// Delivery is detached from the request context: cancelling after the
	// notification is queued must not suppress the send.
	ctx, cancel := context.WithCancel(context.Background())
	NotifyClient(ctx, database.Queries, sender, clientID, Message{
		Subject: "Subject",
		Body:    "Body",
	}, nil)
	cancel()

	waitForSignal(t, sender.started, "expected send to start despite cancellation")
}

func TestNotifyClient_SkipsBlankMessage(t *testing.T) {
	database := testutil.NewTestDB(t)
	clientID := insertTestClient(t, database.Queries, "maria@test.com")
	sender := newFakeEmailSender()

	NotifyClient(context.Background(), database.Queries, sender, clientID, Message{}, nil)

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&sender.calls) != 0 {
		t.Fatalf("blank message should not be sent")
	}
}

func TestNotifyClient_UnknownClientIsNoop(t *testing.T) {
	database := testutil.NewTestDB(t)
	sender := newFakeEmailSender()

	NotifyClient(context.Background(), database.Queries, sender, 9999, Message{
		Subject: "Subject",
		Body:    "Body",
	}, nil)

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&sender.calls) != 0 {
		t.Fatalf("unknown client should not trigger a send")
	}
}

func TestFormatAmountCents(t *testing.T) {
	tests := []struct {
		cents    int64
		currency string
		want     string
	}{
		{330000, "ARS", "3300.00 ARS"},
		{150, "", "1.50"},
		{5, "ARS", "0.05 ARS"},
		{-2500, "ARS", "-25.00 ARS"},
	}
	for _, tt := range tests {
		if got := FormatAmountCents(tt.cents, tt.currency); got != tt.want {
			t.Errorf("FormatAmountCents(%d, %q) = %q, want %q", tt.cents, tt.currency, got, tt.want)
		}
	}
}
