package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository"
	"github.com/mamadbah2/pantry/internal/repository/memory"
	"github.com/mamadbah2/pantry/internal/service/inventory"
)

type fakeSheets struct {
	sheetRange string
	rows       [][]interface{}
	err        error
}

func (f *fakeSheets) AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	f.sheetRange = sheetRange
	f.rows = rows
	return f.err
}

type fakeMessenger struct {
	sent []models.OutboundMessageRequest
	err  error
}

func (f *fakeMessenger) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return f.err
}

var fixedNow = time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)

func newReporting(store *memory.Store, sh *fakeSheets, msg *fakeMessenger, recipient string) *Service {
	ctrl := inventory.NewController(store, inventory.Options{}, nil)
	svc := NewService(ctrl, store, nil, nil, recipient, nil)
	if sh != nil {
		svc.sheets = sh
	}
	if msg != nil {
		svc.messenger = msg
	}
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestPublish_AllDestinations(t *testing.T) {
	store := memory.NewStore(map[string]int{"eggs": 12, "milk": 2})
	sh := &fakeSheets{}
	msg := &fakeMessenger{}
	svc := newReporting(store, sh, msg, "224")

	report, err := svc.Publish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.ItemCount)
	assert.Equal(t, 14, report.TotalUnits)

	require.Len(t, store.Reports(), 1)
	assert.Equal(t, report, store.Reports()[0])

	assert.Equal(t, "Inventory!A:C", sh.sheetRange)
	assert.Equal(t, [][]interface{}{
		{"2026-10-15", "eggs", 12},
		{"2026-10-15", "milk", 2},
	}, sh.rows)

	require.Len(t, msg.sent, 1)
	assert.Equal(t, "224", msg.sent[0].To)
	assert.Equal(t, "Pantry (2026-10-15): 2 items, 14 units.\n- Eggs: 12\n- Milk: 2", msg.sent[0].Message)
}

func TestPublish_OptionalDestinations(t *testing.T) {
	store := memory.NewStore(map[string]int{"eggs": 1})
	ctrl := inventory.NewController(store, inventory.Options{}, nil)
	svc := NewService(ctrl, nil, nil, nil, "", nil)

	report, err := svc.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ItemCount)
}

func TestPublish_NoRecipientSkipsMessage(t *testing.T) {
	msg := &fakeMessenger{}
	svc := newReporting(memory.NewStore(nil), nil, msg, "")

	_, err := svc.Publish(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msg.sent)
}

func TestPublish_DestinationFailuresAreJoined(t *testing.T) {
	store := memory.NewStore(map[string]int{"eggs": 1})
	sheetErr := errors.New("quota exceeded")
	sendErr := errors.New("meta down")
	msg := &fakeMessenger{err: sendErr}
	svc := newReporting(store, &fakeSheets{err: sheetErr}, msg, "224")

	_, err := svc.Publish(context.Background())
	assert.ErrorIs(t, err, sheetErr)
	assert.ErrorIs(t, err, sendErr)
	assert.Len(t, store.Reports(), 1, "mongo save still happened")
	assert.Len(t, msg.sent, 1)
}

func TestPublish_StoreDown(t *testing.T) {
	store := memory.NewStore(nil)
	store.FailWith(errors.New("down"))
	msg := &fakeMessenger{}
	svc := newReporting(store, &fakeSheets{}, msg, "224")

	_, err := svc.Publish(context.Background())
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.Empty(t, msg.sent)
}

func TestSummary_Empty(t *testing.T) {
	assert.Equal(t, "Pantry (2026-10-15): empty.", Summary(models.NewInventoryReport(nil, fixedNow)))
}

func TestBuildReport_UsesGivenTime(t *testing.T) {
	store := memory.NewStore(map[string]int{"rice": 2})
	svc := newReporting(store, nil, nil, "")

	local := time.Date(2026, 10, 15, 22, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	report, err := svc.BuildReport(context.Background(), local)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, report.TakenAt)
	assert.Equal(t, models.Snapshot{{Name: "rice", Quantity: 2}}, models.Snapshot(report.Items))
	assert.Empty(t, store.Reports(), "building does not persist")
}

func TestPublish_DatesReportInLocation(t *testing.T) {
	store := memory.NewStore(map[string]int{"eggs": 6})
	sh := &fakeSheets{}
	msg := &fakeMessenger{}
	svc := newReporting(store, sh, msg, "224")

	// 20:00 on the 15th in UTC-5 is already the 16th in UTC.
	newYork := time.FixedZone("EST", -5*60*60)
	svc.now = func() time.Time { return time.Date(2026, 10, 16, 1, 0, 0, 0, time.UTC) }
	svc.SetLocation(newYork)

	report, err := svc.Publish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, newYork, report.TakenAt.Location())
	assert.Equal(t, 20, report.TakenAt.Hour())
	assert.Equal(t, [][]interface{}{{"2026-10-15", "eggs", 6}}, sh.rows)
	require.Len(t, msg.sent, 1)
	assert.Equal(t, "Pantry (2026-10-15): 1 items, 6 units.\n- Eggs: 6", msg.sent[0].Message)

	svc.SetLocation(nil)
	report, err = svc.BuildReport(context.Background(), svc.now())
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", report.TakenAt.Format("2006-01-02"))
}
