package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository"
	"github.com/mamadbah2/pantry/internal/repository/sheets"
	"github.com/mamadbah2/pantry/internal/service/inventory"
)

const (
	dateLayout     = "2006-01-02"
	inventoryRange = "Inventory!A:C"
)

// Messenger delivers the report summary.
type Messenger interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Service builds inventory reports and fans them out to the configured
// destinations. Every destination is optional.
type Service struct {
	inventory inventory.Intents
	reports   repository.ReportRepository
	sheets    sheets.Repository
	messenger Messenger
	recipient string
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a reporting service. reports, sheetRepo and messenger may
// be nil; the summary is only sent when recipient is set.
func NewService(intents inventory.Intents, reports repository.ReportRepository, sheetRepo sheets.Repository, messenger Messenger, recipient string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inventory: intents,
		reports:   reports,
		sheets:    sheetRepo,
		messenger: messenger,
		recipient: recipient,
		location:  time.UTC,
		logger:    logger,
		now:       time.Now,
	}
}

// SetLocation sets the timezone reports are stamped and dated in. It should
// match the scheduler's, otherwise an evening report can carry the next
// day's date.
func (s *Service) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	s.location = loc
}

// BuildReport refreshes the inventory and captures it as of now, expressed
// in the service's location.
func (s *Service) BuildReport(ctx context.Context, now time.Time) (models.InventoryReport, error) {
	snapshot, err := s.inventory.Refresh(ctx)
	if err != nil {
		return models.InventoryReport{}, fmt.Errorf("load inventory: %w", err)
	}
	return models.NewInventoryReport(snapshot, now.In(s.location)), nil
}

// Summary renders a report as a short chat message.
func Summary(report models.InventoryReport) string {
	day := report.TakenAt.Format(dateLayout)
	if report.ItemCount == 0 {
		return fmt.Sprintf("Pantry (%s): empty.", day)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Pantry (%s): %d items, %d units.", day, report.ItemCount, report.TotalUnits)
	for _, item := range report.Items {
		fmt.Fprintf(&sb, "\n- %s: %d", item.DisplayName(), item.Quantity)
	}
	return sb.String()
}

// Publish builds a report and sends it to every configured destination. A
// failing destination does not stop the others; all failures are joined.
func (s *Service) Publish(ctx context.Context) (models.InventoryReport, error) {
	report, err := s.BuildReport(ctx, s.now())
	if err != nil {
		return report, err
	}

	var errs []error

	if s.reports != nil {
		if err := s.reports.SaveReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("save report: %w", err))
		}
	}

	if s.sheets != nil {
		if err := s.sheets.AppendRows(ctx, inventoryRange, sheetRows(report)); err != nil {
			errs = append(errs, fmt.Errorf("export report: %w", err))
		}
	}

	if s.messenger != nil && s.recipient != "" {
		req := models.OutboundMessageRequest{To: s.recipient, Message: Summary(report)}
		if err := s.messenger.SendOutbound(ctx, req); err != nil {
			errs = append(errs, fmt.Errorf("send report: %w", err))
		}
	}

	s.logger.Info("inventory report published",
		zap.Int("items", report.ItemCount),
		zap.Int("units", report.TotalUnits),
		zap.Int("failures", len(errs)))

	return report, errors.Join(errs...)
}

func sheetRows(report models.InventoryReport) [][]interface{} {
	day := report.TakenAt.Format(dateLayout)
	rows := make([][]interface{}, 0, len(report.Items))
	for _, item := range report.Items {
		rows = append(rows, []interface{}{day, item.Name, item.Quantity})
	}
	return rows
}
