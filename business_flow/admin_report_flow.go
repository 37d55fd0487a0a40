package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/saathi-care/listener-platform/app/dto"
	"github.com/saathi-care/listener-platform/models"
	"github.com/saathi-care/listener-platform/repository"
	"github.com/saathi-care/listener-platform/utils"
)

// AdminReportFlow produces the admin dashboard aggregates and the XLSX
// earnings export.
type AdminReportFlow interface {
	DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error)
	ExportEarningsXLSX(ctx context.Context, req *dto.ExportEarningsRequest) (string, []byte, error)
}

// AdminReportFlowImpl implements the admin reporting business flow
type AdminReportFlowImpl struct {
	applicationRepo repository.ApplicationRepository
	listenerRepo    repository.ListenerRepository
	earningRepo     repository.EarningRepository
}

// NewAdminReportFlow creates a new admin report flow instance
func NewAdminReportFlow(
	applicationRepo repository.ApplicationRepository,
	listenerRepo repository.ListenerRepository,
	earningRepo repository.EarningRepository,
) AdminReportFlow {
	return &AdminReportFlowImpl{
		applicationRepo: applicationRepo,
		listenerRepo:    listenerRepo,
		earningRepo:     earningRepo,
	}
}

// DashboardStats assembles the admin overview counters
func (s *AdminReportFlowImpl) DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	resp := &dto.DashboardStatsResponse{}

	pendingStatus := models.ApplicationStatusPending
	pending, err := s.applicationRepo.Count(ctx, models.ApplicationFilter{Status: &pendingStatus})
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to count pending applications", err)
	}
	resp.PendingApplications = pending

	resp.ActiveListeners, err = s.countListenersByStatus(ctx, models.ListenerStatusActive)
	if err != nil {
		return nil, err
	}
	resp.OnboardingListeners, err = s.countListenersByStatus(ctx, models.ListenerStatusOnboardingRequired)
	if err != nil {
		return nil, err
	}
	resp.SuspendedListeners, err = s.countListenersByStatus(ctx, models.ListenerStatusSuspended)
	if err != nil {
		return nil, err
	}

	availability := models.AvailabilityAvailable
	activeStatus := models.ListenerStatusActive
	available, err := s.listenerRepo.Count(ctx, models.ListenerFilter{Status: &activeStatus, Availability: &availability})
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to count available listeners", err)
	}
	resp.AvailableListeners = available

	totals, err := s.earningRepo.TotalsBetween(ctx, time.Time{}, utils.UTCNow())
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to aggregate earnings", err)
	}
	resp.TotalEarnings = totals.ListenerTotal
	resp.PlatformEarnings = totals.PlatformTotal
	resp.SettledCalls = totals.CallRecords
	resp.SettledMessages = totals.ChatRecords

	minutes, err := s.listenerRepo.SumTalkMinutes(ctx)
	if err != nil {
		return nil, NewBusinessError(CodeInternal, "Failed to sum talk minutes", err)
	}
	resp.TotalTalkMinutes = minutes

	return resp, nil
}

// ExportEarningsXLSX builds a workbook with one sheet per session type for
// the requested period and returns the filename and file bytes.
func (s *AdminReportFlowImpl) ExportEarningsXLSX(ctx context.Context, req *dto.ExportEarningsRequest) (string, []byte, error) {
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return "", nil, NewBusinessError(CodeInvalidArgument, "Invalid from date", err)
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		return "", nil, NewBusinessError(CodeInvalidArgument, "Invalid to date", err)
	}
	if from.After(to) {
		return "", nil, NewBusinessError(CodeInvalidArgument, "Start date cannot be after end date", ErrStartDateAfterEndDate)
	}
	// Make the range inclusive of the final day.
	to = to.AddDate(0, 0, 1)

	filter := models.EarningRecordFilter{OccurredAfter: &from, OccurredBefore: &to}
	records, err := s.earningRepo.ByFilter(ctx, filter, "occurred_at ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError(CodeInternal, "Failed to fetch earning records", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	bySessionType := map[string][]*models.EarningRecord{}
	for _, r := range records {
		bySessionType[r.SessionType] = append(bySessionType[r.SessionType], r)
	}

	// Fixed sheet order; both sheets exist even when empty.
	sheets := []struct {
		name        string
		sessionType string
	}{
		{"calls", models.SessionTypeCall},
		{"messages", models.SessionTypeMessage},
	}

	for i, sheet := range sheets {
		name := sanitizeSheetName(sheet.name)
		if i == 0 {
			xl.SetSheetName(xl.GetSheetName(0), name)
		} else {
			_, _ = xl.NewSheet(name)
		}

		header := []string{"source_id", "listener_uid", "counterparty", "amount", "platform_amount", "occurred_at"}
		_ = xl.SetSheetRow(name, "A1", &header)

		for ri, r := range bySessionType[sheet.sessionType] {
			record := []any{
				r.SourceID,
				r.ListenerUID,
				r.CounterpartyName,
				r.Amount,
				r.PlatformAmount,
				r.OccurredAt.UTC().Format(time.RFC3339),
			}
			cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
			_ = xl.SetSheetRow(name, cellRef, &record)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError(CodeInternal, "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("earnings_%s_%s.xlsx", req.From, req.To)
	return filename, buf.Bytes(), nil
}

func (s *AdminReportFlowImpl) countListenersByStatus(ctx context.Context, status string) (int64, error) {
	count, err := s.listenerRepo.Count(ctx, models.ListenerFilter{Status: &status})
	if err != nil {
		return 0, NewBusinessError(CodeInternal, fmt.Sprintf("Failed to count %s listeners", status), err)
	}
	return count, nil
}

func sanitizeSheetName(name string) string {
	// Excel sheet names cannot contain: : \ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := replacer.Replace(name)
	return truncateSheetName(strings.TrimSpace(safe))
}

func truncateSheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
