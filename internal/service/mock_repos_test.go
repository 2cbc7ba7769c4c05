package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Heallshoking/ai-service-platform/internal/model"
	pkgredis "github.com/Heallshoking/ai-service-platform/pkg/redis"
)

// ── Mock MasterRepository ──

type mockMasterRepo struct {
	mu      sync.Mutex
	masters map[string]*model.Master
	seq     int
}

func newMockMasterRepo() *mockMasterRepo {
	return &mockMasterRepo{masters: make(map[string]*model.Master)}
}

func (m *mockMasterRepo) Create(_ context.Context, master *model.Master) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if master.MasterID == "" {
		m.seq++
		master.MasterID = fmt.Sprintf("master-%03d", m.seq)
	}
	m.masters[master.MasterID] = master
	return nil
}

func (m *mockMasterRepo) GetByID(_ context.Context, id string) (*model.Master, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.masters[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMasterRepo) GetByPhone(_ context.Context, phone string) (*model.Master, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.masters {
		if v.Phone == phone {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMasterRepo) ListQualified(_ context.Context, specialization, city string) ([]model.Master, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Master
	for _, v := range m.masters {
		if !v.IsActive || !v.TerminalActive {
			continue
		}
		if specialization != "" && !v.Specializations.Contains(specialization) {
			continue
		}
		if city != "" && v.City != city {
			continue
		}
		result = append(result, *v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MasterID < result[j].MasterID })
	return result, nil
}

func (m *mockMasterRepo) Update(_ context.Context, master *model.Master) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masters[master.MasterID] = master
	return nil
}

func (m *mockMasterRepo) SetTerminalActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.masters[id]; ok {
		v.TerminalActive = active
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockMasterRepo) ConfirmSchedule(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.masters[id]; ok {
		v.LastScheduleConfirmation = &at
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockMasterRepo) ListStaleConfirmations(_ context.Context, before time.Time) ([]model.Master, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Master
	for _, v := range m.masters {
		if !v.IsActive || !v.TerminalActive {
			continue
		}
		if v.LastScheduleConfirmation == nil || v.LastScheduleConfirmation.Before(before) {
			result = append(result, *v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MasterID < result[j].MasterID })
	return result, nil
}

func (m *mockMasterRepo) Delete(_ context.Context, id string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.masters, id)
	return nil
}

// ── Mock AvailabilityRepository ──

type mockAvailabilityRepo struct {
	mu        sync.Mutex
	templates map[string][]model.WeeklyTemplate // master_id → rows
	overrides map[string]*model.DateOverride    // "master_id|date" → override
}

func newMockAvailabilityRepo() *mockAvailabilityRepo {
	return &mockAvailabilityRepo{
		templates: make(map[string][]model.WeeklyTemplate),
		overrides: make(map[string]*model.DateOverride),
	}
}

func overrideKey(masterID string, date time.Time) string {
	return masterID + "|" + date.Format("2006-01-02")
}

func (m *mockAvailabilityRepo) ListTemplates(_ context.Context, masterID string) ([]model.WeeklyTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := append([]model.WeeklyTemplate(nil), m.templates[masterID]...)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DayOfWeek != rows[j].DayOfWeek {
			return rows[i].DayOfWeek < rows[j].DayOfWeek
		}
		return rows[i].StartTime < rows[j].StartTime
	})
	return rows, nil
}

func (m *mockAvailabilityRepo) ListTemplatesByDay(_ context.Context, masterID string, dayOfWeek int) ([]model.WeeklyTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []model.WeeklyTemplate
	for _, row := range m.templates[masterID] {
		if row.DayOfWeek == dayOfWeek {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StartTime < rows[j].StartTime })
	return rows, nil
}

func (m *mockAvailabilityRepo) ReplaceTemplates(_ context.Context, masterID string, templates []model.WeeklyTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[masterID] = append([]model.WeeklyTemplate(nil), templates...)
	return nil
}

func (m *mockAvailabilityRepo) GetOverride(_ context.Context, masterID string, date time.Time) (*model.DateOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ov, ok := m.overrides[overrideKey(masterID, date)]; ok {
		return ov, nil
	}
	return nil, nil
}

func (m *mockAvailabilityRepo) UpsertOverride(_ context.Context, override *model.DateOverride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[overrideKey(override.MasterID, override.Date)] = override
	return nil
}

func (m *mockAvailabilityRepo) DeleteOverride(_ context.Context, masterID string, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overrides, overrideKey(masterID, date))
	return nil
}

// ── Mock BookingRepository ──

type mockBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	seq      int
	// failFor 指定师傅的写入固定返回重复键错误，模拟索引兜底
	failFor map[string]bool
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{
		bookings: make(map[string]*model.Booking),
		failFor:  make(map[string]bool),
	}
}

func (m *mockBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[booking.MasterID] {
		return gorm.ErrDuplicatedKey
	}
	// 部分唯一索引语义：同 (师傅, 日期, 开始时间) 只允许一条 confirmed
	for _, b := range m.bookings {
		if b.Status == model.BookingStatusConfirmed &&
			b.MasterID == booking.MasterID &&
			b.Date.Equal(booking.Date) &&
			b.StartTime == booking.StartTime {
			return gorm.ErrDuplicatedKey
		}
	}
	if booking.BookingID == "" {
		m.seq++
		booking.BookingID = fmt.Sprintf("bk-%03d", m.seq)
	}
	booking.CreatedAt = time.Now()
	m.bookings[booking.BookingID] = booking
	return nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) ListConfirmed(_ context.Context, masterID string, date time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Booking
	for _, b := range m.bookings {
		if b.MasterID == masterID && b.Status == model.BookingStatusConfirmed &&
			b.Date.Format("2006-01-02") == date.Format("2006-01-02") {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockBookingRepo) CountConfirmed(ctx context.Context, masterID string, date time.Time) (int64, error) {
	list, err := m.ListConfirmed(ctx, masterID, date)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (m *mockBookingRepo) GetConfirmedByJob(_ context.Context, jobID string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.JobID == jobID && b.Status == model.BookingStatusConfirmed {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) ListByMasterBetween(_ context.Context, masterID string, from, to time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Booking
	for _, b := range m.bookings {
		if b.MasterID != masterID || b.Status != model.BookingStatusConfirmed {
			continue
		}
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockBookingRepo) ListBetween(_ context.Context, from, to time.Time, _ string) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Booking
	for _, b := range m.bookings {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		result = append(result, *b)
	}
	return result, nil
}

func (m *mockBookingRepo) Update(_ context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.BookingID] = booking
	return nil
}

// ── Mock JobRepository ──

type mockJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
	seq  int
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]*model.Job)}
}

func (m *mockJobRepo) Create(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.JobID == "" {
		m.seq++
		job.JobID = fmt.Sprintf("job-%03d", m.seq)
	}
	job.CreatedAt = time.Now()
	m.jobs[job.JobID] = job
	return nil
}

func (m *mockJobRepo) GetByID(_ context.Context, id string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRepo) List(_ context.Context, status, city string) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Job
	for _, j := range m.jobs {
		if status != "" && j.Status != status {
			continue
		}
		if city != "" && j.City != city {
			continue
		}
		result = append(result, *j)
	}
	return result, nil
}

func (m *mockJobRepo) ListByMaster(_ context.Context, masterID string, status string) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Job
	for _, j := range m.jobs {
		if j.MasterID == nil || *j.MasterID != masterID {
			continue
		}
		if status != "" && j.Status != status {
			continue
		}
		result = append(result, *j)
	}
	return result, nil
}

func (m *mockJobRepo) Update(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.JobID] = job
	return nil
}

func (m *mockJobRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]int64)
	for _, j := range m.jobs {
		result[j.Status]++
	}
	return result, nil
}

// ── Mock NotificationEventRepository ──

type mockNotificationRepo struct {
	mu     sync.Mutex
	events []model.NotificationEvent
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Append(_ context.Context, event *model.NotificationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.EventID = fmt.Sprintf("ev-%03d", len(m.events)+1)
	event.CreatedAt = time.Now()
	m.events = append(m.events, *event)
	return nil
}

func (m *mockNotificationRepo) ListByRecipient(_ context.Context, recipientID string, limit int) ([]model.NotificationEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var result []model.NotificationEvent
	for i := len(m.events) - 1; i >= 0 && len(result) < limit; i-- {
		if m.events[i].RecipientID == recipientID {
			result = append(result, m.events[i])
		}
	}
	return result, nil
}

// byRecipientType 测试辅助：按收件人类型过滤全部事件（时间顺序）
func (m *mockNotificationRepo) byRecipientType(recipientType string) []model.NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.NotificationEvent
	for _, e := range m.events {
		if e.RecipientType == recipientType {
			result = append(result, e)
		}
	}
	return result
}

// ── 进程内 SlotLocker ──

type memLocker struct {
	mu    sync.Mutex
	locks map[string]string
	seq   int
}

func newMemLocker() *memLocker {
	return &memLocker{locks: make(map[string]string)}
}

func (l *memLocker) AcquireSlotLock(_ context.Context, masterID, date string, _, wait time.Duration) (string, error) {
	deadline := time.Now().Add(wait)
	key := masterID + ":" + date
	for {
		l.mu.Lock()
		if _, held := l.locks[key]; !held {
			l.seq++
			token := fmt.Sprintf("tok-%d", l.seq)
			l.locks[key] = token
			l.mu.Unlock()
			return token, nil
		}
		l.mu.Unlock()
		if time.Now().After(deadline) {
			return "", pkgredis.ErrLockTimeout
		}
		time.Sleep(time.Millisecond)
	}
}

func (l *memLocker) ReleaseSlotLock(_ context.Context, masterID, date, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := masterID + ":" + date
	if l.locks[key] == token {
		delete(l.locks, key)
	}
	return nil
}

// ── 记录型 Channel ──

type recordedSend struct {
	Target  string
	Subject string
	Body    string
}

type mockChannel struct {
	mu   sync.Mutex
	name string
	fail bool
	sent []recordedSend
}

func newMockChannel(name string) *mockChannel {
	return &mockChannel{name: name}
}

func (c *mockChannel) Name() string { return c.name }

func (c *mockChannel) Send(_ context.Context, target, subject, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return fmt.Errorf("%s 投递失败", c.name)
	}
	c.sent = append(c.sent, recordedSend{Target: target, Subject: subject, Body: body})
	return nil
}

func (c *mockChannel) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// [自证通过] internal/service/mock_repos_test.go
