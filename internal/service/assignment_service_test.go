package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Heallshoking/ai-service-platform/internal/dto"
	"github.com/Heallshoking/ai-service-platform/internal/model"
)

// ── RankCandidates 测试 ──

func TestRankCandidates_RatingThenLoad(t *testing.T) {
	cands := []Candidate{
		{Master: model.Master{MasterID: "m-a", Rating: 4.8}, Load: 3},
		{Master: model.Master{MasterID: "m-b", Rating: 4.8}, Load: 1},
		{Master: model.Master{MasterID: "m-c", Rating: 4.9}, Load: 5},
	}

	// 评分优先；评分相同时负载小者在前
	ranked := RankCandidates(cands)
	got := []string{ranked[0].Master.MasterID, ranked[1].Master.MasterID, ranked[2].Master.MasterID}
	want := []string{"m-c", "m-b", "m-a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("期望顺序=%v，实际=%v", want, got)
		}
	}
}

func TestRankCandidates_TieBreakByMasterID(t *testing.T) {
	cands := []Candidate{
		{Master: model.Master{MasterID: "m-b", Rating: 5.0}, Load: 1},
		{Master: model.Master{MasterID: "m-a", Rating: 5.0}, Load: 1},
	}

	ranked := RankCandidates(cands)
	if ranked[0].Master.MasterID != "m-a" {
		t.Errorf("同分应按 master_id 升序，实际首位=%s", ranked[0].Master.MasterID)
	}
}

func TestRankCandidates_Deterministic(t *testing.T) {
	cands := []Candidate{
		{Master: model.Master{MasterID: "m-1", Rating: 4.5}, Load: 2},
		{Master: model.Master{MasterID: "m-2", Rating: 4.9}, Load: 4},
		{Master: model.Master{MasterID: "m-3", Rating: 4.5}, Load: 2},
		{Master: model.Master{MasterID: "m-4", Rating: 3.0}, Load: 0},
	}

	first := RankCandidates(cands)
	for i := 0; i < 10; i++ {
		again := RankCandidates(cands)
		for j := range first {
			if first[j].Master.MasterID != again[j].Master.MasterID {
				t.Fatalf("第%d次排序结果不一致", i)
			}
		}
	}
	// 输入不被就地修改
	if cands[0].Master.MasterID != "m-1" {
		t.Errorf("RankCandidates 不应修改输入切片")
	}
}

// ── Search 测试 ──

func TestAssignmentService_Search_FiltersBusyMasters(t *testing.T) {
	env := newTestEnv()
	env.addMaster("m-001", "张师傅", 5.0, "水管维修")
	env.addMaster("m-002", "李师傅", 4.5, "水管维修")
	// m-001 的 10:00–11:00 已被占用
	_ = env.bookingRepo.Create(context.Background(), &model.Booking{
		MasterID:        "m-001",
		JobID:           "job-x",
		Date:            testMonday,
		StartTime:       "10:00",
		DurationMinutes: 60,
		Status:          model.BookingStatusConfirmed,
	})

	cands, err := env.assignment.Search(context.Background(),
		"水管维修", "喀山", testMonday,
		&model.TimeRange{Start: 10 * 60, End: 11 * 60})
	if err != nil {
		t.Fatalf("Search 应成功: %v", err)
	}
	if len(cands) != 1 || cands[0].Master.MasterID != "m-002" {
		t.Errorf("期望仅 m-002 入选，实际=%v", cands)
	}
}

func TestAssignmentService_Search_SkipsInvalidAvailability(t *testing.T) {
	env := newTestEnv()
	env.addMaster("m-001", "张师傅", 5.0, "水管维修")
	env.addMaster("m-002", "李师傅", 4.5, "水管维修")
	// m-001 的模板数据被破坏（结束早于开始），不应拖垮整次筛选
	_ = env.availRepo.ReplaceTemplates(context.Background(), "m-001", []model.WeeklyTemplate{
		{MasterID: "m-001", DayOfWeek: 0, StartTime: "12:00", EndTime: "10:00"},
	})

	cands, err := env.assignment.Search(context.Background(),
		"水管维修", "喀山", testMonday,
		&model.TimeRange{Start: 10 * 60, End: 11 * 60})
	if err != nil {
		t.Fatalf("Search 应成功: %v", err)
	}
	if len(cands) != 1 || cands[0].Master.MasterID != "m-002" {
		t.Errorf("排班数据非法的师傅应被跳过，实际=%v", cands)
	}
}

func TestAssignmentService_Search_NoWindowTakesFirstFreeRange(t *testing.T) {
	env := newTestEnv()
	env.addMaster("m-001", "张师傅", 5.0, "水管维修")
	// 当日前半段已被占用，空闲从 12:00 开始
	_ = env.bookingRepo.Create(context.Background(), &model.Booking{
		MasterID:        "m-001",
		JobID:           "job-x",
		Date:            testMonday,
		StartTime:       "08:00",
		DurationMinutes: 240,
		Status:          model.BookingStatusConfirmed,
	})

	cands, err := env.assignment.Search(context.Background(), "水管维修", "喀山", testMonday, nil)
	if err != nil {
		t.Fatalf("Search 应成功: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("期望 1 个候选，实际=%d", len(cands))
	}
	if cands[0].Slot.Start != 12*60 || cands[0].Slot.End != 20*60 {
		t.Errorf("未指定时段应取第一个空闲时段，实际=%v", cands[0].Slot)
	}
}

func TestAssignmentService_SearchResponse(t *testing.T) {
	env := newTestEnv()
	env.addMaster("m-001", "张师傅", 5.0, "水管维修")

	resp, err := env.assignment.SearchResponse(context.Background(), &dto.SearchMastersRequest{
		Category: "水管维修",
		City:     "喀山",
		Date:     "2026-08-31",
		Start:    "10:00",
		End:      "11:00",
	})
	if err != nil {
		t.Fatalf("SearchResponse 应成功: %v", err)
	}
	if len(resp) != 1 || resp[0].MasterID != "m-001" {
		t.Fatalf("期望返回 m-001，实际=%v", resp)
	}
	if resp[0].Slot.Start != "10:00" || resp[0].Slot.End != "11:00" {
		t.Errorf("槽位应回显请求时段，实际=%v", resp[0].Slot)
	}
}

func TestAssignmentService_SearchResponse_BadDate(t *testing.T) {
	env := newTestEnv()

	_, err := env.assignment.SearchResponse(context.Background(), &dto.SearchMastersRequest{
		Category: "水管维修",
		City:     "喀山",
		Date:     "31-08-2026",
	})
	if !errors.Is(err, ErrBadDate) {
		t.Errorf("期望 ErrBadDate，实际=%v", err)
	}
}

func TestAssignmentService_SearchResponse_BadWindow(t *testing.T) {
	env := newTestEnv()

	for _, tc := range []struct{ start, end string }{
		{"10:60", "11:00"}, // 分钟越界
		{"11:00", "10:00"}, // 结束早于开始
	} {
		_, err := env.assignment.SearchResponse(context.Background(), &dto.SearchMastersRequest{
			Category: "水管维修",
			City:     "喀山",
			Date:     "2026-08-31",
			Start:    tc.start,
			End:      tc.end,
		})
		if !errors.Is(err, ErrInvalidAvailability) {
			t.Errorf("时段 %s-%s 期望 ErrInvalidAvailability，实际=%v", tc.start, tc.end, err)
		}
	}
}

func TestAssignmentService_Search_WrongSpecialization(t *testing.T) {
	env := newTestEnv()
	env.addMaster("m-001", "张师傅", 5.0, "电路维修")

	cands, err := env.assignment.Search(context.Background(),
		"水管维修", "喀山", testMonday,
		&model.TimeRange{Start: 10 * 60, End: 11 * 60})
	if err != nil {
		t.Fatalf("Search 应成功: %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("专长不符不应入选，实际=%v", cands)
	}
}

// ── AssignJob 测试 ──

func makePendingJob(env *testEnv, category string) *model.Job {
	job := &model.Job{
		ClientName:         "伊万",
		ClientPhone:        "+79001234567",
		Category:           category,
		ProblemDescription: "厨房水管漏水",
		Address:            "普希金街 10 号",
		City:               "喀山",
		DurationMinutes:    60,
		Status:             model.JobStatusPending,
	}
	_ = env.jobRepo.Create(context.Background(), job)
	return job
}

func TestAssignmentService_AssignJob_PicksBestCandidate(t *testing.T) {
	env := newTestEnv()
	env.addMaster("m-001", "张师傅", 4.0, "水管维修")
	env.addMaster("m-002", "李师傅", 4.9, "水管维修")

	job := makePendingJob(env, "水管维修")
	pd := testMonday
	job.PreferredDate = &pd
	_ = env.jobRepo.Update(context.Background(), job)

	resp, err := env.assignment.AssignJob(context.Background(), job.JobID)
	if err != nil {
		t.Fatalf("AssignJob 应成功: %v", err)
	}
	if resp.Job.Status != model.JobStatusAssigned {
		t.Errorf("期望订单状态=assigned，实际=%s", resp.Job.Status)
	}
	if resp.Job.MasterID == nil || *resp.Job.MasterID != "m-002" {
		t.Errorf("期望评分更高的 m-002 中选，实际=%v", resp.Job.MasterID)
	}
	if resp.Booking == nil || resp.Booking.MasterID != "m-002" {
		t.Errorf("预订应落在 m-002 名下: %+v", resp.Booking)
	}
	if resp.Attempts != 1 {
		t.Errorf("期望一次提交成功，实际=%d", resp.Attempts)
	}
}

func TestAssignmentService_AssignJob_NotifiesMasterAndClient(t *testing.T) {
	env := newTestEnv()
	env.addMaster("m-001", "张师傅", 5.0, "水管维修")
	job := makePendingJob(env, "水管维修")

	if _, err := env.assignment.AssignJob(context.Background(), job.JobID); err != nil {
		t.Fatalf("AssignJob 应成功: %v", err)
	}

	masterEvents := env.notifyRepo.byRecipientType(model.RecipientMaster)
	if len(masterEvents) != 1 || masterEvents[0].EventType != model.NotifyNewJobAssigned {
		t.Errorf("师傅应收到 new_job_assigned，实际=%v", masterEvents)
	}
	clientEvents := env.notifyRepo.byRecipientType(model.RecipientClient)
	if len(clientEvents) == 0 || clientEvents[len(clientEvents)-1].EventType != model.NotifyMasterAssigned {
		t.Errorf("客户应收到 master_assigned，实际=%v", clientEvents)
	}
}

func TestAssignmentService_AssignJob_FallsToNextCandidate(t *testing.T) {
	env := newTestEnv()
	env.addMaster("m-001", "张师傅", 4.0, "水管维修")
	env.addMaster("m-002", "李师傅", 4.9, "水管维修")
	// 最优候选 m-002 的写入固定撞唯一索引，模拟并发抢单
	env.bookingRepo.failFor["m-002"] = true

	job := makePendingJob(env, "水管维修")
	resp, err := env.assignment.AssignJob(context.Background(), job.JobID)
	if err != nil {
		t.Fatalf("AssignJob 应降级到次优候选: %v", err)
	}
	if resp.Job.MasterID == nil || *resp.Job.MasterID != "m-001" {
		t.Errorf("期望次优 m-001 中选，实际=%v", resp.Job.MasterID)
	}
	if resp.Attempts != 2 {
		t.Errorf("期望2次尝试，实际=%d", resp.Attempts)
	}
}

func TestAssignmentService_AssignJob_NoQualifiedMasters(t *testing.T) {
	env := newTestEnv()
	job := makePendingJob(env, "水管维修")

	_, err := env.assignment.AssignJob(context.Background(), job.JobID)
	if !errors.Is(err, ErrNoQualifiedMasters) {
		t.Fatalf("期望 ErrNoQualifiedMasters，实际=%v", err)
	}

	opEvents := env.notifyRepo.byRecipientType(model.RecipientOperator)
	if len(opEvents) == 0 || opEvents[0].EventType != model.NotifyAssignmentFailed {
		t.Errorf("运营应收到 assignment_failed，实际=%v", opEvents)
	}
	clientEvents := env.notifyRepo.byRecipientType(model.RecipientClient)
	if len(clientEvents) == 0 || clientEvents[0].EventType != model.NotifyNoAvailability {
		t.Errorf("客户应收到 no_availability，实际=%v", clientEvents)
	}
}

func TestAssignmentService_AssignJob_NotPending(t *testing.T) {
	env := newTestEnv()
	env.addMaster("m-001", "张师傅", 5.0, "水管维修")
	job := makePendingJob(env, "水管维修")
	job.Status = model.JobStatusAssigned
	_ = env.jobRepo.Update(context.Background(), job)

	_, err := env.assignment.AssignJob(context.Background(), job.JobID)
	if !errors.Is(err, ErrJobNotPending) {
		t.Errorf("期望 ErrJobNotPending，实际=%v", err)
	}
}

func TestAssignmentService_AssignJob_PreferredSlotBusyEverywhere(t *testing.T) {
	env := newTestEnv()
	env.addMaster("m-001", "张师傅", 5.0, "水管维修")

	job := makePendingJob(env, "水管维修")
	pd := testMonday
	start, end := "10:00", "11:00"
	job.PreferredDate = &pd
	job.PreferredStart = &start
	job.PreferredEnd = &end
	_ = env.jobRepo.Update(context.Background(), job)

	_ = env.bookingRepo.Create(context.Background(), &model.Booking{
		MasterID:        "m-001",
		JobID:           "job-x",
		Date:            testMonday,
		StartTime:       "10:00",
		DurationMinutes: 60,
		Status:          model.BookingStatusConfirmed,
	})

	_, err := env.assignment.AssignJob(context.Background(), job.JobID)
	if !errors.Is(err, ErrNoFreeSlot) {
		t.Errorf("期望 ErrNoFreeSlot，实际=%v", err)
	}
}

// [自证通过] internal/service/assignment_service_test.go
