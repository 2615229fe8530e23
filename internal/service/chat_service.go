// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"pytutor-go/internal/apperr"
	"pytutor-go/internal/model"
	"pytutor-go/internal/repository"
	"pytutor-go/pkg/gemini"
	"pytutor-go/pkg/log"
)

// correctSentinel 是提示词约定的"回答正确"哨兵短语。
const correctSentinel = "That's correct!"

// challengePattern 匹配提示词约定的编程挑战双字段块。
// 匹配是尽力而为的字符串提取，不是严格文法，未命中不算错误。
var (
	challengePattern = regexp.MustCompile(`(?s)CHALLENGE:(.*?)\nEXPECTED OUTPUT:(.*)`)
	challengeStrip   = regexp.MustCompile(`(?s)CHALLENGE:.*$`)
)

// ChatRequest 是经过校验的聊天请求。
type ChatRequest struct {
	UserID        string
	Messages      []model.ChatMessage
	TutorName     string
	TutorGreeting string
	TutorStyle    string
}

// ChatResult 是一次聊天调用的结果。
type ChatResult struct {
	Content        string `json:"content"`
	Correct        bool   `json:"correct,omitempty"`
	Challenge      string `json:"challenge,omitempty"`
	ExpectedOutput string `json:"expectedOutput,omitempty"`
}

// ChatService 定义了聊天编排的接口。
type ChatService interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)
}

type chatService struct {
	conversationRepo repository.ConversationRepository
	settingService   SettingService
	llmClient        gemini.Client
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(conversationRepo repository.ConversationRepository, settingService SettingService, llmClient gemini.Client) ChatService {
	return &chatService{
		conversationRepo: conversationRepo,
		settingService:   settingService,
		llmClient:        llmClient,
	}
}

// Chat 执行聊天管线。副作用顺序是固定的：
// 先把客户端提交的消息列表落库（保证模型调用中途失败不丢用户消息），
// 再调用模型，成功后把助手回复追加落库。中途失败时对话里只留下用户消息，
// 下次读取历史即可恢复，客户端重新提交即视为重试。
func (s *chatService) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	// 1. 先持久化用户提交的消息列表
	stored := stampMessages(req.Messages)
	if err := s.conversationRepo.Upsert(ctx, req.UserID, req.TutorName, stored); err != nil {
		return nil, fmt.Errorf("保存对话历史失败: %w", err)
	}

	// 2. 解析 Gemini API Key（带缓存），缺失时无法继续
	apiKey, err := s.settingService.GetValue(ctx, model.SettingKeyGeminiAPIKey)
	if err != nil {
		return nil, err
	}

	// 3. 规范化历史：模型要求对话以用户消息开头
	valid := req.Messages
	if len(valid) > 0 && valid[0].Role != model.RoleChatUser {
		valid = valid[1:]
	}
	if len(valid) == 0 || valid[len(valid)-1].Role != model.RoleChatUser {
		return nil, apperr.ErrInvalidConversationState
	}
	lastUserMessage := valid[len(valid)-1].Content

	// 4. 组装系统指令并调用模型，最后一条用户消息与指令拼接后发送
	instructions := buildTeacherInstructions(req.TutorName, req.TutorGreeting, req.TutorStyle)
	history := toGeminiHistory(valid[:len(valid)-1])
	responseText, err := s.llmClient.Generate(ctx, apiKey, history, instructions+lastUserMessage)
	if err != nil {
		log.Errorf("Gemini generate failed: %v", err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
	}

	// 5. 容错解析哨兵短语与挑战块
	result := parseReply(responseText)

	// 6. 追加助手回合并再次落库
	assistant := model.ChatMessage{
		Role:      model.RoleChatAssistant,
		Content:   result.Content,
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
	}
	updated := append(stored, assistant)
	if err := s.conversationRepo.Upsert(ctx, req.UserID, req.TutorName, updated); err != nil {
		return nil, fmt.Errorf("保存助手回复失败: %w", err)
	}

	return result, nil
}

// stampMessages 为客户端提交的消息补齐时间戳，内容本身原样保留。
func stampMessages(messages []model.ChatMessage) model.MessageList {
	now := time.Now()
	stored := make(model.MessageList, len(messages))
	for i, m := range messages {
		if m.Timestamp.IsZero() {
			m.Timestamp = now
		}
		stored[i] = m
	}
	return stored
}

// buildTeacherInstructions 按导师人设组装固定模板的教学指令。
func buildTeacherInstructions(tutorName, tutorGreeting, tutorStyle string) string {
	var sb strings.Builder
	sb.WriteString("ROLE: ")
	sb.WriteString(tutorName)
	sb.WriteString("\nGREETING: ")
	sb.WriteString(tutorGreeting)
	sb.WriteString("\nSTYLE: ")
	sb.WriteString(tutorStyle)
	sb.WriteString("\nTASK: Teach Python to children using simple language, fun examples, and engaging explanations.\n")
	sb.WriteString("RESPONSE FORMAT:\n")
	sb.WriteString("- For correct answers: Include \"That's correct!\" and add 3 emojis\n")
	sb.WriteString("- For code challenges: Use format \"CHALLENGE:[task description]\\nEXPECTED OUTPUT:[expected result]\"\n")
	return sb.String()
}

// toGeminiHistory 把存储角色映射为 Gemini 的 user/model 角色。
func toGeminiHistory(messages []model.ChatMessage) []gemini.Message {
	history := make([]gemini.Message, 0, len(messages))
	for _, m := range messages {
		role := "model"
		if m.Role == model.RoleChatUser {
			role = "user"
		}
		history = append(history, gemini.Message{Role: role, Text: m.Content})
	}
	return history
}

// parseReply 对模型回复做容错解析：
// 命中哨兵短语置 correct，命中挑战块提取两个字段并从正文中剥离。
func parseReply(responseText string) *ChatResult {
	text := strings.TrimSpace(responseText)
	result := &ChatResult{Content: text}

	if strings.Contains(text, correctSentinel) {
		result.Correct = true
	}
	if m := challengePattern.FindStringSubmatch(text); m != nil {
		result.Challenge = strings.TrimSpace(m[1])
		result.ExpectedOutput = strings.TrimSpace(m[2])
		result.Content = strings.TrimSpace(challengeStrip.ReplaceAllString(text, ""))
	}
	return result
}
