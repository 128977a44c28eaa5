package service

import (
	"context"
	"lingua_backend/internal/model"
	"strings"
)

type ConversationRequest struct {
	Message string     `json:"message" binding:"required"`
	History []ChatTurn `json:"history" binding:"dive"`
}

type ConversationReply struct {
	Language model.LearningLanguage `json:"language"`
	Reply    string                 `json:"reply"`
}

// ConversationService 按档案中的学习语言进行对话陪练，不影响红心和经验
type ConversationService struct {
	profiles *ProfileService
	ai       *AIService
}

func NewConversationService(profiles *ProfileService, ai *AIService) *ConversationService {
	return &ConversationService{profiles: profiles, ai: ai}
}

func (s *ConversationService) Reply(ctx context.Context, userID uint, displayName string, req ConversationRequest) (*ConversationReply, error) {
	profile, err := s.profiles.GetProfile(ctx, userID, displayName)
	if err != nil {
		return nil, err
	}

	// 未选择语言时默认西班牙语
	lang := model.LanguageSpanish
	if profile.LearningLanguage != nil && profile.LearningLanguage.Valid() {
		lang = *profile.LearningLanguage
	}

	reply := s.ai.Converse(ctx, strings.TrimSpace(req.Message), req.History, string(lang))
	return &ConversationReply{Language: lang, Reply: reply}, nil
}
