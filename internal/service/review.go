package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pathbound/pathbound/internal/model"
	openai "github.com/sashabaranov/go-openai"
)

var ErrReviewUnavailable = errors.New("review service is not configured")

// ReviewService wraps the external AI coaching endpoint. It is a pure
// request/response collaborator: nothing it returns ever mutates
// roadmap state.
type ReviewService struct {
	client *openai.Client
	model  string
}

func NewReviewService(apiKey, chatModel string) *ReviewService {
	s := &ReviewService{model: chatModel}
	if chatModel == "" {
		s.model = openai.GPT4oMini
	}
	if apiKey != "" {
		s.client = openai.NewClient(apiKey)
	}
	return s
}

// ReviewGoal asks the coaching model for feedback on one goal and its
// milestones.
func (s *ReviewService) ReviewGoal(ctx context.Context, goal *model.Goal) (string, error) {
	if s.client == nil {
		return "", ErrReviewUnavailable
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are a career coach for students. Review the goal below and give short, " +
					"concrete feedback: is it specific enough, are the milestones in a sensible order, " +
					"and what is missing. Answer in the language the goal is written in.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: reviewPrompt(goal),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("review request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("review request returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func reviewPrompt(goal *model.Goal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n", goal.Title)
	if goal.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", goal.Description)
	}
	fmt.Fprintf(&b, "Category: %s\nPriority: %d\nStatus: %s\n", goal.Category, goal.Priority, goal.Status)
	if goal.TargetDate != nil {
		fmt.Fprintf(&b, "Target date: %s\n", goal.TargetDate.Format("2006-01-02"))
	}
	if len(goal.Milestones) > 0 {
		b.WriteString("Milestones:\n")
		for _, m := range goal.Milestones {
			mark := " "
			if m.IsCompleted {
				mark = "x"
			}
			fmt.Fprintf(&b, "  [%s] %s\n", mark, m.Title)
		}
	}
	return b.String()
}
