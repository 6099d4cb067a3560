package chatbot

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/skinscan/pkg/errors"
	"github.com/yanqian/skinscan/pkg/metrics"
)

// Service exposes the assistant to transports.
type Service interface {
	Respond(ctx context.Context, req Request) Response
	Trending(ctx context.Context) ([]TrendingQuery, error)
}

type service struct {
	cfg       Config
	responder *Responder
	store     Store
	logger    *slog.Logger
}

// NewService wires up the chat domain.
func NewService(cfg Config, responder *Responder, store Store, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		responder: responder,
		store:     store,
		logger:    logger.With("component", "chatbot.service"),
	}
}

func (s *service) Respond(ctx context.Context, req Request) Response {
	reply := s.responder.Resolve(req.Message)
	metrics.ChatReplies.WithLabelValues(string(reply.Source)).Inc()

	if reply.Normalized != "" {
		if err := s.store.IncrementQuery(ctx, reply.Normalized, strings.TrimSpace(req.Message)); err != nil {
			s.logger.Warn("chat trending increment failed", "error", err)
		}
	}
	s.logger.Debug("chat reply", "source", reply.Source, "score", reply.Score)

	return Response{
		Message:         req.Message,
		Reply:           reply.Text,
		Source:          reply.Source,
		MatchedQuestion: reply.MatchedQuestion,
		Intent:          reply.Intent,
		Score:           reply.Score,
	}
}

func (s *service) Trending(ctx context.Context) ([]TrendingQuery, error) {
	recs, err := s.store.TopQueries(ctx, s.cfg.TopTrending)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeChat, "failed to load trending questions", err)
	}
	return recs, nil
}
