package chatstore

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/skinscan/internal/domain/chatbot"
)

const defaultDisplayTTL = 30 * 24 * time.Hour

// ValkeyStore keeps question counts in a Valkey sorted set trimmed to
// maxTracked members. Display texts live in their own keys and expire after
// displayTTL without a new ask.
type ValkeyStore struct {
	client     valkey.Client
	prefix     string
	maxTracked int
	displayTTL time.Duration
}

// NewValkeyStore constructs a store; prefix namespaces every key.
func NewValkeyStore(client valkey.Client, prefix string, maxTracked int, displayTTL time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "skinscan:chat"
	}
	if maxTracked <= 0 {
		maxTracked = DefaultMaxTracked
	}
	if displayTTL <= 0 {
		displayTTL = defaultDisplayTTL
	}
	return &ValkeyStore{client: client, prefix: prefix, maxTracked: maxTracked, displayTTL: displayTTL}
}

func (s *ValkeyStore) IncrementQuery(ctx context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	for _, cmd := range s.incrementCommands(canonical, display) {
		if err := s.client.Do(ctx, cmd).Error(); err != nil {
			return err
		}
	}
	return nil
}

// incrementCommands bumps the counter, trims the lowest ranked members past
// maxTracked, and refreshes the display key's expiry.
func (s *ValkeyStore) incrementCommands(canonical, display string) valkey.Commands {
	cmds := valkey.Commands{
		s.client.B().Zincrby().Key(s.trendingKey()).Increment(1).Member(canonical).Build(),
		s.client.B().Zremrangebyrank().Key(s.trendingKey()).Start(0).Stop(int64(-s.maxTracked - 1)).Build(),
	}
	if display != "" {
		cmds = append(cmds,
			s.client.B().Set().Key(s.displayKey(canonical)).Value(display).Nx().Ex(s.displayTTL).Build(),
			s.client.B().Expire().Key(s.displayKey(canonical)).Seconds(int64(s.displayTTL/time.Second)).Build(),
		)
	}
	return cmds
}

func (s *ValkeyStore) TopQueries(ctx context.Context, limit int) ([]chatbot.TrendingQuery, error) {
	if limit <= 0 {
		limit = 10
	}
	resp := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.trendingKey()).Start(0).Stop(int64(limit-1)).Withscores().Build())
	scores, err := resp.AsZScores()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]chatbot.TrendingQuery, 0, len(scores))
	for _, z := range scores {
		out = append(out, chatbot.TrendingQuery{Query: s.fetchDisplay(ctx, z.Member), Count: int64(z.Score)})
	}
	return out, nil
}

func (s *ValkeyStore) fetchDisplay(ctx context.Context, canonical string) string {
	display, err := s.client.Do(ctx, s.client.B().Get().Key(s.displayKey(canonical)).Build()).ToString()
	if err != nil || display == "" {
		return canonical
	}
	return display
}

func (s *ValkeyStore) trendingKey() string {
	return s.prefix + ":trending"
}

func (s *ValkeyStore) displayKey(canonical string) string {
	return s.prefix + ":display:" + canonical
}

var _ chatbot.Store = (*ValkeyStore)(nil)
