// Package oddsfeed builds consensus lines from bookmaker odds published to
// Redis streams by the upstream normalizer.
package oddsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/oddsmath"
	"github.com/yourusername/matchup-engine/internal/teammatch"
)

// Market keys used by the normalizer.
const (
	MarketMoneyline = "h2h"
	MarketSpreads   = "spreads"
	MarketTotals    = "totals"
)

const (
	defaultStreamPrefix = "odds.normalized."
	defaultScanCount    = 5000
)

// NormalizedOdds is one bookmaker outcome as published on the stream's
// "data" field.
type NormalizedOdds struct {
	EventID      string    `json:"event_id"`
	SportKey     string    `json:"sport_key"`
	MarketKey    string    `json:"market_key"`
	BookKey      string    `json:"book_key"`
	OutcomeName  string    `json:"outcome_name"`
	Price        int       `json:"price"`
	Point        *float64  `json:"point,omitempty"`
	HomeTeam     string    `json:"home_team,omitempty"`
	AwayTeam     string    `json:"away_team,omitempty"`
	NormalizedAt time.Time `json:"normalized_at"`
}

// Config configures the stream reader.
type Config struct {
	StreamPrefix string        `mapstructure:"stream_prefix"`
	ScanCount    int64         `mapstructure:"scan_count" validate:"gte=0"`
	MaxAge       time.Duration `mapstructure:"max_age"`
}

// RedisProvider reads the latest entries of odds.normalized.{sport} and
// averages each market across bookmakers.
type RedisProvider struct {
	client redis.Cmdable
	config Config
	logger *logrus.Logger
	now    func() time.Time
}

// NewRedisProvider creates a provider.
func NewRedisProvider(client redis.Cmdable, cfg Config, logger *logrus.Logger) *RedisProvider {
	if cfg.StreamPrefix == "" {
		cfg.StreamPrefix = defaultStreamPrefix
	}
	if cfg.ScanCount <= 0 {
		cfg.ScanCount = defaultScanCount
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisProvider{client: client, config: cfg, logger: logger, now: time.Now}
}

// Stream returns the stream name for a sport.
func (p *RedisProvider) Stream(sport string) string {
	return p.config.StreamPrefix + sport
}

// FetchConsensus implements linemonitor.OddsProvider.
func (p *RedisProvider) FetchConsensus(ctx context.Context, sport string) ([]models.GameOdds, error) {
	stream := p.Stream(sport)
	msgs, err := p.client.XRevRangeN(ctx, stream, "+", "-", p.config.ScanCount).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read %s: %w", stream, err)
	}

	var cutoff time.Time
	if p.config.MaxAge > 0 {
		cutoff = p.now().Add(-p.config.MaxAge)
	}

	records := make([]NormalizedOdds, 0, len(msgs))
	malformed := 0
	for _, msg := range msgs {
		data, ok := msg.Values["data"].(string)
		if !ok {
			malformed++
			continue
		}
		var rec NormalizedOdds
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			malformed++
			continue
		}
		if !cutoff.IsZero() && !rec.NormalizedAt.IsZero() && rec.NormalizedAt.Before(cutoff) {
			continue
		}
		records = append(records, rec)
	}
	if malformed > 0 {
		p.logger.WithFields(logrus.Fields{"stream": stream, "malformed": malformed}).Warn("Skipped malformed odds messages")
	}
	return Consensus(sport, records), nil
}

type outcomeKey struct {
	event, market, book, outcome string
}

// Consensus reduces newest-first records to one GameOdds per event. Only the
// newest record per (event, market, book, outcome) counts. Events where no
// record carries team names are dropped since home and away cannot be told apart.
func Consensus(sport string, newestFirst []NormalizedOdds) []models.GameOdds {
	type eventLines struct {
		odds     models.GameOdds
		books    map[string]struct{}
		spreads  []float64
		totals   []float64
		homeML   []int
		awayML   []int
		home     teammatch.Identity
		away     teammatch.Identity
		resolved bool
	}

	teams := make(map[string][2]string)
	for _, rec := range newestFirst {
		if _, ok := teams[rec.EventID]; !ok && rec.HomeTeam != "" && rec.AwayTeam != "" {
			teams[rec.EventID] = [2]string{rec.HomeTeam, rec.AwayTeam}
		}
	}

	seen := make(map[outcomeKey]struct{})
	events := make(map[string]*eventLines)
	for _, rec := range newestFirst {
		key := outcomeKey{rec.EventID, rec.MarketKey, rec.BookKey, strings.ToLower(rec.OutcomeName)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		ev, ok := events[rec.EventID]
		if !ok {
			ev = &eventLines{books: make(map[string]struct{})}
			ev.odds.GameID = rec.EventID
			ev.odds.Sport = sport
			if names, ok := teams[rec.EventID]; ok {
				ev.odds.HomeTeam, ev.odds.AwayTeam = names[0], names[1]
				ev.home = teammatch.Identity{Name: names[0]}
				ev.away = teammatch.Identity{Name: names[1]}
				ev.resolved = true
			}
			events[rec.EventID] = ev
		}
		if rec.NormalizedAt.After(ev.odds.UpdatedAt) {
			ev.odds.UpdatedAt = rec.NormalizedAt
		}
		ev.books[rec.BookKey] = struct{}{}

		switch rec.MarketKey {
		case MarketTotals:
			if rec.Point != nil && strings.EqualFold(rec.OutcomeName, "over") {
				ev.totals = append(ev.totals, *rec.Point)
			}
		case MarketSpreads, MarketMoneyline:
			if !ev.resolved {
				continue
			}
			isHome := teammatch.Matches(ev.home, rec.OutcomeName, "")
			isAway := !isHome && teammatch.Matches(ev.away, rec.OutcomeName, "")
			switch {
			case rec.MarketKey == MarketSpreads && isHome && rec.Point != nil:
				ev.spreads = append(ev.spreads, *rec.Point)
			case rec.MarketKey == MarketSpreads && isAway && rec.Point != nil:
				// away line mirrored onto the home side
				ev.spreads = append(ev.spreads, -*rec.Point)
			case rec.MarketKey == MarketMoneyline && isHome:
				ev.homeML = append(ev.homeML, rec.Price)
			case rec.MarketKey == MarketMoneyline && isAway:
				ev.awayML = append(ev.awayML, rec.Price)
			}
		}
	}

	out := make([]models.GameOdds, 0, len(events))
	for _, ev := range events {
		if !ev.resolved {
			continue
		}
		if line, ok := oddsmath.ConsensusLine(ev.spreads); ok {
			ev.odds.Spread = &line
		}
		if line, ok := oddsmath.ConsensusLine(ev.totals); ok {
			ev.odds.Total = &line
		}
		if price, ok := oddsmath.ConsensusPrice(ev.homeML); ok {
			ev.odds.HomeMoneyline = &price
		}
		if price, ok := oddsmath.ConsensusPrice(ev.awayML); ok {
			ev.odds.AwayMoneyline = &price
		}
		ev.odds.Bookmakers = len(ev.books)
		out = append(out, ev.odds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out
}
