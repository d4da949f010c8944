// Package startgg reads round-robin results from the start.gg GraphQL API.
package startgg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/tiewatch/internal/adapters/feed"
	"github.com/okian/tiewatch/internal/domain/model"
	"github.com/okian/tiewatch/pkg/logger"
	"github.com/okian/tiewatch/pkg/metrics"
)

// Defaults follow the public start.gg API limits.
const (
	DefaultURL               = "https://api.start.gg/gql/alpha"
	DefaultPhaseName         = "Groups"
	DefaultPerPage           = 50
	DefaultRequestsPerMinute = 80
	DefaultTimeout           = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultBackoff           = 500 * time.Millisecond
	DefaultUserAgent         = "tiewatch/0.1"

	maxBodyBytes = 8 << 20
)

// Client walks every page of an event's sets and feeds the group matches
// into a sink. Requests are spaced by a limiter so the average stays within
// the API budget.
type Client struct {
	httpClient        *http.Client
	url               string
	token             string
	eventSlug         string
	phaseName         string
	userAgent         string
	perPage           int
	requestsPerMinute int
	timeout           time.Duration
	maxRetries        int
	backoff           time.Duration
	limiter           *rate.Limiter
	logger            logger.Logger
}

// New creates a client for one event.
func New(url, token, eventSlug string, opts ...Option) *Client {
	c := &Client{
		url:               url,
		token:             token,
		eventSlug:         eventSlug,
		phaseName:         DefaultPhaseName,
		userAgent:         DefaultUserAgent,
		perPage:           DefaultPerPage,
		requestsPerMinute: DefaultRequestsPerMinute,
		timeout:           DefaultTimeout,
		maxRetries:        DefaultMaxRetries,
		backoff:           DefaultBackoff,
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("startgg")
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(c.requestsPerMinute)), 1)
	return c
}

// Name implements feed.Source.
func (c *Client) Name() string { return "startgg:" + c.eventSlug }

// Fetch implements feed.Source. The first page tells how many pages follow.
func (c *Client) Fetch(ctx context.Context, sink feed.Sink) error {
	total, err := c.fetchPage(ctx, 1, sink)
	if err != nil {
		return err
	}
	for page := 2; page <= total; page++ {
		if _, err := c.fetchPage(ctx, page, sink); err != nil {
			return err
		}
	}
	c.logger.Info(ctx, "event fetched",
		logger.String("event", c.eventSlug),
		logger.Int("pages", total),
	)
	return nil
}

func (c *Client) fetchPage(ctx context.Context, page int, sink feed.Sink) (int, error) {
	data, err := c.query(ctx, page)
	if err != nil {
		return 0, fmt.Errorf("page %d: %w", page, err)
	}
	metrics.RecordFeedPage()

	if data.Event == nil || data.Event.Sets == nil || data.Event.Sets.PageInfo == nil ||
		data.Event.Sets.PageInfo.TotalPages == nil || data.Event.Sets.Nodes == nil {
		return 0, fmt.Errorf("page %d: %w", page, ErrResponseFormat)
	}

	kept := 0
	for i, set := range data.Event.Sets.Nodes {
		rec, ok, err := c.record(set)
		if err != nil {
			return 0, fmt.Errorf("page %d set %d: %w", page, i, err)
		}
		if !ok {
			continue
		}
		if err := sink.IngestRecord(ctx, rec); err != nil {
			return 0, fmt.Errorf("page %d set %d: %w", page, i, err)
		}
		kept++
	}

	total := *data.Event.Sets.PageInfo.TotalPages
	c.logger.Debug(ctx, "page ingested",
		logger.Int("page", page),
		logger.Int("total_pages", total),
		logger.Int("sets", len(data.Event.Sets.Nodes)),
		logger.Int("kept", kept),
	)
	return total, nil
}

// record converts one set. Sets of other phases are skipped with ok false.
func (c *Client) record(set *setNode) (model.MatchRecord, bool, error) {
	if set == nil || set.PhaseGroup == nil || set.PhaseGroup.DisplayIdentifier == nil ||
		set.PhaseGroup.Phase == nil || set.PhaseGroup.Phase.Name == nil || set.Slots == nil {
		return model.MatchRecord{}, false, ErrResponseFormat
	}
	if *set.PhaseGroup.Phase.Name != c.phaseName {
		return model.MatchRecord{}, false, nil
	}
	if len(set.Slots) != 2 {
		return model.MatchRecord{}, false, fmt.Errorf("%w: set has %d slots", ErrResponseFormat, len(set.Slots))
	}
	a, err := entry(set.Slots[0])
	if err != nil {
		return model.MatchRecord{}, false, err
	}
	b, err := entry(set.Slots[1])
	if err != nil {
		return model.MatchRecord{}, false, err
	}
	rec := model.MatchRecord{
		Group:      model.GroupID(*set.PhaseGroup.DisplayIdentifier),
		PlayerA:    a.id,
		NameA:      a.name,
		PlacementA: a.placement,
		PlayerB:    b.id,
		NameB:      b.name,
		PlacementB: b.placement,
	}
	if err := rec.Validate(); err != nil {
		return model.MatchRecord{}, false, fmt.Errorf("%w: %w: set pairs %q with %q",
			feed.ErrUpstream, err, a.id, b.id)
	}
	return rec, true, nil
}

type slotEntry struct {
	id        model.PlayerID
	name      string
	placement int
}

func entry(s *slot) (slotEntry, error) {
	if s == nil || s.Entrant == nil || s.Standing == nil || s.Standing.Placement == nil {
		return slotEntry{}, ErrResponseFormat
	}
	if len(s.Entrant.Participants) != 1 {
		return slotEntry{}, fmt.Errorf("%w: entrant has %d participants", ErrResponseFormat, len(s.Entrant.Participants))
	}
	p := s.Entrant.Participants[0]
	if p == nil || p.ID == nil || p.GamerTag == nil {
		return slotEntry{}, ErrResponseFormat
	}
	return slotEntry{id: model.PlayerID(*p.ID), name: *p.GamerTag, placement: *s.Standing.Placement}, nil
}

// query posts one page request, retrying throttled, server and transport
// failures with exponential backoff.
func (c *Client) query(ctx context.Context, page int) (*scoresData, error) {
	body, err := json.Marshal(request{
		Query:     scoresQuery,
		Variables: variables{EventSlug: c.eventSlug, Page: page, PerPage: c.perPage},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff << (attempt - 1)
			metrics.RecordFeedRetry()
			c.logger.Warn(ctx, "retrying feed request",
				logger.Int("page", page),
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Error(lastErr),
			)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		data, retry, err := c.do(ctx, body)
		if err == nil {
			return data, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, body []byte) (*scoresData, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordFeedRequestLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		metrics.RecordFeedRequest("transport_error")
		return nil, true, fmt.Errorf("%w: post %s: %w", feed.ErrUpstream, c.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordFeedRequest("transport_error")
		return nil, true, fmt.Errorf("%w: read body: %w", feed.ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		metrics.RecordFeedRequest("retryable_status")
		return nil, true, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.RecordFeedRequest("status")
		return nil, false, fmt.Errorf("%w: %d: %s", ErrStatus, resp.StatusCode, snippet(raw))
	}

	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		metrics.RecordFeedRequest("decode_error")
		return nil, false, fmt.Errorf("%w: %w", ErrResponseFormat, err)
	}
	switch {
	case len(r.Errors) > 0:
		metrics.RecordFeedRequest("graphql_error")
		return nil, false, fmt.Errorf("%w: %s", ErrGraphQL, describe(r.Errors))
	case r.Data == nil && r.Errors != nil:
		metrics.RecordFeedRequest("graphql_error")
		return nil, false, fmt.Errorf("%w: empty error list", ErrGraphQL)
	case r.Data == nil:
		metrics.RecordFeedRequest("no_data")
		return nil, false, ErrNoData
	}
	metrics.RecordFeedRequest("ok")
	return r.Data, false, nil
}

func describe(errs []graphQLError) string {
	if len(errs) == 1 {
		return errs[0].Message
	}
	return errs[0].Message + " (and " + strconv.Itoa(len(errs)-1) + " more)"
}

func snippet(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
