package pagination

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for pagination.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yudl_pagination_pages_total",
		Help: "Total number of pages requested",
	})

	recordsEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yudl_pagination_records_total",
		Help: "Total number of records emitted in batches",
	})

	stopsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yudl_pagination_stops_total",
		Help: "Total number of extraction streams ended by reason",
	}, []string{"reason"})
)

// PageFetcher is the interface the YUDL client implements for single-page fetching.
type PageFetcher interface {
	// FetchPage fetches one page and returns the HTTP status and body.
	// err is reserved for failures that produced no HTTP response.
	FetchPage(ctx context.Context, endpoint string, page int) (statusCode int, body []byte, err error)
}

// StopReason names the condition that ended a stream.
type StopReason string

const (
	// StopNone means the stream has not ended yet.
	StopNone StopReason = ""

	// StopTransport means the request produced no HTTP response.
	StopTransport StopReason = "transport_error"

	// StopHTTPStatus means the server answered with a non-200 status.
	StopHTTPStatus StopReason = "http_status"

	// StopEmptyBody means the body was empty or whitespace only.
	StopEmptyBody StopReason = "empty_body"

	// StopInvalidJSON means the body was not a JSON array of objects.
	StopInvalidJSON StopReason = "invalid_json"

	// StopEmptyPage means the payload held no records.
	StopEmptyPage StopReason = "empty_page"

	// StopAllEmpty means the page held no usable value before a sentinel.
	StopAllEmpty StopReason = "all_empty"

	// StopSentinel means a sentinel truncated a page that still had values.
	StopSentinel StopReason = "sentinel"

	// StopCancelled means the context was cancelled or the consumer stopped early.
	StopCancelled StopReason = "cancelled"
)

// Stop describes how and where a stream ended.
type Stop struct {
	Reason     StopReason
	Page       int
	StatusCode int
	Err        error
}

func (s Stop) String() string {
	switch s.Reason {
	case StopHTTPStatus:
		return fmt.Sprintf("%s (status %d) on page %d", s.Reason, s.StatusCode, s.Page)
	case StopTransport, StopInvalidJSON:
		return fmt.Sprintf("%s on page %d: %v", s.Reason, s.Page, s.Err)
	default:
		return fmt.Sprintf("%s on page %d", s.Reason, s.Page)
	}
}

// pageState is what the guards see for one fetched page.
type pageState struct {
	page       int
	statusCode int
	body       []byte
	fetchErr   error
	decodeErr  error
	records    []Record
}

// guard is one termination check. Guards run in order and the first that
// fires ends the stream.
type guard struct {
	reason StopReason
	fires  func(st *pageState) bool
}

var responseGuards = []guard{
	{StopTransport, transportFailed},
	{StopHTTPStatus, httpFailed},
	{StopEmptyBody, emptyBody},
	{StopInvalidJSON, malformedPayload},
	{StopEmptyPage, emptyPage},
}

func transportFailed(st *pageState) bool {
	return st.fetchErr != nil
}

func httpFailed(st *pageState) bool {
	return st.statusCode != http.StatusOK
}

func emptyBody(st *pageState) bool {
	return len(bytes.TrimSpace(st.body)) == 0
}

// malformedPayload decodes the body into st.records and fires when that fails.
func malformedPayload(st *pageState) bool {
	dec := json.NewDecoder(bytes.NewReader(st.body))
	dec.UseNumber()

	var records []Record
	if err := dec.Decode(&records); err != nil {
		st.decodeErr = err
		return true
	}
	if dec.More() {
		st.decodeErr = errors.New("trailing data after JSON array")
		return true
	}

	st.records = records
	return false
}

func emptyPage(st *pageState) bool {
	return len(st.records) == 0
}

// Extractor walks a page-indexed resource one page at a time.
type Extractor[T any] struct {
	fetcher PageFetcher
	decoder Decoder[T]
	logger  zerolog.Logger
}

// NewExtractor creates a new extractor.
func NewExtractor[T any](fetcher PageFetcher, decoder Decoder[T], logger zerolog.Logger) *Extractor[T] {
	if fetcher == nil {
		panic("page fetcher cannot be nil")
	}
	if decoder == nil {
		panic("decoder cannot be nil")
	}
	return &Extractor[T]{
		fetcher: fetcher,
		decoder: decoder,
		logger:  logger,
	}
}

// Extract returns a lazy stream over endpoint. No request is made until the
// stream's batches are iterated.
func (e *Extractor[T]) Extract(ctx context.Context, endpoint string) *Stream[T] {
	return &Stream[T]{
		extractor: e,
		ctx:       ctx,
		endpoint:  endpoint,
	}
}

// Stream is a single pass over a paginated resource.
type Stream[T any] struct {
	extractor *Extractor[T]
	ctx       context.Context
	endpoint  string
	started   bool
	stop      Stop
	pages     int
}

// Stop returns how the stream ended. It is the zero Stop until iteration
// has finished.
func (s *Stream[T]) Stop() Stop {
	return s.stop
}

// Requests returns the number of page requests issued so far.
func (s *Stream[T]) Requests() int {
	return s.pages
}

// Batches yields one batch per page in page order, starting at page 0. The
// sequence can be consumed once.
func (s *Stream[T]) Batches() iter.Seq[Batch[T]] {
	return func(yield func(Batch[T]) bool) {
		if s.started {
			return
		}
		s.started = true

		for page := 0; ; page++ {
			if err := s.ctx.Err(); err != nil {
				s.finish(Stop{Reason: StopCancelled, Page: page, Err: err})
				return
			}

			batch, stop := s.fetch(page)
			if len(batch.Records) > 0 {
				recordsEmittedTotal.Add(float64(len(batch.Records)))
				if !yield(batch) {
					// A page that already ended the stream keeps its reason.
					if stop.Reason == StopNone {
						stop = Stop{Reason: StopCancelled, Page: page}
					}
					s.finish(stop)
					return
				}
			}

			if stop.Reason != StopNone {
				s.finish(stop)
				return
			}
		}
	}
}

// fetch requests one page and applies the guards and the record policy.
func (s *Stream[T]) fetch(page int) (Batch[T], Stop) {
	logger := s.extractor.logger

	logger.Info().
		Str("endpoint", s.endpoint).
		Int("page", page).
		Msg("Fetching page")

	statusCode, body, err := s.extractor.fetcher.FetchPage(s.ctx, s.endpoint, page)
	s.pages++
	pagesFetchedTotal.Inc()

	st := &pageState{
		page:       page,
		statusCode: statusCode,
		body:       body,
		fetchErr:   err,
	}

	for _, g := range responseGuards {
		if !g.fires(st) {
			continue
		}

		stop := Stop{Reason: g.reason, Page: page, StatusCode: statusCode}
		switch g.reason {
		case StopTransport:
			stop.Err = st.fetchErr
			if s.ctx.Err() != nil {
				stop.Reason = StopCancelled
			}
		case StopInvalidJSON:
			stop.Err = st.decodeErr
		}
		return Batch[T]{Page: page}, stop
	}

	values, sentinel := s.collect(st.records)
	batch := Batch[T]{Page: page, Records: values}

	switch {
	case sentinel && len(values) == 0:
		return batch, Stop{Reason: StopAllEmpty, Page: page, StatusCode: statusCode}
	case sentinel:
		return batch, Stop{Reason: StopSentinel, Page: page, StatusCode: statusCode}
	case len(values) == 0:
		// Every record lacked the decoder's key.
		return batch, Stop{Reason: StopAllEmpty, Page: page, StatusCode: statusCode}
	default:
		return batch, Stop{}
	}
}

// collect decodes records in order, skipping undecodable ones, and cuts the
// page at the first sentinel value.
func (s *Stream[T]) collect(records []Record) ([]T, bool) {
	dec := s.extractor.decoder
	values := make([]T, 0, len(records))

	for _, r := range records {
		v, ok := dec.Decode(r)
		if !ok {
			continue
		}
		if dec.IsSentinel(v) {
			return values, true
		}
		values = append(values, v)
	}

	return values, false
}

func (s *Stream[T]) finish(stop Stop) {
	s.stop = stop
	stopsTotal.WithLabelValues(string(stop.Reason)).Inc()

	logger := s.extractor.logger
	var event *zerolog.Event
	switch stop.Reason {
	case StopTransport, StopInvalidJSON:
		event = logger.Error().Err(stop.Err)
	case StopHTTPStatus:
		event = logger.Warn().Int("status_code", stop.StatusCode)
	case StopCancelled:
		event = logger.Warn().AnErr("cause", stop.Err)
	default:
		event = logger.Info()
	}

	event.
		Str("endpoint", s.endpoint).
		Int("page", stop.Page).
		Str("reason", string(stop.Reason)).
		Int("requests", s.pages).
		Msg(stopMessage(stop.Reason))
}

func stopMessage(reason StopReason) string {
	switch reason {
	case StopTransport:
		return "Request failed, stopping"
	case StopHTTPStatus:
		return "Error status received, stopping"
	case StopEmptyBody:
		return "Empty response received, stopping"
	case StopInvalidJSON:
		return "Invalid JSON response, stopping"
	case StopEmptyPage:
		return "No data received, stopping"
	case StopAllEmpty:
		return "All values empty on page, stopping"
	case StopSentinel:
		return "Empty value detected, stopping"
	case StopCancelled:
		return "Extraction cancelled"
	default:
		return "Extraction stopped"
	}
}
