// Package evaluator runs the evaluation pipeline: validate, collect, score,
// gate, classify and stake.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-evaluator/internal/datasource"
	"github.com/yourusername/prop-evaluator/internal/fallback"
	"github.com/yourusername/prop-evaluator/internal/features"
	"github.com/yourusername/prop-evaluator/internal/housebias"
	"github.com/yourusername/prop-evaluator/internal/logger"
	"github.com/yourusername/prop-evaluator/internal/market"
	"github.com/yourusername/prop-evaluator/internal/metrics"
	"github.com/yourusername/prop-evaluator/internal/models"
	"github.com/yourusername/prop-evaluator/internal/probability"
)

// FeatureCollector gathers the feature set for a parsed request.
type FeatureCollector interface {
	Collect(ctx context.Context, req models.ParsedRequest) features.Collection
}

// Sink receives every completed evaluation. Writes happen after the result
// is returned and never affect it.
type Sink interface {
	Name() string
	Write(ctx context.Context, result *models.EvaluationResult) error
}

// Config holds the scoring and decision parameters.
type Config struct {
	Weights        market.Weights
	Calibration    float64
	CLVNeutralBand float64
	Bias           housebias.Config
	Thresholds     Thresholds
	SinkTimeout    time.Duration
}

// DefaultConfig returns the canonical weighting and thresholds.
func DefaultConfig() Config {
	return Config{
		Weights:        market.DefaultWeights(),
		Calibration:    1.0,
		CLVNeutralBand: market.DefaultNeutralBand,
		Bias:           housebias.DefaultConfig(),
		Thresholds:     DefaultThresholds(),
		SinkTimeout:    5 * time.Second,
	}
}

// Evaluator scores propositions. It holds no per-evaluation state and is
// safe for concurrent use.
type Evaluator struct {
	collector FeatureCollector
	odds      []datasource.OddsSource
	model     *probability.Model
	bias      *housebias.Analyzer
	cfg       Config
	sinks     []Sink
	evalLog   *logger.EvaluationLogger
	audit     *logger.AuditLogger
	logger    *logrus.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

// New creates an evaluator. odds are consulted in order.
func New(collector FeatureCollector, odds []datasource.OddsSource, cfg Config, log *logrus.Logger, sinks ...Sink) *Evaluator {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.Calibration <= 0 {
		cfg.Calibration = 1.0
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = 5 * time.Second
	}
	return &Evaluator{
		collector: collector,
		odds:      odds,
		model:     probability.NewModel(),
		bias:      housebias.NewAnalyzer(cfg.Bias),
		cfg:       cfg,
		sinks:     sinks,
		evalLog:   logger.NewEvaluationLogger(log),
		audit:     logger.NewAuditLogger(log),
		logger:    log,
		now:       time.Now,
	}
}

// Evaluate runs the full pipeline. It always returns a well-formed result:
// invalid input yields PASS with INVALID_INPUT, and any panic inside the
// pipeline yields an ERROR decision.
func (e *Evaluator) Evaluate(ctx context.Context, req models.EvaluationRequest) (result *models.EvaluationResult) {
	ec := EvaluationContext{
		ID:        uuid.New(),
		StartedAt: e.now(),
		Request:   req,
	}

	defer func() {
		if r := recover(); r != nil {
			e.evalLog.LogFatal(ec.ID.String(), r)
			result = e.fatalResult(ec, r)
			e.finish(ctx, result, ec.StartedAt)
		}
	}()

	parsed, err := ValidateRequest(req, ec.StartedAt)
	if err != nil {
		ec.Decision = models.DecisionPass
		ec = ec.withFlags(models.FlagInvalidInput).withDrivers(err.Error())
		result = ec.result(e.now())
		e.finish(ctx, result, ec.StartedAt)
		return result
	}
	ec.Parsed = parsed

	ec = e.collect(ctx, ec)
	ec = e.score(ec)
	ec = e.decide(ec)

	result = ec.result(e.now())
	e.finish(ctx, result, ec.StartedAt)
	e.dispatch(ctx, result)
	return result
}

// Wait blocks until every dispatched sink write has finished.
func (e *Evaluator) Wait() {
	e.wg.Wait()
}

// collect gathers features and odds. It never fails; problems become flags.
func (e *Evaluator) collect(ctx context.Context, ec EvaluationContext) EvaluationContext {
	col := e.collector.Collect(ctx, ec.Parsed)
	ec.Collection = col
	for _, ep := range col.Endpoints {
		ec = ec.withEndpoint(ep)
	}

	for _, kind := range col.ErrorKinds() {
		ec = ec.withFlags(kindFlag(kind))
	}
	if col.HasCredentialError() {
		ec = ec.withFlags(models.FlagNoCredentials)
	}
	if col.Identity == nil {
		ec = ec.withFlags(models.FlagUnresolvedSubject)
	} else if col.Identity.IsAmbiguous {
		ec = ec.withFlags(models.FlagAmbiguousMatch)
		e.evalLog.LogAmbiguousMatch(ec.ID.String(), ec.Request.SubjectName, col.Identity.Name, col.Identity.MatchScore, col.RunnerUp)
	}
	if len(col.MeanAttempts) > 0 {
		e.evalLog.LogFallback(ec.ID.String(), "mean", string(col.Features.DataSource), len(col.MeanAttempts))
	}

	if !ec.Parsed.HasLine() && !ec.Parsed.Statistic.IsTeamLevel() {
		return ec.withFlags(models.FlagLineMissing)
	}
	return e.collectOdds(ctx, ec)
}

func (e *Evaluator) collectOdds(ctx context.Context, ec EvaluationContext) EvaluationContext {
	if len(e.odds) == 0 {
		return ec
	}

	q := datasource.OddsQuery{
		Sport:       ec.Parsed.Sport,
		Date:        ec.Parsed.EventDate,
		SubjectName: ec.Request.SubjectName,
		Statistic:   ec.Parsed.Statistic,
		Line:        ec.Parsed.Line,
		Opponent:    ec.Request.Opponent,
	}
	if id := ec.Collection.Identity; id != nil {
		q.SubjectID = id.ID
		q.SubjectName = id.Name
	}

	sources := make([]fallback.Source[datasource.OddsBoard], 0, len(e.odds))
	var endpoints []string
	for i, src := range e.odds {
		src := src
		sources = append(sources, fallback.Source[datasource.OddsBoard]{
			Name: fmt.Sprintf("odds-%d", i),
			Fetch: func(ctx context.Context) (datasource.OddsBoard, error) {
				board, err := src.FetchOdds(ctx, q)
				if board.Endpoint != "" {
					endpoints = append(endpoints, board.Endpoint)
				}
				return board, err
			},
		})
	}

	out, err := fallback.FirstSuccess(ctx, sources...)
	for _, ep := range endpoints {
		ec = ec.withEndpoint(ep)
	}
	for _, a := range out.Attempts {
		switch {
		case errors.Is(a.Err, models.ErrNoOdds):
		case errors.Is(a.Err, models.ErrNoCredentials):
			ec = ec.withFlags(models.FlagNoCredentials)
		default:
			ec = ec.withFlags(kindFlag(models.KindOf(a.Err)))
		}
	}
	if err != nil {
		return ec
	}

	board := out.Value
	metrics.RecordFallbackSource("odds", string(board.Source))
	if board.Source == models.OddsSourceFallback {
		ec = ec.withFlags(models.FlagFallbackOdds)
		e.evalLog.LogFallback(ec.ID.String(), "odds", string(board.Source), len(out.Attempts))
	}

	snap := &models.OddsSnapshot{
		Line:              ec.Parsed.Line,
		OpeningPrice:      board.Opening,
		OpeningUnderPrice: board.OpeningUnder,
		Source:            board.Source,
		CapturedAt:        e.now(),
		Quotes:            board.Quotes,
	}
	if ec.Parsed.Statistic.IsTeamLevel() {
		snap.Line = 0
	}
	if q, ok := currentQuote(board.Quotes, quoteLine(ec.Parsed)); ok {
		over, under := q.OverPrice, q.UnderPrice
		snap.CurrentPrice = &over
		snap.CurrentUnderPrice = &under
	}
	if ec.Request.CurrentPrice.Valid {
		cur := ec.Request.CurrentPrice.Value
		snap.CurrentPrice = &cur
	}
	ec.Odds = snap
	ec.Quotes = board.Quotes
	return ec
}

// quoteLine is the line quotes are matched on; moneylines match every quote.
func quoteLine(p models.ParsedRequest) float64 {
	if p.Statistic.IsTeamLevel() {
		return math.NaN()
	}
	return p.Line
}

// currentQuote is the first quote at the line, in provider order.
func currentQuote(quotes []models.BookQuote, line float64) (models.BookQuote, bool) {
	for _, q := range quotes {
		if q.AtLine(line) {
			return q, true
		}
	}
	return models.BookQuote{}, false
}

func kindFlag(kind models.ErrorKind) string {
	switch kind {
	case models.KindProviderTimeout:
		return models.FlagProviderTimeout
	default:
		return models.FlagProviderError
	}
}

func (e *Evaluator) fatalResult(ec EvaluationContext, recovered interface{}) *models.EvaluationResult {
	ec.Decision = models.DecisionError
	ec.Confidence = 0
	ec.Stake = 0
	ec.Pick = ""
	ec = ec.withFlags(models.FlagFatal).withDrivers(fmt.Sprintf("internal error: %v", recovered))
	return ec.result(e.now())
}

func (e *Evaluator) finish(ctx context.Context, result *models.EvaluationResult, started time.Time) {
	elapsed := e.now().Sub(started)
	metrics.RecordEvaluation(string(result.Sport), string(result.Decision), result.Confidence, elapsed.Seconds())
	e.evalLog.LogEvaluation(
		result.EvaluationID.String(),
		string(result.Sport),
		result.SubjectName,
		result.StatisticLine,
		string(result.Decision),
		result.Confidence,
		string(result.DataSource),
		result.RawNumbers.SampleSize,
		float64(elapsed.Milliseconds()),
	)
}

// dispatch hands the result to every sink on a detached context so caller
// cancellation cannot abort the writes.
func (e *Evaluator) dispatch(ctx context.Context, result *models.EvaluationResult) {
	if len(e.sinks) == 0 {
		return
	}
	detached := context.WithoutCancel(ctx)
	for _, s := range e.sinks {
		e.wg.Add(1)
		go func(s Sink) {
			defer e.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					metrics.RecordSinkFailure(s.Name())
					e.audit.LogSinkFailure(s.Name(), result.EvaluationID.String(), fmt.Errorf("panic: %v", r))
				}
			}()

			sctx, cancel := context.WithTimeout(detached, e.cfg.SinkTimeout)
			defer cancel()
			if err := s.Write(sctx, result); err != nil {
				metrics.RecordSinkFailure(s.Name())
				e.audit.LogSinkFailure(s.Name(), result.EvaluationID.String(), err)
				return
			}
			e.audit.LogSinkWrite(s.Name(), result.EvaluationID.String(), result.SubjectName, result.EvaluatedAt)
		}(s)
	}
}
