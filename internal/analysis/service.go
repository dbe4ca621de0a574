// Package analysis runs one submission through normalization, estimation, simulation and charting.
package analysis

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"resalelens/server/internal/chart"
	"resalelens/server/internal/estimator"
	"resalelens/server/internal/intake"
	"resalelens/server/internal/models"
	"resalelens/server/internal/trend"
)

// Input is the raw form data of one request
type Input struct {
	Description string
	Category    string
	Image       []byte
}

// Recorder receives completed analyses, e.g. for history
type Recorder interface {
	Record(analysis *models.Analysis)
}

// RandFactory hands out an independent random source per request
type RandFactory func() *rand.Rand

// NewRandFactory returns sources that all start from seed, or clock-seeded sources when seed is 0
func NewRandFactory(seed int64) RandFactory {
	if seed != 0 {
		return func() *rand.Rand { return rand.New(rand.NewSource(seed)) }
	}
	var counter int64
	return func() *rand.Rand {
		return rand.New(rand.NewSource(time.Now().UnixNano() + atomic.AddInt64(&counter, 1)))
	}
}

// Renderer turns a series into an inline chart document
type Renderer func(series models.TrendSeries) (string, error)

type Service struct {
	strategy  estimator.Strategy
	simulator *trend.Simulator
	newRand   RandFactory
	render    Renderer
	recorder  Recorder
	logger    *logrus.Logger
}

func NewService(strategy estimator.Strategy, simulator *trend.Simulator, newRand RandFactory, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	if newRand == nil {
		newRand = NewRandFactory(0)
	}
	return &Service{
		strategy:  strategy,
		simulator: simulator,
		newRand:   newRand,
		render:    chart.SVG,
		logger:    logger,
	}
}

// SetRenderer replaces the chart renderer; nil restores the SVG renderer
func (s *Service) SetRenderer(r Renderer) {
	if r == nil {
		r = chart.SVG
	}
	s.render = r
}

// SetRecorder installs an optional sink for completed analyses
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// StrategyName returns the active estimator strategy
func (s *Service) StrategyName() string {
	return s.strategy.Name()
}

// Analyze runs the pipeline. Input errors from intake are returned as-is. A collaborator
// failure returns the degraded analysis together with an error wrapping estimator.ErrCollaborator.
func (s *Service) Analyze(ctx context.Context, requestID string, in Input) (*models.Analysis, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"strategy":   s.strategy.Name(),
	})

	sub, notices, err := intake.Normalize(in.Description, in.Category, in.Image)
	if err != nil {
		log.WithError(err).Info("Submission rejected")
		return nil, err
	}
	log = log.WithField("category", sub.Category)
	for _, n := range notices {
		log.WithField("field", n.Field).Warn(n.Message)
	}

	result := &models.Analysis{
		RequestID:     requestID,
		Category:      sub.Category,
		CategoryLabel: sub.Category.Label(),
		UsedImage:     sub.HasImage(),
		Notices:       notices,
	}

	rng := s.newRand()
	est, err := s.strategy.Estimate(ctx, sub, rng)
	if err != nil {
		if errors.Is(err, estimator.ErrCollaborator) {
			log.WithError(err).Error("Completion service failed")
			result.Estimate = est
			result.Message = "시세 분석 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
			return result, err
		}
		log.WithError(err).Error("Failed to estimate price")
		return nil, err
	}
	result.Estimate = est

	s.attachTrend(result, est.Amount, rng, log)

	if est.HasAmount() && *est.Amount > 0 {
		result.Message = "분석된 예상 가격 " + models.FormatAmount(*est.Amount) + "원 기준으로 시세 추이를 시뮬레이션했습니다."
	} else {
		result.Message = "해당 카테고리의 일반적인 시세 추이를 보여드립니다."
	}

	log.WithFields(logrus.Fields{
		"has_amount": est.HasAmount(),
		"used_image": result.UsedImage,
	}).Info("Analysis completed")

	if s.recorder != nil {
		s.recorder.Record(result)
	}
	return result, nil
}

// attachTrend never fails the request; a broken chart becomes a placeholder
func (s *Service) attachTrend(result *models.Analysis, amount *int64, rng *rand.Rand, log *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Trend generation panicked")
			result.Trend = nil
			result.ChartAvailable = false
			result.Chart = chart.Placeholder()
		}
	}()

	series := s.simulator.Simulate(result.Category, amount, rng)
	result.Trend = &series

	svg, err := s.render(series)
	if err != nil {
		log.WithError(err).Error("Failed to render chart")
		result.Chart = chart.Placeholder()
		return
	}
	result.Chart = svg
	result.ChartAvailable = true
}

// Trend simulates a series outside the form flow, e.g. for chart downloads
func (s *Service) Trend(category models.Category, amount *int64) models.TrendSeries {
	return s.simulator.Simulate(category, amount, s.newRand())
}
