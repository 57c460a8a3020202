package jsonpath

import (
	"fmt"
	"strings"

	"github.com/aleister1102/apiextract/internal/config"
	"github.com/rs/zerolog"
)

// Evaluator tries each strategy in order and returns the first successful result.
// It never fails: when every strategy errors, the result is nil.
type Evaluator struct {
	strategies []Strategy
	logger     zerolog.Logger
}

// NewEvaluator builds the strategy chain for the configured engine.
// The jq engine falls back to direct traversal; the path engine uses traversal only.
func NewEvaluator(cfg config.ExtractorConfig, logger zerolog.Logger) *Evaluator {
	var strategies []Strategy
	if strings.ToLower(cfg.Engine) != config.EnginePath {
		strategies = append(strategies, NewJQStrategy(cfg.Timeout(), cfg.MaxOutputs, cfg.MaxCacheSize))
	}
	strategies = append(strategies, NewPathStrategy())
	return NewEvaluatorWithStrategies(logger, strategies...)
}

// NewEvaluatorWithStrategies builds an evaluator over an explicit strategy chain
func NewEvaluatorWithStrategies(logger zerolog.Logger, strategies ...Strategy) *Evaluator {
	return &Evaluator{
		strategies: strategies,
		logger:     logger.With().Str("component", "Evaluator").Logger(),
	}
}

// StrategyNames lists the chain in evaluation order
func (e *Evaluator) StrategyNames() []string {
	names := make([]string, 0, len(e.strategies))
	for _, s := range e.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Evaluate applies path to value. An empty path or "." returns value unchanged.
func (e *Evaluator) Evaluate(value any, path string) any {
	if IsIdentity(path) {
		return value
	}

	for _, strategy := range e.strategies {
		result, err := e.run(strategy, value, path)
		if err == nil {
			return result
		}
		e.logger.Debug().
			Err(err).
			Str("strategy", strategy.Name()).
			Str("path", path).
			Msg("Strategy failed, trying next")
	}

	e.logger.Warn().Str("path", path).Msg("All strategies failed, returning null")
	return nil
}

func (e *Evaluator) run(strategy Strategy, value any, path string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("strategy %s panicked: %v", strategy.Name(), r)
		}
	}()
	return strategy.Evaluate(value, path)
}
