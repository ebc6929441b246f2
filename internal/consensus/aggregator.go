package consensus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/quizguard/internal/logging"
	"github.com/ppiankov/quizguard/internal/metrics"
	"github.com/ppiankov/quizguard/internal/model"
	"github.com/ppiankov/quizguard/internal/score"
	"github.com/ppiankov/quizguard/internal/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// minimumSuccesses is the fewest outputs agreement can be measured on
const minimumSuccesses = 2

// ModelAdapter generates text for a prompt with one model
type ModelAdapter interface {
	Generate(ctx context.Context, prompt, modelID string) (string, error)
}

// Aggregator reconciles the outputs of several models for one prompt
type Aggregator struct {
	adapter    ModelAdapter
	similarity SimilarityFunc
	cfg        model.ConsensusConfig
	logger     *zap.Logger
}

// NewAggregator creates an aggregator. A nil similarity uses TokenJaccard.
func NewAggregator(adapter ModelAdapter, cfg model.ConsensusConfig, similarity SimilarityFunc, logger *zap.Logger) *Aggregator {
	if similarity == nil {
		similarity = TokenJaccard
	}
	if cfg.MinSuccesses < minimumSuccesses {
		cfg.MinSuccesses = minimumSuccesses
	}
	// A decision needs the minimum number of successes
	if cfg.Quorum > 0 && cfg.Quorum < cfg.MinSuccesses {
		cfg.Quorum = cfg.MinSuccesses
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Aggregator{
		adapter:    adapter,
		similarity: similarity,
		cfg:        cfg,
		logger:     logging.OrNop(logger),
	}
}

type reply struct {
	index int
	text  string
	err   error
}

// Aggregate calls every model concurrently and merges their outputs.
//
// Waiting stops as soon as the decision is known: all calls settled, the
// quorum of successes arrived, or too few calls remain to reach the
// minimum. Outstanding calls are then cancelled. Failed calls are returned
// alongside the batch so they can be audited even when consensus holds.
//
// Errors: *model.QuorumError when fewer than the minimum succeeded,
// *model.LowConsensusError when agreement is below the minimum. In the
// latter case the batch is returned without a merged result.
func (a *Aggregator) Aggregate(ctx context.Context, prompt string, models []string) (*model.ConsensusBatch, []*model.AdapterError, error) {
	if len(models) == 0 {
		return nil, nil, model.ErrNoModels
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	replies := make(chan reply, len(models))
	go a.dispatch(ctx, prompt, models, replies)

	var successes []reply
	var failed []reply
	pending := len(models)

collect:
	for pending > 0 {
		select {
		case r := <-replies:
			pending--
			if r.err != nil {
				failed = append(failed, r)
			} else {
				successes = append(successes, r)
			}
		case <-ctx.Done():
			break collect
		}

		if a.cfg.Quorum > 0 && len(successes) >= a.cfg.Quorum {
			break
		}
		if len(successes)+pending < a.cfg.MinSuccesses {
			break
		}
	}
	cancel()

	sort.Slice(successes, func(i, j int) bool { return successes[i].index < successes[j].index })
	sort.Slice(failed, func(i, j int) bool { return failed[i].index < failed[j].index })

	failures := make([]*model.AdapterError, 0, len(failed))
	for _, f := range failed {
		ae := model.NewAdapterError(models[f.index], f.err)
		failures = append(failures, ae)
		metrics.AdapterErrors.WithLabelValues(ae.ModelID, string(ae.Kind)).Inc()
		a.logger.Warn("model call failed",
			zap.String("model", ae.ModelID),
			zap.String("kind", string(ae.Kind)),
			zap.Error(ae.Err))
	}

	promptHash := util.HashPrompt(prompt)

	if len(successes) < a.cfg.MinSuccesses {
		metrics.ConsensusOutcomes.WithLabelValues("quorum_failed").Inc()
		return nil, failures, &model.QuorumError{
			Required:  a.cfg.MinSuccesses,
			Succeeded: len(successes),
			Failures:  failures,
		}
	}

	batch := &model.ConsensusBatch{PromptHash: promptHash}
	for _, s := range successes {
		batch.ModelOutputs = append(batch.ModelOutputs, model.ModelOutput{ModelID: models[s.index], Text: s.text})
	}

	// Pairs in model order keep the mean reproducible
	n := len(batch.ModelOutputs)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	var sum float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := a.similarity(batch.ModelOutputs[i].Text, batch.ModelOutputs[j].Text)
			matrix[i][j], matrix[j][i] = sim, sim
			sum += sim
			batch.Pairwise = append(batch.Pairwise, model.PairSimilarity{
				Model1:     batch.ModelOutputs[i].ModelID,
				Model2:     batch.ModelOutputs[j].ModelID,
				Similarity: score.Round3(sim),
			})
		}
	}
	// Only the reported score is rounded; the threshold sees the raw mean
	agreement := sum / float64(len(batch.Pairwise))
	batch.AgreementScore = score.Round3(agreement)
	metrics.ConsensusAgreement.Observe(agreement)

	if agreement < a.cfg.MinAgreement {
		metrics.ConsensusOutcomes.WithLabelValues("low_consensus").Inc()
		a.logger.Warn("model outputs disagree",
			zap.Float64("agreement", agreement),
			zap.Float64("min_agreement", a.cfg.MinAgreement),
			zap.Int("outputs", n))
		return batch, failures, &model.LowConsensusError{
			PromptHash:   promptHash,
			Score:        agreement,
			MinAgreement: a.cfg.MinAgreement,
		}
	}

	medoid := medoidIndex(matrix)
	batch.Merged = batch.ModelOutputs[medoid].Text
	batch.MergedModel = batch.ModelOutputs[medoid].ModelID
	metrics.ConsensusOutcomes.WithLabelValues("merged").Inc()

	a.logger.Info("consensus reached",
		zap.Float64("agreement", batch.AgreementScore),
		zap.String("merged_model", batch.MergedModel),
		zap.Int("outputs", n),
		zap.Int("failures", len(failures)))

	return batch, failures, nil
}

// dispatch launches one call per model, at most cfg.Concurrency at a time
func (a *Aggregator) dispatch(ctx context.Context, prompt string, models []string, replies chan<- reply) {
	var g errgroup.Group
	g.SetLimit(a.cfg.Concurrency)

	for i, modelID := range models {
		if ctx.Err() != nil {
			replies <- reply{index: i, err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			replies <- a.call(ctx, i, prompt, modelID)
			return nil
		})
	}
	_ = g.Wait()
}

func (a *Aggregator) call(ctx context.Context, index int, prompt, modelID string) reply {
	if a.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err := a.adapter.Generate(ctx, prompt, modelID)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		err = fmt.Errorf("%w: %v", ctx.Err(), err)
	}

	a.logger.Debug("model call finished",
		zap.String("model", modelID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("ok", err == nil))

	return reply{index: index, text: text, err: err}
}

// medoidIndex picks the output most similar to all others, lowest index on ties
func medoidIndex(matrix [][]float64) int {
	best, bestSum := 0, -1.0
	for i, row := range matrix {
		var s float64
		for j, v := range row {
			if i != j {
				s += v
			}
		}
		if s > bestSum {
			best, bestSum = i, s
		}
	}
	return best
}
