package agent

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/legallink/assist/internal/domain"
)

// Flow decisions emitted by the flow-decision node.
const (
	FlowClarification = "clarification_request"
	FlowEnd           = "end"
	FlowContinue      = "continue"
)

// DefaultMaxLoops bounds the dialogue loop-back per turn.
const DefaultMaxLoops = 3

// Graph runs the agent pipeline for one turn. The topology is fixed:
//
//	context → [ dialogue → classification →
//	            {clarification, legal_reasoning, risk_assessment, recommendation} →
//	            memory → progress → flow_decision ]*
//
// The bracketed section loops back to dialogue on a "continue" decision,
// bounded by MaxLoops.
type Graph struct {
	contextAgent   SequentialAgent
	dialogue       SequentialAgent
	classification SequentialAgent
	fanOut         []DeltaAgent
	memory         SequentialAgent
	progress       SequentialAgent
	maxLoops       int
}

// NewGraph assembles the standard nine-agent pipeline.
func NewGraph(classifier Classifier, maxLoops int) *Graph {
	if maxLoops <= 0 {
		maxLoops = DefaultMaxLoops
	}
	return &Graph{
		contextAgent:   NewContext(),
		dialogue:       NewDialogue(),
		classification: NewClassification(classifier),
		fanOut: []DeltaAgent{
			NewClarification(),
			NewLegalReasoning(),
			NewRiskAssessment(),
			NewRecommendation(),
		},
		memory:   NewMemory(),
		progress: NewProgress(),
		maxLoops: maxLoops,
	}
}

// Execute runs the graph over the state and returns the final flow decision.
// Agent panics are recovered into errors so a bad agent cannot crash the
// session.
func (g *Graph) Execute(ctx context.Context, state *State) (string, error) {
	if err := runSequential(ctx, g.contextAgent, state); err != nil {
		return "", err
	}

	decision := FlowContinue
	for iteration := 0; iteration < g.maxLoops; iteration++ {
		if err := runSequential(ctx, g.dialogue, state); err != nil {
			return "", err
		}
		if err := runSequential(ctx, g.classification, state); err != nil {
			return "", err
		}

		if err := g.runFanOut(ctx, state); err != nil {
			return "", err
		}

		if err := runSequential(ctx, g.memory, state); err != nil {
			return "", err
		}
		if err := runSequential(ctx, g.progress, state); err != nil {
			return "", err
		}

		decision = flowDecision(state)
		state.ResponseData["flow_decision"] = decision

		if decision != FlowContinue {
			break
		}

		if iteration == g.maxLoops-1 {
			// Loop cap reached without a natural end; force termination with
			// a partial-completion note.
			slog.Warn("agent graph hit loop cap, forcing end",
				"session_id", state.SessionID, "max_loops", g.maxLoops)
			decision = FlowEnd
			state.ResponseData["flow_decision"] = FlowEnd
			state.ResponseData["partial_completion"] = true
		}
	}

	if decision == FlowEnd {
		if completion, ok := state.ResponseData["completion_status"].(CompletionStatus); ok && completion.ReadyForClosure {
			state.Stage = domain.StageClosure
		}
	}

	return decision, nil
}

// runFanOut executes the four specialist agents concurrently against one
// snapshot and merges their deltas in registration order.
func (g *Graph) runFanOut(ctx context.Context, state *State) error {
	snap := state.Snapshot()
	deltas := make([]Delta, len(g.fanOut))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, a := range g.fanOut {
		group.Go(func() error {
			d, err := evaluateSafely(groupCtx, a, snap)
			if err != nil {
				return err
			}
			deltas[i] = d
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	return MergeDeltas(state, deltas)
}

// flowDecision applies the fixed decision order: clarification first, then
// closure, then continue.
func flowDecision(state *State) string {
	if needed, ok := state.ResponseData["clarification_needed"].(bool); ok && needed {
		return FlowClarification
	}

	if completion, ok := state.ResponseData["completion_status"].(CompletionStatus); ok && completion.ReadyForClosure {
		return FlowEnd
	}

	return FlowContinue
}

func runSequential(ctx context.Context, a SequentialAgent, state *State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent %s panicked: %v", a.Name(), r)
		}
	}()
	if err := a.Process(ctx, state); err != nil {
		return fmt.Errorf("agent %s: %w", a.Name(), err)
	}
	return nil
}

func evaluateSafely(ctx context.Context, a DeltaAgent, snap Snapshot) (d Delta, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent %s panicked: %v", a.Name(), r)
		}
	}()
	d, err = a.Evaluate(ctx, snap)
	if err != nil {
		return Delta{}, fmt.Errorf("agent %s: %w", a.Name(), err)
	}
	return d, nil
}
