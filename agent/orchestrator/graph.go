package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
	turnnode "github.com/gecortesh/chatbot-ecommerce/agent/nodes"
)

func (o *Orchestrator) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[turnnode.GraphInput, turnnode.GraphOutput], error) {
	graph := compose.NewGraph[turnnode.GraphInput, turnnode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in turnnode.GraphInput) (*turnnode.GraphState, error) {
			return turnnode.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_state",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.LoadOrCreateState(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_state: %w", err)
	}

	if err := graph.AddLambdaNode("decide",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.Decide(ctx, in, o.gateway)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node decide: %w", err)
	}

	if err := graph.AddLambdaNode("direct_reply",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (turnnode.GraphOutput, error) {
			return turnnode.DirectReply(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node direct_reply: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_call",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ResolveCall(in, o.registry)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_call: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_call",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.DispatchCall(ctx, in, o.dispatcher)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_call: %w", err)
	}

	if err := graph.AddLambdaNode("phrase_result",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.PhraseResult(ctx, in, o.gateway)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node phrase_result: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_call",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (turnnode.GraphOutput, error) {
			return turnnode.FinalizeCall(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_call: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *turnnode.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: turn graph state is nil", contractx.ErrValidation)
			}
			if in.Decision.Kind == contractx.DecisionFunctionCall {
				return "resolve_call", nil
			}
			return "direct_reply", nil
		},
		map[string]bool{
			"resolve_call": true,
			"direct_reply": true,
		},
	)
	if err := graph.AddBranch("decide", branch); err != nil {
		return nil, fmt.Errorf("add decide branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_or_create_state"},
		{"load_or_create_state", "decide"},
		{"resolve_call", "dispatch_call"},
		{"dispatch_call", "phrase_result"},
		{"phrase_result", "finalize_call"},
		{"finalize_call", compose.END},
		{"direct_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
