package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	statex "github.com/burgerhouse/orderchat/chat/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply string
}

// GraphState flows through the handle-message pipeline. The dispatch node
// mutates Session and fills Reply.
type GraphState struct {
	SessionID string
	Text      string
	Lower     string
	Now       time.Time

	Session *statex.Session
	Reply   string
}

func validateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Lower:     strings.ToLower(text),
		Now:       nowFn().UTC(),
	}, nil
}

func (e *Engine) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[GraphInput, GraphOutput], error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*GraphState, error) {
			return validateRequest(in, e.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_session",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return e.loadSession(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_session: %w", err)
	}

	if err := graph.AddLambdaNode("append_inbound",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return e.appendInbound(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node append_inbound: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_state",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return e.dispatch(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_state: %w", err)
	}

	if err := graph.AddLambdaNode("append_outbound",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return e.appendOutbound(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node append_outbound: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (GraphOutput, error) {
			return e.finalizeReply(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_session"},
		{"load_session", "append_inbound"},
		{"append_inbound", "dispatch_state"},
		{"dispatch_state", "append_outbound"},
		{"append_outbound", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("chat.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile chat graph: %w", err)
	}
	return runner, nil
}
