package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
	dispatchx "github.com/gecortesh/chatbot-ecommerce/agent/dispatch"
	turnnode "github.com/gecortesh/chatbot-ecommerce/agent/nodes"
	registryx "github.com/gecortesh/chatbot-ecommerce/agent/registry"
	statex "github.com/gecortesh/chatbot-ecommerce/agent/state"
)

var (
	ErrInvalidMessage = turnnode.ErrInvalidMessage
	ErrInvalidSession = turnnode.ErrInvalidSession
)

// Orchestrator binds the gateway, validator, policy and dispatcher into the
// per-turn control loop. Turns within one session are strictly sequential;
// the orchestrator itself holds no per-session state and may serve many
// sessions concurrently.
type Orchestrator struct {
	store      statex.Store
	gateway    contractx.Gateway
	registry   *registryx.Registry
	dispatcher *dispatchx.Dispatcher

	graphRunner compose.Runnable[turnnode.GraphInput, turnnode.GraphOutput]

	now func() time.Time
}

func New(
	store statex.Store,
	gateway contractx.Gateway,
	registry *registryx.Registry,
	dispatcher *dispatchx.Dispatcher,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if gateway == nil {
		return nil, errors.New("model gateway is required")
	}
	if registry == nil {
		return nil, errors.New("operation registry is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}

	o := &Orchestrator{
		store:      store,
		gateway:    gateway,
		registry:   registry,
		dispatcher: dispatcher,
		now:        time.Now,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleMessage runs one user turn and returns the reply text.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	out, err := o.graphRunner.Invoke(ctx, turnnode.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// HandleTurn is HandleMessage plus the machine-readable business failure
// kind of the turn, for caller-side logging.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID string, text string) (turnnode.GraphOutput, error) {
	return o.graphRunner.Invoke(ctx, turnnode.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
}
