package registry

import (
	"errors"
	"testing"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
)

func TestGetUnknownOperation(t *testing.T) {
	t.Parallel()

	_, err := New().Get("refund_order")
	if !errors.Is(err, contractx.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestGetKnownOperations(t *testing.T) {
	t.Parallel()

	r := New()

	track, err := r.Get(OpTrackOrder)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", OpTrackOrder, err)
	}
	if len(track.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(track.Params))
	}
	if !track.Params[0].Required || track.Params[0].Name != ParamEmail {
		t.Fatalf("first track param must be required email, got %+v", track.Params[0])
	}
	if track.Params[1].Required {
		t.Fatal("order id must be optional for tracking")
	}

	cancel, err := r.Get(OpCancelOrder)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", OpCancelOrder, err)
	}
	for _, p := range cancel.Params {
		if !p.Required {
			t.Fatalf("cancel param %s must be required", p.Name)
		}
	}
}

func TestNamesDeclarationOrder(t *testing.T) {
	t.Parallel()

	names := New().Names()
	if len(names) != 2 || names[0] != OpTrackOrder || names[1] != OpCancelOrder {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestToolInfosMirrorSpecs(t *testing.T) {
	t.Parallel()

	infos := New().ToolInfos()
	if len(infos) != 2 {
		t.Fatalf("expected 2 tool infos, got %d", len(infos))
	}
	if infos[0].Name != OpTrackOrder || infos[1].Name != OpCancelOrder {
		t.Fatalf("unexpected tool names: %s, %s", infos[0].Name, infos[1].Name)
	}
	for _, info := range infos {
		if info.Desc == "" {
			t.Fatalf("tool %s must carry a description", info.Name)
		}
		if info.ParamsOneOf == nil {
			t.Fatalf("tool %s must carry a parameter schema", info.Name)
		}
	}
}
