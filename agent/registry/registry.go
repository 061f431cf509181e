package registry

import (
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
)

const (
	OpTrackOrder  = "track_order"
	OpCancelOrder = "cancel_order"
)

const (
	ParamEmail   = "email"
	ParamOrderID = "order_id"
)

type ParamKind string

const (
	KindEmail   ParamKind = "email"
	KindOrderID ParamKind = "order_id"
)

type ParamSpec struct {
	Name     string
	Required bool
	Kind     ParamKind
	Desc     string
}

// OperationSpec declares one backend operation and its ordered parameter
// contract. Validator and dispatcher both resolve specs through the same
// registry so the contract the model is told about is the one enforced.
type OperationSpec struct {
	Name   string
	Desc   string
	Params []ParamSpec
}

// Registry is read-only after construction and safe for concurrent use.
type Registry struct {
	specs map[string]OperationSpec
	names []string
}

func New() *Registry {
	specs := []OperationSpec{
		{
			Name: OpTrackOrder,
			Desc: "Look up the orders of a customer, optionally narrowed to a single order id.",
			Params: []ParamSpec{
				{Name: ParamEmail, Required: true, Kind: KindEmail, Desc: "Customer email address"},
				{Name: ParamOrderID, Required: false, Kind: KindOrderID, Desc: "Specific order id, e.g. ORD001"},
			},
		},
		{
			Name: OpCancelOrder,
			Desc: "Cancel a specific order if the cancellation policy allows it.",
			Params: []ParamSpec{
				{Name: ParamEmail, Required: true, Kind: KindEmail, Desc: "Customer email address"},
				{Name: ParamOrderID, Required: true, Kind: KindOrderID, Desc: "Order id to cancel, e.g. ORD003"},
			},
		},
	}

	r := &Registry{
		specs: make(map[string]OperationSpec, len(specs)),
		names: make([]string, 0, len(specs)),
	}
	for _, spec := range specs {
		r.specs[spec.Name] = spec
		r.names = append(r.names, spec.Name)
	}
	return r
}

func (r *Registry) Get(name string) (OperationSpec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return OperationSpec{}, fmt.Errorf("%w: %s", contractx.ErrUnknownOperation, name)
	}
	return spec, nil
}

// Names returns operation names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// ToolInfos renders every operation spec as a tool schema for binding onto
// the chat model, so the gateway advertises exactly the contract the
// validator enforces.
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.names))
	for _, name := range r.names {
		spec := r.specs[name]
		params := make(map[string]*schema.ParameterInfo, len(spec.Params))
		for _, p := range spec.Params {
			params[p.Name] = &schema.ParameterInfo{
				Type:     schema.String,
				Desc:     p.Desc,
				Required: p.Required,
			}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        spec.Name,
			Desc:        spec.Desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}
