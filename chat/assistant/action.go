package assistant

import (
	"encoding/json"
	"strings"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
)

// ExtractOrderAction pulls the order-action JSON block out of a model
// reply. It returns the parsed action and the reply text with the block
// removed; the action is nil when no valid block is present.
func ExtractOrderAction(reply string) (*contractx.OrderAction, string) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, reply
	}

	var action contractx.OrderAction
	if err := json.Unmarshal([]byte(reply[start:end+1]), &action); err != nil {
		return nil, reply
	}
	if action.Action != "create_order" || len(action.Items) == 0 {
		return nil, reply
	}

	text := strings.TrimSpace(reply[:start] + reply[end+1:])
	return &action, text
}
