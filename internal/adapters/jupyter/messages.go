package jupyter

import (
	"fmt"

	"github.com/bnema/orca/internal/domain"
	"github.com/bytedance/sonic"
)

const (
	msgExecuteRequest    = "execute_request"
	msgExecuteReply      = "execute_reply"
	msgKernelInfoRequest = "kernel_info_request"
	msgKernelInfoReply   = "kernel_info_reply"
	msgInterruptRequest  = "interrupt_request"
	msgInterruptReply    = "interrupt_reply"
	msgStream            = "stream"
	msgExecuteResult     = "execute_result"
	msgDisplayData       = "display_data"
	msgStatus            = "status"
	msgError             = "error"
)

type executeRequestContent struct {
	Code            string         `json:"code"`
	Silent          bool           `json:"silent"`
	StoreHistory    bool           `json:"store_history"`
	UserExpressions map[string]any `json:"user_expressions"`
	AllowStdin      bool           `json:"allow_stdin"`
	StopOnError     bool           `json:"stop_on_error"`
}

type streamContent struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type dataContent struct {
	Data map[string]any `json:"data"`
}

type statusContent struct {
	ExecutionState string `json:"execution_state"`
}

type errorContent struct {
	EName     string   `json:"ename"`
	EValue    string   `json:"evalue"`
	Traceback []string `json:"traceback"`
}

type executeReplyContent struct {
	Status         string   `json:"status"`
	ExecutionCount int      `json:"execution_count"`
	EName          string   `json:"ename"`
	EValue         string   `json:"evalue"`
	Traceback      []string `json:"traceback"`
}

// toKernelMessage converts an iopub message into the output sum type.
// Message types outside the five output kinds report false.
func toKernelMessage(msg Message) (domain.KernelMessage, bool, error) {
	parent := msg.ParentHeader.MsgID

	switch msg.Header.MsgType {
	case msgStream:
		var content streamContent
		if err := sonic.Unmarshal(msg.Content, &content); err != nil {
			return nil, false, fmt.Errorf("decode stream content: %w", err)
		}
		return domain.Stream{Parent: parent, Name: domain.StreamName(content.Name), Text: content.Text}, true, nil
	case msgExecuteResult:
		var content dataContent
		if err := sonic.Unmarshal(msg.Content, &content); err != nil {
			return nil, false, fmt.Errorf("decode execute_result content: %w", err)
		}
		return domain.ExecuteResult{Parent: parent, Data: domain.MimeBundle(content.Data)}, true, nil
	case msgDisplayData:
		var content dataContent
		if err := sonic.Unmarshal(msg.Content, &content); err != nil {
			return nil, false, fmt.Errorf("decode display_data content: %w", err)
		}
		return domain.DisplayData{Parent: parent, Data: domain.MimeBundle(content.Data)}, true, nil
	case msgStatus:
		var content statusContent
		if err := sonic.Unmarshal(msg.Content, &content); err != nil {
			return nil, false, fmt.Errorf("decode status content: %w", err)
		}
		return domain.Status{Parent: parent, State: domain.ExecutionState(content.ExecutionState)}, true, nil
	case msgError:
		var content errorContent
		if err := sonic.Unmarshal(msg.Content, &content); err != nil {
			return nil, false, fmt.Errorf("decode error content: %w", err)
		}
		return domain.KernelError{Parent: parent, Name: content.EName, Value: content.EValue, Traceback: content.Traceback}, true, nil
	default:
		return nil, false, nil
	}
}

func toExecuteReply(msg Message) (domain.ExecuteReply, error) {
	var content executeReplyContent
	if err := sonic.Unmarshal(msg.Content, &content); err != nil {
		return domain.ExecuteReply{}, fmt.Errorf("decode execute_reply content: %w", err)
	}

	return domain.ExecuteReply{
		Parent:         msg.ParentHeader.MsgID,
		Status:         domain.ReplyStatus(content.Status),
		ExecutionCount: content.ExecutionCount,
		ErrorName:      content.EName,
		ErrorValue:     content.EValue,
		Traceback:      content.Traceback,
	}, nil
}
