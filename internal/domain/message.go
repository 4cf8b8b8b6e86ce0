package domain

import "strings"

// KernelMessage is one output-channel message, already attributed to the
// request that caused it. The set of implementations is closed: Stream,
// ExecuteResult, DisplayData, Status and KernelError.
type KernelMessage interface {
	ParentID() string
	kernelMessage()
}

type StreamName string

const (
	StreamStdout StreamName = "stdout"
	StreamStderr StreamName = "stderr"
)

type Stream struct {
	Parent string
	Name   StreamName
	Text   string
}

type ExecuteResult struct {
	Parent string
	Data   MimeBundle
}

type DisplayData struct {
	Parent string
	Data   MimeBundle
}

type ExecutionState string

const (
	StateBusy     ExecutionState = "busy"
	StateIdle     ExecutionState = "idle"
	StateStarting ExecutionState = "starting"
)

type Status struct {
	Parent string
	State  ExecutionState
}

type KernelError struct {
	Parent    string
	Name      string
	Value     string
	Traceback []string
}

// Diagnostic renders the error the way it is appended to stderr.
func (e KernelError) Diagnostic() string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteString(": ")
	b.WriteString(e.Value)
	b.WriteString("\n")
	if len(e.Traceback) > 0 {
		b.WriteString(strings.Join(e.Traceback, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Stream) ParentID() string        { return m.Parent }
func (m ExecuteResult) ParentID() string { return m.Parent }
func (m DisplayData) ParentID() string   { return m.Parent }
func (m Status) ParentID() string        { return m.Parent }
func (m KernelError) ParentID() string   { return m.Parent }

func (Stream) kernelMessage()        {}
func (ExecuteResult) kernelMessage() {}
func (DisplayData) kernelMessage()   {}
func (Status) kernelMessage()        {}
func (KernelError) kernelMessage()   {}

type ReplyStatus string

const (
	ReplyOK    ReplyStatus = "ok"
	ReplyError ReplyStatus = "error"
	ReplyAbort ReplyStatus = "aborted"
)

// ExecuteReply is the synchronous completion reply for one request.
type ExecuteReply struct {
	Parent         string
	Status         ReplyStatus
	ExecutionCount int
	ErrorName      string
	ErrorValue     string
	Traceback      []string
}
