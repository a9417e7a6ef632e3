// Package dialogflow maps Dialogflow ES webhook requests onto tutor turns and back.
package dialogflow

import (
	"strings"

	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
)

const (
	Platform = "dialogflow"

	// StepParam is the parameter GoToStep reads its target from.
	StepParam = "stepNumber"

	// ContextName is the output context that carries the tutor's session attributes.
	ContextName     = "session_attributes"
	ContextLifespan = 5
)

type Request struct {
	ResponseID  string      `json:"responseId,omitempty"`
	Session     string      `json:"session"`
	QueryResult QueryResult `json:"queryResult"`
}

type QueryResult struct {
	QueryText      string         `json:"queryText"`
	LanguageCode   string         `json:"languageCode,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	Intent         Intent         `json:"intent"`
	OutputContexts []Context      `json:"outputContexts,omitempty"`
}

type Intent struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName"`
}

type Context struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

type Response struct {
	FulfillmentMessages []FulfillmentMessage `json:"fulfillmentMessages"`
	OutputContexts      []Context            `json:"outputContexts"`
}

type FulfillmentMessage struct {
	Text Text `json:"text"`
}

type Text struct {
	Text []string `json:"text"`
}

func contextPath(session string) string {
	return session + "/contexts/" + ContextName
}

// sessionContext returns the tutor's context, or the first non-system context
// that has parameters for requests from agents that never saw this webhook.
func (r Request) sessionContext() *Context {
	ctxs := r.QueryResult.OutputContexts
	for i := range ctxs {
		if strings.HasSuffix(ctxs[i].Name, "/contexts/"+ContextName) {
			return &ctxs[i]
		}
	}
	for i := range ctxs {
		if len(ctxs[i].Parameters) > 0 && !isSystemContext(ctxs[i].Name) {
			return &ctxs[i]
		}
	}
	return nil
}

// isSystemContext reports Dialogflow's own contexts such as __system_counters__.
func isSystemContext(name string) bool {
	short := name
	if i := strings.LastIndex(name, "/contexts/"); i >= 0 {
		short = name[i+len("/contexts/"):]
	}
	return strings.HasPrefix(short, "__")
}

func (r Request) sessionParams() map[string]any {
	if c := r.sessionContext(); c != nil {
		return c.Parameters
	}
	return nil
}

func (r Request) stepParam() string {
	if v, ok := r.QueryResult.Parameters[StepParam]; ok {
		return tutorial.StringAttributes(map[string]any{StepParam: v})[StepParam]
	}
	return tutorial.StringAttributes(r.sessionParams())[StepParam]
}

// Decode reads a turn out of a Dialogflow request. Resolution and session
// errors are carried on the Turn.
func Decode(table tutorial.IntentTable, req Request) tutorial.Turn {
	name := req.QueryResult.Intent.DisplayName
	turn := tutorial.Turn{
		SessionID:  req.Session,
		Platform:   Platform,
		IntentName: name,
		Text:       req.QueryResult.QueryText,
	}
	turn.Intent, turn.ResolveErr = table.Resolve(name, req.stepParam(), req.QueryResult.QueryText)
	turn.Session, turn.SessionErr = tutorial.SessionFromAttributes(tutorial.StringAttributes(req.sessionParams()))
	return turn
}

// Encode renders a reply as text fulfilment messages plus the session
// attributes context. Parameters the tutor does not own are passed through.
func Encode(req Request, reply tutorial.Reply) Response {
	params := map[string]any{}
	for k, v := range req.sessionParams() {
		params[k] = v
	}
	if !reply.KeepSession {
		for k, v := range reply.Session.Attributes() {
			params[k] = v
		}
	}
	msgs := make([]FulfillmentMessage, 0, len(reply.Messages))
	for _, m := range reply.Messages {
		msgs = append(msgs, FulfillmentMessage{Text: Text{Text: []string{m}}})
	}
	return Response{
		FulfillmentMessages: msgs,
		OutputContexts: []Context{{
			Name:          contextPath(req.Session),
			LifespanCount: ContextLifespan,
			Parameters:    params,
		}},
	}
}
