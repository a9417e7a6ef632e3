// Package lex maps Amazon Lex V2 fulfilment events onto tutor turns and back.
package lex

import (
	"encoding/json"
	"strings"

	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
)

const (
	Platform = "lex"

	// StepSlot is the slot GoToStep reads its target from.
	StepSlot = "StepNumber"

	ContentTypeCustomPayload = "CustomPayload"
	ContentTypePlainText     = "PlainText"

	DialogActionClose    = "Close"
	IntentStateFulfilled = "Fulfilled"
)

type Event struct {
	MessageVersion      string       `json:"messageVersion,omitempty"`
	InvocationSource    string       `json:"invocationSource,omitempty"`
	InputMode           string       `json:"inputMode,omitempty"`
	ResponseContentType string       `json:"responseContentType,omitempty"`
	SessionID           string       `json:"sessionId"`
	InputTranscript     string       `json:"inputTranscript"`
	Bot                 *Bot         `json:"bot,omitempty"`
	SessionState        SessionState `json:"sessionState"`
}

type Bot struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	LocaleID  string `json:"localeId,omitempty"`
	Version   string `json:"version,omitempty"`
	AliasID   string `json:"aliasId,omitempty"`
	AliasName string `json:"aliasName,omitempty"`
}

type SessionState struct {
	DialogAction      *DialogAction `json:"dialogAction,omitempty"`
	Intent            Intent        `json:"intent"`
	SessionAttributes Attributes    `json:"sessionAttributes"`
}

type DialogAction struct {
	Type string `json:"type"`
}

type Intent struct {
	Name  string           `json:"name"`
	State string           `json:"state,omitempty"`
	Slots map[string]*Slot `json:"slots,omitempty"`
}

type Slot struct {
	Value *SlotValue `json:"value,omitempty"`
}

type SlotValue struct {
	OriginalValue    string   `json:"originalValue,omitempty"`
	InterpretedValue string   `json:"interpretedValue,omitempty"`
	ResolvedValues   []string `json:"resolvedValues,omitempty"`
}

type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type Response struct {
	SessionState SessionState `json:"sessionState"`
	Messages     []Message    `json:"messages"`
}

// Attributes are Lex session attributes. Lex itself only sends strings, but
// test consoles and older bots send numbers, so any scalar is accepted.
type Attributes map[string]string

func (a *Attributes) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*a = tutorial.StringAttributes(raw)
	return nil
}

func (e Event) slotValue(name string) string {
	slot := e.SessionState.Intent.Slots[name]
	if slot == nil || slot.Value == nil {
		return ""
	}
	if v := strings.TrimSpace(slot.Value.InterpretedValue); v != "" {
		return v
	}
	return strings.TrimSpace(slot.Value.OriginalValue)
}

// Decode reads a turn out of a Lex event. Resolution and session errors are
// carried on the Turn; the tutor decides what to say about them.
func Decode(table tutorial.IntentTable, ev Event) tutorial.Turn {
	name := ev.SessionState.Intent.Name
	turn := tutorial.Turn{
		SessionID:  ev.SessionID,
		Platform:   Platform,
		IntentName: name,
		Text:       ev.InputTranscript,
	}
	turn.Intent, turn.ResolveErr = table.Resolve(name, ev.slotValue(StepSlot), ev.InputTranscript)
	turn.Session, turn.SessionErr = tutorial.SessionFromAttributes(ev.SessionState.SessionAttributes)
	return turn
}

// Encode renders a reply as a closed, fulfilled Lex response. Attributes the
// tutor does not own are passed through.
func Encode(ev Event, reply tutorial.Reply) Response {
	attrs := Attributes{}
	for k, v := range ev.SessionState.SessionAttributes {
		attrs[k] = v
	}
	if !reply.KeepSession {
		for k, v := range reply.Session.Attributes() {
			attrs[k] = v
		}
	}
	msgs := make([]Message, 0, len(reply.Messages))
	for _, m := range reply.Messages {
		msgs = append(msgs, Message{ContentType: ContentTypeCustomPayload, Content: m})
	}
	return Response{
		SessionState: SessionState{
			DialogAction:      &DialogAction{Type: DialogActionClose},
			Intent:            Intent{Name: ev.SessionState.Intent.Name, State: IntentStateFulfilled},
			SessionAttributes: attrs,
		},
		Messages: msgs,
	}
}
