package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yungbote/tutorbot-backend/internal/data/repos/testutil"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial/lex"
	"github.com/yungbote/tutorbot-backend/internal/observability"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
)

func TestWiredServerServesLexTurn(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	testutil.SeedStepContent(t, ctx, tx, "step1_substep1", 1, 1, "Paso1_Subpaso1.txt")
	testutil.SeedQAEntry(t, ctx, tx, "CreacionStorage", "como creo un bucket", "Desde Cloud Storage, pulsa Crear.", 1)

	tcfg, err := tutorial.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg := Config{WebhookToken: "s3cret"}
	clients := Clients{Bucket: &stubBucket{objects: map[string]string{"tutorial/Paso1_Subpaso1.txt": "Abre la consola de GCP."}}}
	metrics := observability.New()

	reposet := wireRepos(tx, log)
	serviceset, err := wireServices(log, cfg, tcfg, clients, reposet, metrics)
	if err != nil {
		t.Fatalf("wireServices: %v", err)
	}
	server := wireServer(log, cfg, wireHandlers(log, nil, serviceset), wireMiddleware(log, cfg), metrics)

	body := `{"sessionId":"sess-1","inputTranscript":"siguiente","sessionState":{"intent":{"name":"NextStep"},"sessionAttributes":{}}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/lex", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	server.Engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp lex.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].Content != "Abre la consola de GCP." {
		t.Fatalf("messages: got=%+v", resp.Messages)
	}

	turns, err := reposet.TutorTurn.ListBySession(dbctx.Context{Ctx: ctx}, "sess-1", 10)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(turns) != 1 || turns[0].Outcome != string(tutorial.OutcomeDelivered) || turns[0].Platform != lex.Platform {
		t.Fatalf("turn log: got=%+v", turns)
	}
	if turns[0].RequestID == "" {
		t.Fatalf("turn log: request id not recorded")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/topics/CreacionStorage/questions?q=bucket", nil)
	rec = httptest.NewRecorder()
	server.Engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "como creo un bucket") {
		t.Fatalf("browse: code=%d body=%s", rec.Code, rec.Body.String())
	}
}
