package tutorial

import (
	"context"
	"testing"

	"github.com/yungbote/tutorbot-backend/internal/data/repos/testutil"
	"github.com/yungbote/tutorbot-backend/internal/domain"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
)

func TestQAEntryRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewQAEntryRepo(db, testutil.Logger(t))

	testutil.SeedQAEntry(t, ctx, tx, "QARepoLex", "que es lex", "A2", 2)
	testutil.SeedQAEntry(t, ctx, tx, "QARepoLex", "para que sirve lex", "A1", 1)
	testutil.SeedQAEntry(t, ctx, tx, "QARepoOther", "otra", "B", 1)

	rows, err := repo.ListByTopic(dbc, "QARepoLex")
	if err != nil {
		t.Fatalf("ListByTopic: %v", err)
	}
	if len(rows) != 2 || rows[0].Answer != "A1" || rows[1].Answer != "A2" {
		t.Fatalf("ListByTopic order: got=%+v", rows)
	}
	if rows, err := repo.ListByTopic(dbc, "  "); err != nil || len(rows) != 0 {
		t.Fatalf("ListByTopic(blank): rows=%v err=%v", rows, err)
	}

	n, err := repo.Upsert(dbc, []*domain.QAEntry{
		{Topic: "QARepoLex", Question: "que es lex", Answer: "A2-updated", Sequence: 0},
		{Topic: "QARepoLex", Question: "como pruebo el bot", Answer: "A3", Sequence: 3},
	})
	if err != nil || n == 0 {
		t.Fatalf("Upsert: n=%d err=%v", n, err)
	}
	rows, err = repo.ListByTopic(dbc, "QARepoLex")
	if err != nil {
		t.Fatalf("ListByTopic after upsert: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("ListByTopic after upsert: want 3 got=%d", len(rows))
	}
	if rows[0].Answer != "A2-updated" || rows[0].ID != "QARepoLex_que es lex" {
		t.Fatalf("Upsert did not overwrite existing id: got=%+v", rows[0])
	}

	topics, err := repo.Topics(dbc)
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	seen := map[string]bool{}
	for _, tp := range topics {
		seen[tp] = true
	}
	if !seen["QARepoLex"] || !seen["QARepoOther"] {
		t.Fatalf("Topics: got=%v", topics)
	}

	if err := repo.DeleteByTopic(dbc, "QARepoOther"); err != nil {
		t.Fatalf("DeleteByTopic: %v", err)
	}
	if rows, _ := repo.ListByTopic(dbc, "QARepoOther"); len(rows) != 0 {
		t.Fatalf("DeleteByTopic left rows: %v", rows)
	}
}
