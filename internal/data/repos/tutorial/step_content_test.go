package tutorial

import (
	"context"
	"testing"

	"github.com/yungbote/tutorbot-backend/internal/data/repos/testutil"
	"github.com/yungbote/tutorbot-backend/internal/domain"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
)

func TestStepContentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewStepContentRepo(db, testutil.Logger(t))

	testutil.SeedStepContent(t, ctx, tx, "step1_substep1", 1, 1, "Paso1_Subpaso1.txt")

	row, err := repo.GetByKey(dbc, "step1_substep1")
	if err != nil || row == nil {
		t.Fatalf("GetByKey: row=%v err=%v", row, err)
	}
	if row.Object != "Paso1_Subpaso1.txt" {
		t.Fatalf("GetByKey object: got=%q", row.Object)
	}

	missing, err := repo.GetByKey(dbc, "step9_substep9")
	if err != nil || missing != nil {
		t.Fatalf("GetByKey(missing): want nil,nil got=%v,%v", missing, err)
	}

	if _, err := repo.Upsert(dbc, []*domain.StepContent{
		{Key: "step1_substep1", Step: 1, Substep: 1, Object: "Paso1_Subpaso1_v2.txt"},
		{Key: "step1_substep2", Step: 1, Substep: 2, Object: "Paso1_Subpaso2.txt"},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	rows, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 || rows[0].Object != "Paso1_Subpaso1_v2.txt" || rows[1].Key != "step1_substep2" {
		t.Fatalf("List after upsert: got=%+v", rows)
	}
}
