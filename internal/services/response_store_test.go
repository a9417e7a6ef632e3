package services

import (
	"context"
	"testing"

	"github.com/yungbote/tutorbot-backend/internal/data/repos"
	"github.com/yungbote/tutorbot-backend/internal/data/repos/testutil"
)

func TestResponseStoreListByTagKeepsStoreOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	testutil.SeedQAEntry(t, context.Background(), tx, "Billing", "como veo mi factura", "En la consola de facturación.", 1)
	testutil.SeedQAEntry(t, context.Background(), tx, "Billing", "que es una cuenta de facturacion", "Es la cuenta que paga.", 2)
	testutil.SeedQAEntry(t, context.Background(), tx, "Other", "hola", "adios", 1)

	store := NewResponseStore(log, repos.NewQAEntryRepo(tx, log))
	ctx := context.Background()

	got, err := store.ListByTag(ctx, "Billing")
	if err != nil {
		t.Fatalf("ListByTag: %v", err)
	}
	if len(got) != 2 || got[0].Question != "como veo mi factura" || got[1].Question != "que es una cuenta de facturacion" {
		t.Fatalf("ListByTag: got=%+v", got)
	}

	none, err := store.ListByTag(ctx, " ")
	if err != nil || len(none) != 0 {
		t.Fatalf("ListByTag blank: got=%v err=%v", none, err)
	}

	topics, err := store.Topics(ctx)
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if len(topics) != 2 || topics[0] != "Billing" || topics[1] != "Other" {
		t.Fatalf("Topics: want=[Billing Other] got=%v", topics)
	}
}

func TestResponseStoreBrowse(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	testutil.SeedQAEntry(t, context.Background(), tx, "Billing", "que es una cuenta de facturacion", "a", 1)
	testutil.SeedQAEntry(t, context.Background(), tx, "Billing", "como veo mi factura", "b", 2)
	testutil.SeedQAEntry(t, context.Background(), tx, "Billing", "cuanto cuesta", "c", 3)

	store := NewResponseStore(log, repos.NewQAEntryRepo(tx, log))
	ctx := context.Background()

	all, err := store.Browse(ctx, "Billing", "")
	if err != nil || len(all) != 3 {
		t.Fatalf("Browse all: got=%d err=%v", len(all), err)
	}

	got, err := store.Browse(ctx, "Billing", "FACTURA")
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Browse factura: want=2 got=%+v", got)
	}
	if got[0].Question != "como veo mi factura" {
		t.Fatalf("Browse rank: want closest first got=%q", got[0].Question)
	}
}
