package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"kasirpos/internal/core"
	"kasirpos/internal/memstore"
	"kasirpos/internal/store"
)

func TestBackupExportImport(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	src := memstore.New()
	now := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	if err := src.CreateProduct(ctx, core.Product{ID: "p1", Name: "Liquid", Category: "liquid", Stock: 5}); err != nil {
		t.Fatal(err)
	}
	if err := src.CreateExpense(ctx, core.OperationalExpense{ID: "e1", Description: "Sewa toko", Amount: 100000, Category: "rent", ExpenseDate: now}); err != nil {
		t.Fatal(err)
	}

	svc := NewBackupService(src, pub)
	snap, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if snap.Version != store.SnapshotVersion || snap.Summary.TotalRecords() != 2 {
		t.Fatalf("snapshot = %+v", snap.Summary)
	}
	if len(pub.backups) != 1 || pub.backups[0].TotalRecords != 2 {
		t.Fatalf("backup notification = %+v", pub.backups)
	}

	dst := memstore.New()
	sum, err := NewBackupService(dst, nil).Import(ctx, snap)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if sum.TotalRecords() != 2 {
		t.Fatalf("imported = %+v", sum)
	}
	if _, err := dst.GetProduct(ctx, "p1"); err != nil {
		t.Fatalf("restored product missing: %v", err)
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	svc := NewBackupService(memstore.New(), nil)

	_, err := svc.Import(context.Background(), store.Snapshot{Version: "99"})
	if err == nil || !strings.Contains(err.Error(), "unsupported backup version") {
		t.Fatalf("err = %v", err)
	}
}
