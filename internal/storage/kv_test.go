// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := OpenKV(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenKV failed: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestKVGetMissing(t *testing.T) {
	kv := openTestKV(t)

	_, ok, err := kv.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("missing key should report ok=false")
	}
}

func TestKVSetGetDelete(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok || value != "v1" {
		t.Fatalf("Get = (%q, %v, %v)", value, ok, err)
	}

	// Upsert overwrites.
	if err := kv.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, _, _ = kv.Get(ctx, "k")
	if value != "v2" {
		t.Errorf("value = %q, want %q", value, "v2")
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, ok, _ = kv.Get(ctx, "k")
	if ok {
		t.Error("deleted key should be gone")
	}

	// Deleting again is a no-op.
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Errorf("double delete should not error: %v", err)
	}
}

func TestKVWithTxCommit(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()

	err := kv.WithTx(ctx, func(tx *sql.Tx) error {
		if err := txSet(tx, "a", "1"); err != nil {
			return err
		}
		return txSet(tx, "b", "2")
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	for key, want := range map[string]string{"a": "1", "b": "2"} {
		value, ok, err := kv.Get(ctx, key)
		if err != nil || !ok || value != want {
			t.Errorf("Get(%q) = (%q, %v, %v), want %q", key, value, ok, err, want)
		}
	}
}

func TestKVWithTxRollback(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := kv.WithTx(ctx, func(tx *sql.Tx) error {
		if err := txSet(tx, "a", "1"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	_, ok, _ := kv.Get(ctx, "a")
	if ok {
		t.Error("rolled-back write must not be visible")
	}
}

func TestKVPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	kv, err := OpenKV(path)
	if err != nil {
		t.Fatalf("OpenKV failed: %v", err)
	}
	if err := kv.Set(ctx, "durable", "yes"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	kv.Close()

	kv2, err := OpenKV(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer kv2.Close()

	value, ok, err := kv2.Get(ctx, "durable")
	if err != nil || !ok || value != "yes" {
		t.Errorf("Get after reopen = (%q, %v, %v)", value, ok, err)
	}
}
