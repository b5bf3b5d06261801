package main

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTokenRoundTrip(t *testing.T) {
	a := NewAuth(testDB(t))

	token, err := a.IssueToken(42, "ada")
	if err != nil {
		t.Fatal(err)
	}
	pid, ok := a.VerifyToken(token)
	if !ok {
		t.Fatal("expected issued token to verify")
	}
	if pid != 42 {
		t.Errorf("expected player id 42, got %d", pid)
	}
}

func TestTokenRejectsTampering(t *testing.T) {
	a := NewAuth(testDB(t))

	token, _ := a.IssueToken(42, "")
	if _, ok := a.VerifyToken(token + "x"); ok {
		t.Error("tampered token must not verify")
	}
	if _, ok := a.VerifyToken("not-a-token"); ok {
		t.Error("garbage token must not verify")
	}
	if _, ok := a.VerifyToken(""); ok {
		t.Error("empty token must not verify")
	}
}

func TestTokenForeignSecretRejected(t *testing.T) {
	a := NewAuth(testDB(t))
	b := NewAuth(testDB(t))

	token, _ := a.IssueToken(42, "")
	if _, ok := b.VerifyToken(token); ok {
		t.Error("token signed with a different secret must not verify")
	}
}

func TestSecretPersistsAcrossRestart(t *testing.T) {
	db := testDB(t)

	a1 := NewAuth(db)
	token, _ := a1.IssueToken(7, "")

	// Same database, fresh Auth: the persisted secret must still verify
	a2 := NewAuth(db)
	pid, ok := a2.VerifyToken(token)
	if !ok || pid != 7 {
		t.Error("expected token to survive an auth restart on the same database")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	a := NewAuth(testDB(t))

	id, err := a.Register("ada", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if id <= 0 {
		t.Errorf("expected positive account id, got %d", id)
	}

	account, err := a.Login("ada", "hunter2", "10.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if account.Username != "ada" {
		t.Errorf("expected account ada, got %q", account.Username)
	}

	if _, err := a.Login("ada", "wrong", "10.0.0.1"); err == nil {
		t.Error("wrong password must fail")
	}
	if _, err := a.Login("nobody", "hunter2", "10.0.0.1"); err == nil {
		t.Error("unknown user must fail")
	}
}

func TestRegisterValidation(t *testing.T) {
	a := NewAuth(testDB(t))

	if _, err := a.Register("x", "hunter2"); err == nil {
		t.Error("too-short username must fail")
	}
	if _, err := a.Register("waytoolongusername1234", "hunter2"); err == nil {
		t.Error("too-long username must fail")
	}
	if _, err := a.Register("ada", "abc"); err == nil {
		t.Error("too-short password must fail")
	}

	if _, err := a.Register("ada", "hunter2"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Register("ada", "hunter2"); err == nil {
		t.Error("duplicate username must fail")
	}
}

func TestLoginRateLimit(t *testing.T) {
	a := NewAuth(testDB(t))
	if _, err := a.Register("ada", "hunter2"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < maxLoginAttempts; i++ {
		a.Login("ada", "wrong", "10.0.0.9")
	}
	if _, err := a.Login("ada", "hunter2", "10.0.0.9"); err == nil {
		t.Error("expected the address locked out after repeated failures")
	}

	// A different address is unaffected
	if _, err := a.Login("ada", "hunter2", "10.0.0.10"); err != nil {
		t.Errorf("other addresses must not be limited: %v", err)
	}
}

func TestStatsCounters(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 3; i++ {
		if err := db.AddKill(5); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.AddDeath(5); err != nil {
		t.Fatal(err)
	}

	kills, deaths, err := db.GetStats(5)
	if err != nil {
		t.Fatal(err)
	}
	if kills != 3 || deaths != 1 {
		t.Errorf("expected 3/1, got %d/%d", kills, deaths)
	}

	// Unknown player reads as zeroes
	kills, deaths, err = db.GetStats(999)
	if err != nil {
		t.Fatal(err)
	}
	if kills != 0 || deaths != 0 {
		t.Errorf("expected 0/0 for unknown player, got %d/%d", kills, deaths)
	}
}

func TestSettingsUpsert(t *testing.T) {
	db := testDB(t)

	if v := db.GetSetting("missing"); v != "" {
		t.Errorf("expected empty value for a missing key, got %q", v)
	}
	if err := db.SetSetting("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetSetting("k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v := db.GetSetting("k"); v != "v2" {
		t.Errorf("expected upserted value v2, got %q", v)
	}
}
