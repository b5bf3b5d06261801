package main

import "testing"

func TestAnalyticsPersistsOnClose(t *testing.T) {
	db := testDB(t)
	a := NewAnalytics(db)

	a.Track(EvtKill, 1, 2, 100)
	a.Track(EvtKill, 1, 3, 150)
	a.Track(EvtSessionOpen, 1, 0, 50)
	a.Close()

	kills, deaths, err := db.GetStats(1)
	if err != nil {
		t.Fatal(err)
	}
	if kills != 2 || deaths != 0 {
		t.Errorf("expected actor stats 2/0, got %d/%d", kills, deaths)
	}

	kills, deaths, err = db.GetStats(2)
	if err != nil {
		t.Fatal(err)
	}
	if kills != 0 || deaths != 1 {
		t.Errorf("expected target stats 0/1, got %d/%d", kills, deaths)
	}

	var count int
	err = db.conn.QueryRow("SELECT COUNT(*) FROM events").Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("expected 3 events persisted, got %d", count)
	}
}

func TestAnalyticsNonKillEventsSkipStats(t *testing.T) {
	db := testDB(t)
	a := NewAnalytics(db)

	a.Track(EvtSpawn, 7, 0, 10)
	a.Track(EvtSessionEnd, 7, 0, 20)
	a.Close()

	kills, deaths, err := db.GetStats(7)
	if err != nil {
		t.Fatal(err)
	}
	if kills != 0 || deaths != 0 {
		t.Errorf("expected no stat changes, got %d/%d", kills, deaths)
	}
}

func TestAnalyticsNilDBSafe(t *testing.T) {
	a := NewAnalytics(nil)
	a.Track(EvtKill, 1, 2, 100)
	a.Close()
}

func TestEngineEmitsKillEvents(t *testing.T) {
	e := newTestEngine(GameConfig{MaxPlayers: 4, WorldHalfExtent: 20})
	e.processInput(InputPacket{PlayerID: 1, Seq: 1}, testDT)
	e.processInput(InputPacket{PlayerID: 2, Seq: 1}, testDT)

	// Drain the spawn events from player creation
	for len(e.Events()) > 0 {
		<-e.events
	}

	e.tick.Store(42)
	e.damagePlayer(e.findPlayer(2), 500, 1)

	select {
	case ev := <-e.Events():
		if ev.Type != EventKill || ev.Actor != 1 || ev.Target != 2 || ev.Tick != 42 {
			t.Errorf("unexpected kill event: %+v", ev)
		}
	default:
		t.Fatal("expected a kill event emitted")
	}
}
