package signal

import (
	"testing"

	"github.com/tomaslejdung/godesk/pkg/protocol"
)

// fakeConn records everything delivered to it.
type fakeConn struct {
	delivered []protocol.Message
}

func (f *fakeConn) Deliver(msg protocol.Message) {
	f.delivered = append(f.delivered, msg)
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	r := NewRegistry()
	host := &fakeConn{}

	if err := r.Create("1111111111", host); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := r.Create("1111111111", &fakeConn{}); err != ErrSessionExists {
		t.Errorf("expected ErrSessionExists, got %v", err)
	}

	// The original session must be untouched.
	got, ok := r.Host("1111111111")
	if !ok || got != host {
		t.Error("duplicate create clobbered the original host")
	}
}

func TestJoinUnknownSession(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Join("9999999999", "c1", &fakeConn{}); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestJoinReturnsHost(t *testing.T) {
	r := NewRegistry()
	host := &fakeConn{}
	client := &fakeConn{}

	if err := r.Create("1111111111", host); err != nil {
		t.Fatal(err)
	}
	got, err := r.Join("1111111111", "c1", client)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if got != host {
		t.Error("join did not return the session host")
	}

	c, ok := r.Client("1111111111", "c1")
	if !ok || c != client {
		t.Error("client not registered under its id")
	}
}

func TestHostLeaveTearsDownSession(t *testing.T) {
	r := NewRegistry()
	host := &fakeConn{}
	client := &fakeConn{}

	r.Create("1111111111", host)
	r.Join("1111111111", "c1", client)

	dep, err := r.Leave("1111111111", host, "")
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if !dep.WasHost {
		t.Error("expected a host departure")
	}
	if _, ok := dep.Clients["c1"]; !ok {
		t.Error("remaining client missing from departure")
	}
	if r.Len() != 0 {
		t.Errorf("session should be gone, registry has %d", r.Len())
	}
}

func TestClientLeaveKeepsSession(t *testing.T) {
	r := NewRegistry()
	host := &fakeConn{}
	client := &fakeConn{}

	r.Create("1111111111", host)
	r.Join("1111111111", "c1", client)

	dep, err := r.Leave("1111111111", client, "c1")
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if dep.WasHost {
		t.Error("client departure flagged as host")
	}
	if dep.Host != host {
		t.Error("departure should carry the host to notify")
	}
	if dep.ClientID != "c1" {
		t.Errorf("departure clientID = %q", dep.ClientID)
	}
	if r.Len() != 1 {
		t.Error("session should survive a client leaving")
	}
}

func TestDropConnHost(t *testing.T) {
	r := NewRegistry()
	host := &fakeConn{}
	client := &fakeConn{}

	r.Create("1111111111", host)
	r.Join("1111111111", "c1", client)

	deps := r.DropConn(host)
	if len(deps) != 1 {
		t.Fatalf("expected 1 departure, got %d", len(deps))
	}
	if !deps[0].WasHost {
		t.Error("host drop not flagged as host departure")
	}
	if r.Len() != 0 {
		t.Error("host drop should remove the session")
	}
}

func TestDropConnIsIdempotent(t *testing.T) {
	r := NewRegistry()
	host := &fakeConn{}
	client := &fakeConn{}

	r.Create("1111111111", host)
	r.Join("1111111111", "c1", client)

	first := r.DropConn(client)
	if len(first) != 1 {
		t.Fatalf("expected 1 departure, got %d", len(first))
	}
	second := r.DropConn(client)
	if len(second) != 0 {
		t.Errorf("second drop should find nothing, got %d departures", len(second))
	}
}

func TestDropConnUnknownConn(t *testing.T) {
	r := NewRegistry()
	r.Create("1111111111", &fakeConn{})

	if deps := r.DropConn(&fakeConn{}); len(deps) != 0 {
		t.Errorf("unknown conn produced %d departures", len(deps))
	}
	if r.Len() != 1 {
		t.Error("unrelated session was disturbed")
	}
}

func TestCleanupReturnsEveryMember(t *testing.T) {
	r := NewRegistry()
	host := &fakeConn{}
	c1 := &fakeConn{}
	c2 := &fakeConn{}

	r.Create("1111111111", host)
	r.Join("1111111111", "c1", c1)
	r.Join("1111111111", "c2", c2)

	gotHost, clients, err := r.Cleanup("1111111111")
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if gotHost != host {
		t.Error("cleanup returned wrong host")
	}
	if len(clients) != 2 {
		t.Errorf("expected 2 clients, got %d", len(clients))
	}
	if r.Len() != 0 {
		t.Error("cleanup left the session behind")
	}

	if _, _, err := r.Cleanup("1111111111"); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound on second cleanup, got %v", err)
	}
}

func TestSnapshotCountsClients(t *testing.T) {
	r := NewRegistry()
	r.Create("1111111111", &fakeConn{})
	r.Join("1111111111", "c1", &fakeConn{})

	infos := r.Snapshot()
	if len(infos) != 1 {
		t.Fatalf("expected 1 session, got %d", len(infos))
	}
	if infos[0].ID != "1111111111" || infos[0].Clients != 1 {
		t.Errorf("unexpected snapshot: %+v", infos[0])
	}
	if infos[0].CreatedAt.IsZero() {
		t.Error("createdAt not set")
	}
}
