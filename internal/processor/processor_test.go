package processor

import (
	"context"
	"sync"
	"testing"
	"time"

	"notifyScope/internal/chain"
	"notifyScope/internal/model"
	"notifyScope/internal/storage"
)

type fakeStores struct {
	mu            sync.Mutex
	dapps         map[string]model.Dapp
	templates     map[string]model.ContentTemplate
	notifications []model.Notification
	seenKeys      map[string]bool
	nextID        int64
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		dapps:     make(map[string]model.Dapp),
		templates: make(map[string]model.ContentTemplate),
		seenKeys:  make(map[string]bool),
	}
}

func (f *fakeStores) FindDapp(_ context.Context, address string) (model.Dapp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.dapps[address]
	if !ok {
		return model.Dapp{}, storage.ErrNotFound
	}
	return d, nil
}

func (f *fakeStores) FindTemplate(_ context.Context, dappID, eventName string) (model.ContentTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.templates[dappID+"/"+eventName]
	if !ok {
		return model.ContentTemplate{}, storage.ErrNotFound
	}
	return t, nil
}

func (f *fakeStores) InsertNotification(_ context.Context, n model.Notification) (model.Notification, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.EventKey != "" && f.seenKeys[n.EventKey] {
		return model.Notification{}, false, nil
	}
	f.seenKeys[n.EventKey] = true
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	f.notifications = append(f.notifications, n)
	return n, true, nil
}

func (f *fakeStores) ListNotifications(context.Context, int, int) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Notification(nil), f.notifications...), nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls []model.LookupKind
	info  chain.ExtraInfo
	err   error
}

func (f *fakeFetcher) FetchExtra(_ context.Context, kind model.LookupKind, _ string) (chain.ExtraInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, kind)
	return f.info, f.err
}

type published struct {
	dapp model.Dapp
	n    model.Notification
}

type fakePublisher struct {
	mu            sync.Mutex
	notifications []published
	raw           []string
}

func (f *fakePublisher) PublishNotification(dapp model.Dapp, n model.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, published{dapp: dapp, n: n})
}

func (f *fakePublisher) PublishEvent(program string, _ model.RawEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = append(f.raw, program)
}

func interdaoEndpoint() model.ProgramEndpoint {
	return model.ProgramEndpoint{Name: "interdao", Address: "Addr1"}
}

func voteForEvent() model.RawEvent {
	return model.RawEvent{
		Program:   "Addr1",
		Name:      "VoteForEvent",
		Fields:    map[string]any{"dao": "DaoAddr1", "amount": uint64(500)},
		Signature: "sig-1",
		Index:     0,
	}
}

func TestHandleEndToEnd(t *testing.T) {
	stores := newFakeStores()
	stores.dapps["Addr1"] = model.Dapp{ID: "D1", Name: "InterDAO", Address: "Addr1"}
	stores.templates["D1/VoteForEvent"] = model.ContentTemplate{
		DappID:      "D1",
		EventName:   "VoteForEvent",
		Subject:     "Someone",
		Conjunction: "voted for",
		Object:      "a proposal",
		ExtraField:  "dao",
	}

	fetcher := &fakeFetcher{info: chain.DaoAccount{}}
	pub := &fakePublisher{}
	proc := New(stores, stores, stores, fetcher, pub, nil)

	start := time.Now()
	proc.Handle(context.Background(), interdaoEndpoint(), voteForEvent())

	if len(stores.notifications) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(stores.notifications))
	}
	n := stores.notifications[0]
	if n.DappID != "D1" || n.Name != "InterDAO" {
		t.Fatalf("notification identity mismatch: %+v", n)
	}
	if n.Content != "Someone voted for a proposal" {
		t.Fatalf("content mismatch: %q", n.Content)
	}
	if n.Seen {
		t.Fatalf("new notification must not be seen")
	}
	if n.Time.Before(start) {
		t.Fatalf("notification time %v earlier than handle invocation %v", n.Time, start)
	}

	if len(pub.notifications) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(pub.notifications))
	}
	if pub.notifications[0].dapp.Address != "Addr1" {
		t.Fatalf("broadcast targets wrong room: %q", pub.notifications[0].dapp.Address)
	}

	if len(fetcher.calls) != 1 || fetcher.calls[0] != model.LookupDao {
		t.Fatalf("expected one dao lookup, got %v", fetcher.calls)
	}
}

func TestHandleDropsWithoutTemplate(t *testing.T) {
	stores := newFakeStores()
	stores.dapps["Addr1"] = model.Dapp{ID: "D1", Name: "InterDAO", Address: "Addr1"}

	pub := &fakePublisher{}
	proc := New(stores, stores, stores, &fakeFetcher{}, pub, nil)

	proc.Handle(context.Background(), interdaoEndpoint(), voteForEvent())

	if len(stores.notifications) != 0 {
		t.Fatalf("expected no persisted notifications, got %d", len(stores.notifications))
	}
	if len(pub.notifications) != 0 {
		t.Fatalf("expected no broadcasts, got %d", len(pub.notifications))
	}
}

func TestHandleDropsWithoutDapp(t *testing.T) {
	stores := newFakeStores()
	pub := &fakePublisher{}
	proc := New(stores, stores, stores, &fakeFetcher{}, pub, nil)

	proc.Handle(context.Background(), interdaoEndpoint(), voteForEvent())

	if len(stores.notifications) != 0 || len(pub.notifications) != 0 {
		t.Fatalf("event without dapp must be dropped")
	}
}

func TestHandleSurvivesExtraLookupFailure(t *testing.T) {
	stores := newFakeStores()
	stores.dapps["Addr1"] = model.Dapp{ID: "D1", Name: "InterDAO", Address: "Addr1"}
	stores.templates["D1/VoteForEvent"] = model.ContentTemplate{
		DappID:      "D1",
		EventName:   "VoteForEvent",
		Subject:     "Someone",
		Conjunction: "voted for",
		Object:      "a proposal",
		ExtraField:  "dao",
	}

	fetcher := &fakeFetcher{err: chain.ErrAccountNotFound}
	pub := &fakePublisher{}
	proc := New(stores, stores, stores, fetcher, pub, nil)

	proc.Handle(context.Background(), interdaoEndpoint(), voteForEvent())

	if len(stores.notifications) != 1 {
		t.Fatalf("render and persist must proceed despite lookup failure")
	}
	if len(pub.notifications) != 1 {
		t.Fatalf("broadcast must proceed despite lookup failure")
	}
}

func TestHandleIgnoresDuplicateDelivery(t *testing.T) {
	stores := newFakeStores()
	stores.dapps["Addr1"] = model.Dapp{ID: "D1", Name: "InterDAO", Address: "Addr1"}
	stores.templates["D1/VoteForEvent"] = model.ContentTemplate{
		DappID:      "D1",
		EventName:   "VoteForEvent",
		Subject:     "Someone",
		Conjunction: "voted for",
		Object:      "a proposal",
	}

	pub := &fakePublisher{}
	proc := New(stores, stores, stores, &fakeFetcher{}, pub, nil)

	ev := voteForEvent()
	proc.Handle(context.Background(), interdaoEndpoint(), ev)
	proc.Handle(context.Background(), interdaoEndpoint(), ev)

	if len(stores.notifications) != 1 {
		t.Fatalf("duplicate delivery produced %d rows", len(stores.notifications))
	}
	if len(pub.notifications) != 1 {
		t.Fatalf("duplicate delivery produced %d broadcasts", len(pub.notifications))
	}
}

func TestHandleIsolatedAcrossDapps(t *testing.T) {
	stores := newFakeStores()
	stores.dapps["Addr1"] = model.Dapp{ID: "D1", Name: "InterDAO", Address: "Addr1"}
	stores.dapps["Addr2"] = model.Dapp{ID: "D2", Name: "FarmV2", Address: "Addr2"}
	stores.templates["D1/VoteForEvent"] = model.ContentTemplate{
		Subject: "Someone", Conjunction: "voted for", Object: "a proposal",
	}
	stores.templates["D2/StakeEvent"] = model.ContentTemplate{
		Subject: "Someone", Conjunction: "staked into", Object: "a farm",
	}

	pub := &fakePublisher{}
	proc := New(stores, stores, stores, &fakeFetcher{}, pub, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				ev := voteForEvent()
				ev.Signature = "sig-interdao"
				ev.Index = i
				proc.Handle(context.Background(), interdaoEndpoint(), ev)
			} else {
				proc.Handle(context.Background(), model.ProgramEndpoint{Name: "farming_v2", Address: "Addr2"}, model.RawEvent{
					Program:   "Addr2",
					Name:      "StakeEvent",
					Fields:    map[string]any{"amount": uint64(1)},
					Signature: "sig-farm",
					Index:     i,
				})
			}
		}(i)
	}
	wg.Wait()

	for _, n := range stores.notifications {
		switch n.DappID {
		case "D1":
			if n.Name != "InterDAO" {
				t.Fatalf("cross-written dapp name: %+v", n)
			}
		case "D2":
			if n.Name != "FarmV2" {
				t.Fatalf("cross-written dapp name: %+v", n)
			}
		default:
			t.Fatalf("unexpected dapp id: %+v", n)
		}
	}
}

func TestHandleAlwaysEchoesRawEvent(t *testing.T) {
	stores := newFakeStores()
	pub := &fakePublisher{}
	proc := New(stores, stores, stores, &fakeFetcher{}, pub, nil)

	proc.Handle(context.Background(), interdaoEndpoint(), voteForEvent())

	if len(pub.raw) != 1 || pub.raw[0] != "interdao" {
		t.Fatalf("raw echo mismatch: %v", pub.raw)
	}
}
