package calls

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"retail-crm/internal/activities"
	"retail-crm/internal/pipeline"
	"retail-crm/internal/prospects"
	"retail-crm/internal/telephony"
)

type stubProvider struct {
	mu sync.Mutex

	placeResp telephony.CallResponse
	placeErr  error
	placed    []telephony.CallRequest

	details    telephony.CallDetails
	detailsErr error
	detailsFor []string

	endErr error
	ended  []string
}

func (p *stubProvider) PlaceCall(ctx context.Context, req telephony.CallRequest) (telephony.CallResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, req)
	return p.placeResp, p.placeErr
}

func (p *stubProvider) GetCallDetails(ctx context.Context, id string) (telephony.CallDetails, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detailsFor = append(p.detailsFor, id)
	return p.details, p.detailsErr
}

func (p *stubProvider) EndCall(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended = append(p.ended, id)
	return p.endErr
}

type stubLocker struct {
	held     bool
	err      error
	issued   []string
	released []string
}

func (l *stubLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if l.held {
		return "", false, nil
	}
	token := fmt.Sprintf("tok-%d", len(l.issued)+1)
	l.issued = append(l.issued, token)
	return token, true, nil
}

func (l *stubLocker) Release(ctx context.Context, key, token string) error {
	l.released = append(l.released, key+"="+token)
	return nil
}

type stubDeliveries struct {
	seen map[string]int
	fail bool
}

func (d *stubDeliveries) Record(ctx context.Context, id string, payload []byte, at time.Time) (int, error) {
	if d.fail {
		return 0, errors.New("mongo down")
	}
	if d.seen == nil {
		d.seen = map[string]int{}
	}
	prior := d.seen[id]
	d.seen[id]++
	return prior, nil
}

var testNow = time.Date(2025, 5, 6, 14, 30, 0, 0, time.UTC)

type env struct {
	calls     *MemoryRepo
	prospects *prospects.MemoryRepo
	acts      *activities.MemoryRepo
	provider  *stubProvider
	manager   *Manager
	ingestor  *Ingestor
}

func newEnv(seedProspects []prospects.Prospect, seedCalls ...Call) *env {
	e := &env{
		calls:     NewMemoryRepo(seedCalls...),
		prospects: prospects.NewMemoryRepo(seedProspects...),
		acts:      activities.NewMemoryRepo(),
		provider:  &stubProvider{placeResp: telephony.CallResponse{CallID: "bland-1", Status: "queued"}},
	}
	actSvc := activities.NewService(e.acts)
	pipe := pipeline.NewService(e.prospects, actSvc, nil)

	e.manager = NewManager(e.calls, e.prospects, actSvc, e.provider, nil)
	e.manager.clock = func() time.Time { return testNow }

	e.ingestor = NewIngestor(IngestorDeps{
		Calls:      e.calls,
		Prospects:  e.prospects,
		Activities: actSvc,
		Pipeline:   pipe,
	})
	e.ingestor.clock = func() time.Time { return testNow }
	return e
}

func strPtr(s string) *string { return &s }
