package recap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"accomplish/internal/api"
)

type statusReply struct {
	status *api.RecapStatus
	err    error
}

// fakeTransport scripts both channels. Status replies are consumed in order;
// the final reply repeats so open-ended polling scripts stay short.
type fakeTransport struct {
	mu       sync.Mutex
	open     func(ctx context.Context) (io.ReadCloser, error)
	statuses []statusReply
	fetches  int
}

func (f *fakeTransport) OpenStream(ctx context.Context, locator string) (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("%w: no stream configured", api.ErrTransport)
	}
	return f.open(ctx)
}

func (f *fakeTransport) FetchRecapStatus(ctx context.Context, recapID string) (*api.RecapStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if len(f.statuses) == 0 {
		return nil, fmt.Errorf("%w: no status scripted", api.ErrTransport)
	}
	reply := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return reply.status, reply.err
}

func (f *fakeTransport) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type recordingIndicator struct {
	ticks  int
	clears int
}

func (r *recordingIndicator) Tick()  { r.ticks++ }
func (r *recordingIndicator) Clear() { r.clears++ }

func streamOf(frames ...string) func(ctx context.Context) (io.ReadCloser, error) {
	payload := strings.Join(frames, "")
	return func(ctx context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(payload)), nil
	}
}

func processingStatus() *api.RecapStatus {
	return &api.RecapStatus{Status: api.RecapStatusProcessing}
}

func completedStatus(content string, entryCount int) *api.RecapStatus {
	return &api.RecapStatus{
		Status:   api.RecapStatusCompleted,
		Content:  &content,
		Metadata: &api.RecapMetadata{EntryCount: entryCount},
	}
}

func testJob() api.RecapJob {
	return api.RecapJob{RecapID: "r1", Status: api.RecapStatusProcessing, SSEURL: "/api/v1/worklog/recaps/r1/stream"}
}

func testOptions() Options {
	return Options{
		OpenTimeout:    time.Second,
		PollInterval:   2 * time.Millisecond,
		TickInterval:   time.Millisecond,
		ReconcileDelay: time.Millisecond,
	}
}

func runWithTimeout(t *testing.T, c *Coordinator) (*api.RecapStatus, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Run(ctx)
}

func assertTrace(t *testing.T, c *Coordinator, want ...State) {
	t.Helper()
	got := c.Trace()
	if len(got) != len(want) {
		t.Fatalf("trace mismatch: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trace mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func TestRunStreamingCompletionReconcilesThenDone(t *testing.T) {
	transport := &fakeTransport{
		open: streamOf(
			"data: {\"job_id\":\"r1\",\"status\":\"processing\",\"progress\":40}\n",
			"data: {\"job_id\":\"r1\",\"status\":\"completed\"}\n",
		),
		statuses: []statusReply{{status: completedStatus("summary", 5)}},
	}
	c := NewCoordinator(transport, testJob(), testOptions())

	snapshot, err := runWithTimeout(t, c)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if snapshot.Content == nil || *snapshot.Content != "summary" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if transport.fetchCount() != 1 {
		t.Fatalf("expected a single reconcile fetch, got %d", transport.fetchCount())
	}
	assertTrace(t, c, StateAwaitingChannel, StateStreaming, StateReconciling, StateDone)
}

func TestRunChannelGoneSkipsTimeoutWait(t *testing.T) {
	transport := &fakeTransport{
		open: func(ctx context.Context) (io.ReadCloser, error) {
			return nil, fmt.Errorf("%w: channel gone", api.ErrNotFound)
		},
		statuses: []statusReply{{status: completedStatus("summary", 3)}},
	}
	opts := testOptions()
	opts.OpenTimeout = 2 * time.Second

	start := time.Now()
	c := NewCoordinator(transport, testJob(), opts)
	snapshot, err := runWithTimeout(t, c)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= opts.OpenTimeout {
		t.Fatalf("run waited out the open timeout (%v) despite a definitive answer", elapsed)
	}
	if snapshot.Content == nil || *snapshot.Content != "summary" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	assertTrace(t, c, StateAwaitingChannel, StatePolling, StateDone)
}

func TestRunReconcileRetriesUntilMetadataSettles(t *testing.T) {
	stale := "stale"
	transport := &fakeTransport{
		open: streamOf("data: {\"job_id\":\"r1\",\"status\":\"completed\"}\n"),
		statuses: []statusReply{
			{status: &api.RecapStatus{Status: api.RecapStatusCompleted, Content: &stale, Metadata: &api.RecapMetadata{EntryCount: 0}}},
			{status: completedStatus("fresh", 5)},
			{status: completedStatus("never-reached", 9)},
		},
	}
	c := NewCoordinator(transport, testJob(), testOptions())

	snapshot, err := runWithTimeout(t, c)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if *snapshot.Content != "fresh" || snapshot.Metadata.EntryCount != 5 {
		t.Fatalf("expected the settled snapshot, got %+v", snapshot)
	}
	if transport.fetchCount() != 2 {
		t.Fatalf("expected reconciliation to stop after the settled fetch, got %d fetches", transport.fetchCount())
	}
}

func TestRunReconcileWithoutContentFails(t *testing.T) {
	empty := &api.RecapStatus{Status: api.RecapStatusCompleted, Metadata: &api.RecapMetadata{EntryCount: 0}}
	transport := &fakeTransport{
		open: streamOf("data: {\"job_id\":\"r1\",\"status\":\"completed\"}\n"),
		statuses: []statusReply{
			{status: empty},
			{status: empty},
			{status: empty},
		},
	}
	c := NewCoordinator(transport, testJob(), testOptions())

	_, err := runWithTimeout(t, c)
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
	if transport.fetchCount() != 3 {
		t.Fatalf("expected all reconcile attempts to run, got %d fetches", transport.fetchCount())
	}
	if c.State() != StateFailed {
		t.Fatalf("expected terminal failed state, got %v", c.State())
	}
}

func TestRunReconcileFetchErrorSurfacesOnlyFromFinalAttempt(t *testing.T) {
	transport := &fakeTransport{
		open: streamOf("data: {\"job_id\":\"r1\",\"status\":\"completed\"}\n"),
		statuses: []statusReply{
			{err: fmt.Errorf("%w: flaky", api.ErrServer)},
			{status: completedStatus("summary", 2)},
		},
	}
	c := NewCoordinator(transport, testJob(), testOptions())

	snapshot, err := runWithTimeout(t, c)
	if err != nil {
		t.Fatalf("expected non-final fetch error to be retried, got %v", err)
	}
	if *snapshot.Content != "summary" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestRunDirectPollingCompletionSkipsReconciliation(t *testing.T) {
	transport := &fakeTransport{
		statuses: []statusReply{
			{status: processingStatus()},
			{status: completedStatus("summary", 4)},
		},
	}
	job := testJob()
	job.SSEURL = ""
	c := NewCoordinator(transport, job, testOptions())

	snapshot, err := runWithTimeout(t, c)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if *snapshot.Content != "summary" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	assertTrace(t, c, StatePolling, StateDone)
}

func TestRunPollingCompletedWithoutContentFails(t *testing.T) {
	transport := &fakeTransport{
		statuses: []statusReply{
			{status: &api.RecapStatus{Status: api.RecapStatusCompleted}},
		},
	}
	job := testJob()
	job.SSEURL = ""
	c := NewCoordinator(transport, job, testOptions())

	_, err := runWithTimeout(t, c)
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestRunPollingFetchErrorSurfaces(t *testing.T) {
	transport := &fakeTransport{
		statuses: []statusReply{
			{err: fmt.Errorf("%w: boom", api.ErrServer)},
		},
	}
	job := testJob()
	job.SSEURL = ""
	c := NewCoordinator(transport, job, testOptions())

	_, err := runWithTimeout(t, c)
	if !errors.Is(err, api.ErrServer) {
		t.Fatalf("expected server error to surface, got %v", err)
	}
	if c.State() != StateFailed {
		t.Fatalf("expected terminal failed state, got %v", c.State())
	}
}

func TestRunStreamEndWithoutTerminalFallsBackToPolling(t *testing.T) {
	transport := &fakeTransport{
		open: streamOf(
			"data: {\"job_id\":\"r1\",\"status\":\"processing\"}\n",
		),
		statuses: []statusReply{
			{status: completedStatus("summary", 1)},
		},
	}
	c := NewCoordinator(transport, testJob(), testOptions())

	snapshot, err := runWithTimeout(t, c)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if *snapshot.Content != "summary" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	assertTrace(t, c, StateAwaitingChannel, StateStreaming, StatePolling, StateDone)
}

func TestRunStreamOpenFailureFallsBackToPolling(t *testing.T) {
	transport := &fakeTransport{
		open: func(ctx context.Context) (io.ReadCloser, error) {
			return nil, fmt.Errorf("%w: connection refused", api.ErrTransport)
		},
		statuses: []statusReply{
			{status: completedStatus("summary", 1)},
		},
	}
	c := NewCoordinator(transport, testJob(), testOptions())

	if _, err := runWithTimeout(t, c); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	assertTrace(t, c, StateAwaitingChannel, StatePolling, StateDone)
}

func TestRunStreamFailureEventIsTerminal(t *testing.T) {
	transport := &fakeTransport{
		open: streamOf("data: {\"job_id\":\"r1\",\"status\":\"failed\"}\n"),
	}
	c := NewCoordinator(transport, testJob(), testOptions())

	_, err := runWithTimeout(t, c)
	if !errors.Is(err, ErrJobFailed) {
		t.Fatalf("expected job failure, got %v", err)
	}
	if transport.fetchCount() != 0 {
		t.Fatalf("expected no status fetches after explicit failure, got %d", transport.fetchCount())
	}
}

func TestRunStreamUnknownStatusIsProtocolError(t *testing.T) {
	transport := &fakeTransport{
		open: streamOf("data: {\"job_id\":\"r1\",\"status\":\"paused\"}\n"),
	}
	c := NewCoordinator(transport, testJob(), testOptions())

	_, err := runWithTimeout(t, c)
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
	if !strings.Contains(err.Error(), "paused") {
		t.Fatalf("expected raw status in error, got %v", err)
	}
}

func TestRunStreamMalformedFrameIsSkipped(t *testing.T) {
	transport := &fakeTransport{
		open: streamOf(
			"data: not-json\n",
			"data: {\"job_id\":\"r1\",\"status\":\"completed\"}\n",
		),
		statuses: []statusReply{{status: completedStatus("summary", 2)}},
	}
	c := NewCoordinator(transport, testJob(), testOptions())

	snapshot, err := runWithTimeout(t, c)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if *snapshot.Content != "summary" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	assertTrace(t, c, StateAwaitingChannel, StateStreaming, StateReconciling, StateDone)
}

func TestRunInBandStreamErrorFallsBackToPolling(t *testing.T) {
	transport := &fakeTransport{
		open: streamOf("data: {\"error\":\"recap stream not found\"}\n"),
		statuses: []statusReply{
			{status: completedStatus("summary", 1)},
		},
	}
	c := NewCoordinator(transport, testJob(), testOptions())

	if _, err := runWithTimeout(t, c); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	assertTrace(t, c, StateAwaitingChannel, StateStreaming, StatePolling, StateDone)
}

func TestRunClearsIndicatorOnEveryTransition(t *testing.T) {
	indicator := &recordingIndicator{}
	transport := &fakeTransport{
		open:     streamOf("data: {\"job_id\":\"r1\",\"status\":\"completed\"}\n"),
		statuses: []statusReply{{status: completedStatus("summary", 1)}},
	}
	opts := testOptions()
	opts.Indicator = indicator
	c := NewCoordinator(transport, testJob(), opts)

	if _, err := runWithTimeout(t, c); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	// One clear per transition plus the final cleanup.
	if indicator.clears < len(c.Trace()) {
		t.Fatalf("expected a clear per transition, got %d clears for %d transitions", indicator.clears, len(c.Trace()))
	}
}

func TestRunCancellationAborts(t *testing.T) {
	transport := &fakeTransport{
		statuses: []statusReply{{status: processingStatus()}},
	}
	job := testJob()
	job.SSEURL = ""
	c := NewCoordinator(transport, job, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}

func TestFetchCompleted(t *testing.T) {
	transport := &fakeTransport{
		statuses: []statusReply{{status: completedStatus("cached", 7)}},
	}
	snapshot, err := FetchCompleted(context.Background(), transport, "r1")
	if err != nil {
		t.Fatalf("FetchCompleted error: %v", err)
	}
	if *snapshot.Content != "cached" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if transport.fetchCount() != 1 {
		t.Fatalf("expected exactly one fetch, got %d", transport.fetchCount())
	}
}

func TestFetchCompletedWithoutContentFails(t *testing.T) {
	transport := &fakeTransport{
		statuses: []statusReply{{status: &api.RecapStatus{Status: api.RecapStatusCompleted}}},
	}
	_, err := FetchCompleted(context.Background(), transport, "r1")
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestRunOpenTimeoutFallsBackToPolling(t *testing.T) {
	transport := &fakeTransport{
		open: func(ctx context.Context) (io.ReadCloser, error) {
			<-ctx.Done()
			return nil, fmt.Errorf("%w: %v", api.ErrTransport, ctx.Err())
		},
		statuses: []statusReply{{status: completedStatus("summary", 2)}},
	}
	opts := testOptions()
	opts.OpenTimeout = 10 * time.Millisecond
	c := NewCoordinator(transport, testJob(), opts)

	snapshot, err := runWithTimeout(t, c)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if snapshot.Content == nil || *snapshot.Content != "summary" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	assertTrace(t, c, StateAwaitingChannel, StatePolling, StateDone)
}

// A slow but healthy stream must not be torn down when the open bound
// elapses: the bound covers reaching the channel, not the events on it.
func TestRunStreamingOverHTTPSurvivesOpenTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/worklog/recaps/r1/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"job_id\":\"r1\",\"status\":\"processing\"}\n\n")
		flusher.Flush()
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, "data: {\"job_id\":\"r1\",\"status\":\"completed\"}\n\n")
		flusher.Flush()
	})
	mux.HandleFunc("/api/v1/worklog/recaps/r1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"completed","content":"summary","metadata":{"entry_count":4}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := api.New(server.URL)
	if err != nil {
		t.Fatalf("New client: %v", err)
	}
	client.SetToken("token")

	opts := testOptions()
	opts.OpenTimeout = 100 * time.Millisecond
	job := api.RecapJob{
		RecapID: "r1",
		Status:  api.RecapStatusProcessing,
		SSEURL:  server.URL + "/api/v1/worklog/recaps/r1/stream",
	}
	c := NewCoordinator(client, job, opts)

	snapshot, err := runWithTimeout(t, c)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if snapshot.Content == nil || *snapshot.Content != "summary" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	for _, state := range c.Trace() {
		if state == StatePolling {
			t.Fatalf("healthy push channel fell back to polling: trace %v", c.Trace())
		}
	}
	assertTrace(t, c, StateAwaitingChannel, StateStreaming, StateReconciling, StateDone)
}
