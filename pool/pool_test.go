package pool

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tsawler/wordml/config"
	"github.com/tsawler/wordml/internal/docxtest"
	"github.com/tsawler/wordml/render"
)

func testConfig(workers int) config.Config {
	cfg := config.Default()
	cfg.Workers = workers
	cfg.MaxWorkers = workers
	cfg.RequestTimeout = time.Second
	cfg.IdleTimeout = time.Second
	return cfg
}

// echo returns the payload as output after reporting one progress stage.
func echo(_ context.Context, req Request, progress func(string)) (*Result, error) {
	progress("working")
	return &Result{Output: req.Payload}, nil
}

func newPool(t *testing.T, cfg config.Config, h Handler) *Pool {
	t.Helper()
	p, err := New(cfg, h, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

// eventually polls cond until it holds or a second passes.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		handler Handler
	}{
		{"nil handler", func(*config.Config) {}, nil},
		{"negative workers", func(c *config.Config) { c.Workers = -1 }, echo},
		{"zero max workers", func(c *config.Config) { c.MaxWorkers = 0 }, echo},
		{"zero request timeout", func(c *config.Config) { c.RequestTimeout = 0 }, echo},
		{"zero idle timeout", func(c *config.Config) { c.IdleTimeout = 0 }, echo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(2)
			tt.mutate(&cfg)
			_, err := New(cfg, tt.handler, nil)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewDispatcher_FallsBackToSync(t *testing.T) {
	cfg := testConfig(2)
	if _, ok := NewDispatcher(cfg, echo, nil).(*Pool); !ok {
		t.Error("valid config should yield a *Pool")
	}

	cfg.MaxWorkers = 0
	d := NewDispatcher(cfg, echo, nil)
	if _, ok := d.(*Sync); !ok {
		t.Fatalf("invalid config should yield *Sync, got %T", d)
	}
	fut, err := d.Submit(context.Background(), Request{Payload: []byte("x")})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res, err := fut.Wait(context.Background()); err != nil || string(res.Output) != "x" {
		t.Errorf("Wait() = %v, %v", res, err)
	}
}

func TestPool_Complete(t *testing.T) {
	p := newPool(t, testConfig(2), echo)

	fut, err := p.Submit(context.Background(), Request{Kind: KindConvert, Payload: []byte("hello")})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if fut.ID() == 0 {
		t.Error("expected an assigned id")
	}

	var stages []string
	for r := range fut.Progress() {
		if r.Kind != ResponseProgress || r.ID != fut.ID() {
			t.Errorf("unexpected progress response %+v", r)
		}
		stages = append(stages, r.Stage)
	}
	if len(stages) != 1 || stages[0] != "working" {
		t.Errorf("stages = %v, want [working]", stages)
	}

	resp := fut.Response()
	if resp.Kind != ResponseComplete || resp.Err != nil {
		t.Fatalf("Response() = %+v", resp)
	}
	if string(resp.Result.Output) != "hello" {
		t.Errorf("Output = %q", resp.Result.Output)
	}
}

func TestPool_Error(t *testing.T) {
	boom := errors.New("boom")
	p := newPool(t, testConfig(1), func(context.Context, Request, func(string)) (*Result, error) {
		return nil, boom
	})

	fut, err := p.Submit(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := fut.Wait(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Wait() error = %v, want boom", err)
	}
	if resp := fut.Response(); resp.Kind != ResponseError {
		t.Errorf("Kind = %v, want error", resp.Kind)
	}
}

func TestPool_Panic(t *testing.T) {
	p := newPool(t, testConfig(1), func(context.Context, Request, func(string)) (*Result, error) {
		panic("bad document")
	})

	fut, err := p.Submit(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := fut.Wait(context.Background()); err == nil || !strings.Contains(err.Error(), "bad document") {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestPool_TimeoutFreesWorker(t *testing.T) {
	release := make(chan struct{})
	cfg := testConfig(1)
	cfg.RequestTimeout = 20 * time.Millisecond
	p := newPool(t, cfg, func(_ context.Context, req Request, _ func(string)) (*Result, error) {
		if string(req.Payload) == "hang" {
			<-release
		}
		return &Result{Output: req.Payload}, nil
	})
	t.Cleanup(func() { close(release) })

	slow, err := p.Submit(context.Background(), Request{Payload: []byte("hang")})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := slow.Wait(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Fatalf("Wait() error = %v, want ErrTimeout", err)
	}

	fast, err := p.Submit(context.Background(), Request{Payload: []byte("ok")})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	res, err := fast.Wait(context.Background())
	if err != nil || string(res.Output) != "ok" {
		t.Errorf("Wait() = %v, %v", res, err)
	}
}

func TestPool_Bounded(t *testing.T) {
	var active, peak int32
	p := newPool(t, testConfig(2), func(context.Context, Request, func(string)) (*Result, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return &Result{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fut, err := p.Submit(context.Background(), Request{})
			if err != nil {
				t.Errorf("Submit() error = %v", err)
				return
			}
			if _, err := fut.Wait(context.Background()); err != nil {
				t.Errorf("Wait() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", got)
	}
	if p.Running() > p.Size() {
		t.Errorf("Running() = %d exceeds Size() = %d", p.Running(), p.Size())
	}
}

func TestPool_IdleWorkersExit(t *testing.T) {
	cfg := testConfig(2)
	cfg.IdleTimeout = 20 * time.Millisecond
	p := newPool(t, cfg, echo)

	fut, err := p.Submit(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := fut.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	eventually(t, "idle workers to exit", func() bool { return p.Running() == 0 })

	// A new request starts a fresh worker.
	fut, err = p.Submit(context.Background(), Request{Payload: []byte("again")})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res, err := fut.Wait(context.Background()); err != nil || string(res.Output) != "again" {
		t.Errorf("Wait() = %v, %v", res, err)
	}
}

func TestPool_IDs(t *testing.T) {
	release := make(chan struct{})
	p := newPool(t, testConfig(2), func(_ context.Context, req Request, _ func(string)) (*Result, error) {
		if req.ID == 7 {
			<-release
		}
		return &Result{}, nil
	})

	held, err := p.Submit(context.Background(), Request{ID: 7})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := p.Submit(context.Background(), Request{ID: 7}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate Submit() error = %v, want ErrDuplicateID", err)
	}
	close(release)
	if _, err := held.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	eventually(t, "ids to be released", func() bool { return p.InFlight() == 0 })

	first, err := p.Submit(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	first.Wait(context.Background())
	eventually(t, "ids to be released", func() bool { return p.InFlight() == 0 })

	second, err := p.Submit(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	second.Wait(context.Background())
	if first.ID() != second.ID() {
		t.Errorf("released id %d was not reused, got %d", first.ID(), second.ID())
	}
}

func TestPool_SubmitCanceled(t *testing.T) {
	release := make(chan struct{})
	p := newPool(t, testConfig(1), func(context.Context, Request, func(string)) (*Result, error) {
		<-release
		return &Result{}, nil
	})
	t.Cleanup(func() { close(release) })

	if _, err := p.Submit(context.Background(), Request{}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	eventually(t, "worker to pick up the job", func() bool { return p.Running() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Submit(ctx, Request{ID: 99}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Submit() error = %v, want deadline exceeded", err)
	}
	if p.InFlight() != 1 {
		t.Errorf("InFlight() = %d, want 1", p.InFlight())
	}
}

func TestPool_CallerCancelReachesHandler(t *testing.T) {
	started := make(chan struct{})
	p := newPool(t, testConfig(1), func(ctx context.Context, _ Request, _ func(string)) (*Result, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	fut, err := p.Submit(ctx, Request{})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	<-started
	cancel()

	wait, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	if _, err := fut.Wait(wait); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
	eventually(t, "request to be released", func() bool { return p.InFlight() == 0 })
}

func TestPool_Close(t *testing.T) {
	p, err := New(testConfig(1), echo, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := p.Submit(context.Background(), Request{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit() after Close error = %v, want ErrClosed", err)
	}
}

func TestSync(t *testing.T) {
	s := NewSync(echo, time.Second, nil)

	fut, err := s.Submit(context.Background(), Request{Payload: []byte("now")})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	select {
	case <-fut.Done():
	default:
		t.Fatal("sync future should already be resolved")
	}
	if fut.Response().Kind != ResponseComplete {
		t.Errorf("Kind = %v", fut.Response().Kind)
	}

	again, _ := s.Submit(context.Background(), Request{})
	if again.ID() != fut.ID() {
		t.Errorf("id not reused: %d then %d", fut.ID(), again.ID())
	}

	s.Close()
	if _, err := s.Submit(context.Background(), Request{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit() after Close error = %v", err)
	}
}

func TestSync_RunsInCallerGoroutine(t *testing.T) {
	var inSubmit bool
	s := NewSync(func(context.Context, Request, func(string)) (*Result, error) {
		pcs := make([]uintptr, 64)
		frames := runtime.CallersFrames(pcs[:runtime.Callers(1, pcs)])
		for {
			f, more := frames.Next()
			if strings.HasSuffix(f.Function, "(*Sync).Submit") {
				inSubmit = true
			}
			if !more {
				break
			}
		}
		return &Result{}, nil
	}, time.Second, nil)

	if _, err := s.Submit(context.Background(), Request{}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !inSubmit {
		t.Error("handler did not run on the Submit call stack")
	}
}

func TestSync_Panic(t *testing.T) {
	s := NewSync(func(context.Context, Request, func(string)) (*Result, error) {
		panic("boom")
	}, time.Second, nil)

	fut, err := s.Submit(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := fut.Wait(context.Background()); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Wait() error = %v, want handler panic", err)
	}
}

func TestSync_Timeout(t *testing.T) {
	s := NewSync(func(ctx context.Context, _ Request, _ func(string)) (*Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, 10*time.Millisecond, nil)

	fut, err := s.Submit(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := fut.Wait(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Errorf("Wait() error = %v, want ErrTimeout", err)
	}
}

func TestConvertHandler(t *testing.T) {
	body := docxtest.Paragraph("Title") +
		docxtest.ListItem("one", "1", "0") +
		docxtest.ListItem("sub", "1", "1") +
		docxtest.ListItem("two", "1", "0")
	data := docxtest.Build(t, body, map[string]string{"word/numbering.xml": docxtest.SimpleList})

	h := ConvertHandler(nil)
	var stages []string
	progress := func(s string) { stages = append(stages, s) }

	res, err := h(context.Background(), Request{Kind: KindParse, Payload: data}, progress)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if len(res.Document.Blocks) != 4 || res.Output != nil {
		t.Errorf("parse result = %d blocks, output %q", len(res.Document.Blocks), res.Output)
	}
	if strings.Join(stages, ",") != "open,assemble" {
		t.Errorf("stages = %v", stages)
	}

	res, err = h(context.Background(), Request{Kind: KindConvert, Payload: data}, func(string) {})
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	want := "Title\n1. one\n  1.1. sub\n2. two\n"
	if got := string(res.Output); got != want {
		t.Errorf("text output = %q, want %q", got, want)
	}

	res, err = h(context.Background(), Request{
		Kind:    KindConvert,
		Payload: data,
		Options: Options{Format: render.FormatHTML, NoLabels: true},
	}, func(string) {})
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if !strings.Contains(string(res.Output), `<ol data-list="1"><li>one<ol data-list="1"><li>sub</li></ol></li><li>two</li></ol>`) {
		t.Errorf("html output = %s", res.Output)
	}

	if _, err := h(context.Background(), Request{Payload: []byte("not a zip")}, func(string) {}); err == nil {
		t.Error("expected error for invalid payload")
	}
}

func TestPool_EndToEnd(t *testing.T) {
	p := newPool(t, testConfig(2), ConvertHandler(nil))
	data := docxtest.Build(t, docxtest.Paragraph("hi"), nil)

	var futures []*Future
	for i := 0; i < 4; i++ {
		fut, err := p.Submit(context.Background(), Request{Kind: KindConvert, Payload: data})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		futures = append(futures, fut)
	}
	for _, fut := range futures {
		res, err := fut.Wait(context.Background())
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if string(res.Output) != "hi\n" {
			t.Errorf("Output = %q", res.Output)
		}
	}
}
