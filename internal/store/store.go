// Package store 持有单个仪表盘会话的状态快照，并把每个远端能力包装成一个操作。
//
// 操作分两类失败策略：查询与配置写入失败后只记诊断、不上抛（界面继续显示旧数据）；
// 由用户显式触发的操作（运行、对比、导出、历史、日志等）记诊断后把错误返回给调用方。
// store 不做排队：同一字段上并发的请求按响应到达顺序覆盖，除非开启 WithStaleGuard。
package store

import (
	"context"
	"sync"
	"time"

	"decision-console/internal/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// API store 依赖的远端契约，service.APIClient 实现它
type API interface {
	GetConfig(ctx context.Context) (*model.ConfigState, error)
	SetTask(ctx context.Context, task string) error
	SetStrategy(ctx context.Context, strategy string) error
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListStrategies(ctx context.Context) ([]model.Strategy, error)
	Run(ctx context.Context, task, strategy string) (*model.RunResponse, error)
	GetResults(ctx context.Context) (*model.Result, error)
	CompareResults(ctx context.Context, strategies []string) ([]model.Comparison, error)
	GetHistory(ctx context.Context, page, pageSize int) (*model.HistoryPage, error)
	DeleteHistory(ctx context.Context, id int64) error
	GetLogs(ctx context.Context, level string, limit int) (*model.LogPage, error)
	GetStats(ctx context.Context) (*model.Stats, error)
	Export(ctx context.Context, exportType string) (*model.ExportPayload, error)
	SystemStatus(ctx context.Context) (*model.SystemStatus, error)
	Health(ctx context.Context) (*model.Health, error)
	ListData(ctx context.Context) (*model.DataRecordList, error)
	CreateData(ctx context.Context, name, dataType string, size any) (*model.DataRecord, error)
	DeleteData(ctx context.Context, id int64) error
}

// Snapshot 会话内远端状态的内存镜像
type Snapshot struct {
	CurrentTask     string               `json:"current_task"`
	CurrentStrategy string               `json:"current_strategy"`
	Tasks           []model.Task         `json:"tasks"`
	Strategies      []model.Strategy     `json:"strategies"`
	LatestResult    *model.Result        `json:"latest_result"`
	IsLoading       bool                 `json:"is_loading"`
	History         []model.HistoryEntry `json:"history"`
	Logs            []model.LogEntry     `json:"logs"`
	Stats           model.Stats          `json:"stats"`
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Tasks = cloneSlice(s.Tasks)
	out.Strategies = cloneSlice(s.Strategies)
	out.History = cloneSlice(s.History)
	out.Logs = cloneSlice(s.Logs)
	out.LatestResult = s.LatestResult.Clone()
	out.Stats = s.Stats.Clone()
	return out
}

// cloneSlice 空切片也拷成非 nil，序列化时保持 []
func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// 需要做过期判断的快照字段
type field int

const (
	fieldTask field = iota
	fieldStrategy
	fieldTasks
	fieldStrategies
	fieldResult
	fieldHistory
	fieldLogs
	fieldStats
	numFields
)

type Store struct {
	api       API
	sessionID string

	mu       sync.RWMutex
	snap     Snapshot
	inflight int
	issued   [numFields]uint64
	applied  [numFields]uint64

	subMu   sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int

	staleGuard bool
	reporter   Reporter
	recorder   Recorder
	tracer     trace.Tracer
}

type Option func(*Store)

// WithSessionID 诊断记录里带上会话 ID
func WithSessionID(id string) Option {
	return func(s *Store) { s.sessionID = id }
}

func WithReporter(r Reporter) Option {
	return func(s *Store) {
		if r != nil {
			s.reporter = r
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Store) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithStaleGuard 每个字段按请求发出顺序编号，晚到的旧响应直接丢弃。
// 默认关闭，此时同一字段以最后返回的响应为准。
func WithStaleGuard() Option {
	return func(s *Store) { s.staleGuard = true }
}

// New 创建会话 store；只填静态默认值，不发任何请求
func New(api API, opts ...Option) *Store {
	s := &Store{
		api: api,
		snap: Snapshot{
			Tasks:      []model.Task{},
			Strategies: []model.Strategy{},
			History:    []model.HistoryEntry{},
			Logs:       []model.LogEntry{},
			Stats:      model.DefaultStats(),
		},
		subs:     make(map[int]chan Snapshot),
		reporter: LogReporter{},
		recorder: nopRecorder{},
		tracer:   otel.Tracer("decision-console/store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) SessionID() string {
	return s.sessionID
}

// Snapshot 返回当前快照的深拷贝
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Subscribe 每次快照变化后收到最新快照；通道只保留最新一份，慢读者会跳过中间状态
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			// Close 可能已经关过
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close 会话结束，关闭全部订阅
func (s *Store) Close() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// notify 在 subMu 内取快照，保证最后一次通知带的是最新状态
func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// issue 为字段发出一个请求序号
func (s *Store) issue(f field) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[f]++
	return s.issued[f]
}

// apply 在锁内写字段；开启过期保护时丢弃比已写入响应更早发出的请求
func (s *Store) apply(f field, seq uint64, write func(*Snapshot)) bool {
	s.mu.Lock()
	if s.staleGuard && seq < s.applied[f] {
		s.mu.Unlock()
		return false
	}
	if seq > s.applied[f] {
		s.applied[f] = seq
	}
	write(&s.snap)
	s.mu.Unlock()
	s.notify()
	return true
}

// begin 开始一个操作的 span 与计时，返回的 finish 在操作结束时调用
func (s *Store) begin(ctx context.Context, op string) (context.Context, func(err error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "store."+op, trace.WithSpanKind(trace.SpanKindClient))
	return ctx, func(err error) {
		endSpan(span, err)
		s.recorder.ObserveOp(op, time.Since(start), err)
	}
}

// fail 把失败写入诊断通道
func (s *Store) fail(ctx context.Context, op string, class Class, err error) {
	s.reporter.Report(ctx, Failure{
		SessionID: s.sessionID,
		Operation: op,
		Class:     class,
		Err:       err,
	})
}
