package store

import (
	"context"

	"decision-console/internal/model"
)

// FetchConfig 同步当前任务与策略；失败保持旧值
func (s *Store) FetchConfig(ctx context.Context) {
	ctx, finish := s.begin(ctx, OpFetchConfig)
	taskSeq, strategySeq := s.issue(fieldTask), s.issue(fieldStrategy)

	cfg, err := s.api.GetConfig(ctx)
	finish(err)
	if err != nil {
		s.fail(ctx, OpFetchConfig, Silent, err)
		return
	}

	s.apply(fieldTask, taskSeq, func(snap *Snapshot) {
		snap.CurrentTask = deref(cfg.CurrentTask)
	})
	s.apply(fieldStrategy, strategySeq, func(snap *Snapshot) {
		snap.CurrentStrategy = deref(cfg.CurrentStrategy)
	})
}

func (s *Store) FetchTasks(ctx context.Context) {
	ctx, finish := s.begin(ctx, OpFetchTasks)
	seq := s.issue(fieldTasks)

	tasks, err := s.api.ListTasks(ctx)
	finish(err)
	if err != nil {
		s.fail(ctx, OpFetchTasks, Silent, err)
		return
	}
	s.apply(fieldTasks, seq, func(snap *Snapshot) {
		snap.Tasks = cloneSlice(tasks)
	})
}

func (s *Store) FetchStrategies(ctx context.Context) {
	ctx, finish := s.begin(ctx, OpFetchStrategies)
	seq := s.issue(fieldStrategies)

	strategies, err := s.api.ListStrategies(ctx)
	finish(err)
	if err != nil {
		s.fail(ctx, OpFetchStrategies, Silent, err)
		return
	}
	s.apply(fieldStrategies, seq, func(snap *Snapshot) {
		snap.Strategies = cloneSlice(strategies)
	})
}

// FetchResults 用服务端最近一次结果整体覆盖 LatestResult（服务端为 null 时置空）
func (s *Store) FetchResults(ctx context.Context) {
	ctx, finish := s.begin(ctx, OpFetchResults)
	seq := s.issue(fieldResult)

	result, err := s.api.GetResults(ctx)
	finish(err)
	if err != nil {
		s.fail(ctx, OpFetchResults, Silent, err)
		return
	}
	s.apply(fieldResult, seq, func(snap *Snapshot) {
		snap.LatestResult = result.Clone()
	})
}

// FetchStats 刷新聚合指标并返回读到的值；失败返回 nil，快照不变
func (s *Store) FetchStats(ctx context.Context) *model.Stats {
	ctx, finish := s.begin(ctx, OpFetchStats)
	seq := s.issue(fieldStats)

	stats, err := s.api.GetStats(ctx)
	finish(err)
	if err != nil {
		s.fail(ctx, OpFetchStats, Silent, err)
		return nil
	}
	s.apply(fieldStats, seq, func(snap *Snapshot) {
		snap.Stats = stats.Clone()
	})
	out := stats.Clone()
	return &out
}

// SetTask 服务端确认后才更新本地值
func (s *Store) SetTask(ctx context.Context, task string) {
	ctx, finish := s.begin(ctx, OpSetTask)
	seq := s.issue(fieldTask)

	err := s.api.SetTask(ctx, task)
	finish(err)
	if err != nil {
		s.fail(ctx, OpSetTask, Silent, err)
		return
	}
	s.apply(fieldTask, seq, func(snap *Snapshot) {
		snap.CurrentTask = task
	})
}

func (s *Store) SetStrategy(ctx context.Context, strategy string) {
	ctx, finish := s.begin(ctx, OpSetStrategy)
	seq := s.issue(fieldStrategy)

	err := s.api.SetStrategy(ctx, strategy)
	finish(err)
	if err != nil {
		s.fail(ctx, OpSetStrategy, Silent, err)
		return
	}
	s.apply(fieldStrategy, seq, func(snap *Snapshot) {
		snap.CurrentStrategy = strategy
	})
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
