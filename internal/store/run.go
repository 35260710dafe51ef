package store

import (
	"context"

	"decision-console/internal/model"
)

// RunModel 触发一次运行。
//
// 进入时 IsLoading 置 true，无论成败退出时都会复位。成功后保存结果，并在返回前
// 等待一次 FetchStats，让聚合指标与本次运行一致；失败时跳过统计刷新，错误返回给调用方。
// 没有重入保护：并发调用的结果按响应到达顺序覆盖 LatestResult。
func (s *Store) RunModel(ctx context.Context, task, strategy string) (resp *model.RunResponse, err error) {
	ctx, finish := s.begin(ctx, OpRunModel)
	s.startRun()
	defer func() {
		s.endRun()
		finish(err)
	}()

	seq := s.issue(fieldResult)
	resp, err = s.api.Run(ctx, task, strategy)
	if err != nil {
		s.fail(ctx, OpRunModel, Visible, err)
		return nil, err
	}

	s.apply(fieldResult, seq, func(snap *Snapshot) {
		snap.LatestResult = resp.Result.Clone()
	})
	s.FetchStats(ctx)
	return resp, nil
}

// IsLoading 由在途运行数决定，最后一个运行结束时才回到 false
func (s *Store) startRun() {
	s.mu.Lock()
	s.inflight++
	s.snap.IsLoading = true
	s.mu.Unlock()
	s.recorder.RunStarted()
	s.notify()
}

func (s *Store) endRun() {
	s.mu.Lock()
	s.inflight--
	s.snap.IsLoading = s.inflight > 0
	s.mu.Unlock()
	s.recorder.RunFinished()
	s.notify()
}
