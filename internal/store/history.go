package store

import (
	"context"

	"decision-console/internal/model"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	DefaultLogLimit = 50
)

// FetchHistory 拉取一页历史并整体替换 History，返回完整分页信封。
// page/pageSize <= 0 时取默认值 1/10。失败会返回给调用方，分页控件需要感知。
func (s *Store) FetchHistory(ctx context.Context, page, pageSize int) (*model.HistoryPage, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	ctx, finish := s.begin(ctx, OpFetchHistory)
	seq := s.issue(fieldHistory)

	resp, err := s.api.GetHistory(ctx, page, pageSize)
	finish(err)
	if err != nil {
		s.fail(ctx, OpFetchHistory, Visible, err)
		return nil, err
	}

	s.apply(fieldHistory, seq, func(snap *Snapshot) {
		snap.History = cloneSlice(resp.Data)
	})
	return resp, nil
}

// DeleteHistory 删除一条历史后重新拉取第 1 页（不在本地摘除条目），返回重新拉取到的分页信封。
// 删除失败也会重新拉取，让列表与服务端一致；删除的错误优先返回。
// 只有重新拉取失败时，该错误同样记在 deleteHistory 名下。
func (s *Store) DeleteHistory(ctx context.Context, id int64) (*model.HistoryPage, error) {
	ctx, finish := s.begin(ctx, OpDeleteHistory)

	delErr := s.api.DeleteHistory(ctx, id)
	if delErr != nil {
		s.fail(ctx, OpDeleteHistory, Visible, delErr)
	}

	page, fetchErr := s.FetchHistory(ctx, DefaultPage, DefaultPageSize)
	if delErr != nil {
		finish(delErr)
		return page, delErr
	}
	finish(fetchErr)
	if fetchErr != nil {
		s.fail(ctx, OpDeleteHistory, Visible, fetchErr)
		return nil, fetchErr
	}
	return page, nil
}

// FetchLogs level 为空表示不过滤，limit <= 0 时取 50
func (s *Store) FetchLogs(ctx context.Context, level string, limit int) (*model.LogPage, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}

	ctx, finish := s.begin(ctx, OpFetchLogs)
	seq := s.issue(fieldLogs)

	resp, err := s.api.GetLogs(ctx, level, limit)
	finish(err)
	if err != nil {
		s.fail(ctx, OpFetchLogs, Visible, err)
		return nil, err
	}

	s.apply(fieldLogs, seq, func(snap *Snapshot) {
		snap.Logs = cloneSlice(resp.Data)
	})
	return resp, nil
}
