package store

import (
	"context"

	"decision-console/internal/model"
)

// 以下操作只透传请求与响应，不触碰快照；失败记录后返回给调用方

func (s *Store) CompareResults(ctx context.Context, strategies []string) ([]model.Comparison, error) {
	ctx, finish := s.begin(ctx, OpCompareResults)
	out, err := s.api.CompareResults(ctx, strategies)
	finish(err)
	if err != nil {
		s.fail(ctx, OpCompareResults, Visible, err)
		return nil, err
	}
	return out, nil
}

// ExportData exportType 为空时按 json 导出
func (s *Store) ExportData(ctx context.Context, exportType string) (*model.ExportPayload, error) {
	if exportType == "" {
		exportType = "json"
	}
	ctx, finish := s.begin(ctx, OpExportData)
	out, err := s.api.Export(ctx, exportType)
	finish(err)
	if err != nil {
		s.fail(ctx, OpExportData, Visible, err)
		return nil, err
	}
	return out, nil
}

func (s *Store) FetchSystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	ctx, finish := s.begin(ctx, OpFetchSystemStatus)
	out, err := s.api.SystemStatus(ctx)
	finish(err)
	if err != nil {
		s.fail(ctx, OpFetchSystemStatus, Visible, err)
		return nil, err
	}
	return out, nil
}

func (s *Store) Health(ctx context.Context) (*model.Health, error) {
	ctx, finish := s.begin(ctx, OpHealth)
	out, err := s.api.Health(ctx)
	finish(err)
	if err != nil {
		s.fail(ctx, OpHealth, Visible, err)
		return nil, err
	}
	return out, nil
}

func (s *Store) FetchDataRecords(ctx context.Context) (*model.DataRecordList, error) {
	ctx, finish := s.begin(ctx, OpFetchDataRecords)
	out, err := s.api.ListData(ctx)
	finish(err)
	if err != nil {
		s.fail(ctx, OpFetchDataRecords, Visible, err)
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateDataRecord(ctx context.Context, name, dataType string, size any) (*model.DataRecord, error) {
	ctx, finish := s.begin(ctx, OpCreateDataRecord)
	out, err := s.api.CreateData(ctx, name, dataType, size)
	finish(err)
	if err != nil {
		s.fail(ctx, OpCreateDataRecord, Visible, err)
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteDataRecord(ctx context.Context, id int64) error {
	ctx, finish := s.begin(ctx, OpDeleteDataRecord)
	err := s.api.DeleteData(ctx, id)
	finish(err)
	if err != nil {
		s.fail(ctx, OpDeleteDataRecord, Visible, err)
		return err
	}
	return nil
}
